package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/relaygrid/scriptengine/internal/engine"
	"github.com/relaygrid/scriptengine/internal/facade"
)

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "Run a script file's entry function against JSON inputs",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a TOML config file for default limits and cache policy",
		},
		&cli.StringFlag{
			Name:    "inputs",
			Aliases: []string{"i"},
			Usage:   "JSON object of inputs (defaults to {})",
			Value:   "{}",
		},
		&cli.BoolFlag{
			Name:  "logs",
			Usage: "Print collected log lines after the run",
		},
	},
	Suggest:           true,
	ReadArgsFromStdin: true,
	Action:            runAction,
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return fmt.Errorf("script file path required")
	}
	scriptPath := cmd.Args().Get(0)

	source, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to read script file: %w", err)
	}

	var inputs map[string]any
	if err := json.Unmarshal([]byte(cmd.String("inputs")), &inputs); err != nil {
		return fmt.Errorf("failed to parse --inputs as JSON: %w", err)
	}

	fileCfg, err := loadFileConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	cfg := engine.Config{
		Limits:      fileCfg.toLimits(),
		CachePolicy: fileCfg.toCachePolicy(),
	}

	result, err := facade.Execute(ctx, string(source), inputs, cfg)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	out, err := json.MarshalIndent(result.Output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(out))
	fmt.Printf("duration: %s\n", result.Duration)

	if cmd.Bool("logs") {
		for _, record := range result.Logs {
			fmt.Printf("[%s] %s\n", record.Level, record.Message)
		}
	}
	return nil
}
