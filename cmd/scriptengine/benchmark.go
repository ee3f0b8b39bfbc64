package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/relaygrid/scriptengine/internal/engine"
	"github.com/relaygrid/scriptengine/internal/facade"
	"github.com/relaygrid/scriptengine/internal/fancy"
)

var benchmarkCmd = &cli.Command{
	Name:  "benchmark",
	Usage: "Run a script's entry function repeatedly and report timing",
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
		&cli.IntFlag{
			Name:    "iterations",
			Aliases: []string{"n"},
			Usage:   "Number of iterations to run",
			Value:   10,
		},
	},
	Suggest:           true,
	ReadArgsFromStdin: true,
	Action:            benchmarkAction,
}

func benchmarkAction(ctx context.Context, cmd *cli.Command) error {
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

	result, err := facade.Benchmark(ctx, string(source), inputs, int(cmd.Int("iterations")), cfg)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	fmt.Println(fancy.RenderBenchmark(result.Iterations, result.Errors, result.Total, result.Min, result.Max, result.Average))
	return nil
}
