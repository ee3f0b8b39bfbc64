package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/relaygrid/scriptengine/internal/engine"
	"github.com/relaygrid/scriptengine/internal/facade"
	"github.com/relaygrid/scriptengine/internal/fancy"
	"github.com/relaygrid/scriptengine/internal/params"
)

var validateCmd = &cli.Command{
	Name:    "validate",
	Aliases: []string{"lint"},
	Usage:   "Validate a script file's shape and safety without running it",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "io",
			Aliases: []string{"schema"},
			Usage:   "Also print the script's io schema",
		},
	},
	Suggest:           true,
	ReadArgsFromStdin: true,
	Action:            validateAction,
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() < 1 {
		return fmt.Errorf("script file path required")
	}
	scriptPath := cmd.Args().Get(0)

	source, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to read script file: %w", err)
	}

	result := facade.Validate(string(source))
	fmt.Println(fancy.RenderValidation(scriptPath, result))

	if !result.Valid {
		return fmt.Errorf("validation failed")
	}

	if cmd.Bool("io") {
		e := engine.New(engine.Literal(string(source)), engine.Config{})
		defer e.Dispose()
		io, err := e.GetIO()
		if err != nil {
			return fmt.Errorf("failed to introspect io schema: %w", err)
		}
		schema, ok := io.(params.IOSchema)
		if ok {
			fmt.Println(fancy.RenderIOSchema(schema))
		}
	}
	return nil
}
