package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/oatdex/internal/api"
	"github.com/samcharles93/oatdex/internal/logger"
)

func inspectCmd() *cli.Command {
	var samsung bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the OAT header and per-dex metadata without extracting",
		ArgsUsage: "<oat-file>",
		Flags: append(loggingFlags(),
			&cli.BoolFlag{
				Name:        "samsung-mode",
				Usage:       "handle the Samsung per-dex record variant",
				Destination: &samsung,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyLoggingConfig(cmd, LoadConfig())
			ctx = logger.WithContext(ctx, newLogger())

			oatPath := cmd.Args().First()
			if oatPath == "" {
				return cli.Exit("error: missing OAT file argument", 1)
			}

			report, err := api.NewStoreInspector(nil).Inspect(ctx, oatPath, samsung)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: inspect: %v", err), 1)
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: encode report: %v", err), 1)
			}
			_, _ = fmt.Fprintln(os.Stdout, string(out))
			return nil
		},
	}
}
