package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/oatdex/internal/dexdb"
	"github.com/samcharles93/oatdex/internal/logger"
	"github.com/samcharles93/oatdex/internal/manifest"
	"github.com/samcharles93/oatdex/internal/oatstore"
	"github.com/samcharles93/oatdex/pkg/oat"
)

func extractCmd() *cli.Command {
	var (
		outDir        string
		baseName      string
		dbPath        string
		samsung       bool
		writeManifest bool
	)

	return &cli.Command{
		Name:      "extract",
		Usage:     "Carve every embedded DEX out of an OAT file",
		ArgsUsage: "<oat-file>",
		Flags: append(loggingFlags(),
			&cli.StringFlag{
				Name:        "out-dir",
				Aliases:     []string{"o"},
				Usage:       "destination directory, created if missing",
				Value:       ".",
				Destination: &outDir,
			},
			&cli.StringFlag{
				Name:        "base-name",
				Usage:       "force sequential output names instead of names derived from the dex locations",
				Destination: &baseName,
			},
			&cli.BoolFlag{
				Name:        "samsung-mode",
				Usage:       "handle the Samsung per-dex record variant (extra methods offsets field)",
				Destination: &samsung,
			},
			&cli.BoolFlag{
				Name:        "manifest",
				Usage:       "write a manifest.json describing the run into the output directory",
				Destination: &writeManifest,
			},
			&cli.StringFlag{
				Name:        "db",
				Usage:       "record the run into a SQLite database at this path, created if missing",
				Destination: &dbPath,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyExtractConfig(cmd, LoadConfig(), &outDir, &samsung)
			log := newLogger()
			ctx = logger.WithContext(ctx, log)

			oatPath := cmd.Args().First()
			if oatPath == "" {
				return cli.Exit("error: missing OAT file argument", 1)
			}

			f, err := oatstore.Open(ctx, oatPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open oat: %v", err), 1)
			}
			defer func() { _ = f.Close() }()

			log.Info("parsed OAT header",
				"magic", f.Header.MagicString(),
				"version", f.Header.Version,
				"dex_count", f.Header.EntryCount,
				"anchor", fmt.Sprintf("0x%x", f.Anchor),
			)

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return cli.Exit(fmt.Sprintf("error: create output directory: %v", err), 1)
			}

			artifacts, err := f.Extract(ctx,
				oat.Options{Samsung: samsung},
				oat.ExtractOptions{OutDir: outDir, BaseName: baseName},
			)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: extract: %v", err), 1)
			}
			for _, a := range artifacts {
				log.Info("carved dex", "path", a.Path, "bytes", a.Size, "location", a.Location)
			}

			if writeManifest {
				m := manifest.New(oatPath, f.Header, artifacts)
				manifestPath := filepath.Join(outDir, "manifest.json")
				if err := m.WriteFile(manifestPath); err != nil {
					return cli.Exit(fmt.Sprintf("error: write manifest: %v", err), 1)
				}
				log.Info("wrote manifest", "path", manifestPath, "run_id", m.RunID)
			}

			if dbPath != "" {
				db, err := dexdb.Open(dbPath)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: open dex db: %v", err), 1)
				}
				defer func() { _ = db.Close() }()

				run, err := db.RecordRun(ctx, oatPath, f.Header, artifacts)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: record run: %v", err), 1)
				}
				log.Info("recorded run", "db", db.Name(), "run_id", run.ID)
			}
			return nil
		},
	}
}
