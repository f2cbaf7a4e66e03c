package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/voxsense/version"
)

func main() {
	ctx := context.Background()

	// A missing .env is the common case.
	dotenvErr := godotenv.Load()
	if errors.Is(dotenvErr, fs.ErrNotExist) {
		dotenvErr = nil
	}

	appl := &cli.Command{
		Name:    version.Name(),
		Usage:   "Voice emotion classification tuned for Indian languages",
		Version: version.Version() + " " + version.Commit(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Log pipeline stages to stderr",
				Sources: cli.EnvVars("VOXSENSE_VERBOSE"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}

			if dotenvErr != nil {
				slog.Debug("main", "stage", "dotenv", "error", dotenvErr)
			}

			return ctx, nil
		},
		Commands: []*cli.Command{
			classifyCommand(),
			analyzeCommand(),
			extractCommand(),
			languagesCommand(),
			historyCommand(),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}
