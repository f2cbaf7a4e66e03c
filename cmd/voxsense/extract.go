//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/voxsense"
	"github.com/farcloser/voxsense/internal/output"
)

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Print the acoustic descriptor of a voice clip without classifying it",
		ArgsUsage: "<file | ->",
		Flags:     append([]cli.Flag{formatFlag()}, extractionFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			source := cmd.Args().First()

			formatter, err := format.GetFormatter(cmd.String("format"))
			if err != nil {
				return err
			}

			audio, err := readInput(source)
			if err != nil {
				return err
			}

			desc, err := voxsense.Extract(ctx, audio, extractOptions(cmd))
			if err != nil {
				return err
			}

			data := &format.Data{
				Object: source,
				Meta:   output.DescriptorToMap(desc),
			}

			return formatter.PrintAll([]*format.Data{data}, os.Stdout)
		},
	}
}
