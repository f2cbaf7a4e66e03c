//nolint:wrapcheck
package main

import (
	"context"
	"os"

	"github.com/farcloser/primordium/format"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/voxsense/internal/output"
)

func languagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "languages",
		Usage: "List the languages and dialects the classifier is calibrated for",
		Flags: []cli.Flag{
			calibrationFlag(),
			formatFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			formatter, err := format.GetFormatter(cmd.String("format"))
			if err != nil {
				return err
			}

			table, err := loadCalibrations(cmd)
			if err != nil {
				return err
			}

			fallback := table.Default().Key

			all := table.All()
			data := make([]*format.Data, 0, len(all))

			for _, cal := range all {
				meta := output.CalibrationToMap(cal)
				meta["default"] = cal.Key == fallback

				data = append(data, &format.Data{
					Object: cal.Key,
					Meta:   meta,
				})
			}

			return formatter.PrintAll(data, os.Stdout)
		},
	}
}
