package tests_test

import (
	"errors"
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/voxsense/tests/testutils"
)

func TestLanguagesCLI(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "languages lists the built-in calibrations",
			Command:     test.Command("languages"),
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("bengali"),
						expectContains("punjabi"),
						expectContains("english-in"),
						expectContains("pitch_offset_hz"),
					),
				}
			},
		},
		{
			Description: "a malformed .env is reported in verbose mode and does not fail",
			Setup: func(data test.Data, _ test.Helpers) {
				data.Temp().Save("not a pair\n", ".env")
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				cmd := helpers.Command("--verbose", "languages")
				cmd.WithCwd(data.Temp().Path())

				return cmd
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Errors:   []error{errors.New("stage=dotenv")},
					Output:   expectContains("bengali"),
				}
			},
		},
		{
			Description: "languages includes entries from a calibration file",
			Setup: func(data test.Data, _ test.Helpers) {
				data.Labels().Set("calibration", data.Temp().Save(
					"default: odia\nlanguages:\n  - key: odia\n    name: Odia\n    energy_scale: 1.0\n",
					"calibration.yaml",
				))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("languages", "--calibration", data.Labels().Get("calibration"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("odia"),
						expectContains("bengali"),
					),
				}
			},
		},
		{
			Description: "languages with a missing calibration file fails",
			Command:     test.Command("languages", "--calibration", "/nonexistent/calibration.yaml"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "languages with an unknown format fails",
			Command:     test.Command("languages", "--format", "xml"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
	}

	testCase.Run(t)
}
