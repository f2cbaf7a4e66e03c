package tests_test

import (
	"fmt"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectNotContains returns a comparator verifying the output does not contain a substring.
func expectNotContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("unexpected substring %q found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectEmotion returns a comparator verifying that one of the built-in labels was reported.
func expectEmotion() test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		for _, label := range []string{"Calm", "Stressed", "Angry", "Fearful"} {
			if strings.Contains(stdout, label) {
				return
			}
		}

		testing.Log(fmt.Sprintf("no emotion label found in output:\n%s", stdout))
		testing.Fail()
	}
}
