//go:build !fyne

package ui

import (
	"strings"
	"testing"
)

// Headless builds must fail loudly, with and without a project argument,
// and the message has to name the build tag that enables the real UI.
func TestRunStubFailsWithBuildHint(t *testing.T) {
	for _, dir := range []string{"", "/tmp/ws-algebra-7b"} {
		err := Run(dir)
		if err == nil {
			t.Fatalf("Run(%q) = nil, want error in headless build", dir)
		}
		if msg := err.Error(); !strings.Contains(msg, "-tags fyne") || !strings.Contains(msg, "desktop UI") {
			t.Fatalf("Run(%q) error does not explain the rebuild: %q", dir, msg)
		}
	}
}
