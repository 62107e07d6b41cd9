//go:build fyne && !cgo

package ui

import "fmt"

// Run covers the fyne-without-cgo build. Fyne's OpenGL bindings need a C
// toolchain, so the tag alone is not enough to get a window.
func Run(_ string) error {
	return fmt.Errorf("the desktop UI needs cgo for Fyne's OpenGL bindings; set CGO_ENABLED=1 and install a C toolchain (Windows: MSYS2/MinGW-w64 with gcc on PATH), then: go run -tags fyne ./cmd/trisheet ui [projectDir]")
}
