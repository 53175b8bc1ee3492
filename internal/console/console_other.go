//go:build !windows

package console

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Attach reports whether stdout is a terminal
func Attach() bool {
	attached = term.IsTerminal(int(os.Stdout.Fd()))
	return attached
}

// SetTitle sets the terminal title with an OSC escape
func SetTitle(title string) error {
	if !attached {
		return nil
	}
	_, err := fmt.Fprintf(os.Stdout, "\033]0;%s\007", title)
	return err
}

// GetWindow has no meaning outside Windows
func GetWindow() uintptr { return 0 }

// BringToFront is a no-op outside Windows
func BringToFront() {}

// MinimizeByTitle is a no-op outside Windows
func MinimizeByTitle(name string) int { return 0 }
