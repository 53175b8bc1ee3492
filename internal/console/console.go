package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	attached bool
	quiet    bool
	out      io.Writer = os.Stdout
)

// Init configures the console package
func Init(quietMode bool) {
	quiet = quietMode
}

// SetQuiet changes quiet mode at runtime
func SetQuiet(q bool) {
	quiet = q
}

// SetOutput redirects Log output
func SetOutput(w io.Writer) {
	out = w
}

// IsAttached returns whether a console is attached
func IsAttached() bool {
	return attached
}

// WaitForKey prompts the user to press Enter. Does nothing in non-interactive mode.
func WaitForKey(prompt string, nonInteractive bool) {
	if nonInteractive {
		return
	}
	fmt.Fprint(out, prompt)
	_, _ = bufio.NewReader(os.Stdin).ReadBytes('\n')
}

// Log prints a message if not in quiet mode
func Log(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(out, format+"\n", args...)
	}
}

// ProgressBar renders a fraction as a fixed-width text bar
func ProgressBar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction*float64(width) + 0.5)
	return fmt.Sprintf("[%s%s] %3.0f%%", strings.Repeat("#", filled), strings.Repeat("-", width-filled), fraction*100)
}

// titleMatches reports whether a window title belongs to the application named name
func titleMatches(title, name string) bool {
	return title != "" && strings.Contains(title, name)
}
