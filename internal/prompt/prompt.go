package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoFolderPicker is returned where no native folder dialog exists
var ErrNoFolderPicker = errors.New("folder picker is not available on this platform")

// SoundPlayer defines the interface for playing sounds
type SoundPlayer interface {
	Play(name string)
	PlayAsync(name string)
}

// Prompter asks the user questions on a console
type Prompter struct {
	NonInteractive   bool
	Sound            SoundPlayer
	GetConsoleWindow func() uintptr

	in  *bufio.Reader
	out io.Writer
}

// New creates a prompter reading answers from in and writing questions to out
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Stdio creates a prompter on the process console
func Stdio() *Prompter {
	return New(os.Stdin, os.Stdout)
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) play(name string) {
	if p.Sound != nil {
		p.Sound.PlayAsync(name)
	}
}

// WaitForKey waits for user to press Enter
func (p *Prompter) WaitForKey(prompt string) {
	if p.NonInteractive {
		return
	}
	fmt.Fprint(p.out, prompt)
	_, _ = p.readLine()
}

// Confirm asks a yes/no question. Non-interactive runs take def.
func (p *Prompter) Confirm(prompt string, def bool) bool {
	if p.NonInteractive {
		return def
	}

	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.out, "%s (%s): ", prompt, hint)

	response, err := p.readLine()
	if err != nil {
		return false
	}

	var confirmed bool
	switch strings.ToLower(response) {
	case "y", "yes":
		confirmed = true
	case "n", "no":
		confirmed = false
	case "":
		confirmed = def
	default:
		return false
	}

	p.play("select")
	return confirmed
}

// AskPath asks for a directory. Enter keeps def; "browse" opens the
// native folder dialog where one exists.
func (p *Prompter) AskPath(question, def string) (string, error) {
	if p.NonInteractive {
		return def, nil
	}

	for {
		if def != "" {
			fmt.Fprintf(p.out, "%s\n  [%s]\n(Enter to accept, type a path, or \"browse\"): ", question, def)
		} else {
			fmt.Fprintf(p.out, "%s\n(type a path, or \"browse\"): ", question)
		}

		response, err := p.readLine()
		if err != nil {
			return "", fmt.Errorf("failed to read answer: %w", err)
		}

		switch {
		case response == "" && def != "":
			p.play("select")
			return def, nil
		case response == "":
			fmt.Fprintln(p.out, "A path is required.")
		case strings.EqualFold(response, "browse"):
			selected, err := p.SelectFolder(question, def)
			if err != nil {
				fmt.Fprintf(p.out, "Could not open the folder dialog: %v\n", err)
				continue
			}
			p.play("select")
			return selected, nil
		default:
			p.play("select")
			return strings.Trim(response, `"`), nil
		}
	}
}

// SelectFolder opens the native folder dialog
func (p *Prompter) SelectFolder(title, defaultPath string) (string, error) {
	if p.NonInteractive {
		return defaultPath, nil
	}

	hwnd := uintptr(0)
	if p.GetConsoleWindow != nil {
		hwnd = p.GetConsoleWindow()
	}
	return selectFolder(title, hwnd)
}

// BaseInstallChoice is the answer to BaseInstallMenu
type BaseInstallChoice int

const (
	ChoiceCancel BaseInstallChoice = iota
	ChoiceExisting
	ChoiceFresh
)

// BaseInstallMenu asks whether to use an existing Starbound install or let
// SteamCMD install one
func (p *Prompter) BaseInstallMenu(detectedPath string) BaseInstallChoice {
	if p.NonInteractive {
		if detectedPath != "" {
			return ChoiceExisting
		}
		return ChoiceFresh
	}

	fmt.Fprintln(p.out, "\nStarbound + OpenStarbound Installer")
	fmt.Fprintln(p.out)
	if detectedPath != "" {
		fmt.Fprintf(p.out, "Detected Starbound at: %s\n\n", detectedPath)
	}
	fmt.Fprintln(p.out, "  1. Use an existing Starbound installation")
	fmt.Fprintln(p.out, "  2. Install Starbound with SteamCMD")
	fmt.Fprintln(p.out)
	fmt.Fprint(p.out, "Enter your choice (1 or 2): ")

	for {
		response, err := p.readLine()
		if err != nil {
			fmt.Fprintln(p.out, "\nError reading input, cancelling installation.")
			return ChoiceCancel
		}

		switch response {
		case "1":
			p.play("select")
			return ChoiceExisting
		case "2":
			p.play("select")
			return ChoiceFresh
		default:
			fmt.Fprint(p.out, "Invalid choice. Please enter 1 or 2: ")
		}
	}
}
