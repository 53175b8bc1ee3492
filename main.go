package main

import (
	"fmt"
	"os"

	"github.com/distantorigin/osb-installer/internal/audio"
)

func main() {
	// Keep panics readable for players running from Explorer
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\nOops, something broke: %v\n", r)
			fmt.Fprintln(os.Stderr, "Check the log file and let the developers know what happened.")
			sounds.Play(audio.CueError)
			os.Exit(1)
		}
	}()

	if err := Execute(); err != nil {
		sounds.Play(audio.CueError)
		os.Exit(1)
	}
	audio.StopAll()
}
