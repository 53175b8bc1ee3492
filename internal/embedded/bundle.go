package embedded

import (
	"fmt"
	"os"
	"strings"
)

// Bundle is an OpenStarbound installer zip compiled into the binary
type Bundle struct {
	Tag string
	Zip []byte
}

// Installer returns the bundled installer. ok is false for builds without
// the embedded tag.
func Installer() (b Bundle, ok bool) {
	b = Bundle{Tag: strings.TrimSpace(bundledTag), Zip: bundledZip}
	return b, b.Tag != "" && len(b.Zip) > 0
}

// WriteTemp writes the zip to a new temp file and returns its path
func (b Bundle) WriteTemp(prefix string) (string, error) {
	f, err := os.CreateTemp("", prefix+"*.zip")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(b.Zip); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write bundled installer: %w", err)
	}
	return f.Name(), nil
}
