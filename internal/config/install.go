package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// GameFolder is the base game folder under steamapps/common
	GameFolder = "Starbound"
	// GameExe is the base game executable probed for an existing install
	GameExe = "starbound.exe"
	// ClientExe is the derived client executable, relative to the target directory
	ClientExe = "win/starbound.exe"
)

// GameExeLayouts are the places the base game executable shows up in a game
// directory, relative and slash separated
var GameExeLayouts = []string{GameExe, "win64/" + GameExe}

// IsGameDir reports whether dir holds the base game executable in any known
// layout, checking candidates with isFile
func IsGameDir(dir string, isFile func(string) bool) bool {
	for _, rel := range GameExeLayouts {
		if isFile(filepath.Join(dir, filepath.FromSlash(rel))) {
			return true
		}
	}
	return false
}

// InstallConfig is produced once by the wizard and read-only afterwards
type InstallConfig struct {
	BaseGameDir            string
	TargetDir              string
	HasExistingBaseInstall bool
	LaunchOnFinish         bool
}

// Validate rejects configurations the pipeline cannot start with
func (c InstallConfig) Validate() error {
	if strings.TrimSpace(c.BaseGameDir) == "" {
		if c.HasExistingBaseInstall {
			return fmt.Errorf("please specify the existing Starbound path")
		}
		return fmt.Errorf("please specify where to install Starbound")
	}
	if strings.TrimSpace(c.TargetDir) == "" {
		return fmt.Errorf("please specify the OpenStarbound install directory")
	}
	return nil
}

// ClientExePath is the derived client executable inside TargetDir
func (c InstallConfig) ClientExePath() string {
	return filepath.Join(c.TargetDir, filepath.FromSlash(ClientExe))
}

// BaseExePath is the base game executable inside BaseGameDir
func (c InstallConfig) BaseExePath() string {
	return filepath.Join(c.BaseGameDir, GameExe)
}
