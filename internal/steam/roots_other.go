//go:build !windows

package steam

import (
	"os"
	"path/filepath"

	"github.com/distantorigin/osb-installer/internal/paths"
)

// steamRoots returns the usual Steam client locations in the user's home
func steamRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	candidates := []string{
		filepath.Join(home, ".steam", "steam"),
		filepath.Join(home, ".local", "share", "Steam"),
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".steam", "steam"),
	}
	var roots []string
	for _, c := range candidates {
		if paths.DirExists(c) {
			roots = append(roots, c)
		}
	}
	return roots
}

// SteamExe returns the steam launcher found on PATH locations, or "steam"
func SteamExe() string {
	for _, p := range []string{"/usr/bin/steam", "/usr/games/steam"} {
		if paths.FileExists(p) {
			return p
		}
	}
	return "steam"
}

// listDrives returns / plus anything mounted under /mnt and /media/<user>
func listDrives() []string {
	drives := []string{"/"}
	if m, err := filepath.Glob("/mnt/*"); err == nil {
		drives = append(drives, m...)
	}
	if m, err := filepath.Glob("/media/*/*"); err == nil {
		drives = append(drives, m...)
	}
	return drives
}
