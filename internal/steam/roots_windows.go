//go:build windows

package steam

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/distantorigin/osb-installer/internal/paths"
)

const steamKey = `Software\Valve\Steam`

// steamRoots reads SteamPath from HKCU and HKLM in both registry views and
// always appends the stock install location
func steamRoots() []string {
	var roots []string
	for _, hive := range []registry.Key{registry.CURRENT_USER, registry.LOCAL_MACHINE} {
		for _, view := range []uint32{registry.WOW64_64KEY, registry.WOW64_32KEY} {
			if p := readSteamPath(hive, view); p != "" {
				roots = append(roots, p)
			}
		}
	}
	roots = append(roots, FallbackRoot)
	return paths.Dedupe(roots)
}

func readSteamPath(hive registry.Key, view uint32) string {
	k, err := registry.OpenKey(hive, steamKey, registry.QUERY_VALUE|view)
	if err != nil {
		return ""
	}
	defer k.Close()

	for _, name := range []string{"SteamPath", "InstallPath"} {
		v, _, err := k.GetStringValue(name)
		if err == nil && v != "" {
			return filepath.Clean(v)
		}
	}
	log.Debugf("registry key %s has no Steam path", steamKey)
	return ""
}

// SteamExe returns steam.exe under the per-user SteamPath, or "" if unknown
func SteamExe() string {
	p := readSteamPath(registry.CURRENT_USER, registry.WOW64_64KEY)
	if p == "" {
		p = FallbackRoot
	}
	return filepath.Join(p, "steam.exe")
}

// listDrives returns every mounted drive letter root, e.g. C:\
func listDrives() []string {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		log.Debugf("GetLogicalDrives failed: %v", err)
		return nil
	}
	var drives []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) != 0 {
			drives = append(drives, string(rune('A'+i))+`:\`)
		}
	}
	return drives
}
