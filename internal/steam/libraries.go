// Package steam discovers Steam library folders and existing Starbound installs.
// Detection is advisory: nothing here returns an error, absence is a normal result.
package steam

import (
	"os"
	"path/filepath"
	"regexp"

	log "github.com/sirupsen/logrus"

	"github.com/distantorigin/osb-installer/internal/config"
	"github.com/distantorigin/osb-installer/internal/paths"
)

const (
	// LibraryFolder is the only library folder name the scanner accepts
	LibraryFolder = "SteamLibrary"
	// CommonApps is the per-library subpath holding installed games
	CommonApps = "steamapps/common"
	// FallbackRoot is probed when no registry value is readable
	FallbackRoot = `C:\Program Files (x86)\Steam`
)

var pathPair = regexp.MustCompile(`"path"\s*"([^"]+)"`)

// Scanner locates library candidates and base game installs
type Scanner struct {
	// Roots returns Steam client root directories (registry, home paths)
	Roots func() []string
	// Drives returns mounted filesystem roots for the fallback probe
	Drives func() []string
	// IsDir and IsFile are swappable for tests
	IsDir  func(string) bool
	IsFile func(string) bool
	// IsGameDir reports whether a candidate holds the base game; nil checks
	// config.GameExeLayouts through IsFile
	IsGameDir func(string) bool
	// ReadFile reads libraryfolders.vdf
	ReadFile func(string) ([]byte, error)
}

// NewScanner returns a scanner wired to the platform configuration sources
func NewScanner() *Scanner {
	return &Scanner{
		Roots:    steamRoots,
		Drives:   listDrives,
		IsDir:    paths.DirExists,
		IsFile:   func(p string) bool { _, ok := paths.FileExistsFold(p); return ok },
		ReadFile: os.ReadFile,
	}
}

// ParseLibraryFolders extracts every "path" value from a libraryfolders.vdf text
func ParseLibraryFolders(text string) []string {
	var out []string
	for _, m := range pathPair.FindAllStringSubmatch(text, -1) {
		if p := paths.Unescape(m[1]); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FilterLibraries keeps existing directories named SteamLibrary (any case)
func FilterLibraries(candidates []string, isDir func(string) bool) []string {
	var out []string
	for _, p := range candidates {
		if !paths.BaseEquals(p, LibraryFolder) {
			continue
		}
		if isDir != nil && !isDir(p) {
			continue
		}
		out = append(out, p)
	}
	return paths.Dedupe(out)
}

// DiscoverLibraries reads libraryfolders.vdf under every Steam root and
// returns the SteamLibrary folders it references
func (s *Scanner) DiscoverLibraries() []string {
	var candidates []string
	for _, root := range s.Roots() {
		vdf := filepath.Join(root, "steamapps", "libraryfolders.vdf")
		data, err := s.ReadFile(vdf)
		if err != nil {
			log.Debugf("no library descriptor at %s: %v", vdf, err)
			continue
		}
		candidates = append(candidates, ParseLibraryFolders(string(data))...)
	}

	libs := FilterLibraries(candidates, s.IsDir)
	for _, lib := range libs {
		log.Infof("Found Steam library: %s", lib)
	}
	return libs
}

// GameDir is the Starbound folder inside a library
func GameDir(library string) string {
	return filepath.Join(library, filepath.FromSlash(CommonApps), config.GameFolder)
}

// InstallDirFor is the default fresh install location for the first library
func InstallDirFor(libraries []string) string {
	if len(libraries) == 0 {
		return ""
	}
	return GameDir(libraries[0])
}

func (s *Scanner) isGameDir(dir string) bool {
	if s.IsGameDir != nil {
		return s.IsGameDir(dir)
	}
	return config.IsGameDir(dir, s.IsFile)
}

// DetectBaseInstall returns the first game directory holding the base game,
// probing the given libraries and then <drive>/SteamLibrary on every drive
func (s *Scanner) DetectBaseInstall(libraries []string) (string, bool) {
	for _, lib := range libraries {
		candidate := GameDir(lib)
		if s.isGameDir(candidate) {
			log.Infof("Found Starbound install: %s", candidate)
			return candidate, true
		}
	}

	log.Debug("No Starbound in registered libraries, scanning drives")
	for _, drive := range s.Drives() {
		candidate := GameDir(filepath.Join(drive, LibraryFolder))
		if s.isGameDir(candidate) {
			log.Infof("Found Starbound via drive scan: %s", candidate)
			return candidate, true
		}
	}

	log.Info("No existing Starbound install detected")
	return "", false
}

// Detection is the once-per-run scan result used to pre-fill the wizard
type Detection struct {
	Libraries    []string
	ExistingGame string
	Found        bool
}

// Detect runs library discovery followed by install detection
func (s *Scanner) Detect() Detection {
	libs := s.DiscoverLibraries()
	dir, ok := s.DetectBaseInstall(libs)
	return Detection{Libraries: libs, ExistingGame: dir, Found: ok}
}
