package paths

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Normalize converts a path to use forward slashes (for logging and comparisons)
func Normalize(p string) string {
	return strings.ReplaceAll(filepath.Clean(p), string(filepath.Separator), "/")
}

// CleanLower returns a cleaned, lowercase path for case-insensitive comparison
func CleanLower(p string) string {
	return strings.ToLower(filepath.Clean(p))
}

// Unescape turns a path read from a Steam descriptor ("D:\\SteamLibrary") into a clean path
func Unescape(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\\`, `\`))
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

// BaseEquals reports whether the final path component equals name, ignoring case
func BaseEquals(p, name string) bool {
	p = strings.TrimRight(p, `/\`)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		p = p[i+1:]
	}
	return strings.EqualFold(p, name)
}

// FindActual finds the actual case of a file on case-sensitive filesystems
func FindActual(targetPath string) (string, error) {
	if _, err := os.Stat(targetPath); err == nil {
		return targetPath, nil
	}

	dir := filepath.Dir(targetPath)
	filename := filepath.Base(targetPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return targetPath, nil
	}

	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), filename) {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return targetPath, nil
}

// FileExists returns true if path exists and is not a directory
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// FileExistsFold is FileExists with a case-insensitive match on the file name
func FileExistsFold(path string) (string, bool) {
	actual, _ := FindActual(path)
	return actual, FileExists(actual)
}

// DirExists returns true if the directory exists
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Dedupe removes case-insensitive duplicates and returns the paths sorted
func Dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, p := range list {
		if p == "" {
			continue
		}
		key := CleanLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// MatchesAny checks a file name against glob patterns, ignoring case
func MatchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)

	for _, pattern := range patterns {
		pattern = strings.ToLower(pattern)
		if lower == pattern {
			return true
		}

		if strings.ContainsAny(pattern, "*?[") {
			matched, _ := filepath.Match(pattern, lower)
			if matched {
				return true
			}
		}
	}

	return false
}
