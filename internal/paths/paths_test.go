package paths

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestNormalize tests path normalization on the host separator
func TestNormalize(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "host separators to forward slash",
			input: "Users" + sep + "test" + sep + "file.txt",
			want:  "Users/test/file.txt",
		},
		{
			name:  "already normalized",
			input: "Users/test/file.txt",
			want:  "Users/test/file.txt",
		},
		{
			name:  "empty string becomes dot (filepath.Clean behavior)",
			input: "",
			want:  ".",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestUnescape tests decoding of escaped descriptor paths
func TestUnescape(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "escaped backslashes",
			input: `D:\\SteamLibrary`,
			want:  filepath.Clean(`D:\SteamLibrary`),
		},
		{
			name:  "surrounding whitespace",
			input: "  /mnt/games/SteamLibrary  ",
			want:  "/mnt/games/SteamLibrary",
		},
		{
			name:  "empty",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unescape(tt.input); got != tt.want {
				t.Errorf("Unescape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestBaseEquals tests case-insensitive basename comparison for both separators
func TestBaseEquals(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{`D:\SteamLibrary`, true},
		{`E:\games\steamlibrary\`, true},
		{"/mnt/data/STEAMLIBRARY", true},
		{`C:\Program Files (x86)\Steam`, false},
		{"/mnt/data/SteamLibrary2", false},
	}

	for _, tt := range tests {
		if got := BaseEquals(tt.path, "SteamLibrary"); got != tt.want {
			t.Errorf("BaseEquals(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

// TestMatchesAny tests skip pattern matching on file names
func TestMatchesAny(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		patterns []string
		want     bool
	}{
		{
			name:     "installer temp file",
			file:     "is-7ABCD.tmp",
			patterns: []string{"is-*.tmp"},
			want:     true,
		},
		{
			name:     "upper case temp file",
			file:     "IS-QWE12.TMP",
			patterns: []string{"is-*.tmp"},
			want:     true,
		},
		{
			name:     "exact match",
			file:     "unins000.dat",
			patterns: []string{"is-*.tmp", "unins000.dat"},
			want:     true,
		},
		{
			name:     "regular file",
			file:     "starbound.exe",
			patterns: []string{"is-*.tmp"},
			want:     false,
		},
		{
			name:     "tmp without prefix",
			file:     "data.tmp",
			patterns: []string{"is-*.tmp"},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchesAny(tt.file, tt.patterns)
			if got != tt.want {
				t.Errorf("MatchesAny(%q, %v) = %v, want %v", tt.file, tt.patterns, got, tt.want)
			}
		})
	}
}

// TestDedupe tests case-insensitive de-duplication and ordering
func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"/b/SteamLibrary", "/a/SteamLibrary", "/B/steamlibrary", ""})
	want := []string{"/a/SteamLibrary", "/b/SteamLibrary"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe() = %v, want %v", got, want)
	}
}

// TestFindActual tests case-insensitive file lookup
func TestFindActual(t *testing.T) {
	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "Starbound.exe")
	err := os.WriteFile(testFile, []byte("content"), 0644)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	t.Run("exact case match", func(t *testing.T) {
		got, err := FindActual(filepath.Join(tempDir, "Starbound.exe"))
		if err != nil {
			t.Errorf("FindActual() unexpected error: %v", err)
		}
		if filepath.Base(got) != "Starbound.exe" {
			t.Errorf("FindActual() = %q, want %q", filepath.Base(got), "Starbound.exe")
		}
	})

	t.Run("different case resolves", func(t *testing.T) {
		got, ok := FileExistsFold(filepath.Join(tempDir, "starbound.exe"))
		if !ok {
			t.Fatalf("FileExistsFold() did not find %q", got)
		}
	})

	t.Run("file not found returns original", func(t *testing.T) {
		got, err := FindActual(filepath.Join(tempDir, "nonexistent.txt"))
		if err != nil {
			t.Errorf("FindActual() unexpected error: %v", err)
		}
		if filepath.Base(got) != "nonexistent.txt" {
			t.Errorf("FindActual() = %q, want %q", filepath.Base(got), "nonexistent.txt")
		}
	})
}

// TestExists tests file and directory existence helpers
func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if !FileExists(file) || FileExists(dir) {
		t.Error("FileExists() should be true only for files")
	}
	if !DirExists(dir) || DirExists(file) {
		t.Error("DirExists() should be true only for directories")
	}
	if FileExists(filepath.Join(dir, "missing")) || DirExists(filepath.Join(dir, "missing")) {
		t.Error("missing paths should not exist")
	}
}
