package version

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// FileName records the installed OpenStarbound release inside the target directory
const FileName = ".osb-version"

// Version is an OpenStarbound release
type Version struct {
	Tag         string    `json:"tag"`
	Major       int       `json:"major"`
	Minor       int       `json:"minor"`
	Patch       int       `json:"patch"`
	InstalledAt time.Time `json:"installed_at,omitempty"`
}

// String returns the version without the tag prefix
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 as v is older than, equal to or newer than o
func (v Version) Compare(o Version) int {
	a := [3]int{v.Major, v.Minor, v.Patch}
	b := [3]int{o.Major, o.Minor, o.Patch}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// ParseTag extracts version components from a release tag ("v0.1.14").
// Missing minor or patch components read as zero.
func ParseTag(tag string) (major, minor, patch int, err error) {
	tagVersion := strings.TrimPrefix(tag, "v")
	parts := strings.Split(tagVersion, ".")
	if tagVersion == "" || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("invalid tag format: %s (expected vX.Y.Z)", tag)
	}

	nums := [3]int{}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid version component %q in tag %s: %w", p, tag, err)
		}
		nums[i] = n
	}

	return nums[0], nums[1], nums[2], nil
}

// FromTag builds a Version from a release tag
func FromTag(tag string) (*Version, error) {
	major, minor, patch, err := ParseTag(tag)
	if err != nil {
		return nil, err
	}
	return &Version{Tag: tag, Major: major, Minor: minor, Patch: patch}, nil
}

// LoadLocal reads the release recorded in dir
func LoadLocal(dir string) (*Version, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read local version: %w", err)
	}

	var v Version
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse local version: %w", err)
	}

	return &v, nil
}

// Save records v in dir, stamping the install time
func Save(dir string, v *Version) error {
	if v.InstalledAt.IsZero() {
		v.InstalledAt = time.Now().UTC().Truncate(time.Second)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal version: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write version file: %w", err)
	}

	return nil
}
