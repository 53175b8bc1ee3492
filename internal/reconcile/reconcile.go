package reconcile

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/distantorigin/osb-installer/internal/installerr"
	"github.com/distantorigin/osb-installer/internal/paths"
	"github.com/distantorigin/osb-installer/internal/process"
)

// InstallerTempPattern matches the scratch files Inno Setup leaves next to its output
const InstallerTempPattern = "is-*.tmp"

// Failure is a single file that could not be merged
type Failure struct {
	Source string
	Dest   string
	Reason error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s -> %s: %v", f.Source, f.Dest, f.Reason)
}

// Report summarizes a Merge
type Report struct {
	Dirs     int
	Copied   int
	Skipped  int
	Failures []Failure
}

// Err folds every failure into one error, or nil when the merge was clean
func (r Report) Err() error {
	var result *multierror.Error
	for _, f := range r.Failures {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}

// IsInstallerTemp reports whether name is an installer scratch file
func IsInstallerTemp(name string) bool {
	return paths.MatchesAny(name, []string{InstallerTempPattern})
}

// SkipPatterns builds a skip predicate from glob patterns
func SkipPatterns(patterns []string) func(string) bool {
	return func(name string) bool {
		return paths.MatchesAny(name, patterns)
	}
}

// Merge mirrors src into dst. Directories are created as needed; every file
// whose name is not skipped replaces its counterpart in dst. A file that
// cannot be replaced is recorded in the report and the walk moves on.
func Merge(src, dst string, skip func(name string) bool) Report {
	var report Report

	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}
		target := filepath.Join(dst, rel)

		if err != nil {
			report.Failures = append(report.Failures, Failure{Source: path, Dest: target, Reason: err})
			if d != nil && d.IsDir() && path != src {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				report.Failures = append(report.Failures, Failure{Source: path, Dest: target, Reason: err})
				return fs.SkipDir
			}
			report.Dirs++
			return nil
		}

		if skip != nil && skip(d.Name()) {
			report.Skipped++
			return nil
		}

		if err := replaceFile(path, target); err != nil {
			log.Debugf("merge: %s: %v", target, err)
			report.Failures = append(report.Failures, Failure{Source: path, Dest: target, Reason: err})
			return nil
		}
		report.Copied++
		return nil
	})
	if walkErr != nil {
		report.Failures = append(report.Failures, Failure{Source: src, Dest: dst, Reason: walkErr})
	}

	return report
}

func replaceFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("failed to remove existing file: %w", err)
		}
	}
	return copyFile(src, dst)
}

// copyFile copies one regular file keeping its mode and modification time
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// CopyTree copies src into dst and stops at the first error
func CopyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}

// ReplaceTree removes dst entirely and copies src in its place
func ReplaceTree(src, dst string) error {
	if !paths.DirExists(src) {
		return installerr.Errorf(installerr.NotFound, "replace", "source directory not found: %s", src)
	}
	if err := os.RemoveAll(dst); err != nil {
		return installerr.New(installerr.Filesystem, "replace", fmt.Errorf("failed to remove %s: %w", dst, err))
	}
	if err := CopyTree(src, dst); err != nil {
		return installerr.New(installerr.Filesystem, "replace", fmt.Errorf("failed to copy %s: %w", src, err))
	}
	return nil
}

// DeleteBestEffort removes dir and only logs a failure
func DeleteBestEffort(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Warnf("failed to remove %s: %v", dir, err)
	}
}

type snapshot struct {
	size   int64
	files  int
	latest int64
}

func takeSnapshot(dir string) (snapshot, error) {
	var s snapshot
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		s.files++
		s.size += info.Size()
		if mt := info.ModTime().UnixNano(); mt > s.latest {
			s.latest = mt
		}
		return nil
	})
	return s, err
}

// WaitStable blocks until the total size, file count and newest modification
// time under dir have stayed the same for window. A zero window returns at once.
func WaitStable(ctx context.Context, dir string, window time.Duration, p *process.Poller) error {
	if window <= 0 {
		return nil
	}

	last, err := takeSnapshot(dir)
	if err != nil {
		return installerr.New(installerr.Filesystem, "stability check", err)
	}
	since := p.Now()

	return p.WaitUntil(ctx, func() bool {
		cur, err := takeSnapshot(dir)
		if err != nil {
			return false
		}
		if cur != last {
			last = cur
			since = p.Now()
			return false
		}
		return p.Now().Sub(since) >= window
	})
}
