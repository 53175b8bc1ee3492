package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distantorigin/osb-installer/internal/installerr"
	"github.com/distantorigin/osb-installer/internal/process"
	"github.com/distantorigin/osb-installer/internal/testutil"
)

func TestMerge_MirrorsTree(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "OpenStarbound")

	testutil.WriteTree(t, src, map[string]string{
		"a/x.txt":   "x",
		"a/b/y.txt": "y",
	})

	report := Merge(src, dst, IsInstallerTemp)
	require.NoError(t, report.Err())
	assert.Equal(t, 2, report.Copied)
	assert.Equal(t, map[string]string{
		"a/x.txt":   "x",
		"a/b/y.txt": "y",
	}, testutil.ReadTree(t, dst))
}

func TestMerge_ConflictingFileAndMissingSubdir(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	testutil.WriteTree(t, src, map[string]string{
		"a/x.txt":   "x",
		"a/b/y.txt": "y",
	})
	testutil.WriteTree(t, dst, map[string]string{"a/x.txt": "stale"})

	report := Merge(src, dst, IsInstallerTemp)
	require.NoError(t, report.Err())
	assert.Empty(t, report.Failures)
	assert.Equal(t, map[string]string{
		"a/x.txt":   "x",
		"a/b/y.txt": "y",
	}, testutil.ReadTree(t, dst))
}

func TestMerge_OverwritesAndKeepsExtraFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	testutil.WriteTree(t, src, map[string]string{"win/starbound.exe": "new"})
	testutil.WriteTree(t, dst, map[string]string{
		"win/starbound.exe":  "old",
		"storage/player.dat": "save",
	})

	report := Merge(src, dst, nil)
	require.NoError(t, report.Err())
	assert.Equal(t, map[string]string{
		"win/starbound.exe":  "new",
		"storage/player.dat": "save",
	}, testutil.ReadTree(t, dst))
}

func TestMerge_Idempotent(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"a/x.txt":   "x",
		"a/b/y.txt": "y",
	})

	first := Merge(src, dst, nil)
	require.NoError(t, first.Err())
	after := testutil.ReadTree(t, dst)

	second := Merge(src, dst, nil)
	require.NoError(t, second.Err())
	assert.Equal(t, after, testutil.ReadTree(t, dst))
	assert.Equal(t, first.Copied, second.Copied)
}

func TestMerge_PreservesModTime(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testutil.WriteFile(t, filepath.Join(src, "mods", "a.pak"), "pak")

	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(src, "mods", "a.pak"), stamp, stamp))

	require.NoError(t, Merge(src, dst, nil).Err())

	info, err := os.Stat(filepath.Join(dst, "mods", "a.pak"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(stamp), "mtime %v", info.ModTime())
}

func TestMerge_SkipsInstallerTemp(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"is-ABC12.tmp":      "scratch",
		"win/IS-XYZ.TMP":    "scratch",
		"win/starbound.exe": "exe",
	})

	report := Merge(src, dst, IsInstallerTemp)
	require.NoError(t, report.Err())
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, map[string]string{"win/starbound.exe": "exe"}, testutil.ReadTree(t, dst))
}

func TestMerge_LockedFileIsReportedAndWalkContinues(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{
		"a/x.txt":   "x",
		"a/b/y.txt": "y",
		"a/z.txt":   "z",
	})
	// a non-empty directory where a/x.txt should go cannot be removed
	testutil.WriteFile(t, filepath.Join(dst, "a", "x.txt", "busy"), "held")

	report := Merge(src, dst, nil)

	require.Len(t, report.Failures, 1)
	f := report.Failures[0]
	assert.Equal(t, filepath.Join(src, "a", "x.txt"), f.Source)
	assert.Equal(t, filepath.Join(dst, "a", "x.txt"), f.Dest)
	assert.Error(t, report.Err())

	testutil.AssertFileContent(t, filepath.Join(dst, "a", "b", "y.txt"), "y")
	testutil.AssertFileContent(t, filepath.Join(dst, "a", "z.txt"), "z")
}

func TestMerge_MissingSource(t *testing.T) {
	report := Merge(filepath.Join(t.TempDir(), "missing"), t.TempDir(), nil)
	assert.Len(t, report.Failures, 1)
	assert.Zero(t, report.Copied)
}

func TestIsInstallerTemp(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"is-1A2B3.tmp", true},
		{"IS-abc.TMP", true},
		{"is-.tmp", true},
		{"this-is.tmp", false},
		{"is-file.txt", false},
		{"starbound.exe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInstallerTemp(tt.name))
		})
	}
}

func TestSkipPatterns(t *testing.T) {
	skip := SkipPatterns([]string{"*.log", "unins000.dat"})
	assert.True(t, skip("install.log"))
	assert.True(t, skip("UNINS000.DAT"))
	assert.False(t, skip("starbound.exe"))
}

func TestDeleteBestEffort(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	testutil.WriteTree(t, dir, map[string]string{"a/b.txt": "b"})

	DeleteBestEffort(dir)
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	// absent directories are fine
	DeleteBestEffort(dir)
}

func TestReplaceTree(t *testing.T) {
	base := t.TempDir()
	target := t.TempDir()
	testutil.WriteTree(t, filepath.Join(base, "assets"), map[string]string{
		"packed.pak":      "base",
		"user/readme.txt": "readme",
	})
	testutil.WriteTree(t, filepath.Join(target, "assets"), map[string]string{
		"packed.pak": "stale",
		"opensb.pak": "leftover",
	})

	require.NoError(t, ReplaceTree(filepath.Join(base, "assets"), filepath.Join(target, "assets")))
	assert.Equal(t, map[string]string{
		"packed.pak":      "base",
		"user/readme.txt": "readme",
	}, testutil.ReadTree(t, filepath.Join(target, "assets")))
}

func TestReplaceTree_MissingSource(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "assets")
	testutil.WriteFile(t, filepath.Join(dst, "keep.pak"), "keep")

	err := ReplaceTree(filepath.Join(t.TempDir(), "assets"), dst)
	assert.True(t, installerr.Is(err, installerr.NotFound))
	// destination untouched when there is nothing to copy
	testutil.AssertFileContent(t, filepath.Join(dst, "keep.pak"), "keep")
}

type stepClock struct {
	now time.Time
	// onSleep runs after every advance
	onSleep func()
}

func (c *stepClock) Now() time.Time { return c.now }

func (c *stepClock) Sleep(ctx context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	if c.onSleep != nil {
		c.onSleep()
	}
	return ctx.Err()
}

func TestWaitStable_WaitsForQuietWindow(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "a.pak"), "a")

	writes := 0
	clock := &stepClock{now: time.Unix(0, 0)}
	clock.onSleep = func() {
		// the installer keeps writing for the first two polls
		if writes < 2 {
			writes++
			testutil.WriteFile(t, filepath.Join(dir, "a.pak"), fmt.Sprintf("a%d", writes))
			testutil.WriteFile(t, filepath.Join(dir, "extra", fmt.Sprintf("%d.pak", writes)), "x")
		}
	}
	p := &process.Poller{Interval: time.Second, Timeout: time.Minute, Clock: clock}

	require.NoError(t, WaitStable(context.Background(), dir, 3*time.Second, p))
	assert.Equal(t, 2, writes)
	assert.Equal(t, 5*time.Second, clock.now.Sub(time.Unix(0, 0)))
}

func TestWaitStable_ZeroWindow(t *testing.T) {
	p := &process.Poller{Interval: time.Second, Timeout: time.Second, Clock: &stepClock{}}
	assert.NoError(t, WaitStable(context.Background(), filepath.Join(t.TempDir(), "missing"), 0, p))
}

func TestWaitStable_NeverSettles(t *testing.T) {
	dir := t.TempDir()
	n := 0
	clock := &stepClock{now: time.Unix(0, 0)}
	clock.onSleep = func() {
		n++
		testutil.WriteFile(t, filepath.Join(dir, "grow", fmt.Sprintf("f%d", n)), "x")
	}
	p := &process.Poller{Interval: time.Second, Timeout: 10 * time.Second, Clock: clock}

	err := WaitStable(context.Background(), dir, 3*time.Second, p)
	assert.True(t, installerr.Is(err, installerr.Timeout))
}
