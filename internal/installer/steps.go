package installer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/distantorigin/osb-installer/internal/config"
	"github.com/distantorigin/osb-installer/internal/download"
	"github.com/distantorigin/osb-installer/internal/embedded"
	"github.com/distantorigin/osb-installer/internal/installerr"
	"github.com/distantorigin/osb-installer/internal/paths"
	"github.com/distantorigin/osb-installer/internal/pipeline"
	"github.com/distantorigin/osb-installer/internal/process"
	"github.com/distantorigin/osb-installer/internal/reconcile"
	"github.com/distantorigin/osb-installer/internal/version"
)

// HasGameExe reports whether dir holds a base game executable
func HasGameExe(dir string) bool {
	return config.IsGameDir(dir, func(p string) bool {
		_, ok := paths.FileExistsFold(p)
		return ok
	})
}

type releaser interface {
	Release() error
}

// release lets go of a detached child; failing to is not worth a step failure
func release(h releaser, name string) {
	if err := h.Release(); err != nil {
		log.Debugf("failed to release %s: %v", name, err)
	}
}

func (in *Installer) steamCMD() string {
	return filepath.Join(in.Settings.SteamCMDDir(), SteamCMDExe)
}

func (in *Installer) ensureSteam(ctx context.Context) error {
	defer in.BringToFront()

	if in.IsRunning(SteamImage) {
		pipeline.Logf(ctx, "Steam is already running")
		return nil
	}

	exe := in.SteamExe()
	pipeline.Logf(ctx, "Starting Steam: %s", exe)
	h, err := in.Launch(ctx, exe, nil, process.Detached)
	if err != nil {
		return errors.Wrap(err, "start Steam")
	}
	release(h, exe)

	return in.Poller.Sleep(ctx, in.Settings.SteamStartDelay.Duration)
}

func (in *Installer) minimizeSteam(ctx context.Context) error {
	n := in.MinimizeWindows(SteamWindowTitle)
	log.Debugf("minimized %d Steam window(s)", n)
	return nil
}

func (in *Installer) downloadSteamCMD(ctx context.Context) error {
	dir := in.Settings.SteamCMDDir()
	if paths.FileExists(filepath.Join(dir, SteamCMDExe)) {
		pipeline.Logf(ctx, "SteamCMD already present in %s", dir)
		return nil
	}

	pipeline.Logf(ctx, "Downloading SteamCMD to %s", dir)
	if err := in.Fetcher.Ensure(ctx, in.Settings.SteamCMDURL, dir, SteamCMDExe); err != nil {
		return errors.Wrap(err, "download SteamCMD")
	}
	return nil
}

func (in *Installer) installStarbound(ctx context.Context, r *run) error {
	dir := r.cfg.BaseGameDir
	if r.cfg.HasExistingBaseInstall && HasGameExe(dir) {
		pipeline.Logf(ctx, "Found existing Starbound at: %s", dir)
		return nil
	}

	pipeline.Logf(ctx, "Installing Starbound to: %s", dir)
	args := []string{
		"+force_install_dir", dir,
		"+login", "anonymous",
		"+app_update", in.Settings.AppID, "validate",
		"+quit",
	}
	if _, err := in.Launch(ctx, in.steamCMD(), args, process.Wait); err != nil {
		return errors.Wrap(err, "install Starbound with SteamCMD")
	}
	return nil
}

func (in *Installer) runInstaller(ctx context.Context, r *run) error {
	bundle, bundled := embedded.Bundle{}, false
	if in.Bundled != nil {
		bundle, bundled = in.Bundled()
	}

	if bundled {
		r.tag = bundle.Tag
		pipeline.Logf(ctx, "Using bundled OpenStarbound installer: %s", r.tag)
	} else {
		tag, err := in.Releases.LatestReleaseTag(ctx)
		if err != nil {
			return errors.Wrap(err, "resolve latest OpenStarbound release")
		}
		r.tag = tag
		pipeline.Logf(ctx, "Latest OpenStarbound release: %s", tag)
	}

	tempDir := in.Settings.InstallerTempDir()
	if err := os.RemoveAll(tempDir); err != nil {
		return installerr.New(installerr.Filesystem, "clear installer directory", err)
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return installerr.New(installerr.Filesystem, "create installer directory", err)
	}

	var (
		zipPath string
		err     error
	)
	if bundled {
		zipPath, err = bundle.WriteTemp("osb-installer-")
		if err != nil {
			return installerr.New(installerr.Filesystem, "unpack bundled installer", err)
		}
	} else {
		zipPath, err = in.fetchInstaller(ctx, r.tag)
		if err != nil {
			return err
		}
	}
	defer os.Remove(zipPath)

	if err := download.ExtractZipFile(zipPath, tempDir); err != nil {
		return errors.Wrap(err, "extract OpenStarbound installer")
	}

	exe, err := findExe(tempDir)
	if err != nil {
		return err
	}
	r.installerImage = filepath.Base(exe)

	pipeline.Logf(ctx, "Running installer: %s", exe)
	h, err := in.Launch(ctx, exe, in.Settings.InstallerArgs, process.Detached)
	if err != nil {
		return errors.Wrap(err, "run OpenStarbound installer")
	}
	release(h, exe)
	return nil
}

func (in *Installer) fetchInstaller(ctx context.Context, tag string) (string, error) {
	url := in.Releases.ReleaseAssetURL(tag, in.Settings.InstallerAsset)
	pipeline.Logf(ctx, "Downloading OpenStarbound installer...")
	lastQuarter := -1
	zipPath, err := in.DownloadToTemp(url, "osb-installer-", func(done, total int64, pct int) {
		if q := pct / 25; q != lastQuarter {
			lastQuarter = q
			pipeline.Logf(ctx, "  %d%% (%d/%d bytes)", pct, done, total)
		}
	})
	if err != nil {
		return "", errors.Wrap(err, "download OpenStarbound installer")
	}
	return zipPath, nil
}

// findExe returns the first .exe under dir in lexical walk order
func findExe(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".exe") {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", installerr.New(installerr.Filesystem, "find installer", err)
	}
	if found == "" {
		return "", installerr.Errorf(installerr.NotFound, "find installer", "installer .exe not found in ZIP")
	}
	return found, nil
}

func (in *Installer) sameAsTarget(r *run) bool {
	return paths.CleanLower(in.Settings.InstallerOutput) == paths.CleanLower(r.cfg.TargetDir)
}

// mergeInto copies the installer output into the target and then deletes it
func (in *Installer) mergeInto(ctx context.Context, r *run) {
	output := in.Settings.InstallerOutput
	if in.sameAsTarget(r) {
		pipeline.Logf(ctx, "Installer output is the target directory, nothing to merge")
		return
	}

	pipeline.Logf(ctx, "Merging all files from %s -> %s", output, r.cfg.TargetDir)
	report := reconcile.Merge(output, r.cfg.TargetDir, reconcile.SkipPatterns(in.Settings.SkipPatterns))
	if err := report.Err(); err != nil {
		pipeline.Logf(ctx, "Some files could not be copied:")
		for _, f := range report.Failures {
			pipeline.Logf(ctx, "  %s", f.Error())
		}
	}
	log.Debugf("merged %d files (%d skipped, %d failed)", report.Copied, report.Skipped, len(report.Failures))

	pipeline.Logf(ctx, "Cleaning up %s", output)
	reconcile.DeleteBestEffort(output)
}

func (in *Installer) mergeOutput(ctx context.Context, r *run) error {
	output := in.Settings.InstallerOutput

	pipeline.Logf(ctx, "Waiting for the OpenStarbound installer to finish...")
	if err := in.Poller.WaitUntil(ctx, func() bool { return paths.DirExists(output) }); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return installerr.Errorf(installerr.Timeout, "installer output",
			"OpenStarbound output not found at %s after %s", output, in.Poller.Timeout)
	}

	exitWait := &process.Poller{
		Interval: in.Poller.Interval,
		Timeout:  in.Settings.InstallerExit.Duration,
		Clock:    in.Poller.Clock,
	}
	if r.installerImage != "" {
		if err := in.WaitForExit(ctx, r.installerImage, exitWait); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warnf("%s still running after %s, merging anyway", r.installerImage, exitWait.Timeout)
		}
	}

	if err := in.Poller.Sleep(ctx, in.Settings.SettleDelay.Duration); err != nil {
		return err
	}

	if err := reconcile.WaitStable(ctx, output, in.Settings.StabilityWindow.Duration, exitWait); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warnf("installer output did not settle: %v", err)
	}

	in.mergeInto(ctx, r)

	if r.tag != "" {
		v, err := version.FromTag(r.tag)
		if err == nil {
			err = version.Save(r.cfg.TargetDir, v)
		}
		if err != nil {
			log.Warnf("failed to record installed version: %v", err)
		}
	}
	return nil
}

func (in *Installer) copyAssets(ctx context.Context, r *run) error {
	base := r.cfg.BaseGameDir
	if !HasGameExe(base) {
		return installerr.Errorf(installerr.NotFound, "copy assets", "%s not found in %s", config.GameExe, base)
	}

	src := filepath.Join(base, "assets")
	dst := filepath.Join(r.cfg.TargetDir, "assets")
	pipeline.Logf(ctx, "Copying %s -> %s", src, dst)
	if err := reconcile.ReplaceTree(src, dst); err != nil {
		return errors.Wrap(err, "copy Starbound assets")
	}
	return nil
}

func (in *Installer) downloadMods(ctx context.Context) error {
	for _, id := range in.Settings.WorkshopIDs {
		pipeline.Logf(ctx, "Downloading workshop item %s", id)
		args := []string{
			"+login", "anonymous",
			"+workshop_download_item", in.Settings.AppID, id,
			"+quit",
		}
		if _, err := in.Launch(ctx, in.steamCMD(), args, process.Wait); err != nil {
			return errors.Wrapf(err, "download workshop item %s", id)
		}
	}
	return nil
}

func (in *Installer) finalSweep(ctx context.Context, r *run) error {
	if !paths.DirExists(in.Settings.InstallerOutput) {
		return nil
	}
	pipeline.Logf(ctx, "Final pass: copying any remaining OpenStarbound files...")
	in.mergeInto(ctx, r)
	return nil
}
