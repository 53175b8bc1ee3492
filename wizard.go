package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/distantorigin/osb-installer/internal/audio"
	"github.com/distantorigin/osb-installer/internal/config"
	"github.com/distantorigin/osb-installer/internal/console"
	"github.com/distantorigin/osb-installer/internal/installer"
	"github.com/distantorigin/osb-installer/internal/pipeline"
	"github.com/distantorigin/osb-installer/internal/prompt"
	"github.com/distantorigin/osb-installer/internal/steam"
)

const progressWidth = 30

var (
	errCancelled   = errors.New("installation cancelled")
	errInterrupted = errors.New("installation interrupted")
)

// wizard collects the install configuration and renders pipeline events
type wizard struct {
	prompt *prompt.Prompter
	sounds *audio.Player
	out    io.Writer

	baseDir   string
	targetDir string
	noLaunch  bool
}

func installFunc(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p := prompt.Stdio()
	p.NonInteractive = nonInteractive
	p.Sound = sounds
	p.GetConsoleWindow = console.GetWindow

	w := &wizard{
		prompt:    p,
		sounds:    sounds,
		out:       cmd.OutOrStdout(),
		baseDir:   baseDirFlag,
		targetDir: targetDirFlag,
		noLaunch:  noLaunchFlag,
	}

	sounds.PlayAsync(audio.CueStart)
	cfg, err := w.collect(steam.NewScanner().Detect())
	if err != nil {
		return err
	}
	log.Infof("installing: base=%q existing=%t target=%q launch=%t",
		cfg.BaseGameDir, cfg.HasExistingBaseInstall, cfg.TargetDir, cfg.LaunchOnFinish)

	if err := w.drain(ctx, pipeline.Start(ctx, installer.New(settings).Steps(cfg))); err != nil {
		p.WaitForKey("\nPress Enter to exit...")
		return err
	}

	w.finish(ctx, cfg)
	return nil
}

// collect asks for an InstallConfig until it validates. Flags answer their
// questions up front; non-interactive runs take the detected defaults.
func (w *wizard) collect(det steam.Detection) (config.InstallConfig, error) {
	for {
		cfg, err := w.ask(det)
		if err != nil {
			return cfg, err
		}
		err = cfg.Validate()
		if err == nil {
			return cfg, nil
		}
		if w.prompt.NonInteractive {
			return cfg, err
		}
		w.sounds.PlayAsync(audio.CueError)
		fmt.Fprintf(w.out, "%v\n\n", err)
	}
}

func (w *wizard) ask(det steam.Detection) (config.InstallConfig, error) {
	var cfg config.InstallConfig

	if w.baseDir != "" {
		cfg.BaseGameDir = w.baseDir
		cfg.HasExistingBaseInstall = installer.HasGameExe(w.baseDir)
	} else {
		var err error
		switch w.prompt.BaseInstallMenu(det.ExistingGame) {
		case prompt.ChoiceExisting:
			cfg.HasExistingBaseInstall = true
			cfg.BaseGameDir, err = w.prompt.AskPath("Existing Starbound install:", det.ExistingGame)
		case prompt.ChoiceFresh:
			cfg.BaseGameDir, err = w.prompt.AskPath("Install Starbound here:", steam.InstallDirFor(det.Libraries))
		default:
			return cfg, errCancelled
		}
		if err != nil {
			return cfg, err
		}
	}

	cfg.TargetDir = w.targetDir
	if cfg.TargetDir == "" {
		dir, err := w.prompt.AskPath("OpenStarbound install directory:", defaultTargetDir())
		if err != nil {
			return cfg, err
		}
		cfg.TargetDir = dir
	}

	cfg.LaunchOnFinish = !w.noLaunch && w.prompt.Confirm("Run Starbound when the install finishes?", true)
	return cfg, nil
}

// drain renders events until the channel closes. It returns the failing
// step's error, or errInterrupted when the run stopped without finishing.
func (w *wizard) drain(ctx context.Context, events <-chan pipeline.Event) error {
	var (
		failed   error
		finished bool
	)

	for ev := range events {
		switch ev.Kind {
		case pipeline.EventStepStarted:
			console.Log("\n[%d/%d] %s", ev.Index+1, ev.Total, ev.Name)
			w.sounds.PlayAsync(stepCue(ev.Name))
		case pipeline.EventProgress:
			console.Log("%s", console.ProgressBar(ev.Progress, progressWidth))
		case pipeline.EventLog:
			console.Log("  %s", ev.Message)
		case pipeline.EventFailed:
			failed = fmt.Errorf("%s failed: %w", ev.Name, ev.Err)
			console.Log("\nStep %q failed:\n  %s", ev.Name, ev.Message)
			w.sounds.Play(audio.CueError)
		case pipeline.EventFinished:
			finished = true
			console.Log("\n%s\nAll steps completed successfully!", console.ProgressBar(1, progressWidth))
			w.sounds.Play(audio.CueSuccess)
		}
	}

	switch {
	case failed != nil:
		return failed
	case !finished:
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", errInterrupted, err)
		}
		return errInterrupted
	}
	return nil
}

func stepCue(name string) string {
	if strings.HasPrefix(name, "Download") {
		return audio.CueDownloading
	}
	return audio.CueInstalling
}

// finish launches the client when asked to. A missing client is only a warning.
func (w *wizard) finish(ctx context.Context, cfg config.InstallConfig) {
	if !cfg.LaunchOnFinish {
		w.prompt.WaitForKey("\nPress Enter to exit...")
		return
	}
	if err := launchClient(ctx, cfg.TargetDir); err != nil {
		log.Warnf("launch on finish: %v", err)
		console.Log("Warning: %v", err)
		w.prompt.WaitForKey("\nPress Enter to exit...")
	}
}
