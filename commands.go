package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/distantorigin/osb-installer/internal/audio"
	"github.com/distantorigin/osb-installer/internal/config"
	"github.com/distantorigin/osb-installer/internal/console"
	"github.com/distantorigin/osb-installer/internal/installerr"
	"github.com/distantorigin/osb-installer/internal/logging"
	"github.com/distantorigin/osb-installer/internal/paths"
	"github.com/distantorigin/osb-installer/internal/process"
	"github.com/distantorigin/osb-installer/internal/steam"
)

const windowTitle = "Starbound + OpenStarbound Installer"

var (
	configPath     string
	logLevel       string
	logFile        string
	nonInteractive bool
	quietFlag      bool
	baseDirFlag    string
	targetDirFlag  string
	noLaunchFlag   bool

	settings config.Settings
	sounds   *audio.Player

	rootCmd = &cobra.Command{
		Use:   "osb-installer",
		Short: "installs Starbound and OpenStarbound",
		Long: "Installs Starbound through SteamCMD (or reuses an existing install), " +
			"runs the latest OpenStarbound installer and merges its files into the target directory.",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              installFunc,
	}

	detectCmd = &cobra.Command{
		Use:   "detect",
		Short: "prints Steam libraries and any Starbound install found",
		RunE: func(cmd *cobra.Command, args []string) error {
			printDetection(cmd.OutOrStdout(), steam.NewScanner().Detect())
			return nil
		},
	}

	launchCmd = &cobra.Command{
		Use:   "launch [target-dir]",
		Short: "starts the installed OpenStarbound client",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := defaultTargetDir()
			if len(args) == 1 {
				target = args[0]
			}
			return launchClient(cmd.Context(), target)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Settings file (created with defaults if missing)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "sets log level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", logging.DefaultLogPath(), "sets log file path. If console is specified the log will be output to stderr")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Take every default without prompting")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Suppress console output and sounds")

	rootCmd.Flags().StringVar(&baseDirFlag, "base-dir", "", "Starbound directory (existing install, or where SteamCMD installs it)")
	rootCmd.Flags().StringVar(&targetDirFlag, "target-dir", "", "OpenStarbound install directory")
	rootCmd.Flags().BoolVar(&noLaunchFlag, "no-launch", false, "Do not start OpenStarbound when the install finishes")

	rootCmd.AddCommand(detectCmd, launchCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	if err := logging.InitLog(logLevel, logFile); err != nil {
		return fmt.Errorf("failed initializing log %v", err)
	}

	console.Init(quietFlag)
	if console.Attach() {
		if err := console.SetTitle(windowTitle); err != nil {
			log.Debugf("failed to set console title: %v", err)
		}
	}

	s, err := config.Load(configPath, true)
	if err != nil {
		return err
	}
	settings = s
	sounds = audio.NewPlayer(s.SoundsDir, quietFlag)

	log.Infof("osb-installer starting, settings %s", configPath)
	return nil
}

func defaultTargetDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return filepath.Join(cwd, "OpenStarbound")
}

func printDetection(w io.Writer, det steam.Detection) {
	if len(det.Libraries) == 0 {
		fmt.Fprintln(w, "No Steam libraries found.")
	} else {
		fmt.Fprintln(w, "Steam libraries:")
		for _, lib := range det.Libraries {
			fmt.Fprintf(w, "  %s\n", lib)
		}
	}

	if det.Found {
		fmt.Fprintf(w, "Starbound: %s\n", det.ExistingGame)
	} else {
		fmt.Fprintln(w, "Starbound: not installed")
		if dir := steam.InstallDirFor(det.Libraries); dir != "" {
			fmt.Fprintf(w, "Default install location: %s\n", dir)
		}
	}
}

// launchClient starts the derived client in targetDir without waiting for it
func launchClient(ctx context.Context, targetDir string) error {
	exe := config.InstallConfig{TargetDir: targetDir}.ClientExePath()
	if !paths.FileExists(exe) {
		return installerr.Errorf(installerr.NotFound, "launch", "could not find %s", exe)
	}

	h, err := process.Launch(ctx, exe, nil, process.Detached)
	if err != nil {
		return err
	}
	log.Infof("started %s (pid %d)", exe, h.Pid)
	return h.Release()
}
