package installer

import (
	"context"
	"net/http"
	"time"

	"github.com/distantorigin/osb-installer/internal/config"
	"github.com/distantorigin/osb-installer/internal/console"
	"github.com/distantorigin/osb-installer/internal/download"
	"github.com/distantorigin/osb-installer/internal/embedded"
	"github.com/distantorigin/osb-installer/internal/github"
	"github.com/distantorigin/osb-installer/internal/pipeline"
	"github.com/distantorigin/osb-installer/internal/process"
	"github.com/distantorigin/osb-installer/internal/steam"
)

const (
	// SteamImage is the Steam client process name
	SteamImage = "steam.exe"
	// SteamWindowTitle is matched against top-level window titles when minimizing
	SteamWindowTitle = "Steam"
	// SteamCMDExe marks a usable SteamCMD extraction
	SteamCMDExe = "steamcmd.exe"
)

// Installer builds the install steps. Every external effect goes through a
// field so the steps can run against fakes.
type Installer struct {
	Settings config.Settings
	Fetcher  *download.Fetcher
	Releases *github.Client
	Poller   *process.Poller

	// Bundled returns an installer compiled into the binary; nil or !ok downloads it
	Bundled         func() (embedded.Bundle, bool)
	DownloadToTemp  func(url, prefix string, cb download.ProgressCallback) (string, error)
	IsRunning       func(image string) bool
	Launch          func(ctx context.Context, exe string, args []string, mode process.Mode) (*process.Handle, error)
	WaitForExit     func(ctx context.Context, image string, p *process.Poller) error
	MinimizeWindows func(title string) int
	BringToFront    func()
	SteamExe        func() string
}

// New wires an installer to the real network, processes and windows
func New(s config.Settings) *Installer {
	return &Installer{
		Settings: s,
		Fetcher:  download.NewFetcher(nil),
		Releases: github.NewClient(s.ReleaseOwner, s.ReleaseRepo, s.ReleaseBaseURL, &http.Client{Timeout: 30 * time.Second}),
		Poller:   process.NewPoller(s.PollInterval.Duration, s.OutputTimeout.Duration),

		Bundled:         embedded.Installer,
		DownloadToTemp:  download.ToTempWithProgress,
		IsRunning:       process.IsRunning,
		Launch:          process.Launch,
		WaitForExit:     process.WaitForExit,
		MinimizeWindows: console.MinimizeByTitle,
		BringToFront:    console.BringToFront,
		SteamExe:        steam.SteamExe,
	}
}

// run carries what one step hands to a later one
type run struct {
	cfg config.InstallConfig

	tag            string
	installerImage string
}

// Steps returns the install steps for cfg in execution order
func (in *Installer) Steps(cfg config.InstallConfig) []pipeline.Step {
	r := &run{cfg: cfg}

	return []pipeline.Step{
		{Name: "Ensure Steam is running", Action: in.ensureSteam},
		{Name: "Minimize Steam window", Action: in.minimizeSteam},
		{Name: "Download SteamCMD", Action: in.downloadSteamCMD},
		{Name: "Install Starbound", Action: func(ctx context.Context) error { return in.installStarbound(ctx, r) }},
		{Name: "Download and run OpenStarbound installer", Action: func(ctx context.Context) error { return in.runInstaller(ctx, r) }},
		{Name: "Merge OpenStarbound files", Action: func(ctx context.Context) error { return in.mergeOutput(ctx, r) }},
		{Name: "Copy Starbound assets", Action: func(ctx context.Context) error { return in.copyAssets(ctx, r) }},
		{Name: "Download workshop mods", Action: in.downloadMods},
		{Name: "Final OpenStarbound sweep", Action: func(ctx context.Context) error { return in.finalSweep(ctx, r) }},
	}
}
