package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the settings file looked up next to the executable
const FileName = "osb-installer.toml"

// Duration is a time.Duration stored as a string ("30s") in TOML
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// Settings holds the tunables of an install run
type Settings struct {
	SteamCMDURL     string   `toml:"steamcmd_url"`
	ReleaseOwner    string   `toml:"release_owner"`
	ReleaseRepo     string   `toml:"release_repo"`
	ReleaseBaseURL  string   `toml:"release_base_url"`
	InstallerAsset  string   `toml:"installer_asset"`
	InstallerArgs   []string `toml:"installer_args"`
	InstallerOutput string   `toml:"installer_output"`
	AppID           string   `toml:"app_id"`
	WorkshopIDs     []string `toml:"workshop_ids"`
	SkipPatterns    []string `toml:"skip_patterns"`

	// WorkDir holds steamcmd and the extracted installer; empty means the
	// current directory of each run
	WorkDir string `toml:"work_dir"`

	PollInterval    Duration `toml:"poll_interval"`
	OutputTimeout   Duration `toml:"output_timeout"`
	InstallerExit   Duration `toml:"installer_exit_timeout"`
	SettleDelay     Duration `toml:"settle_delay"`
	StabilityWindow Duration `toml:"stability_window"`
	SteamStartDelay Duration `toml:"steam_start_delay"`

	SoundsDir string `toml:"sounds_dir"`
}

// Default returns the settings used when no settings file exists
func Default() Settings {
	return Settings{
		SteamCMDURL:     "https://steamcdn-a.akamaihd.net/client/installer/steamcmd.zip",
		ReleaseOwner:    "OpenStarbound",
		ReleaseRepo:     "OpenStarbound",
		ReleaseBaseURL:  "https://github.com",
		InstallerAsset:  "OpenStarbound-Windows-Installer.zip",
		InstallerArgs:   []string{"/VERYSILENT", "/NOICONS", "/NORESTART"},
		InstallerOutput: defaultInstallerOutput(),
		AppID:           "211820",
		WorkshopIDs:     []string{"3534616750"},
		SkipPatterns:    []string{"is-*.tmp"},
		PollInterval:    Duration{time.Second},
		OutputTimeout:   Duration{30 * time.Second},
		InstallerExit:   Duration{2 * time.Minute},
		SettleDelay:     Duration{2 * time.Second},
		StabilityWindow: Duration{0},
		SteamStartDelay: Duration{2 * time.Second},
	}
}

func defaultInstallerOutput() string {
	pf := os.Getenv("ProgramFiles")
	if pf == "" {
		pf = `C:\Program Files`
	}
	return filepath.Join(pf, "OpenStarbound")
}

// DefaultPath returns the settings file path beside the running executable
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return FileName
	}
	return filepath.Join(filepath.Dir(exe), FileName)
}

// Load reads settings from path on top of the defaults. A missing file is
// created with the defaults when create is true.
func Load(path string, create bool) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if create {
			if err := Save(path, s); err != nil {
				return s, err
			}
		}
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}

	// UTF-8 BOM from notepad edits
	data = []byte(strings.TrimPrefix(string(data), "\uFEFF"))
	if err := toml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Save writes settings as TOML
func Save(path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Validate checks the values a run cannot work without
func (s Settings) Validate() error {
	switch {
	case s.SteamCMDURL == "":
		return fmt.Errorf("steamcmd_url must be set")
	case s.ReleaseOwner == "" || s.ReleaseRepo == "":
		return fmt.Errorf("release_owner and release_repo must be set")
	case s.InstallerOutput == "":
		return fmt.Errorf("installer_output must be set")
	case s.AppID == "":
		return fmt.Errorf("app_id must be set")
	case s.PollInterval.Duration <= 0:
		return fmt.Errorf("poll_interval must be positive")
	case s.OutputTimeout.Duration < s.PollInterval.Duration:
		return fmt.Errorf("output_timeout must be at least poll_interval")
	}
	return nil
}

func (s Settings) workDir() string {
	if s.WorkDir != "" {
		return s.WorkDir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// SteamCMDDir is where the package-manager tool is extracted
func (s Settings) SteamCMDDir() string {
	return filepath.Join(s.workDir(), "steamcmd")
}

// InstallerTempDir is where the derived client installer zip is extracted
func (s Settings) InstallerTempDir() string {
	return filepath.Join(s.workDir(), "osb_installer_temp")
}
