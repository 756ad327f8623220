package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// MaxSessions is the number of sessions the store retains; insertion
	// beyond it evicts the oldest. 0 means the default (50).
	MaxSessions int `json:"max_sessions,omitempty"`

	// StatePath points at the host state file the editor plugin maintains
	// (open editors and terminals). Empty means <baseDir>/state.json; the
	// WORKLENS_STATE environment variable overrides both.
	StatePath string `json:"state_path,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export.
	// Paths outside <baseDir>/exports require either being in this list or
	// AllowUnsafePaths=true. Relative paths are ignored.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// AutoCapture configures the watch triggers.
	AutoCapture AutoCaptureConfig `json:"auto_capture,omitempty"`
}

// AutoCaptureConfig controls the automatic capture triggers. Zero values
// are the defaults, so the boolean knobs are phrased as off-switches.
type AutoCaptureConfig struct {
	// Disabled turns all automatic capture off.
	Disabled bool `json:"disabled,omitempty"`

	// DisableBranchSwitch turns off capture-before-branch-switch.
	DisableBranchSwitch bool `json:"disable_branch_switch,omitempty"`

	// OnIdle enables capture after an idle period (off by default).
	OnIdle bool `json:"on_idle,omitempty"`

	// IdleMinutes is the idle threshold. 0 means 30.
	IdleMinutes int `json:"idle_minutes,omitempty"`

	// BranchPollSeconds is the branch comparison interval. 0 means 5.
	BranchPollSeconds int `json:"branch_poll_seconds,omitempty"`

	// MaxPerDay caps automatic captures per calendar day. 0 means 20.
	MaxPerDay int `json:"max_per_day,omitempty"`
}

// Default limits applied when the corresponding config field is zero.
const (
	DefaultMaxSessions       = 50
	DefaultIdleMinutes       = 30
	DefaultBranchPollSeconds = 5
	DefaultMaxAutoPerDay     = 20
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxSessions: DefaultMaxSessions,
	}
}

// SessionCap returns the effective retained-session limit.
func (c *Config) SessionCap() int {
	if c == nil || c.MaxSessions <= 0 {
		return DefaultMaxSessions
	}
	return c.MaxSessions
}

// IdleMinutesOrDefault returns the effective idle threshold.
func (a AutoCaptureConfig) IdleMinutesOrDefault() int {
	if a.IdleMinutes <= 0 {
		return DefaultIdleMinutes
	}
	return a.IdleMinutes
}

// BranchPollSecondsOrDefault returns the effective branch poll interval.
func (a AutoCaptureConfig) BranchPollSecondsOrDefault() int {
	if a.BranchPollSeconds <= 0 {
		return DefaultBranchPollSeconds
	}
	return a.BranchPollSeconds
}

// MaxPerDayOrDefault returns the effective daily auto-capture cap.
func (a AutoCaptureConfig) MaxPerDayOrDefault() int {
	if a.MaxPerDay <= 0 {
		return DefaultMaxAutoPerDay
	}
	return a.MaxPerDay
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.worklens.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.worklens) and repo
// (.worklens) directories. Repo config is found by walking upward from
// startDir to the nearest .worklens/config.json. Repo config takes
// precedence for scalar values; arrays are merged (deduplicated). Either or
// both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .worklens/config.json. Returns the path if found, or empty string.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".worklens", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and
// deduplicated; booleans are ORed.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.MaxSessions = overlay.MaxSessions
	if result.MaxSessions == 0 {
		result.MaxSessions = base.MaxSessions
	}

	result.StatePath = overlay.StatePath
	if result.StatePath == "" {
		result.StatePath = base.StatePath
	}

	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)

	result.AutoCapture = mergeAutoCapture(base.AutoCapture, overlay.AutoCapture)

	return result
}

func mergeAutoCapture(base, overlay AutoCaptureConfig) AutoCaptureConfig {
	result := AutoCaptureConfig{
		Disabled:            base.Disabled || overlay.Disabled,
		DisableBranchSwitch: base.DisableBranchSwitch || overlay.DisableBranchSwitch,
		OnIdle:              base.OnIdle || overlay.OnIdle,
	}

	result.IdleMinutes = overlay.IdleMinutes
	if result.IdleMinutes == 0 {
		result.IdleMinutes = base.IdleMinutes
	}

	result.BranchPollSeconds = overlay.BranchPollSeconds
	if result.BranchPollSeconds == 0 {
		result.BranchPollSeconds = base.BranchPollSeconds
	}

	result.MaxPerDay = overlay.MaxPerDay
	if result.MaxPerDay == 0 {
		result.MaxPerDay = base.MaxPerDay
	}

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
