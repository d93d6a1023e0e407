// Package config holds the tunables of the take patcher: the sync marker,
// matching windows, paths of the collaborators and audit thresholds.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xaionaro-go/takepatcher/pkg/align"
	"github.com/xaionaro-go/takepatcher/pkg/marker"
	"github.com/xaionaro-go/takepatcher/pkg/match"
	"github.com/xaionaro-go/takepatcher/pkg/riff"
	"github.com/xaionaro-go/takepatcher/pkg/source"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Marker MarkerConfig `yaml:"marker"`
	Match  MatchConfig  `yaml:"match"`
	Chunks ChunksConfig `yaml:"chunks"`
	Paths  PathsConfig  `yaml:"paths"`
	Rsync  RsyncConfig  `yaml:"rsync"`
	Audit  AuditConfig  `yaml:"audit"`
}

type MarkerConfig struct {
	Values    []float64 `yaml:"values"`
	Tolerance float64   `yaml:"tolerance"`

	// Gain multiplies the marker window of the patched-in take.
	Gain float64 `yaml:"gain"`
}

type MatchConfig struct {
	ModTimeWindow  time.Duration `yaml:"mtime_window"`
	DurationWindow time.Duration `yaml:"duration_window"`
}

type ChunksConfig struct {
	PadOddChunks bool `yaml:"pad_odd_chunks"`
}

type PathsConfig struct {
	// PoolDir is scanned recursively for captured takes in batch mode.
	PoolDir string `yaml:"pool_dir"`

	// BufferURL serves the freshly captured buffer in single-file mode.
	BufferURL string `yaml:"buffer_url"`

	// OutputDir is where projects are staged; relative to the working directory.
	OutputDir string `yaml:"output_dir"`

	// PatchedSuffix is appended to the project name for the published copy.
	PatchedSuffix string `yaml:"patched_suffix"`

	// LockFile guards against concurrent runs.
	LockFile string `yaml:"lock_file"`
}

type RsyncConfig struct {
	Binary string   `yaml:"binary"`
	Args   []string `yaml:"args"`
}

type AuditConfig struct {
	CrossCheck       bool          `yaml:"cross_check"`
	CrossCheckWindow time.Duration `yaml:"cross_check_window"`
	WarnMean         float64       `yaml:"warn_mean"`
	WarnMax          float64       `yaml:"warn_max"`
}

func Default() Config {
	return Config{
		Marker: MarkerConfig{
			Values:    append([]float64{}, marker.Default[:]...),
			Tolerance: marker.DefaultTolerance,
			Gain:      align.DefaultMarkerGain,
		},
		Match: MatchConfig{
			ModTimeWindow:  match.DefaultModTimeWindow,
			DurationWindow: match.DefaultDurationWindow,
		},
		Paths: PathsConfig{
			PoolDir:       "~/.pw-ghost-rec/recordings",
			BufferURL:     source.DefaultBufferURL,
			OutputDir:     "_out",
			PatchedSuffix: "_patched",
			LockFile:      filepath.Join(os.TempDir(), "takepatcher.lock"),
		},
		Rsync: RsyncConfig{
			Binary: "rsync",
			Args:   []string{"-a", "--delete"},
		},
		Audit: AuditConfig{
			CrossCheckWindow: 2 * time.Second,
			WarnMean:         0.01,
			WarnMax:          0.1,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// ExpandPaths resolves a leading "~" in the configured paths.
func (c *Config) ExpandPaths() error {
	for _, p := range []*string{&c.Paths.PoolDir, &c.Paths.LockFile} {
		expanded, err := ExpandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to determine the home directory to expand '%s': %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func (c *Config) Validate() error {
	if err := c.Marker.Validate(); err != nil {
		return fmt.Errorf("marker config: %w", err)
	}
	if err := c.Match.Validate(); err != nil {
		return fmt.Errorf("match config: %w", err)
	}
	if err := c.Paths.Validate(); err != nil {
		return fmt.Errorf("paths config: %w", err)
	}
	if c.Rsync.Binary == "" {
		return fmt.Errorf("rsync config: binary cannot be empty")
	}
	if c.Audit.CrossCheckWindow < 0 {
		return fmt.Errorf("audit config: cross_check_window cannot be negative, got %s", c.Audit.CrossCheckWindow)
	}
	return nil
}

func (m *MarkerConfig) Validate() error {
	if len(m.Values) != marker.Length {
		return fmt.Errorf("values must have exactly %d elements, got %d", marker.Length, len(m.Values))
	}
	if m.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", m.Tolerance)
	}
	if m.Gain == 0 {
		return fmt.Errorf("gain cannot be zero")
	}
	return nil
}

func (m *MatchConfig) Validate() error {
	if m.ModTimeWindow <= 0 {
		return fmt.Errorf("mtime_window must be positive, got %s", m.ModTimeWindow)
	}
	if m.DurationWindow <= 0 {
		return fmt.Errorf("duration_window must be positive, got %s", m.DurationWindow)
	}
	return nil
}

func (p *PathsConfig) Validate() error {
	if p.PoolDir == "" {
		return fmt.Errorf("pool_dir cannot be empty")
	}
	if p.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}
	if p.PatchedSuffix == "" {
		return fmt.Errorf("patched_suffix cannot be empty, the source project would be overwritten")
	}
	if p.LockFile == "" {
		return fmt.Errorf("lock_file cannot be empty")
	}
	return nil
}

// MarkerLocator builds the locator of the configured marker.
func (c *Config) MarkerLocator() *marker.Locator {
	var m marker.Marker
	copy(m[:], c.Marker.Values)
	return marker.NewLocator(m, c.Marker.Tolerance)
}

func (c *Config) AlignConfig() align.Config {
	return align.Config{
		MarkerGain:       c.Marker.Gain,
		CrossCheckWindow: c.Audit.CrossCheckWindow,
	}
}

func (c *Config) MatchConfig() match.Config {
	return match.Config{
		ModTimeWindow:  c.Match.ModTimeWindow,
		DurationWindow: c.Match.DurationWindow,
	}
}

func (c *Config) RiffOptions() riff.Options {
	return riff.Options{
		PadOddChunks: c.Chunks.PadOddChunks,
	}
}
