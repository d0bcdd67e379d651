package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vango-dev/floatkit/internal/errors"
	"github.com/vango-dev/floatkit/pkg/delaygroup"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "floatkit.json"

	// DefaultAddr is the default server listen address.
	DefaultAddr = ":8080"

	// DefaultPlacement is the placement of tooltips that do not name one.
	DefaultPlacement = "bottom"

	// DefaultGroupDelay is the delay of a tooltip group.
	DefaultGroupDelay = "200ms"

	// DefaultNamespace prefixes every metric.
	DefaultNamespace = "floatkit"

	// DefaultLogLevel is the default slog level.
	DefaultLogLevel = "info"
)

// Config represents the complete floatkit.json configuration.
type Config struct {
	// Server contains the demo and layout-sync server configuration.
	Server ServerConfig `json:"server"`

	// Tooltip contains the tooltip defaults.
	Tooltip TooltipConfig `json:"tooltip"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics"`

	// Log contains logging configuration.
	Log LogConfig `json:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains server configuration.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr" validate:"required,hostname_port"`

	// AllowedOrigins restricts WebSocket origins. Empty allows any origin.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" validate:"dive,url"`
}

// TooltipConfig contains tooltip defaults.
type TooltipConfig struct {
	// Placement is the preferred placement, e.g. "top" or "bottom-start".
	Placement string `json:"placement" validate:"placement"`

	// OpenDelay and CloseDelay override the group delay when set.
	OpenDelay  string `json:"openDelay,omitempty" validate:"omitempty,duration"`
	CloseDelay string `json:"closeDelay,omitempty" validate:"omitempty,duration"`

	// GroupDelay is the delay of each tooltip group.
	GroupDelay string `json:"groupDelay" validate:"duration"`

	// GroupTimeout is how long a group stays in its grouped phase after
	// its current member closes.
	GroupTimeout string `json:"groupTimeout,omitempty" validate:"omitempty,duration"`
}

// MetricsConfig contains Prometheus configuration.
type MetricsConfig struct {
	// Namespace prefixes every metric name.
	Namespace string `json:"namespace" validate:"required,metric_name"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" validate:"oneof=debug info warn error"`

	// JSON switches the handler from text to JSON.
	JSON bool `json:"json,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		Tooltip: TooltipConfig{
			Placement:  DefaultPlacement,
			GroupDelay: DefaultGroupDelay,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for floatkit.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from a specific file path, applies defaults
// and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("F021").
				WithDetail("No floatkit.json found in " + filepath.Dir(path)).
				WithSuggestion("Run 'floatkit config init' or create floatkit.json manually")
		}
		return nil, errors.New("F020").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("F020").
			WithDetail("Failed to parse floatkit.json: " + err.Error()).
			WithSuggestion("Check that floatkit.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("F020").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("F020").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from or saved to.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Tooltip.Placement == "" {
		c.Tooltip.Placement = DefaultPlacement
	}
	if c.Tooltip.GroupDelay == "" {
		c.Tooltip.GroupDelay = DefaultGroupDelay
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Delay returns the explicit hover delay. It is zero unless floatkit.json
// sets openDelay or closeDelay.
func (t TooltipConfig) Delay() delaygroup.Delay {
	return delaygroup.Delay{
		Open:  parseDuration(t.OpenDelay),
		Close: parseDuration(t.CloseDelay),
	}
}

// GroupDelayDuration returns GroupDelay as a duration.
func (t TooltipConfig) GroupDelayDuration() time.Duration {
	return parseDuration(t.GroupDelay)
}

// GroupTimeoutDuration returns GroupTimeout as a duration.
func (t TooltipConfig) GroupTimeoutDuration() time.Duration {
	return parseDuration(t.GroupTimeout)
}

// parseDuration returns 0 for empty or invalid values; Validate rejects the
// latter before they get here.
func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// SlogLevel converts Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Exists checks if floatkit.json exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up from startDir until it finds a directory holding
// floatkit.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("F021").
				WithDetail("No floatkit.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the configuration found from the working
// directory upwards.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
