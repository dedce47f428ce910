package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

const (
	appName = "voicemsg"

	// EnvPrefix is prepended to every environment override, e.g. VOICEMSG_FORMAT.
	EnvPrefix = "VOICEMSG_"

	DefaultFormat          = "wav"
	DefaultSampleRate      = 48000
	DefaultChannels        = 1
	DefaultFramesPerBuffer = 1024
	DefaultReadinessWindow = 10 * time.Second
	DefaultLogLevel        = "info"
)

type Config struct {
	OutputDir       string        `env:"OUTPUT_DIR"`
	StateDir        string        `env:"STATE_DIR"`
	Format          string        `env:"FORMAT"` // wav or ogg
	SampleRate      int           `env:"SAMPLE_RATE"`
	Channels        int           `env:"CHANNELS"`
	FramesPerBuffer int           `env:"FRAMES_PER_BUFFER"`
	Notifications   bool          `env:"NOTIFICATIONS"`
	ReadinessWindow time.Duration `env:"READINESS_WINDOW"`
	LogLevel        string        `env:"LOG_LEVEL"`

	Mattermost Mattermost `envPrefix:"MATTERMOST_"`
}

// Mattermost selects the channel recordings are posted to.
type Mattermost struct {
	URL     string `env:"URL"`
	Token   string `env:"TOKEN"`
	Team    string `env:"TEAM"`
	Channel string `env:"CHANNEL"`
}

// Enabled reports whether enough is configured to reach a channel.
func (m Mattermost) Enabled() bool {
	return m.URL != "" && m.Token != "" && m.Team != "" && m.Channel != ""
}

type fileConfig struct {
	OutputDir       string `toml:"output_dir"`
	StateDir        string `toml:"state_dir"`
	Format          string `toml:"format"`
	SampleRate      int    `toml:"sample_rate"`
	Channels        int    `toml:"channels"`
	FramesPerBuffer int    `toml:"frames_per_buffer"`
	Notifications   *bool  `toml:"notifications"`
	ReadinessWindow string `toml:"readiness_window"`
	LogLevel        string `toml:"log_level"`

	Mattermost struct {
		URL     string `toml:"url"`
		Token   string `toml:"token"`
		Team    string `toml:"team"`
		Channel string `toml:"channel"`
	} `toml:"mattermost"`
}

func Load() (*Config, error) {
	return load(configFilePath())
}

func load(configPath string) (*Config, error) {
	cfg := &Config{
		OutputDir:       defaultOutputDir(),
		StateDir:        defaultStateDir(),
		Format:          DefaultFormat,
		SampleRate:      DefaultSampleRate,
		Channels:        DefaultChannels,
		FramesPerBuffer: DefaultFramesPerBuffer,
		Notifications:   true,
		ReadinessWindow: DefaultReadinessWindow,
		LogLevel:        DefaultLogLevel,
	}

	if configPath != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(configPath, &fc); err != nil {
			return nil, fmt.Errorf("reading %s: %w", configPath, err)
		}
		if err := applyFile(cfg, &fc); err != nil {
			return nil, fmt.Errorf("reading %s: %w", configPath, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.OutputDir = expandTilde(cfg.OutputDir)
	cfg.StateDir = expandTilde(cfg.StateDir)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyFile(cfg *Config, fc *fileConfig) error {
	if fc.OutputDir != "" {
		cfg.OutputDir = fc.OutputDir
	}
	if fc.StateDir != "" {
		cfg.StateDir = fc.StateDir
	}
	if fc.Format != "" {
		cfg.Format = fc.Format
	}
	if fc.SampleRate != 0 {
		cfg.SampleRate = fc.SampleRate
	}
	if fc.Channels != 0 {
		cfg.Channels = fc.Channels
	}
	if fc.FramesPerBuffer != 0 {
		cfg.FramesPerBuffer = fc.FramesPerBuffer
	}
	if fc.Notifications != nil {
		cfg.Notifications = *fc.Notifications
	}
	if fc.ReadinessWindow != "" {
		d, err := time.ParseDuration(fc.ReadinessWindow)
		if err != nil {
			return fmt.Errorf("readiness_window: %w", err)
		}
		cfg.ReadinessWindow = d
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	cfg.Mattermost = Mattermost{
		URL:     fc.Mattermost.URL,
		Token:   fc.Mattermost.Token,
		Team:    fc.Mattermost.Team,
		Channel: fc.Mattermost.Channel,
	}
	return nil
}

// applyEnvOverrides only touches fields whose variable is set.
func applyEnvOverrides(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.Format {
	case "wav", "ogg":
	default:
		errs = append(errs, fmt.Errorf("format must be wav or ogg, got %q", c.Format))
	}
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate))
	}
	if c.Channels != 1 && c.Channels != 2 {
		errs = append(errs, fmt.Errorf("channels must be 1 or 2, got %d", c.Channels))
	}
	if c.FramesPerBuffer <= 0 {
		errs = append(errs, fmt.Errorf("frames_per_buffer must be positive, got %d", c.FramesPerBuffer))
	}
	if c.ReadinessWindow <= 0 {
		errs = append(errs, fmt.Errorf("readiness_window must be positive, got %s", c.ReadinessWindow))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir must not be empty"))
	}
	return errors.Join(errs...)
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, appName)
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", appName)
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// defaultOutputDir is where a browser would put downloads.
func defaultOutputDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Downloads")
	}
	return "."
}

func defaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
