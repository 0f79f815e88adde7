// Package config loads and validates the daemon's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as "90s" or
// "10m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// FeedsConfig points at the upstream feeds.
type FeedsConfig struct {
	CurrentURL  string `yaml:"current_url"`
	HistoryURL  string `yaml:"history_url"`
	AreaListURL string `yaml:"area_list_url"`
	RulesURL    string `yaml:"rules_url"`

	// Referer is sent with every feed request; the upstream rejects
	// requests without it.
	Referer string `yaml:"referer"`
}

// PollConfig controls the coordinator cycle.
type PollConfig struct {
	Interval     Duration `yaml:"interval"`
	FetchTimeout Duration `yaml:"fetch_timeout"`

	// MaxAge is the active-alert window: a record older than this is no
	// longer active.
	MaxAge Duration `yaml:"max_age"`
}

// HomeConfig describes the monitored home location.
type HomeConfig struct {
	Lat   float64  `yaml:"lat"`
	Lon   float64  `yaml:"lon"`
	Areas []string `yaml:"areas"`

	// AllAreas widens the fan-out filters to the whole snapshot.
	AllAreas bool `yaml:"all_areas"`
}

// BusConfig configures the NATS event bus. An empty URL disables the bus.
type BusConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// PushConfig configures the push-subscription side channel.
type PushConfig struct {
	Enabled      bool   `yaml:"enabled"`
	RegisterURL  string `yaml:"register_url"`
	SubscribeURL string `yaml:"subscribe_url"`
	WebsocketURL string `yaml:"websocket_url"`

	// StatePath is where device credentials are persisted between runs.
	StatePath string `yaml:"state_path"`
}

// HTTPConfig configures the local API server.
type HTTPConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the root configuration document.
type Config struct {
	Feeds FeedsConfig `yaml:"feeds"`
	Poll  PollConfig  `yaml:"poll"`
	Home  HomeConfig  `yaml:"home"`
	Bus   BusConfig   `yaml:"bus"`
	Push  PushConfig  `yaml:"push"`
	HTTP  HTTPConfig  `yaml:"http"`
}

// Load reads and validates a configuration file, filling defaults for
// anything omitted.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Poll.Interval == 0 {
		c.Poll.Interval = Duration(10 * time.Second)
	}
	if c.Poll.FetchTimeout == 0 {
		c.Poll.FetchTimeout = Duration(15 * time.Second)
	}
	if c.Poll.MaxAge == 0 {
		c.Poll.MaxAge = Duration(10 * time.Minute)
	}
	if c.Bus.SubjectPrefix == "" {
		c.Bus.SubjectPrefix = "orefmon"
	}
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8799"
	}
	if c.Push.StatePath == "" {
		c.Push.StatePath = "push-state.json"
	}
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Feeds.CurrentURL == "" {
		return errors.New("feeds.current_url is required")
	}
	if c.Feeds.HistoryURL == "" {
		return errors.New("feeds.history_url is required")
	}
	if c.Poll.Interval.Std() < time.Second {
		return errors.Errorf("poll.interval %s is below the 1s minimum", c.Poll.Interval.Std())
	}
	if !c.Home.AllAreas && len(c.Home.Areas) == 0 {
		return errors.New("home.areas must list at least one area unless home.all_areas is set")
	}
	if c.Push.Enabled {
		if c.Push.RegisterURL == "" || c.Push.SubscribeURL == "" || c.Push.WebsocketURL == "" {
			return errors.New("push.register_url, push.subscribe_url and push.websocket_url are required when push is enabled")
		}
	}
	return nil
}
