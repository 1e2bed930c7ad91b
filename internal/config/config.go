// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config provides configuration management for the modelprobe server.
// It handles loading and parsing YAML configuration files, applies defaults and
// environment overrides, and derives the discovery and probe settings from them.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/traylinx/modelprobe/internal/constant"
	"github.com/traylinx/modelprobe/internal/discovery"
	"github.com/traylinx/modelprobe/internal/probe"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a key is absent or out of range.
const (
	DefaultPort                   = 8318
	DefaultCacheTTLSeconds        = 3600
	DefaultRequestTimeoutSeconds  = 30
	DefaultMaxConcurrency         = 3
	DefaultRESTTimeoutSeconds     = 8
	DefaultRealtimeTimeoutSeconds = 10
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Host is the network host/interface on which the API server will bind.
	// Default is empty ("") to bind all interfaces.
	Host string `yaml:"host" json:"-"`
	// Port is the network port on which the API server will listen.
	Port int `yaml:"port" json:"-"`

	// Debug enables or disables debug-level logging.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile controls whether application logs are written to rotating files or stdout.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogDir overrides the directory used when LoggingToFile is set.
	LogDir string `yaml:"log-dir" json:"log-dir"`

	Providers  ProvidersConfig  `yaml:"providers" json:"providers"`
	Discovery  DiscoveryConfig  `yaml:"discovery" json:"discovery"`
	Validation ValidationConfig `yaml:"validation" json:"validation"`
}

// ProvidersConfig holds per-provider credentials and listing overrides.
type ProvidersConfig struct {
	OpenAI    ProviderConfig `yaml:"openai" json:"openai"`
	Anthropic ProviderConfig `yaml:"anthropic" json:"anthropic"`
	Gemini    ProviderConfig `yaml:"gemini" json:"gemini"`
	XAI       ProviderConfig `yaml:"xai" json:"xai"`
}

// ProviderConfig configures a single upstream provider.
type ProviderConfig struct {
	// APIKey is the credential used for discovery and probes.
	APIKey string `yaml:"api-key" json:"-"`
	// BaseURL overrides the public API root.
	BaseURL string `yaml:"base-url" json:"base-url,omitempty"`
	// Include replaces the default model-id prefix allow-list.
	Include []string `yaml:"include" json:"include,omitempty"`
	// Exclude replaces the default model-id exclusion patterns (regular expressions).
	Exclude []string `yaml:"exclude" json:"exclude,omitempty"`
}

// DiscoveryConfig controls the catalog orchestrator.
type DiscoveryConfig struct {
	CacheTTLSeconds        int    `yaml:"cache-ttl-seconds" json:"cache-ttl-seconds"`
	CacheDir               string `yaml:"cache-dir" json:"cache-dir"`
	RefreshIntervalSeconds int    `yaml:"refresh-interval-seconds" json:"refresh-interval-seconds"`
	RequestTimeoutSeconds  int    `yaml:"request-timeout-seconds" json:"request-timeout-seconds"`
}

// ValidationConfig controls the validation dispatcher and probe budgets.
type ValidationConfig struct {
	MaxConcurrency         int `yaml:"max-concurrency" json:"max-concurrency"`
	RESTTimeoutSeconds     int `yaml:"rest-timeout-seconds" json:"rest-timeout-seconds"`
	RealtimeTimeoutSeconds int `yaml:"realtime-timeout-seconds" json:"realtime-timeout-seconds"`
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	cfg := &Config{}
	cfg.Sanitize()
	return cfg
}

// LoadConfig reads a YAML configuration file from the given path,
// unmarshals it into a Config struct and applies defaults.
func LoadConfig(configFile string) (*Config, error) {
	return LoadConfigOptional(configFile, false)
}

// LoadConfigOptional reads YAML from configFile.
// If optional is true and the file is missing or empty, it returns a default Config.
func LoadConfigOptional(configFile string, optional bool) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		if optional && (os.IsNotExist(err) || errors.Is(err, syscall.EISDIR)) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML and applies defaults. An empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	cfg.Port = DefaultPort
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.Sanitize()
	return &cfg, nil
}

// Sanitize trims string fields and replaces missing or out-of-range values with defaults.
func (c *Config) Sanitize() {
	c.Host = strings.TrimSpace(c.Host)
	if c.Port <= 0 || c.Port > 65535 {
		c.Port = DefaultPort
	}
	for _, p := range constant.Providers {
		pc := c.Provider(p)
		pc.APIKey = strings.TrimSpace(pc.APIKey)
		pc.BaseURL = strings.TrimRight(strings.TrimSpace(pc.BaseURL), "/")
		if pc.BaseURL == "" {
			pc.BaseURL = constant.DefaultBaseURL(p)
		}
		pc.Include = trimList(pc.Include)
		pc.Exclude = trimList(pc.Exclude)
	}

	d := &c.Discovery
	if d.CacheTTLSeconds <= 0 {
		d.CacheTTLSeconds = DefaultCacheTTLSeconds
	}
	if d.RefreshIntervalSeconds < 0 {
		d.RefreshIntervalSeconds = 0
	}
	if d.RequestTimeoutSeconds <= 0 {
		d.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	d.CacheDir = strings.TrimSpace(d.CacheDir)

	v := &c.Validation
	if v.MaxConcurrency <= 0 {
		v.MaxConcurrency = DefaultMaxConcurrency
	}
	if v.RESTTimeoutSeconds <= 0 {
		v.RESTTimeoutSeconds = DefaultRESTTimeoutSeconds
	}
	if v.RealtimeTimeoutSeconds <= 0 {
		v.RealtimeTimeoutSeconds = DefaultRealtimeTimeoutSeconds
	}
}

func trimList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Provider returns a pointer to the settings block for p, or nil if p is unsupported.
func (c *Config) Provider(p constant.Provider) *ProviderConfig {
	switch p {
	case constant.OpenAI:
		return &c.Providers.OpenAI
	case constant.Anthropic:
		return &c.Providers.Anthropic
	case constant.Gemini:
		return &c.Providers.Gemini
	case constant.XAI:
		return &c.Providers.XAI
	}
	return nil
}

// envKeys lists the environment variables consulted per provider, in priority order.
var envKeys = map[constant.Provider][]string{
	constant.OpenAI:    {"OPENAI_API_KEY"},
	constant.Anthropic: {"ANTHROPIC_API_KEY"},
	constant.Gemini:    {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	constant.XAI:       {"XAI_API_KEY"},
}

// ApplyEnv overrides API keys with non-empty environment variables.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, p := range constant.Providers {
		for _, name := range envKeys[p] {
			if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
				c.Provider(p).APIKey = strings.TrimSpace(v)
				break
			}
		}
	}
}

// APIKeys returns the configured credential per provider. Providers without a key are omitted.
func (c *Config) APIKeys() map[constant.Provider]string {
	keys := make(map[constant.Provider]string, len(constant.Providers))
	for _, p := range constant.Providers {
		if k := c.Provider(p).APIKey; k != "" {
			keys[p] = k
		}
	}
	return keys
}

// SourceOptions returns the listing overrides for every provider.
func (c *Config) SourceOptions() map[constant.Provider]discovery.SourceOptions {
	opts := make(map[constant.Provider]discovery.SourceOptions, len(constant.Providers))
	for _, p := range constant.Providers {
		pc := c.Provider(p)
		opts[p] = discovery.SourceOptions{BaseURL: pc.BaseURL, Include: pc.Include, Exclude: pc.Exclude}
	}
	return opts
}

// BaseURLs returns the API root per provider for the probe clients.
func (c *Config) BaseURLs() map[constant.Provider]string {
	urls := make(map[constant.Provider]string, len(constant.Providers))
	for _, p := range constant.Providers {
		urls[p] = c.Provider(p).BaseURL
	}
	return urls
}

// ProbeTimeouts converts the validation budgets into durations.
func (c *Config) ProbeTimeouts() probe.Timeouts {
	return probe.Timeouts{
		REST:     seconds(c.Validation.RESTTimeoutSeconds),
		Realtime: seconds(c.Validation.RealtimeTimeoutSeconds),
	}
}

// CacheTTL is the catalog snapshot lifetime.
func (c *Config) CacheTTL() time.Duration { return seconds(c.Discovery.CacheTTLSeconds) }

// RefreshInterval is the background re-discovery period; zero disables it.
func (c *Config) RefreshInterval() time.Duration {
	return seconds(c.Discovery.RefreshIntervalSeconds)
}

// RequestTimeout bounds each listing HTTP request.
func (c *Config) RequestTimeout() time.Duration {
	return seconds(c.Discovery.RequestTimeoutSeconds)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
