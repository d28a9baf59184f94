// Package config holds the Config type the capture command builds its
// engine, capture loop, and store from: a typed struct loaded
// once from a YAML file at startup, handed down by pointer, and adjustable
// at construction time through functional options.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taida957789/maplesniffer/internal/model"
)

// Config is the top-level configuration for a maplesniffer run.
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Store   StoreConfig   `yaml:"store"`

	logger model.Logger
}

// CaptureConfig describes the live-capture parameters.
type CaptureConfig struct {
	Interface string `yaml:"interface"`
	BPFFilter string `yaml:"bpf_filter"`
	SnapLen   int32  `yaml:"snap_len"`
	OpcodeKey string `yaml:"opcode_key"`
}

// StoreConfig describes the optional Postgres sink.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
}

// Option configures a Config at construction time, applied after the YAML
// file (if any) has been loaded, so options always win over file values.
type Option func(*Config)

// WithLogger overrides the Config's logger. The default is model.NopLogger.
func WithLogger(logger model.Logger) Option {
	return func(c *Config) { c.logger = logger }
}

// WithInterface overrides the capture interface.
func WithInterface(iface string) Option {
	return func(c *Config) { c.Capture.Interface = iface }
}

// WithBPFFilter overrides the capture BPF filter.
func WithBPFFilter(expr string) Option {
	return func(c *Config) { c.Capture.BPFFilter = expr }
}

// WithOpcodeKey overrides the 3DES key used to decrypt the inbound
// opcode-remap bootstrap packet (§6's one externally tunable parameter).
func WithOpcodeKey(key string) Option {
	return func(c *Config) { c.Capture.OpcodeKey = key }
}

// WithStoreDSN enables the Postgres sink and sets its DSN.
func WithStoreDSN(dsn string) Option {
	return func(c *Config) {
		c.Store.Enabled = true
		c.Store.DSN = dsn
	}
}

// defaultSnapLen is large enough to never truncate a MapleStory frame.
const defaultSnapLen = 65535

// New constructs a Config with the built-in defaults, applying opts in
// order.
func New(opts ...Option) *Config {
	c := &Config{
		Capture: CaptureConfig{SnapLen: defaultSnapLen},
		logger:  model.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads a YAML config file at path, then applies opts on top of it.
func Load(path string, opts ...Option) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	c := New()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if c.Capture.SnapLen == 0 {
		c.Capture.SnapLen = defaultSnapLen
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Logger returns the configured logger.
func (c *Config) Logger() model.Logger {
	return c.logger
}
