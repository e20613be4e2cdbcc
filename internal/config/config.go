// Package config loads runtime settings for the API server.
// Values come from an optional HCL file, then environment overrides, then defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/topograph/core/internal/logging"
	"github.com/topograph/core/internal/parser"
)

const (
	DefaultListenAddr   = ":8080"
	DefaultAllowOrigin  = "*"
	DefaultMaxBodyBytes = 1 << 20
)

type Config struct {
	ListenAddr        string
	CORSAllowedOrigin string
	LogLevel          string
	LogFormat         string
	MaxBodyBytes      int64
	// MaxNodes bounds how many flat nodes one IR may expand to.
	MaxNodes int
	// Seed fixes the synthesis random source when set.
	Seed *uint64
}

// fileConfig mirrors the HCL file:
//
//	listen_addr         = ":9090"
//	cors_allowed_origin = "https://app.example.com"
//	log_level           = "debug"
//	log_format          = "json"
//	max_body_bytes      = 2097152
//	max_nodes           = 5000
//	seed                = 42
type fileConfig struct {
	ListenAddr        *string `hcl:"listen_addr,optional"`
	CORSAllowedOrigin *string `hcl:"cors_allowed_origin,optional"`
	LogLevel          *string `hcl:"log_level,optional"`
	LogFormat         *string `hcl:"log_format,optional"`
	MaxBodyBytes      *int64  `hcl:"max_body_bytes,optional"`
	MaxNodes          *int    `hcl:"max_nodes,optional"`
	Seed              *uint64 `hcl:"seed,optional"`
}

func Default() *Config {
	return &Config{
		ListenAddr:        DefaultListenAddr,
		CORSAllowedOrigin: DefaultAllowOrigin,
		LogLevel:          "info",
		LogFormat:         logging.FormatConsole,
		MaxBodyBytes:      DefaultMaxBodyBytes,
		MaxNodes:          parser.DefaultMaxNodes,
	}
}

// Load builds a Config. path may be empty, in which case only the
// environment and defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		var file fileConfig
		if err := hclsimple.DecodeFile(path, nil, &file); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg.apply(file)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(f fileConfig) {
	if f.ListenAddr != nil {
		c.ListenAddr = *f.ListenAddr
	}
	if f.CORSAllowedOrigin != nil {
		c.CORSAllowedOrigin = *f.CORSAllowedOrigin
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogFormat != nil {
		c.LogFormat = *f.LogFormat
	}
	if f.MaxBodyBytes != nil {
		c.MaxBodyBytes = *f.MaxBodyBytes
	}
	if f.MaxNodes != nil {
		c.MaxNodes = *f.MaxNodes
	}
	if f.Seed != nil {
		seed := *f.Seed
		c.Seed = &seed
	}
}

// applyEnv reads TOPOGRAPH_* variables. CORS_ALLOWED_ORIGIN is honored too.
// Empty values are ignored.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("TOPOGRAPH_LISTEN_ADDR"); ok {
		c.ListenAddr = v
	}
	if v, ok := get("CORS_ALLOWED_ORIGIN"); ok {
		c.CORSAllowedOrigin = v
	}
	if v, ok := get("TOPOGRAPH_CORS_ALLOWED_ORIGIN"); ok {
		c.CORSAllowedOrigin = v
	}
	if v, ok := get("TOPOGRAPH_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := get("TOPOGRAPH_LOG_FORMAT"); ok {
		c.LogFormat = v
	}
	if v, ok := get("TOPOGRAPH_MAX_BODY_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TOPOGRAPH_MAX_BODY_BYTES %q: %w", v, err)
		}
		c.MaxBodyBytes = n
	}
	if v, ok := get("TOPOGRAPH_MAX_NODES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TOPOGRAPH_MAX_NODES %q: %w", v, err)
		}
		c.MaxNodes = n
	}
	if v, ok := get("TOPOGRAPH_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TOPOGRAPH_SEED %q: %w", v, err)
		}
		c.Seed = &seed
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.MaxNodes <= 0 {
		return fmt.Errorf("max_nodes must be positive, got %d", c.MaxNodes)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
