// Package config loads the service configuration from YAML and checks it
// against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schema string

// Config is the complete service configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" json:"server"`
	SQLite      SQLiteConfig      `yaml:"sqlite" json:"sqlite"`
	DocStore    DocStoreConfig    `yaml:"docstore" json:"docstore"`
	Triplestore TriplestoreConfig `yaml:"triplestore" json:"triplestore"`
	Paging      PagingConfig      `yaml:"paging" json:"paging"`
	Log         LogConfig         `yaml:"log" json:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// SQLiteConfig locates the experiment database.
type SQLiteConfig struct {
	Path string `yaml:"path" json:"path"`
}

// DocStoreConfig locates the provenance and data store.
type DocStoreConfig struct {
	Dir      string `yaml:"dir" json:"dir"`
	InMemory bool   `yaml:"in_memory" json:"in_memory"`
}

// TriplestoreConfig configures the SPARQL endpoint.
type TriplestoreConfig struct {
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	Timeout  string `yaml:"timeout" json:"timeout"`
}

// TimeoutDuration returns the parsed per-query timeout.
func (t TriplestoreConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(t.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// PagingConfig holds paging defaults and bounds.
type PagingConfig struct {
	DefaultPageSize int `yaml:"default_page_size" json:"default_page_size"`
	ProvenanceCap   int `yaml:"provenance_cap" json:"provenance_cap"`
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server:      ServerConfig{Addr: ":8080"},
		SQLite:      SQLiteConfig{Path: "phis.db"},
		DocStore:    DocStoreConfig{Dir: "data/docstore"},
		Triplestore: TriplestoreConfig{Endpoint: "http://localhost:8890/sparql", Timeout: "30s"},
		Paging:      PagingConfig{DefaultPageSize: 20, ProvenanceCap: 5000},
		Log:         LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults and validates the result. An empty
// path validates and returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg. Keys absent from raw keep their value.
func Parse(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate checks cfg against the schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	s := ctx.CompileString(schema, cue.Filename("schema.cue"))
	if err := s.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := s.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Problems: problems(err)}
	}
	return nil
}

// ValidationError lists every schema violation of a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

func problems(err error) []string {
	var out []string
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := strings.Join(e.Path(), "."); path != "" {
			msg = path + ": " + msg
		}
		out = append(out, msg)
	}
	return out
}
