// Package config loads the .specobj.yaml configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = ".specobj.yaml"

// Config represents the runner configuration.
type Config struct {
	Name       string        `yaml:"name"`
	Policy     string        `yaml:"policy" validate:"omitempty,oneof=halt continue"`
	Color      bool          `yaml:"color"`
	Timeout    time.Duration `yaml:"timeout" validate:"gte=0"`
	Extensions []string      `yaml:"extensions" validate:"dive,startswith=."`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Name:       "specobj",
		Policy:     "halt",
		Color:      true,
		Timeout:    5 * time.Minute,
		Extensions: []string{".yaml", ".yml"},
	}
}

var validate = validator.New()

// Load reads the configuration at path. A missing file yields Default;
// fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// Write stores cfg at path in YAML.
func Write(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath
	}

	d, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
