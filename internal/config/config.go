// Package config loads filesystem configuration from embedded defaults and
// an optional user-supplied YAML file.
package config

import (
	_ "embed"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed config.default.yaml
var defaultConfig []byte

// MountConfig holds the FUSE mount options.
type MountConfig struct {
	FSName        string `key:"fsName"`
	Subtype       string `key:"subtype"`
	AllowOther    bool   `key:"allowOther"`
	AllowNonEmpty bool   `key:"allowNonEmpty"`
}

// Config holds all settings for a mount session.
type Config struct {
	// Library is the root directory of the book storage collection.
	Library string `key:"library"`

	// MountPoint is where the virtual tree is exposed.
	MountPoint string `key:"mountPoint"`

	// LogLevel is one of ERROR, WARN, INFO, DEBUG, TRACE.
	LogLevel string `key:"logLevel"`

	Mount MountConfig `key:"mount"`
}

// Load returns the configuration assembled from the embedded defaults,
// overlaid with the YAML file at path if path is non-empty.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultConfig), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("failed to load default config: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "key", FlatPaths: false}); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
