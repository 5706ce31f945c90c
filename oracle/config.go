package oracle

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	tt "github.com/gnolang/toracle/internal/types"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = ".toracle.yaml"

// LoadConfig reads the configuration at path. Keys missing from the file
// keep their default values. An empty path yields the defaults.
func LoadConfig(path string) (tt.Config, error) {
	if path == "" {
		return tt.DefaultConfig(), nil
	}
	return parseConfigurationFile(path)
}

// LoadConfigOrDefault is LoadConfig, except that a missing file yields the
// defaults.
func LoadConfigOrDefault(path string) (tt.Config, error) {
	config, err := LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return tt.DefaultConfig(), nil
	}
	return config, err
}

func parseConfigurationFile(configurationPath string) (tt.Config, error) {
	config := tt.DefaultConfig()

	f, err := os.Open(configurationPath)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error parsing %s: %w", configurationPath, err)
	}

	return config, config.Validate()
}

// WriteDefaultConfig writes the default configuration to path.
func WriteDefaultConfig(path string) error {
	if path == "" {
		path = DefaultConfigFile
	}

	d, err := yaml.Marshal(tt.DefaultConfig())
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
