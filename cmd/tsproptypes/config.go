package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = ".tsproptypes/config.yaml"

// ProjectConfig holds the contents of .tsproptypes/config.yaml. Command line
// flags override every field.
type ProjectConfig struct {
	Version           string   `yaml:"version"`
	Include           []string `yaml:"include"`
	Exclude           []string `yaml:"exclude"`
	Workers           int      `yaml:"workers"`
	Format            string   `yaml:"format"`
	CheckDeclarations bool     `yaml:"check_declarations"`
	MaxProperties     int      `yaml:"max_properties"`
	MaxDepth          int      `yaml:"max_depth"`
	ExcludeProps      []string `yaml:"exclude_props"`
	ReactModules      []string `yaml:"react_modules"`
	LogLevel          string   `yaml:"log_level"`
	LogFormat         string   `yaml:"log_format"`
	MCPLog            string   `yaml:"mcp_log"`
}

// loadProjectConfig reads the project config at path. A missing file at the
// default location is not an error and yields nil; a missing file the user
// named explicitly is.
func loadProjectConfig(path string, explicit bool) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}
