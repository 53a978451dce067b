// Package config provides YAML configuration for the saliency command.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/getcharzp/go-saliency/condition"
	"github.com/getcharzp/go-saliency/sum"
	"gopkg.in/yaml.v3"
)

// Config represents the command configuration loaded from YAML
type Config struct {
	Model struct {
		// Path to the exported ONNX saliency model
		Path string `yaml:"path"`

		// OnnxRuntimeLibPath is the onnxruntime shared library
		OnnxRuntimeLibPath string `yaml:"onnxRuntimeLibPath"`

		ImageInputName     string `yaml:"imageInputName"`
		ConditionInputName string `yaml:"conditionInputName"`
		OutputName         string `yaml:"outputName"`

		UseCuda    bool `yaml:"useCuda"`
		NumThreads int  `yaml:"numThreads"`
	} `yaml:"model"`

	Output struct {
		// Dir receives {stem}_saliencymap.png and {stem}_overlay.png
		Dir string `yaml:"dir"`

		// UniqueNames prefixes outputs with a random id
		UniqueNames bool `yaml:"uniqueNames"`

		// FontPath enables the mode caption on the overlay when set
		FontPath string  `yaml:"fontPath"`
		FontSize float64 `yaml:"fontSize"`
	} `yaml:"output"`

	// Condition is the default mode, index or name
	Condition string `yaml:"condition"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	engine := sum.DefaultConfig()
	cfg.Model.Path = engine.ModelPath
	cfg.Model.OnnxRuntimeLibPath = engine.OnnxRuntimeLibPath
	cfg.Model.ImageInputName = engine.ImageInputName
	cfg.Model.ConditionInputName = engine.ConditionInputName
	cfg.Model.OutputName = engine.OutputName

	cfg.Output.Dir = "."
	cfg.Output.FontSize = 16

	cfg.Condition = fmt.Sprint(int(condition.Default))
	cfg.Log.Level = "info"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if _, err := condition.Parse(cfg.Condition); err != nil {
		return nil, fmt.Errorf("invalid condition in config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// EngineConfig converts the model section into the engine configuration
func (c *Config) EngineConfig() sum.Config {
	return sum.Config{
		ModelPath:          c.Model.Path,
		OnnxRuntimeLibPath: c.Model.OnnxRuntimeLibPath,
		ImageInputName:     c.Model.ImageInputName,
		ConditionInputName: c.Model.ConditionInputName,
		OutputName:         c.Model.OutputName,
		UseCuda:            c.Model.UseCuda,
		NumThreads:         c.Model.NumThreads,
	}
}
