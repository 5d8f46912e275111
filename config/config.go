package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultPath is read from the working directory when present.
const DefaultPath = "config.yaml"

type Config struct {
	Http struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		MaxBodyBytes int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Artifacts Artifacts `yaml:"artifacts"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
	Log LogConfig `yaml:"log"`
}

// Artifacts locates the fitted scaler and classifier. ONNXLibrary is the
// ONNX Runtime shared library used by onnx-format artifacts.
type Artifacts struct {
	Scaler      Artifact `yaml:"scaler"`
	Classifier  Artifact `yaml:"classifier"`
	ONNXLibrary string   `yaml:"onnx_library"`
}

type Artifact struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   struct {
		Path       string `yaml:"path"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"file"`
}

func Default() *Config {
	var c Config
	c.Http.Port = 8501
	c.Http.ReadTimeout = 15 * time.Second
	c.Http.WriteTimeout = 15 * time.Second
	c.Http.MaxBodyBytes = 64 << 10
	c.Artifacts.Scaler = Artifact{Format: "json", Path: "models/scaler.json"}
	c.Artifacts.Classifier = Artifact{Format: "json", Path: "models/customer_segmentor.json"}
	c.Cache.Size = 256
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.File.MaxSizeMB = 10
	c.Log.File.MaxBackups = 3
	c.Log.File.MaxAgeDays = 28
	return &c
}

// Load decodes the YAML file at path on top of Default. A missing file is
// not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	config := Default()
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Artifacts.Scaler.Path == "" || c.Artifacts.Classifier.Path == "" {
		return errors.New("artifacts.scaler.path and artifacts.classifier.path are required")
	}
	return nil
}
