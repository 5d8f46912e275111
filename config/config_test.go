package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, `
http:
  port: 9000
  read_timeout: 5s
artifacts:
  scaler:
    format: onnx
    path: models/scaler.onnx
  classifier:
    format: onnx
    path: models/customer_segmentor.onnx
  onnx_library: /opt/onnxruntime/lib/libonnxruntime.so
cache:
  size: 0
log:
  level: debug
  format: json
  file:
    path: logs/segmentor.log
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Http.Port)
	assert.Equal(t, 5*time.Second, cfg.Http.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Http.WriteTimeout)
	assert.Equal(t, Artifact{Format: "onnx", Path: "models/scaler.onnx"}, cfg.Artifacts.Scaler)
	assert.Equal(t, "/opt/onnxruntime/lib/libonnxruntime.so", cfg.Artifacts.ONNXLibrary)
	assert.Equal(t, 0, cfg.Cache.Size)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "logs/segmentor.log", cfg.Log.File.Path)
	assert.Equal(t, 3, cfg.Log.File.MaxBackups)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	writeConfig(t, bad, "http: [")
	_, err := Load(bad)
	assert.Error(t, err)

	port := filepath.Join(dir, "port.yaml")
	writeConfig(t, port, "http:\n  port: 70000\n")
	_, err = Load(port)
	assert.Error(t, err)

	artifacts := filepath.Join(dir, "artifacts.yaml")
	writeConfig(t, artifacts, "artifacts:\n  scaler:\n    path: \"\"\n")
	_, err = Load(artifacts)
	assert.Error(t, err)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "log:\n  level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var levels []string
	err := Watch(ctx, path, func(c *Config) {
		mu.Lock()
		levels = append(levels, c.Log.Level)
		mu.Unlock()
	}, func(error) {})
	require.NoError(t, err)

	writeConfig(t, path, "log:\n  level: debug\n")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(levels) > 0 && levels[len(levels)-1] == "debug"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", DefaultPath))
	require.NoError(t, err)

	assert.Equal(t, 8501, cfg.Http.Port)
	assert.Equal(t, 15*time.Second, cfg.Http.ReadTimeout)
	assert.Equal(t, Artifact{Format: "json", Path: "models/customer_segmentor.json"}, cfg.Artifacts.Classifier)
	assert.Equal(t, "logs/segmentor.log", cfg.Log.File.Path)
	assert.True(t, cfg.Log.File.Compress)
}
