package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrConfigExists is returned by WriteDefault when the file is already present.
var ErrConfigExists = errors.New("config file already exists")

// defaultConfigYAML is written by `proddash config init`.
const defaultConfigYAML = `# proddash configuration
api:
  base_url: http://localhost:3000/api
  timeout: 15s

dashboard:
  page_size: 10
  # Minimum time the loading state stays visible.
  min_latency: 1500ms
  locale: pt-BR
  default_days: 7

cache:
  enabled: true
  ttl_seconds: 300
  max_size_mb: 50
  # directory: ~/.proddash/cache

logging:
  level: info
  format: console
  # file: ~/.proddash/logs/proddash.log

auth:
  refresh_interval: 5m
  refresh_buffer: 10m
`

// WriteDefault writes the commented default configuration to path.
// Unless force is set an existing file is left alone.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o600)
}
