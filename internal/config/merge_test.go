package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgmi/proddash/internal/config"
)

// writeOverlay is a test helper that writes YAML content to a temp file
// and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestShallowMergeYAML_SingleKeyOverride(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, `
dashboard:
  page_size: 25
  min_latency: 200ms
  locale: en-US
  default_days: 14
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, 25, target.Dashboard.PageSize)
	assert.Equal(t, 200*time.Millisecond, target.Dashboard.MinLatency)
	assert.Equal(t, "en-US", target.Dashboard.Locale)

	// Other sections are untouched.
	assert.Equal(t, config.DefaultBaseURL, target.API.BaseURL)
	assert.True(t, target.Cache.Enabled)
}

func TestShallowMergeYAML_SectionIsReplacedWholesale(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, `
logging:
  level: debug
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "debug", target.Logging.Level)
	assert.Empty(t, target.Logging.Format, "absent keys inside a replaced section are zeroed")
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := config.New()
	overlay := writeOverlay(t, `
charts:
  palette: dark
api:
  base_url: https://plant.example.com/api
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "https://plant.example.com/api", target.API.BaseURL)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	t.Run("nil target", func(t *testing.T) {
		assert.Error(t, config.ShallowMergeYAML(nil, "whatever.yaml"))
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.ShallowMergeYAML(config.New(), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		err := config.ShallowMergeYAML(config.New(), writeOverlay(t, "api: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		assert.NoError(t, config.ShallowMergeYAML(config.New(), writeOverlay(t, "# nothing\n")))
	})
}
