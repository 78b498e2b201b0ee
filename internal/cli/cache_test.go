package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgmi/proddash/internal/config"
)

func TestCacheCommands(t *testing.T) {
	backend := newFakeBackend(t)
	home := useTestConfig(t, backend.url())
	cfg := config.GetGlobalConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.Directory = home + "/cache"

	// Populate the cache through a data command.
	_, err := runCmd(t, NewProductsCmd())
	require.NoError(t, err)

	out, err := runCmd(t, newCacheCmd(), "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:   1 (0 expired)")
	assert.Contains(t, out, "TTL:       5m")

	out, err = runCmd(t, newCacheCmd(), "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Pruned 0 cached responses")

	out, err = runCmd(t, newCacheCmd(), "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 cached responses")
}

func TestCacheCommands_Disabled(t *testing.T) {
	useTestConfig(t, "http://localhost:1/api")
	t.Setenv("PRODDASH_CACHE_ENABLED", "false")

	_, err := runCmd(t, newCacheCmd(), "stats")
	require.ErrorIs(t, err, errCacheDisabled)
}
