package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgmi/proddash/internal/config"
	"github.com/sgmi/proddash/internal/engine/cache"
)

// openCache opens the response cache described by cfg, with
// PRODDASH_CACHE_* overrides applied.
func openCache(cfg *config.Config) (*cache.FileStore, error) {
	return cache.NewFileStore(cache.ApplyEnv(cache.Options{
		Directory: cfg.Cache.Directory,
		Enabled:   cfg.Cache.Enabled,
		TTL:       time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		MaxSizeMB: cfg.Cache.MaxSizeMB,
		Logger:    logger,
	}))
}

// errCacheDisabled explains how to turn the cache back on.
var errCacheDisabled = errors.New("response cache is disabled (set cache.enabled: true or " +
	cache.EnvCacheEnabled + "=true)")

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Inspect and clear the response cache"}
	cmd.AddCommand(newCacheStatsCmd(), newCacheClearCmd(), newCachePruneCmd())
	return cmd
}

// cacheCommand runs fn against the configured store.
func cacheCommand(use, short string, fn func(*cobra.Command, *cache.FileStore) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCache(config.GetGlobalConfig())
			if err != nil {
				return err
			}
			if !store.Enabled() {
				return errCacheDisabled
			}
			return fn(cmd, store)
		},
	}
}

func newCacheStatsCmd() *cobra.Command {
	return cacheCommand("stats", "Show cache size and entry counts", func(cmd *cobra.Command, store *cache.FileStore) error {
		st, err := store.Stats()
		if err != nil {
			return err
		}
		cmd.Printf("Directory: %s\n", store.Dir())
		cmd.Printf("TTL:       %s\n", cache.FormatDuration(store.TTL()))
		cmd.Printf("Entries:   %d (%d expired)\n", st.Entries, st.Expired)
		cmd.Printf("Size:      %.1f KB\n", float64(st.Bytes)/bytesPerKB)
		return nil
	})
}

func newCacheClearCmd() *cobra.Command {
	return cacheCommand("clear", "Remove every cached response", func(cmd *cobra.Command, store *cache.FileStore) error {
		n, err := store.Clear()
		if err != nil {
			return err
		}
		cmd.Printf("Removed %d cached responses\n", n)
		return nil
	})
}

func newCachePruneCmd() *cobra.Command {
	return cacheCommand("prune", "Remove expired responses and enforce the size limit",
		func(cmd *cobra.Command, store *cache.FileStore) error {
			n, err := store.Prune()
			if err != nil {
				return err
			}
			cmd.Printf("Pruned %d cached responses\n", n)
			return nil
		})
}

const bytesPerKB = 1024
