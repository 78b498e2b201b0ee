package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T, ttl time.Duration, maxMB int) (*FileStore, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 8, 12, 8, 0, 0, 0, time.UTC)}
	store, err := NewFileStore(Options{
		Directory: t.TempDir(),
		Enabled:   true,
		TTL:       ttl,
		MaxSizeMB: maxMB,
		Now:       clock.Now,
	})
	require.NoError(t, err)
	return store, clock
}

type totals struct {
	Product string  `json:"product"`
	Kg      float64 `json:"kg"`
}

func TestGenerateKey(t *testing.T) {
	base := KeyParams{
		Endpoint: "/production/sessions",
		Query:    map[string]string{"from": "2025-08-01T00:00:00Z", "to": "2025-08-07T23:59:59Z"},
		Subject:  "ana",
	}
	key := GenerateKey(base)
	assert.Len(t, key, 64)

	same := KeyParams{
		Endpoint: " /Production/Sessions/ ",
		Query:    map[string]string{"to": "2025-08-07T23:59:59Z", " from ": "2025-08-01T00:00:00Z", "product_id": ""},
		Subject:  "ana ",
	}
	assert.Equal(t, key, GenerateKey(same))

	tests := []struct {
		name string
		p    KeyParams
	}{
		{name: "other endpoint", p: KeyParams{Endpoint: "/director/production-totals", Query: base.Query, Subject: "ana"}},
		{name: "other range", p: KeyParams{Endpoint: base.Endpoint, Query: map[string]string{"from": "2025-08-02T00:00:00Z"}, Subject: "ana"}},
		{name: "other user", p: KeyParams{Endpoint: base.Endpoint, Query: base.Query, Subject: "bruno"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, key, GenerateKey(tt.p))
		})
	}
}

func TestFileStore_SetLoad(t *testing.T) {
	store, clock := newTestStore(t, time.Minute, 0)
	key := GenerateKey(KeyParams{Endpoint: "/director/production-totals"})

	in := []totals{{Product: "Broa", Kg: 12.5}}
	require.NoError(t, store.Set(key, "/director/production-totals", in))

	var out []totals
	require.NoError(t, store.Load(key, &out))
	assert.Equal(t, in, out)

	entry, err := store.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "/director/production-totals", entry.Endpoint)
	assert.Equal(t, time.Minute, entry.Remaining(clock.Now()))

	clock.Advance(time.Minute)
	_, err = store.Get(key)
	require.ErrorIs(t, err, ErrExpired)
	_, err = store.Get(key)
	require.ErrorIs(t, err, ErrNotFound, "expired entries are removed on read")
}

func TestFileStore_DeleteClear(t *testing.T) {
	store, _ := newTestStore(t, time.Minute, 0)
	require.NoError(t, store.Set("k1", "/a", 1))
	require.NoError(t, store.Set("k2", "/b", 2))

	require.NoError(t, store.Delete("k1"))
	require.NoError(t, store.Delete("k1"), "delete is idempotent")
	_, err := store.Get("k1")
	require.ErrorIs(t, err, ErrNotFound)

	n, err := store.Clear()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	st, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)
}

func TestFileStore_Prune(t *testing.T) {
	store, clock := newTestStore(t, time.Minute, 0)
	require.NoError(t, store.Set("old", "/a", "x"))
	clock.Advance(30 * time.Second)
	require.NoError(t, store.Set("new", "/b", "y"))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "junk.json"), []byte("{"), 0o600))

	clock.Advance(45 * time.Second)
	st, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, st.Entries)
	assert.Equal(t, 2, st.Expired)

	removed, err := store.Prune()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = store.Get("new")
	require.NoError(t, err)
}

func TestFileStore_PruneEvictsOldestOverBudget(t *testing.T) {
	store, clock := newTestStore(t, time.Hour, 1)
	big := strings.Repeat("x", 600*1024)

	require.NoError(t, store.Set("first", "/a", big))
	clock.Advance(time.Second)
	require.NoError(t, store.Set("second", "/b", big))

	removed, err := store.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get("first")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get("second")
	require.NoError(t, err)
}

func TestFileStore_Disabled(t *testing.T) {
	store, err := NewFileStore(Options{Enabled: false})
	require.NoError(t, err)
	assert.False(t, store.Enabled())

	require.ErrorIs(t, store.Set("k", "/a", 1), ErrDisabled)
	_, err = store.Get("k")
	require.ErrorIs(t, err, ErrDisabled)
	_, err = store.Prune()
	require.ErrorIs(t, err, ErrDisabled)

	var nilStore *FileStore
	assert.False(t, nilStore.Enabled())
}

func TestFileStore_InvalidKey(t *testing.T) {
	store, _ := newTestStore(t, time.Minute, 0)
	require.ErrorIs(t, store.Set("", "/a", 1), ErrInvalidKey)
	_, err := store.Get("")
	require.ErrorIs(t, err, ErrInvalidKey)

	require.NoError(t, store.Set("../escape", "/a", 1))
	_, err = os.Stat(filepath.Join(store.Dir(), "escape.json"))
	require.NoError(t, err, "keys cannot leave the cache directory")
}

func TestNewFileStore_RequiresDirectory(t *testing.T) {
	_, err := NewFileStore(Options{Enabled: true})
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvCacheEnabled, "false")
	t.Setenv(EnvCacheDir, "/tmp/proddash-cache")
	t.Setenv(EnvTTLSeconds, "2m")
	t.Setenv(EnvCacheMaxSize, "-3")

	got := ApplyEnv(Options{Enabled: true, Directory: "/x", TTL: time.Minute, MaxSizeMB: 10})
	assert.False(t, got.Enabled)
	assert.Equal(t, "/tmp/proddash-cache", got.Directory)
	assert.Equal(t, 2*time.Minute, got.TTL)
	assert.Equal(t, 10, got.MaxSizeMB, "negative size is ignored")

	t.Setenv(EnvTTLSeconds, "1")
	assert.Equal(t, time.Minute, ApplyEnv(Options{TTL: time.Minute}).TTL, "out-of-range TTL is ignored")
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "300", want: 300},
		{in: "5m", want: 300},
		{in: "1h30m", want: 5400},
		{in: "5", wantErr: true},
		{in: "48h", wantErr: true},
		{in: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "30s", FormatDuration(30*time.Second))
	assert.Equal(t, "5m", FormatDuration(5*time.Minute))
	assert.Equal(t, "2h", FormatDuration(2*time.Hour))
	assert.Equal(t, "2h30m", FormatDuration(2*time.Hour+30*time.Minute))
	assert.Equal(t, "3d", FormatDuration(72*time.Hour))
	assert.Equal(t, "3d2h", FormatDuration(74*time.Hour))
}
