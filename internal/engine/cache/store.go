package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	entryExt   = ".json"
	bytesPerMB = 1024 * 1024
	dirPerm    = 0o750
	filePerm   = 0o600
	tempSuffix = ".tmp"
)

// Common cache errors.
var (
	ErrNotFound   = errors.New("cache entry not found")
	ErrExpired    = errors.New("cache entry expired")
	ErrInvalidKey = errors.New("cache key cannot be empty")
	ErrDisabled   = errors.New("cache is disabled")
)

// Options configures a FileStore.
type Options struct {
	Directory string
	Enabled   bool
	TTL       time.Duration
	// MaxSizeMB bounds the directory size enforced by Prune; 0 is unlimited.
	MaxSizeMB int
	Logger    zerolog.Logger
	// Now overrides time.Now in tests.
	Now func() time.Time
}

// Stats summarizes the cache directory.
type Stats struct {
	Entries int   `json:"entries" yaml:"entries"`
	Expired int   `json:"expired" yaml:"expired"`
	Bytes   int64 `json:"bytes"   yaml:"bytes"`
}

// FileStore stores entries as JSON files. It is safe for concurrent use.
// A disabled store returns ErrDisabled from every operation.
type FileStore struct {
	dir     string
	enabled bool
	ttl     time.Duration
	maxSize int64
	logger  zerolog.Logger
	now     func() time.Time

	mu sync.RWMutex
}

// NewFileStore creates the cache directory when enabled.
func NewFileStore(opts Options) (*FileStore, error) {
	if !opts.Enabled {
		return &FileStore{logger: opts.Logger, now: time.Now}, nil
	}
	if opts.Directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTLSeconds * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if err := os.MkdirAll(opts.Directory, dirPerm); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &FileStore{
		dir:     opts.Directory,
		enabled: true,
		ttl:     opts.TTL,
		maxSize: int64(opts.MaxSizeMB) * bytesPerMB,
		logger:  opts.Logger.With().Str("component", "cache").Logger(),
		now:     opts.Now,
	}, nil
}

// Enabled reports whether the store caches anything.
func (s *FileStore) Enabled() bool { return s != nil && s.enabled }

// Dir returns the cache directory.
func (s *FileStore) Dir() string { return s.dir }

// TTL returns the entry lifetime.
func (s *FileStore) TTL() time.Duration { return s.ttl }

// Get returns the entry for key. Expired entries are removed and reported
// as ErrExpired.
func (s *FileStore) Get(key string) (*Entry, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if key == "" {
		return nil, ErrInvalidKey
	}

	s.mu.RLock()
	entry, err := s.read(s.path(key))
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if entry.Expired(s.now()) {
		s.mu.Lock()
		_ = os.Remove(s.path(key))
		s.mu.Unlock()
		return nil, ErrExpired
	}
	return entry, nil
}

// Load decodes the entry for key into v.
func (s *FileStore) Load(key string, v any) error {
	entry, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := entry.Decode(v); err != nil {
		return fmt.Errorf("decoding cache entry: %w", err)
	}
	s.logger.Debug().Str("endpoint", entry.Endpoint).Dur("age", entry.Age(s.now())).Msg("cache hit")
	return nil
}

// Set stores v as JSON under key. The write goes through a temp file and
// a rename so readers never see a partial entry.
func (s *FileStore) Set(key, endpoint string, v any) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache value: %w", err)
	}
	now := s.now()
	entry := Entry{
		Key:       key,
		Endpoint:  endpoint,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	raw, err := json.MarshalIndent(&entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + tempSuffix
	if err := os.WriteFile(tmp, raw, filePerm); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

// Delete removes key. Missing entries are not an error.
func (s *FileStore) Delete(key string) error {
	if !s.Enabled() {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cache file: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (s *FileStore) Clear() (int, error) {
	if !s.Enabled() {
		return 0, ErrDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.list()
	if err != nil {
		return 0, err
	}
	for _, f := range files {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return 0, fmt.Errorf("removing %s: %w", filepath.Base(f.path), err)
		}
	}
	return len(files), nil
}

// Prune removes expired or unreadable entries, then evicts the oldest
// entries until the directory fits MaxSizeMB. It returns how many entries
// were removed.
func (s *FileStore) Prune() (int, error) {
	if !s.Enabled() {
		return 0, ErrDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.list()
	if err != nil {
		return 0, err
	}

	now := s.now()
	removed := 0
	live := files[:0]
	var total int64
	for _, f := range files {
		entry, readErr := s.read(f.path)
		if readErr != nil || entry.Expired(now) {
			if os.Remove(f.path) == nil {
				removed++
			}
			continue
		}
		f.created = entry.CreatedAt
		live = append(live, f)
		total += f.size
	}

	if s.maxSize > 0 && total > s.maxSize {
		sort.Slice(live, func(i, j int) bool { return live[i].created.Before(live[j].created) })
		for _, f := range live {
			if total <= s.maxSize {
				break
			}
			if os.Remove(f.path) == nil {
				removed++
				total -= f.size
			}
		}
	}

	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("pruned cache")
	}
	return removed, nil
}

// Stats counts entries and bytes on disk.
func (s *FileStore) Stats() (Stats, error) {
	if !s.Enabled() {
		return Stats{}, ErrDisabled
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.list()
	if err != nil {
		return Stats{}, err
	}
	now := s.now()
	var st Stats
	for _, f := range files {
		st.Entries++
		st.Bytes += f.size
		if entry, readErr := s.read(f.path); readErr != nil || entry.Expired(now) {
			st.Expired++
		}
	}
	return st, nil
}

type cacheFile struct {
	path    string
	size    int64
	created time.Time
}

func (s *FileStore) list() ([]cacheFile, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading cache directory: %w", err)
	}
	files := make([]cacheFile, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != entryExt {
			continue
		}
		info, infoErr := de.Info()
		if infoErr != nil {
			continue
		}
		files = append(files, cacheFile{path: filepath.Join(s.dir, de.Name()), size: info.Size()})
	}
	return files, nil
}

func (s *FileStore) read(path string) (*Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading cache file: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decoding cache file: %w", err)
	}
	return &entry, nil
}

// path maps a key to its file. Keys from GenerateKey are hex; anything
// else is reduced to a safe base name.
func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(filepath.Clean("/"+key))+entryExt)
}
