package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TTL bounds and defaults.
const (
	// DefaultTTLSeconds matches the dashboard's refresh cadence (5 minutes).
	DefaultTTLSeconds = 300

	// MinTTLSeconds is the shortest TTL accepted.
	MinTTLSeconds = 10

	// MaxTTLSeconds is the longest TTL accepted (1 day).
	MaxTTLSeconds = 86400

	// DefaultMaxSizeMB is the default size budget of the cache directory.
	DefaultMaxSizeMB = 50

	minutesPerHour = 60
	hoursPerDay    = 24
)

// Environment overrides.
const (
	EnvTTLSeconds   = "PRODDASH_CACHE_TTL_SECONDS"
	EnvCacheEnabled = "PRODDASH_CACHE_ENABLED"
	EnvCacheDir     = "PRODDASH_CACHE_DIR"
	EnvCacheMaxSize = "PRODDASH_CACHE_MAX_SIZE_MB"
)

// ErrInvalidTTL is returned for a TTL outside [MinTTLSeconds, MaxTTLSeconds].
var ErrInvalidTTL = fmt.Errorf("TTL must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)

// ValidateTTL checks that seconds is within bounds.
func ValidateTTL(seconds int) error {
	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}
	return nil
}

// ApplyEnv overrides opts with any PRODDASH_CACHE_* variables that are set
// and valid. Invalid values are ignored.
func ApplyEnv(opts Options) Options {
	if v, ok := os.LookupEnv(EnvCacheEnabled); ok {
		if enabled, err := strconv.ParseBool(v); err == nil {
			opts.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		opts.Directory = v
	}
	if v := os.Getenv(EnvTTLSeconds); v != "" {
		if ttl, err := ParseTTL(v); err == nil {
			opts.TTL = time.Duration(ttl) * time.Second
		}
	}
	if v := os.Getenv(EnvCacheMaxSize); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size >= 0 {
			opts.MaxSizeMB = size
		}
	}
	return opts
}

// ParseTTL accepts integer seconds ("300") or a duration ("5m", "1h30m").
func ParseTTL(s string) (int, error) {
	seconds, err := strconv.Atoi(s)
	if err != nil {
		d, durErr := time.ParseDuration(s)
		if durErr != nil {
			return 0, fmt.Errorf("invalid TTL format: %w", durErr)
		}
		seconds = int(d.Seconds())
	}
	if err := ValidateTTL(seconds); err != nil {
		return 0, err
	}
	return seconds, nil
}

// FormatDuration renders d compactly: "45s", "5m", "2h30m", "3d2h".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0fm", d.Minutes())
	case d < hoursPerDay*time.Hour:
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}
