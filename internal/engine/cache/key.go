package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// KeyParams identifies a cacheable request.
type KeyParams struct {
	// Endpoint is the API path, e.g. "/production/sessions".
	Endpoint string
	// Query holds the request's query parameters. Order does not matter.
	Query map[string]string
	// Subject scopes the entry to a user; empty for anonymous requests.
	Subject string
}

// GenerateKey returns a deterministic hex SHA256 key for p. Endpoint case,
// surrounding whitespace and a trailing slash are ignored, as are empty
// query values.
func GenerateKey(p KeyParams) string {
	var b strings.Builder
	b.WriteString(normalizeEndpoint(p.Endpoint))
	b.WriteByte('\n')

	query := make(map[string]string, len(p.Query))
	names := make([]string, 0, len(p.Query))
	for k, v := range p.Query {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if v == "" {
			continue
		}
		query[k] = v
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(query[k])
		b.WriteByte('&')
	}
	b.WriteByte('\n')
	b.WriteString(strings.TrimSpace(p.Subject))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func normalizeEndpoint(e string) string {
	e = strings.ToLower(strings.TrimSpace(e))
	if len(e) > 1 {
		e = strings.TrimSuffix(e, "/")
	}
	return e
}
