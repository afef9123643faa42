// Package cache keeps fetched article and listings documents on disk so
// repeated runs can revalidate instead of downloading again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// HTTPEntry captures enough metadata to support conditional revalidation and
// to serve a document without hitting the network while it is fresh.
type HTTPEntry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	SavedAt      time.Time `json:"saved_at"`
}

// Age returns how long ago the entry was saved.
func (e HTTPEntry) Age(now time.Time) time.Duration { return now.Sub(e.SavedAt) }

// HTTPCache stores responses on disk as <key>.meta.json and <key>.body where
// key is sha256(url). Expired entries are removed by PurgeByAge.
type HTTPCache struct {
	Dir string
	// StrictPerms restricts the directory to 0700 and files to 0600.
	StrictPerms bool
}

var ErrNotConfigured = errors.New("cache dir not configured")

func (c *HTTPCache) dirMode() os.FileMode {
	if c.StrictPerms {
		return 0o700
	}
	return 0o755
}

func (c *HTTPCache) fileMode() os.FileMode {
	if c.StrictPerms {
		return 0o600
	}
	return 0o644
}

func (c *HTTPCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return ErrNotConfigured
	}
	if err := os.MkdirAll(c.Dir, c.dirMode()); err != nil {
		return err
	}
	if c.StrictPerms {
		// MkdirAll leaves an existing directory's mode alone
		return os.Chmod(c.Dir, 0o700)
	}
	return nil
}

func (c *HTTPCache) key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *HTTPCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *HTTPCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

// LoadMeta returns entry metadata if present.
func (c *HTTPCache) LoadMeta(_ context.Context, url string) (*HTTPEntry, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.metaPath(c.key(url)))
	if err != nil {
		return nil, err
	}
	var e HTTPEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return &e, nil
}

// LoadBody returns the cached body if present.
func (c *HTTPCache) LoadBody(_ context.Context, url string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	return os.ReadFile(c.bodyPath(c.key(url)))
}

// Fresh returns the cached entry and body when the entry is younger than
// maxAge. A non-positive maxAge never reports fresh entries.
func (c *HTTPCache) Fresh(ctx context.Context, url string, maxAge time.Duration) (*HTTPEntry, []byte, bool) {
	if maxAge <= 0 {
		return nil, nil, false
	}
	meta, err := c.LoadMeta(ctx, url)
	if err != nil || meta.Age(time.Now().UTC()) > maxAge {
		return nil, nil, false
	}
	body, err := c.LoadBody(ctx, url)
	if err != nil {
		return nil, nil, false
	}
	return meta, body, true
}

// Save stores a new cache entry. The body is written first and the meta file
// is renamed into place so a reader never sees meta without a body.
func (c *HTTPCache) Save(_ context.Context, url string, contentType string, etag string, lastModified string, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	key := c.key(url)
	if err := writeFile(c.bodyPath(key), body, c.fileMode()); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	meta, err := json.Marshal(HTTPEntry{
		URL:          url,
		ContentType:  contentType,
		ETag:         etag,
		LastModified: lastModified,
		SavedAt:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	tmp := c.metaPath(key) + ".tmp"
	if err := writeFile(tmp, meta, c.fileMode()); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return os.Rename(tmp, c.metaPath(key))
}

// writeFile writes data and forces mode even when the file already existed.
func writeFile(path string, data []byte, mode os.FileMode) error {
	if err := os.WriteFile(path, data, mode); err != nil {
		return err
	}
	return os.Chmod(path, mode)
}
