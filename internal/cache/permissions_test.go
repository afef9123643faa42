package cache

import (
    "context"
    "os"
    "path/filepath"
    "testing"
)

func TestHTTPCache_StrictPerms(t *testing.T) {
    t.Parallel()
    base := t.TempDir()
    dir := filepath.Join(base, "http")
    c := &HTTPCache{Dir: dir, StrictPerms: true}
    url := "https://example.com/post"
    if err := c.Save(context.Background(), url, "text/html", "etag", "", []byte("hello")); err != nil {
        t.Fatalf("save: %v", err)
    }
    info, err := os.Stat(dir)
    if err != nil {
        t.Fatalf("stat dir: %v", err)
    }
    if got := info.Mode() & 0o777; got != 0o700 {
        t.Fatalf("dir mode = %o, want 0700", got)
    }
    key := c.key(url)
    for _, f := range []string{filepath.Join(dir, key+".body"), filepath.Join(dir, key+".meta.json")} {
        finfo, err := os.Stat(f)
        if err != nil {
            t.Fatalf("stat %s: %v", f, err)
        }
        if got := finfo.Mode() & 0o777; got != 0o600 {
            t.Fatalf("%s mode = %o, want 0600", f, got)
        }
    }
}
