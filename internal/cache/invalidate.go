package cache

import (
    "encoding/json"
    "errors"
    "io/fs"
    "os"
    "path/filepath"
    "strings"
    "time"
)

// ClearDir removes the directory and all contents. It recreates the directory
// afterwards to leave a valid empty cache location.
func ClearDir(dir string) error {
    if strings.TrimSpace(dir) == "" {
        return errors.New("empty dir")
    }
    if err := os.RemoveAll(dir); err != nil {
        return err
    }
    return os.MkdirAll(dir, 0o755)
}

// PurgeByAge removes cache entries older than maxAge, judged by the SavedAt
// timestamp in <key>.meta.json, together with their <key>.body. Unreadable
// or malformed meta files are skipped. A missing directory purges nothing.
func PurgeByAge(dir string, maxAge time.Duration) (int, error) {
    if maxAge <= 0 {
        return 0, nil
    }
    if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
        return 0, nil
    }
    now := time.Now().UTC()
    removed := 0
    err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            return err
        }
        if d.IsDir() || !strings.HasSuffix(d.Name(), ".meta.json") {
            return nil
        }
        b, err := os.ReadFile(path)
        if err != nil {
            return nil
        }
        var e HTTPEntry
        if err := json.Unmarshal(b, &e); err != nil {
            return nil
        }
        if e.Age(now) <= maxAge {
            return nil
        }
        removed++
        _ = os.Remove(path)
        _ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
        return nil
    })
    return removed, err
}
