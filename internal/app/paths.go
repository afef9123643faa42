package app

import (
    "fmt"
    "io"
    "os"
    "path/filepath"
    "strings"
)

// isStdout reports whether path names standard output.
func isStdout(path string) bool {
    return strings.TrimSpace(path) == "-"
}

// writeOutput writes data to path, or to stdout for "-". Files are written
// to a temporary sibling and renamed into place so a partially written
// fragment is never published.
func writeOutput(path string, data []byte, stdout io.Writer) error {
    if isStdout(path) {
        _, err := stdout.Write(data)
        return err
    }
    dir := filepath.Dir(path)
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("create output dir: %w", err)
    }
    tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
    if err != nil {
        return fmt.Errorf("create temp output: %w", err)
    }
    name := tmp.Name()
    if _, err := tmp.Write(data); err != nil {
        tmp.Close()
        os.Remove(name)
        return fmt.Errorf("write output: %w", err)
    }
    if err := tmp.Close(); err != nil {
        os.Remove(name)
        return fmt.Errorf("close output: %w", err)
    }
    if err := os.Chmod(name, 0o644); err != nil {
        os.Remove(name)
        return fmt.Errorf("chmod output: %w", err)
    }
    if err := os.Rename(name, path); err != nil {
        os.Remove(name)
        return fmt.Errorf("publish output: %w", err)
    }
    return nil
}

// listingsSource substitutes the destination id into a listings path
// template such as "listings/{destination}.json".
func listingsSource(tmpl, destinationID string) string {
    return strings.ReplaceAll(tmpl, "{destination}", destinationID)
}
