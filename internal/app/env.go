package app

import (
    "bufio"
    "errors"
    "fmt"
    "os"
    "strings"
)

// LoadEnvFiles loads one or more dotenv files of KEY=VALUE pairs into the
// process environment. Later files override earlier ones, but non-empty
// variables already exported by the shell are never replaced. Lines starting with '#'
// and blank lines are ignored, an optional "export " prefix is accepted and
// values are not expanded. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
    shell := make(map[string]bool)
    for _, kv := range os.Environ() {
        if k, v, ok := strings.Cut(kv, "="); ok && v != "" {
            shell[k] = true
        }
    }
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        if err := loadEnvFile(p, shell); err != nil {
            if errors.Is(err, os.ErrNotExist) {
                continue
            }
            return err
        }
    }
    return nil
}

func loadEnvFile(path string, shell map[string]bool) error {
    f, err := os.Open(path)
    if err != nil {
        return err
    }
    defer f.Close()

    scanner := bufio.NewScanner(f)
    line := 0
    for scanner.Scan() {
        line++
        key, val, ok := parseEnvLine(scanner.Text())
        if !ok || shell[key] {
            continue
        }
        if err := os.Setenv(key, val); err != nil {
            return fmt.Errorf("%s:%d: %w", path, line, err)
        }
    }
    return scanner.Err()
}

// parseEnvLine splits one dotenv line at the first '='. Malformed lines are
// reported as not ok and ignored by the caller.
func parseEnvLine(raw string) (key, val string, ok bool) {
    s := strings.TrimSpace(raw)
    if s == "" || strings.HasPrefix(s, "#") {
        return "", "", false
    }
    s = strings.TrimPrefix(s, "export ")
    key, val, ok = strings.Cut(s, "=")
    key = strings.TrimSpace(key)
    if !ok || key == "" {
        return "", "", false
    }
    val = strings.TrimSpace(val)
    if len(val) >= 2 {
        if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
            val = val[1 : len(val)-1]
        }
    }
    return key, val, true
}
