package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// envPrefix namespaces every variable read by the application.
const envPrefix = "TOURSPLICE_"

func getenv(key string) string {
    return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func envInt(key string) (int, bool) {
    s := getenv(key)
    if s == "" { return 0, false }
    n, err := strconv.Atoi(s)
    if err != nil || n < 0 { return 0, false }
    return n, true
}

func envDuration(key string) (time.Duration, bool) {
    s := getenv(key)
    if s == "" { return 0, false }
    d, err := time.ParseDuration(s)
    if err != nil { return 0, false }
    return d, true
}

// envBool reports the parsed value and whether the variable held a
// recognized boolean.
func envBool(key string) (bool, bool) {
    switch strings.ToLower(getenv(key)) {
    case "1", "true", "yes", "on":
        return true, true
    case "0", "false", "no", "off":
        return false, true
    }
    return false, false
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string) []string {
    s := getenv(key)
    if s == "" { return nil }
    var out []string
    for _, p := range strings.Split(s, ",") {
        if v := strings.TrimSpace(p); v != "" { out = append(out, v) }
    }
    return out
}

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }
    applyEnv(cfg, false)
}

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when the corresponding env vars are set. This lets env take precedence over
// values coming from a config file while flags remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
    if cfg == nil { return }
    applyEnv(cfg, true)
}

func applyEnv(cfg *Config, force bool) {
    setString := func(dst *string, key string) {
        if v := getenv(key); v != "" && (force || *dst == "") { *dst = v }
    }
    setInt := func(dst *int, key string) {
        if n, ok := envInt(key); ok && (force || *dst == 0) { *dst = n }
    }
    setDuration := func(dst *time.Duration, key string) {
        if d, ok := envDuration(key); ok && (force || *dst == 0) { *dst = d }
    }
    setBool := func(dst *bool, key string) {
        v, ok := envBool(key)
        if !ok { return }
        if force {
            *dst = v
        } else if !*dst && v {
            *dst = true
        }
    }

    setString(&cfg.InputPath, "INPUT")
    setString(&cfg.OutputPath, "OUTPUT")
    setString(&cfg.ListingsPath, "LISTINGS")
    setString(&cfg.Variant, "VARIANT")
    setString(&cfg.City, "CITY")
    setString(&cfg.DestinationsPath, "DESTINATIONS")
    setString(&cfg.MainImageURL, "MAIN_IMAGE")
    setString(&cfg.Permalink, "PERMALINK")
    setString(&cfg.UserAgent, "USER_AGENT")
    setString(&cfg.CacheDir, "CACHE_DIR")

    if stages := envList("STAGES"); len(stages) > 0 && (force || len(cfg.Stages) == 0) {
        cfg.Stages = stages
    }
    setInt(&cfg.HeadingOrdinal, "HEADING_ORDINAL")
    setInt(&cfg.MinMeaningful, "MIN_MEANINGFUL")
    setInt(&cfg.MinSubstantial, "MIN_SUBSTANTIAL")

    setDuration(&cfg.HTTPTimeout, "HTTP_TIMEOUT")
    setDuration(&cfg.CacheMaxAge, "CACHE_MAX_AGE")

    setBool(&cfg.Verbose, "VERBOSE")
    setBool(&cfg.CacheClear, "CACHE_CLEAR")
    setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
}
