package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
    // Article body: a file path or http(s) URL.
    InputPath string
    // Final fragment destination; "-" writes to stdout.
    OutputPath string

    // Listings document: a file path or URL. "{destination}" is replaced by
    // the resolved destination id.
    ListingsPath string

    // Destination lookup
    City             string
    DestinationsPath string

    // Variant selection and per-run overrides. Zero values keep the variant's own.
    Variant        string
    Stages         []string
    HeadingOrdinal int
    MinMeaningful  int
    MinSubstantial int
    // VariantOverrides come from the config file, keyed by variant name.
    VariantOverrides map[string]VariantOverride

    // Self-reference removal
    MainImageURL string
    Permalink    string

    // HTTP inputs
    UserAgent   string
    HTTPTimeout time.Duration

    // Cache
    CacheDir         string
    CacheMaxAge      time.Duration
    CacheClear       bool
    CacheStrictPerms bool

    Verbose bool
}

// VariantOverride adjusts a built-in variant from the config file.
type VariantOverride struct {
    Stages         []string `yaml:"stages" json:"stages" toml:"stages"`
    HeadingOrdinal int      `yaml:"headingOrdinal" json:"headingOrdinal" toml:"headingOrdinal"`
    MinMeaningful  int      `yaml:"minMeaningfulChars" json:"minMeaningfulChars" toml:"minMeaningfulChars"`
    MinSubstantial int      `yaml:"minSubstantialChars" json:"minSubstantialChars" toml:"minSubstantialChars"`
}
