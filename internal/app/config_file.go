package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    toml "github.com/pelletier/go-toml/v2"
    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/toursplice/internal/variant"
)

// Defaults assigned by flag parsing; file config may replace them when the
// flag was left alone.
const (
    outputDefault      = "-"
    variantDefault     = "tours"
    cacheDirDefault    = ".toursplice-cache"
    httpTimeoutDefault = 30 * time.Second
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
    Input    string `yaml:"input" json:"input" toml:"input"`
    Output   string `yaml:"output" json:"output" toml:"output"`
    Listings string `yaml:"listings" json:"listings" toml:"listings"`
    Variant  string `yaml:"variant" json:"variant" toml:"variant"`
    Verbose  bool   `yaml:"verbose" json:"verbose" toml:"verbose"`

    Article struct {
        MainImage string `yaml:"mainImage" json:"mainImage" toml:"mainImage"`
        Permalink string `yaml:"permalink" json:"permalink" toml:"permalink"`
    } `yaml:"article" json:"article" toml:"article"`

    Destination struct {
        City string `yaml:"city" json:"city" toml:"city"`
        Map  string `yaml:"map" json:"map" toml:"map"`
    } `yaml:"destination" json:"destination" toml:"destination"`

    HTTP struct {
        UserAgent string        `yaml:"userAgent" json:"userAgent" toml:"userAgent"`
        Timeout   time.Duration `yaml:"timeout" json:"timeout" toml:"timeout"`
    } `yaml:"http" json:"http" toml:"http"`

    Cache struct {
        Dir         string        `yaml:"dir" json:"dir" toml:"dir"`
        MaxAge      time.Duration `yaml:"maxAge" json:"maxAge" toml:"maxAge"`
        Clear       bool          `yaml:"clear" json:"clear" toml:"clear"`
        StrictPerms bool          `yaml:"strictPerms" json:"strictPerms" toml:"strictPerms"`
    } `yaml:"cache" json:"cache" toml:"cache"`

    Variants map[string]VariantOverride `yaml:"variants" json:"variants" toml:"variants"`
}

// LoadConfigFile reads YAML, JSON or TOML into FileConfig. TOML has no
// duration type, so durations there are integer nanoseconds.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := strings.ToLower(filepath.Ext(path)); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    case ".toml":
        if err := toml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse toml: %w", err)
        }
    default:
        // Try YAML then JSON
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their flag default, so explicit flags win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
    if cfg == nil { return }

    if cfg.InputPath == "" && fc.Input != "" { cfg.InputPath = fc.Input }
    if (cfg.OutputPath == "" || cfg.OutputPath == outputDefault) && fc.Output != "" { cfg.OutputPath = fc.Output }
    if cfg.ListingsPath == "" && fc.Listings != "" { cfg.ListingsPath = fc.Listings }
    if (cfg.Variant == "" || cfg.Variant == variantDefault) && fc.Variant != "" { cfg.Variant = fc.Variant }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }

    if cfg.MainImageURL == "" && fc.Article.MainImage != "" { cfg.MainImageURL = fc.Article.MainImage }
    if cfg.Permalink == "" && fc.Article.Permalink != "" { cfg.Permalink = fc.Article.Permalink }
    if cfg.City == "" && fc.Destination.City != "" { cfg.City = fc.Destination.City }
    if cfg.DestinationsPath == "" && fc.Destination.Map != "" { cfg.DestinationsPath = fc.Destination.Map }

    if cfg.UserAgent == "" && fc.HTTP.UserAgent != "" { cfg.UserAgent = fc.HTTP.UserAgent }
    if (cfg.HTTPTimeout == 0 || cfg.HTTPTimeout == httpTimeoutDefault) && fc.HTTP.Timeout > 0 { cfg.HTTPTimeout = fc.HTTP.Timeout }

    if (cfg.CacheDir == "" || cfg.CacheDir == cacheDirDefault) && fc.Cache.Dir != "" { cfg.CacheDir = fc.Cache.Dir }
    if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 { cfg.CacheMaxAge = fc.Cache.MaxAge }
    if !cfg.CacheClear && fc.Cache.Clear { cfg.CacheClear = true }
    if !cfg.CacheStrictPerms && fc.Cache.StrictPerms { cfg.CacheStrictPerms = true }

    if len(fc.Variants) > 0 {
        if cfg.VariantOverrides == nil {
            cfg.VariantOverrides = make(map[string]VariantOverride, len(fc.Variants))
        }
        for name, ov := range fc.Variants {
            key := string(variant.Get(name).Name)
            if _, set := cfg.VariantOverrides[key]; !set {
                cfg.VariantOverrides[key] = ov
            }
        }
    }
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
    if strings.TrimSpace(cfg.InputPath) == "" {
        return errors.New("config: input path is required")
    }
    if strings.TrimSpace(cfg.OutputPath) == "" {
        return errors.New("config: output path is required")
    }
    if cfg.MinMeaningful < 0 || cfg.MinSubstantial < 0 {
        return errors.New("config: negative thresholds are not allowed")
    }
    if cfg.HTTPTimeout < 0 || cfg.CacheMaxAge < 0 {
        return errors.New("config: negative durations are not allowed")
    }
    if _, err := ResolveVariant(cfg); err != nil {
        return fmt.Errorf("config: %w", err)
    }
    return nil
}

// ResolveVariant returns the configured variant with file overrides applied
// first and per-run flag overrides on top.
func ResolveVariant(cfg Config) (variant.Variant, error) {
    v := variant.Get(cfg.Variant)
    if ov, ok := cfg.VariantOverrides[string(v.Name)]; ok {
        if err := applyOverride(&v, ov); err != nil {
            return v, fmt.Errorf("variant %s: %w", v.Name, err)
        }
    }
    run := VariantOverride{
        Stages:         cfg.Stages,
        HeadingOrdinal: cfg.HeadingOrdinal,
        MinMeaningful:  cfg.MinMeaningful,
        MinSubstantial: cfg.MinSubstantial,
    }
    if err := applyOverride(&v, run); err != nil {
        return v, fmt.Errorf("variant %s: %w", v.Name, err)
    }
    return v, v.Validate()
}

func applyOverride(v *variant.Variant, ov VariantOverride) error {
    if len(ov.Stages) > 0 {
        stages, err := variant.ParseStages(ov.Stages)
        if err != nil {
            return err
        }
        v.Stages = stages
    }
    if ov.HeadingOrdinal > 0 { v.HeadingOrdinal = ov.HeadingOrdinal }
    if ov.MinMeaningful > 0 { v.MinMeaningful = ov.MinMeaningful }
    if ov.MinSubstantial > 0 { v.MinSubstantial = ov.MinSubstantial }
    return nil
}
