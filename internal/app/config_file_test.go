package app

import (
    "errors"
    "os"
    "path/filepath"
    "testing"
    "time"

    "github.com/hyperifyio/toursplice/internal/variant"
)

const yamlConfig = `input: content/post.html
output: public/post.html
listings: listings/{destination}.json
variant: seo
article:
  mainImage: https://cdn.test/main.jpg
  permalink: https://site.test/post
destination:
  city: Hanoi
  map: destinations.yaml
http:
  timeout: 10s
cache:
  dir: /tmp/toursplice
  maxAge: 24h
variants:
  seo:
    headingOrdinal: 2
    minMeaningfulChars: 40
  tours:
    stages: [repair, sanitize, inject]
`

func TestLoadConfigFile_YAMLAndJSON(t *testing.T) {
    dir := t.TempDir()
    y := filepath.Join(dir, "toursplice.yaml")
    if err := os.WriteFile(y, []byte(yamlConfig), 0o644); err != nil {
        t.Fatalf("write: %v", err)
    }
    fc, err := LoadConfigFile(y)
    if err != nil {
        t.Fatalf("load yaml: %v", err)
    }
    if fc.Variant != "seo" || fc.Destination.City != "Hanoi" || fc.Cache.MaxAge != 24*time.Hour {
        t.Fatalf("unexpected yaml config: %+v", fc)
    }
    if fc.Variants["seo"].MinMeaningful != 40 || len(fc.Variants["tours"].Stages) != 3 {
        t.Fatalf("variant overrides not read: %+v", fc.Variants)
    }

    j := filepath.Join(dir, "toursplice.conf")
    if err := os.WriteFile(j, []byte(`{"input":"a.html","variants":{"seo":{"stages":["tables","inject"]}}}`), 0o644); err != nil {
        t.Fatalf("write: %v", err)
    }
    fc, err = LoadConfigFile(j)
    if err != nil {
        t.Fatalf("load fallback: %v", err)
    }
    if fc.Input != "a.html" || len(fc.Variants["seo"].Stages) != 2 {
        t.Fatalf("unexpected fallback config: %+v", fc)
    }
}

func TestApplyFileConfig_FlagsWin(t *testing.T) {
    var fc FileConfig
    fc.Input = "file.html"
    fc.Output = "file-out.html"
    fc.Variant = "seo"
    fc.Cache.Dir = "/var/cache/toursplice"
    fc.Variants = map[string]VariantOverride{"SEO Post": {HeadingOrdinal: 2}}

    cfg := Config{
        InputPath:        "flag.html",
        OutputPath:       outputDefault,
        Variant:          variantDefault,
        CacheDir:         cacheDirDefault,
        VariantOverrides: map[string]VariantOverride{"tours": {MinMeaningful: 5}},
    }
    ApplyFileConfig(&cfg, fc)
    if cfg.InputPath != "flag.html" {
        t.Fatalf("explicit flag replaced: %q", cfg.InputPath)
    }
    if cfg.OutputPath != "file-out.html" || cfg.Variant != "seo" || cfg.CacheDir != "/var/cache/toursplice" {
        t.Fatalf("defaults not replaced: %+v", cfg)
    }
    if cfg.VariantOverrides["seo"].HeadingOrdinal != 2 || cfg.VariantOverrides["tours"].MinMeaningful != 5 {
        t.Fatalf("variant overrides=%v", cfg.VariantOverrides)
    }
}

func TestResolveVariant_Overrides(t *testing.T) {
    cfg := Config{
        Variant:          "seo",
        MinSubstantial:   150,
        VariantOverrides: map[string]VariantOverride{"seo": {HeadingOrdinal: 2, MinMeaningful: 40}},
    }
    v, err := ResolveVariant(cfg)
    if err != nil {
        t.Fatalf("resolve: %v", err)
    }
    if v.Name != variant.SEO || v.HeadingOrdinal != 2 || v.MinMeaningful != 40 || v.MinSubstantial != 150 {
        t.Fatalf("unexpected variant %+v", v)
    }

    cfg.HeadingOrdinal = 3
    if _, err := ResolveVariant(cfg); !errors.Is(err, variant.ErrOrdinal) {
        t.Fatalf("expected ErrOrdinal, got %v", err)
    }
    cfg.HeadingOrdinal = 0
    cfg.Stages = []string{"inject", "links"}
    if _, err := ResolveVariant(cfg); !errors.Is(err, variant.ErrInjectOrder) {
        t.Fatalf("expected ErrInjectOrder, got %v", err)
    }
}

func TestValidateConfig(t *testing.T) {
    ok := Config{InputPath: "post.html", OutputPath: "-"}
    if err := ValidateConfig(ok); err != nil {
        t.Fatalf("valid config rejected: %v", err)
    }
    bad := []Config{
        {OutputPath: "-"},
        {InputPath: "post.html"},
        {InputPath: "post.html", OutputPath: "-", MinMeaningful: -1},
        {InputPath: "post.html", OutputPath: "-", CacheMaxAge: -time.Second},
        {InputPath: "post.html", OutputPath: "-", Stages: []string{"nope"}},
    }
    for i, cfg := range bad {
        if err := ValidateConfig(cfg); err == nil {
            t.Errorf("case %d: expected error", i)
        }
    }
}

func TestLoadConfigFile_TOML(t *testing.T) {
    p := filepath.Join(t.TempDir(), "toursplice.toml")
    content := `input = "post.html"
variant = "seo"

[destination]
city = "Hoi An"

[variants.seo]
stages = ["tables", "sanitize", "inject"]
minMeaningfulChars = 25
`
    if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
        t.Fatalf("write: %v", err)
    }
    fc, err := LoadConfigFile(p)
    if err != nil {
        t.Fatalf("load toml: %v", err)
    }
    if fc.Input != "post.html" || fc.Variant != "seo" || fc.Destination.City != "Hoi An" {
        t.Fatalf("unexpected toml config: %+v", fc)
    }
    if ov := fc.Variants["seo"]; len(ov.Stages) != 3 || ov.MinMeaningful != 25 {
        t.Fatalf("variant override=%+v", ov)
    }
}
