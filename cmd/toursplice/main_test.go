package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apppkg "github.com/hyperifyio/toursplice/internal/app"
)

// Smoke test: run writes the composed fragment with a minimal config.
func TestRun_WritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "post.html")
	out := filepath.Join(dir, "out.html")
	listings := filepath.Join(dir, "listings.yaml")
	if err := os.WriteFile(in, []byte("<h2>A</h2><p>Enough words here to count as meaningful content before the heading.</p><h2>B</h2><p>Tail.</p>"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := os.WriteFile(listings, []byte("- title: Night Market Tour\n  price: $19\n  rating: 4\n"), 0o644); err != nil {
		t.Fatalf("write listings: %v", err)
	}
	cfg := apppkg.Config{
		InputPath:    in,
		OutputPath:   out,
		ListingsPath: listings,
		City:         "Hanoi",
		Variant:      "seo",
		CacheDir:     filepath.Join(dir, "cache"),
	}
	if err := run(context.Background(), cfg); err != nil {
		t.Fatalf("run error: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(b), "Night Market Tour") {
		t.Fatalf("listings missing from output: %s", b)
	}
}

// The exit code policy maps empty content to its own sentinel.
func TestRun_EmptyContent_Error(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "post.html")
	if err := os.WriteFile(in, []byte("\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	err := run(context.Background(), apppkg.Config{InputPath: in, OutputPath: filepath.Join(dir, "out.html")})
	if !errors.Is(err, apppkg.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if code := realMain([]string{"-env", "", "-input", in, "-output", filepath.Join(dir, "out.html")}); code != exitEmptyContent {
		t.Fatalf("exit code=%d, want %d", code, exitEmptyContent)
	}
}

func TestParseFlags(t *testing.T) {
	cfg, configPath, envFiles, _, err := parseFlags([]string{
		"-config", "toursplice.yaml",
		"-env", ".env, .env.local",
		"-input", "post.html",
		"-stages", "tables, sanitize ,inject",
		"-heading.ordinal", "1",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if configPath != "toursplice.yaml" || len(envFiles) != 2 || envFiles[1] != ".env.local" {
		t.Fatalf("config=%q env=%v", configPath, envFiles)
	}
	if cfg.InputPath != "post.html" || cfg.OutputPath != "-" || cfg.Variant != "tours" {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
	if len(cfg.Stages) != 3 || cfg.Stages[1] != "sanitize" || cfg.HeadingOrdinal != 1 {
		t.Fatalf("stages=%v ordinal=%d", cfg.Stages, cfg.HeadingOrdinal)
	}
}
