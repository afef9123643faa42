package listing

import (
    "errors"
    "os"
    "path/filepath"
    "testing"
)

func TestDecode_JSONBlock(t *testing.T) {
    data := []byte(`{"city":"Hanoi","destinationId":"351","status":"success",
        "items":[{"productCode":"P1","title":"Street Food","rating":4.6,"reviewCount":12,"price":"$25"}]}`)
    b, err := Decode(data, FormatJSON)
    if err != nil {
        t.Fatalf("decode: %v", err)
    }
    if b.City != "Hanoi" || b.Status != StatusSuccess || len(b.Items) != 1 {
        t.Fatalf("unexpected block %+v", b)
    }
    if it := b.Items[0]; it.ProductCode != "P1" || it.Rating != 4.6 || it.ReviewCount != 12 {
        t.Fatalf("unexpected item %+v", it)
    }
}

func TestDecode_BareArrays(t *testing.T) {
    b, err := Decode([]byte(`[{"title":"A"},{"title":"B"}]`), FormatAuto)
    if err != nil || len(b.Items) != 2 || b.Status != StatusSuccess {
        t.Fatalf("json array: %+v %v", b, err)
    }
    b, err = Decode([]byte("- title: A\n  price: \"$10\"\n"), FormatYAML)
    if err != nil || len(b.Items) != 1 || b.Items[0].Price != "$10" {
        t.Fatalf("yaml array: %+v %v", b, err)
    }
}

func TestDecode_AutoFallsBackToYAML(t *testing.T) {
    b, err := Decode([]byte("city: Hoi An\nstatus: no-destination\n"), FormatAuto)
    if err != nil {
        t.Fatalf("decode: %v", err)
    }
    if b.City != "Hoi An" || b.Status != StatusNoDestination || !b.Empty() {
        t.Fatalf("unexpected block %+v", b)
    }
}

func TestDecode_EmptyAndUnsupported(t *testing.T) {
    if b, err := Decode(nil, FormatJSON); err != nil || !b.Empty() {
        t.Fatalf("empty input: %+v %v", b, err)
    }
    if _, err := Decode([]byte("{}"), Format("toml")); !errors.Is(err, ErrUnsupportedFormat) {
        t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
    }
    if _, err := Decode([]byte("{not json"), FormatJSON); err == nil {
        t.Fatalf("expected parse error")
    }
}

func TestLoad(t *testing.T) {
    dir := t.TempDir()
    p := filepath.Join(dir, "tours.yml")
    if err := os.WriteFile(p, []byte("city: Hue\nitems:\n  - title: Citadel\n    rating: 4.5\n"), 0o644); err != nil {
        t.Fatal(err)
    }
    b, err := Load(p)
    if err != nil {
        t.Fatalf("load: %v", err)
    }
    if b.City != "Hue" || len(b.Items) != 1 || b.Items[0].Rating != 4.5 {
        t.Fatalf("unexpected block %+v", b)
    }
    if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
        t.Fatalf("expected error for missing file")
    }
}

func TestFormatFromPath(t *testing.T) {
    cases := map[string]Format{
        "a.json":                        FormatJSON,
        "a.YAML":                        FormatYAML,
        "https://x.test/t.yml?city=hue": FormatYAML,
        "https://x.test/feed":           FormatAuto,
    }
    for in, want := range cases {
        if got := FormatFromPath(in); got != want {
            t.Errorf("FormatFromPath(%q)=%q, want %q", in, got, want)
        }
    }
}
