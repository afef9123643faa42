// Package destination maps free-form city names to listings vendor
// destination ids.
package destination

import (
    "encoding/json"
    "fmt"
    "os"
    "path/filepath"
    "regexp"
    "sort"
    "strings"
    "unicode"

    "golang.org/x/text/runes"
    "golang.org/x/text/transform"
    "golang.org/x/text/unicode/norm"
    yaml "gopkg.in/yaml.v3"
)

var (
    entities = strings.NewReplacer(
        "&amp;", "&",
        "&lt;", "<", "&gt;", ">",
        "&quot;", `"`,
        "&#39;", "'", "\u2019", "'", "\u2018", "'",
    )
    separatorsRe  = regexp.MustCompile(`[-_]+`)
    hyphensRe     = regexp.MustCompile(`-+`)
    punctuationRe = regexp.MustCompile(`[.,()/]`)
    spacesRe      = regexp.MustCompile(`\s+`)
    cityWordRe    = regexp.MustCompile(`\bcity\b`)
    nonNameRe     = regexp.MustCompile(`[^a-z\s&-]`)
    numericIDRe   = regexp.MustCompile(`^\d+$`)
)

// stripDiacritics removes combining marks after canonical decomposition, so
// "São Paulo" becomes "Sao Paulo".
func stripDiacritics(s string) string {
    t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
    out, _, err := transform.String(t, s)
    if err != nil {
        return s
    }
    return out
}

// unifySpace maps no-break and typographic spaces to a plain space.
func unifySpace(r rune) rune {
    if r == '\u00a0' || r == '\u202f' || (r >= '\u2000' && r <= '\u200b') {
        return ' '
    }
    return r
}

// NormalizeCity canonicalizes a city name for lookups. The same function is
// applied to index keys and to queries.
func NormalizeCity(raw string) string {
    s := strings.ToLower(strings.TrimSpace(raw))
    if s == "" {
        return ""
    }
    s = strings.Map(unifySpace, s)
    s = separatorsRe.ReplaceAllString(s, " ")
    s = punctuationRe.ReplaceAllString(s, " ")
    s = entities.Replace(s)
    s = spacesRe.ReplaceAllString(s, " ")
    return strings.TrimSpace(stripDiacritics(s))
}

// Variants returns n followed by its lookup aliases: without a leading
// "the", with "&" and "and" swapped, hyphenated and unhyphenated forms, and
// without the word "city". Duplicates and empty strings are dropped.
func Variants(n string) []string {
    var out []string
    seen := map[string]bool{}
    add := func(v string) {
        if v != "" && !seen[v] {
            seen[v] = true
            out = append(out, v)
        }
    }
    add(n)
    if strings.HasPrefix(n, "the ") {
        add(strings.TrimSpace(strings.TrimPrefix(n, "the ")))
    }
    if strings.Contains(n, " & ") {
        add(strings.ReplaceAll(n, " & ", " and "))
    }
    if strings.Contains(n, " and ") {
        add(strings.ReplaceAll(n, " and ", " & "))
    }
    if strings.Contains(n, " ") {
        add(spacesRe.ReplaceAllString(n, "-"))
    }
    if strings.Contains(n, "-") {
        add(hyphensRe.ReplaceAllString(n, " "))
    }
    add(strings.TrimSpace(spacesRe.ReplaceAllString(cityWordRe.ReplaceAllString(n, ""), " ")))
    return out
}

// NormalizeID accepts "123" or "d123" and returns the numeric id.
func NormalizeID(id string) (string, bool) {
    s := strings.TrimSpace(id)
    if len(s) > 0 && (s[0] == 'd' || s[0] == 'D') {
        s = s[1:]
    }
    if !numericIDRe.MatchString(s) {
        return "", false
    }
    return s, true
}

// Index is a normalized city → destination id lookup table.
type Index struct {
    ids     map[string]string
    rawKeys int
}

// NewIndex normalizes raw city keys and their variants. Entries with an
// invalid id are skipped; the first key claiming a variant wins, in sorted
// key order.
func NewIndex(raw map[string]string) *Index {
    idx := &Index{ids: map[string]string{}, rawKeys: len(raw)}
    keys := make([]string, 0, len(raw))
    for k := range raw {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    for _, k := range keys {
        id, ok := NormalizeID(raw[k])
        if !ok {
            continue
        }
        for _, v := range Variants(NormalizeCity(k)) {
            if _, taken := idx.ids[v]; !taken {
                idx.ids[v] = id
            }
        }
    }
    return idx
}

// Len returns the number of normalized keys.
func (x *Index) Len() int {
    if x == nil {
        return 0
    }
    return len(x.ids)
}

// RawKeys returns the number of keys the index was built from.
func (x *Index) RawKeys() int {
    if x == nil {
        return 0
    }
    return x.rawKeys
}

// Lookup resolves city to a destination id. When the normalized name has no
// match, digits and other symbols are stripped and the lookup retried.
func (x *Index) Lookup(city string) (string, bool) {
    if x == nil {
        return "", false
    }
    n := NormalizeCity(city)
    if n == "" {
        return "", false
    }
    for _, v := range Variants(n) {
        if id, ok := x.ids[v]; ok {
            return id, true
        }
    }
    stripped := strings.TrimSpace(spacesRe.ReplaceAllString(nonNameRe.ReplaceAllString(n, ""), " "))
    if stripped != "" && stripped != n {
        for _, v := range Variants(stripped) {
            if id, ok := x.ids[v]; ok {
                return id, true
            }
        }
    }
    return "", false
}

// LoadIndex reads a city map from a YAML or JSON file. Values may be
// strings or numbers.
func LoadIndex(path string) (*Index, error) {
    b, err := os.ReadFile(path)
    if err != nil {
        return nil, err
    }
    var raw map[string]any
    switch strings.ToLower(filepath.Ext(path)) {
    case ".json":
        if err := json.Unmarshal(b, &raw); err != nil {
            return nil, fmt.Errorf("parse json: %w", err)
        }
    default:
        if err := yaml.Unmarshal(b, &raw); err != nil {
            return nil, fmt.Errorf("parse yaml: %w", err)
        }
    }
    m := make(map[string]string, len(raw))
    for k, v := range raw {
        switch t := v.(type) {
        case string:
            m[k] = t
        case int:
            m[k] = fmt.Sprint(t)
        case float64:
            m[k] = fmt.Sprintf("%.0f", t)
        }
    }
    return NewIndex(m), nil
}
