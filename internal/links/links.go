// Package links normalizes anchors that open in a new browsing context.
package links

import (
    "strings"

    "github.com/PuerkitoBio/goquery"
    "github.com/andybalholm/cascadia"
)

var newContextAnchors = cascadia.MustCompile(`a[target="_blank"]`)

// externalRel are the rel tokens every external new-tab link carries.
var externalRel = []string{"noopener", "noreferrer", "nofollow"}

// IsExternal reports whether href points off-site: absolute http(s) URLs
// and protocol-relative URLs.
func IsExternal(href string) bool {
    h := strings.ToLower(href)
    return strings.HasPrefix(h, "http://") || strings.HasPrefix(h, "https://") || strings.HasPrefix(h, "//")
}

// Normalize trims the href of every target="_blank" anchor and merges the
// external rel tokens into external ones. Existing tokens keep their order
// and duplicates collapse. It returns the number of anchors whose rel
// changed.
func Normalize(doc *goquery.Document) int {
    if doc == nil {
        return 0
    }
    changed := 0
    doc.FindMatcher(newContextAnchors).Each(func(_ int, a *goquery.Selection) {
        href, ok := a.Attr("href")
        if !ok || href == "" {
            return
        }
        href = strings.TrimSpace(href)
        a.SetAttr("href", href)
        if !IsExternal(href) {
            return
        }
        old := a.AttrOr("rel", "")
        rel := MergeRel(old, externalRel...)
        if rel != old {
            a.SetAttr("rel", rel)
            changed++
        }
    })
    return changed
}

// MergeRel returns the union of the space-separated tokens in rel and add,
// first occurrence wins. Tokens compare case-insensitively and keep the
// casing they were first written with.
func MergeRel(rel string, add ...string) string {
    seen := map[string]bool{}
    out := make([]string, 0, 4)
    for _, tok := range append(strings.Fields(rel), add...) {
        key := strings.ToLower(tok)
        if tok == "" || seen[key] {
            continue
        }
        seen[key] = true
        out = append(out, tok)
    }
    return strings.Join(out, " ")
}
