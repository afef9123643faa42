// Package entity detects and decodes HTML-entity encoded markup in raw
// article bodies.
package entity

import (
    "regexp"
    "strings"
)

// Signatures lists which malformed-content patterns are present in a raw
// article body. A body with no signature is treated as already normalized.
type Signatures struct {
    EncodedTags         bool
    EmptyParagraphs     bool
    LazyImages          bool
    UnsafeExternalLinks bool
}

// Any reports whether at least one signature is present.
func (s Signatures) Any() bool {
    return s.EncodedTags || s.EmptyParagraphs || s.LazyImages || s.UnsafeExternalLinks
}

var (
    anchorTagRe   = regexp.MustCompile(`(?i)<a\b[^>]*>`)
    targetBlankRe = regexp.MustCompile(`(?i)\btarget\s*=\s*["']?_blank`)
    hrefRe        = regexp.MustCompile(`(?i)\bhref\s*=\s*["']\s*([^"']*)`)
    relRe         = regexp.MustCompile(`(?i)\brel\s*=\s*["']([^"']*)["']`)
)

var emptyParagraphs = []string{"<p><br></p>", "<p><br/></p>", "<p><br /></p>"}

// Detect scans s for the four malformed-content signatures.
func Detect(s string) Signatures {
    var sig Signatures
    if s == "" {
        return sig
    }
    sig.EncodedTags = strings.Contains(s, "&lt;") || strings.Contains(s, "&gt;") || strings.Contains(s, "&amp;lt;")
    for _, p := range emptyParagraphs {
        if strings.Contains(s, p) {
            sig.EmptyParagraphs = true
            break
        }
    }
    sig.LazyImages = strings.Contains(s, "data-src=") && strings.Contains(s, "data:image/svg+xml")
    sig.UnsafeExternalLinks = hasUnsafeExternalLink(s)
    return sig
}

// hasUnsafeExternalLink reports whether any absolute target="_blank" anchor
// lacks a rel attribute containing noopener.
func hasUnsafeExternalLink(s string) bool {
    if !strings.Contains(s, "_blank") {
        return false
    }
    for _, tag := range anchorTagRe.FindAllString(s, -1) {
        if !targetBlankRe.MatchString(tag) {
            continue
        }
        m := hrefRe.FindStringSubmatch(tag)
        if m == nil || !isAbsolute(m[1]) {
            continue
        }
        rel := relRe.FindStringSubmatch(tag)
        if rel == nil || !containsToken(rel[1], "noopener") {
            return true
        }
    }
    return false
}

func isAbsolute(href string) bool {
    h := strings.ToLower(strings.TrimSpace(href))
    return strings.HasPrefix(h, "http://") || strings.HasPrefix(h, "https://") || strings.HasPrefix(h, "//")
}

func containsToken(list, token string) bool {
    for _, f := range strings.Fields(list) {
        if strings.EqualFold(f, token) {
            return true
        }
    }
    return false
}

// Double-encoded sequences must be resolved before single ones, otherwise
// "&amp;lt;" would decode to "&lt;" and stop there.
var (
    doubleDecoder = strings.NewReplacer(
        "&amp;lt;", "&lt;",
        "&amp;gt;", "&gt;",
        "&amp;quot;", "&quot;",
        "&amp;amp;", "&amp;",
    )
    singleDecoder = strings.NewReplacer(
        "&lt;", "<",
        "&gt;", ">",
        "&quot;", `"`,
        "&amp;", "&",
    )
)

// Decode resolves double- and single-encoded markup entities in s. Only the
// markup-significant entities are decoded; text entities such as &nbsp; are
// left for the HTML parser.
func Decode(s string) string {
    if s == "" {
        return s
    }
    return singleDecoder.Replace(doubleDecoder.Replace(s))
}
