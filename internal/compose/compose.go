// Package compose splices a rendered listings block into the article at the
// injection marker.
package compose

import (
    "fmt"
    "io"
    "strings"

    "github.com/hyperifyio/toursplice/internal/inject"
    "github.com/hyperifyio/toursplice/internal/listing"
)

// Renderer writes the markup for a listings block. Implementations own the
// fallback states (unmapped destination, fetch error, empty list).
type Renderer interface {
    Render(w io.Writer, block listing.Block) error
}

// Split cuts s at the first injection marker. Without a marker ok is false
// and before holds all of s.
func Split(s string) (before, after string, ok bool) {
    return strings.Cut(s, inject.MarkerHTML)
}

// Compose writes the article part before the marker, the rendered block and
// the part after the marker. Without a marker the block follows the whole
// article. Empty parts are skipped.
func Compose(w io.Writer, article string, block listing.Block, r Renderer) error {
    before, after, _ := Split(article)
    if before != "" {
        if _, err := io.WriteString(w, before); err != nil {
            return fmt.Errorf("write article: %w", err)
        }
    }
    if r != nil {
        if err := r.Render(w, block); err != nil {
            return fmt.Errorf("render listings: %w", err)
        }
    }
    if after != "" {
        if _, err := io.WriteString(w, after); err != nil {
            return fmt.Errorf("write article: %w", err)
        }
    }
    return nil
}

// String is Compose into a string.
func String(article string, block listing.Block, r Renderer) (string, error) {
    var b strings.Builder
    if err := Compose(&b, article, block, r); err != nil {
        return "", err
    }
    return b.String(), nil
}
