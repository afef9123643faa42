// Package repair fixes article bodies damaged by the CMS export: entity
// encoded markup, page builder wrappers, empty paragraphs, lazy images and
// unsafe new-tab links. Well-formed input passes through byte for byte.
package repair

import (
    "github.com/hyperifyio/toursplice/internal/dom"
    "github.com/hyperifyio/toursplice/internal/entity"
    "github.com/hyperifyio/toursplice/internal/lazyimg"
    "github.com/hyperifyio/toursplice/internal/links"
    "github.com/hyperifyio/toursplice/internal/sanitize"
)

// Report describes what a repair pass did.
type Report struct {
    Signatures   entity.Signatures
    Skipped      bool
    Conservative bool
    Images       lazyimg.Stats
    Links        int
}

// Normalize repairs raw and returns the result. See NormalizeReport.
func Normalize(raw string) string {
    out, _ := NormalizeReport(raw)
    return out
}

// NormalizeReport returns raw unchanged when none of the malformed-content
// signatures is present. Otherwise it decodes markup entities (only when
// encoded tags were detected), repairs the structure, normalizes images and
// links, and renders the fragment again. Short content dense with builder
// markup keeps its wrappers.
func NormalizeReport(raw string) (string, Report) {
    rep := Report{Signatures: entity.Detect(raw)}
    if !rep.Signatures.Any() {
        rep.Skipped = true
        return raw, rep
    }
    rep.Conservative = sanitize.IsBuilderHeavy(raw)

    s := raw
    if rep.Signatures.EncodedTags {
        s = entity.Decode(s)
    }
    doc, err := dom.Parse(s)
    if err != nil {
        rep.Skipped = true
        return raw, rep
    }
    sanitize.RepairStructure(doc, rep.Conservative)
    rep.Images = lazyimg.Normalize(doc)
    rep.Links = links.Normalize(doc)
    return dom.Render(doc), rep
}
