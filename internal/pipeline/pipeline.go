// Package pipeline runs the content stages of a variant over one article
// body. Stages on serialized HTML and stages on the parsed fragment can be
// interleaved in any order; the runner parses and renders only where the
// kind of stage changes.
package pipeline

import (
    "strings"

    "github.com/PuerkitoBio/goquery"
    "github.com/rs/zerolog/log"

    "github.com/hyperifyio/toursplice/internal/dom"
    "github.com/hyperifyio/toursplice/internal/entity"
    "github.com/hyperifyio/toursplice/internal/inject"
    "github.com/hyperifyio/toursplice/internal/lazyimg"
    "github.com/hyperifyio/toursplice/internal/links"
    "github.com/hyperifyio/toursplice/internal/pseudotable"
    "github.com/hyperifyio/toursplice/internal/repair"
    "github.com/hyperifyio/toursplice/internal/sanitize"
    "github.com/hyperifyio/toursplice/internal/variant"
)

// Input is one article body plus the metadata the sanitizer needs.
type Input struct {
    HTML         string
    MainImageURL string
    Permalink    string
    // Listings is the number of listings that will be spliced in. With none
    // the marker is not placed.
    Listings int
}

// Report collects what the stages did, for logging.
type Report struct {
    Ran     []variant.Stage
    Skipped []variant.Stage

    Repair   repair.Report
    Decoded  bool
    Tables   int
    Sanitize sanitize.Report
    Images   lazyimg.Stats
    Links    int
}

// Result is the processed body and where the marker went.
type Result struct {
    HTML      string
    Placement inject.Placement
    Report    Report
}

// Pipeline runs a variant's stages.
type Pipeline struct {
    v variant.Variant
}

// New returns a pipeline for v.
func New(v variant.Variant) *Pipeline {
    return &Pipeline{v: v}
}

// Variant returns the variant the pipeline runs.
func (p *Pipeline) Variant() variant.Variant { return p.v }

// Run processes in. It never fails: empty input yields empty output and a
// fragment that cannot be parsed skips the DOM stages.
func (p *Pipeline) Run(in Input) Result {
    res := Result{Placement: inject.Placement{Method: inject.None, Rule: inject.RuleNoAnchor}}
    if strings.TrimSpace(in.HTML) == "" {
        return res
    }

    r := runner{s: in.HTML}
    for _, st := range p.v.Stages {
        if st == variant.StageInject && in.Listings <= 0 {
            res.Report.Skipped = append(res.Report.Skipped, st)
            if r.doc != nil || strings.Contains(r.s, inject.MarkerID) {
                if doc := r.dom(); doc != nil {
                    res.Placement.Removed = inject.RemoveMarkers(doc)
                }
            }
            continue
        }
        if st.IsString() {
            r.s = p.runString(st, r.text(), &res.Report)
            r.bad = false
        } else {
            doc := r.dom()
            if doc == nil {
                res.Report.Skipped = append(res.Report.Skipped, st)
                continue
            }
            p.runDOM(st, doc, in, &res)
        }
        res.Report.Ran = append(res.Report.Ran, st)
    }
    res.HTML = r.text()

    log.Debug().
        Str("variant", string(p.v.Name)).
        Interface("ran", res.Report.Ran).
        Interface("skipped", res.Report.Skipped).
        Int("removed", res.Report.Sanitize.Total()).
        Int("tables", res.Report.Tables).
        Str("placement", string(res.Placement.Method)).
        Str("rule", string(res.Placement.Rule)).
        Str("anchor", res.Placement.Anchor).
        Str("snippet", res.Placement.Snippet).
        Msg("content pipeline")
    return res
}

func (p *Pipeline) runString(st variant.Stage, s string, rep *Report) string {
    switch st {
    case variant.StageRepair:
        out, rr := repair.NormalizeReport(s)
        rep.Repair = rr
        return out
    case variant.StageTables:
        out := pseudotable.Rebuild(s)
        rep.Tables += strings.Count(out, "<table>") - strings.Count(s, "<table>")
        return out
    case variant.StageDecode:
        if entity.Detect(s).EncodedTags {
            rep.Decoded = true
            return entity.Decode(s)
        }
    }
    return s
}

func (p *Pipeline) runDOM(st variant.Stage, doc *goquery.Document, in Input, res *Result) {
    switch st {
    case variant.StageSanitize:
        rep := sanitize.Sanitize(doc, p.v.SanitizeOptions(in.MainImageURL, in.Permalink))
        if res.Report.Sanitize == nil {
            res.Report.Sanitize = sanitize.Report{}
        }
        for k, n := range rep {
            res.Report.Sanitize[k] += n
        }
    case variant.StageStructure:
        sanitize.RepairStructure(doc, sanitize.IsBuilderHeavy(in.HTML))
    case variant.StageImages:
        stats := lazyimg.Normalize(doc)
        res.Report.Images.Promoted += stats.Promoted
        res.Report.Images.NoscriptRemoved += stats.NoscriptRemoved
    case variant.StageLinks:
        res.Report.Links += links.Normalize(doc)
    case variant.StageInject:
        res.Placement = inject.Resolve(doc, p.v.InjectOptions())
    }
}

// runner holds the body in whichever form the last stage produced.
type runner struct {
    s   string
    doc *goquery.Document
    bad bool
}

// text returns the serialized body, rendering a pending DOM first.
func (r *runner) text() string {
    if r.doc != nil {
        r.s = dom.Render(r.doc)
        r.doc = nil
    }
    return r.s
}

// dom returns the parsed body, parsing the serialized form when needed. It
// returns nil once parsing has failed for the current text.
func (r *runner) dom() *goquery.Document {
    if r.doc != nil {
        return r.doc
    }
    if r.bad {
        return nil
    }
    doc, err := dom.Parse(r.s)
    if err != nil {
        log.Debug().Err(err).Msg("parse fragment; skipping DOM stages")
        r.bad = true
        return nil
    }
    r.doc = doc
    return doc
}
