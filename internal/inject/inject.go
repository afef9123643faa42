// Package inject decides where the listings block is spliced into an
// article body and marks that spot with a reserved empty element.
package inject

import (
    "strings"

    "github.com/PuerkitoBio/goquery"
    "golang.org/x/net/html"
    "golang.org/x/net/html/atom"

    "github.com/hyperifyio/toursplice/internal/dom"
)

// MarkerID is the reserved element id of the injection point.
const MarkerID = "tours-injection-point"

// MarkerHTML is the serialized marker element the compositor splits on.
const MarkerHTML = `<div id="` + MarkerID + `"></div>`

const (
    DefaultHeading        = "h2"
    DefaultOrdinal        = 2
    DefaultMinMeaningful  = 50
    DefaultMinSubstantial = 100
)

// Options control the placement heuristic. Zero values take the defaults.
type Options struct {
    // Heading is the tag name of the section headings that anchor the marker.
    Heading string
    // Ordinal selects the anchor heading, 1-based.
    Ordinal int
    // MinMeaningful is the trimmed text length a block before the anchor must
    // exceed to have the marker placed after it.
    MinMeaningful int
    // MinSubstantial is the paragraph length preferred when the document has
    // no headings at all.
    MinSubstantial int
}

func (o Options) withDefaults() Options {
    if o.Heading == "" {
        o.Heading = DefaultHeading
    }
    if o.Ordinal <= 0 {
        o.Ordinal = DefaultOrdinal
    }
    if o.MinMeaningful <= 0 {
        o.MinMeaningful = DefaultMinMeaningful
    }
    if o.MinSubstantial <= 0 {
        o.MinSubstantial = DefaultMinSubstantial
    }
    return o
}

// Method says how the marker was placed relative to its anchor.
type Method string

const (
    Before Method = "before"
    After  Method = "after"
    None   Method = "none"
)

// Rule names which branch of the heuristic placed the marker.
type Rule string

const (
    RuleMeaningfulBlock      Rule = "meaningful-block"
    RuleHeading              Rule = "heading"
    RuleSingleHeading        Rule = "single-heading"
    RuleSubstantialParagraph Rule = "substantial-paragraph"
    RuleFirstParagraph       Rule = "first-paragraph"
    RuleNoAnchor             Rule = "no-anchor"
)

// Placement reports where the marker went, for logging.
type Placement struct {
    Method  Method
    Rule    Rule
    Anchor  string
    Snippet string
    // Removed counts markers that were present before the call.
    Removed int
}

// Placed reports whether a marker was inserted.
func (p Placement) Placed() bool { return p.Method != None }

var blockTags = []string{"p", "ul", "ol", "div", "blockquote", "figure"}

// Resolve removes any existing marker from doc and inserts exactly one new
// marker:
//  1. With at least Ordinal headings, after the nearest block preceding the
//     anchor heading (without crossing an earlier heading) whose text exceeds
//     MinMeaningful, else right before the anchor heading.
//  2. With fewer headings but one, before that heading.
//  3. With none, after the first paragraph exceeding MinSubstantial, else
//     after the first paragraph.
//
// A document without headings and paragraphs gets no marker. A marker is
// never placed inside a list: anchors within lists are lifted to the
// outermost list.
func Resolve(doc *goquery.Document, opts Options) Placement {
    if doc == nil {
        return Placement{Method: None, Rule: RuleNoAnchor}
    }
    opts = opts.withDefaults()
    pl := Placement{Removed: RemoveMarkers(doc)}

    headings := doc.Find(opts.Heading)
    switch {
    case headings.Length() >= opts.Ordinal:
        anchor := headings.Eq(opts.Ordinal - 1)
        if block := meaningfulBlockBefore(anchor, opts.MinMeaningful); block != nil {
            return place(pl, After, RuleMeaningfulBlock, block)
        }
        return place(pl, Before, RuleHeading, anchor)
    case headings.Length() == 1:
        return place(pl, Before, RuleSingleHeading, headings.First())
    }

    paragraphs := doc.Find("p")
    if paragraphs.Length() == 0 {
        pl.Method, pl.Rule = None, RuleNoAnchor
        return pl
    }
    substantial := paragraphs.FilterFunction(func(_ int, p *goquery.Selection) bool {
        return dom.TrimmedLen(p) > opts.MinSubstantial
    }).First()
    if substantial.Length() > 0 {
        return place(pl, After, RuleSubstantialParagraph, substantial)
    }
    return place(pl, After, RuleFirstParagraph, paragraphs.First())
}

// meaningfulBlockBefore walks the element siblings preceding anchor back to
// the previous heading and returns the nearest qualifying block.
func meaningfulBlockBefore(anchor *goquery.Selection, threshold int) *goquery.Selection {
    for prev := anchor.Prev(); prev.Length() > 0; prev = prev.Prev() {
        n := prev.Get(0)
        if dom.IsHeading(n) {
            return nil
        }
        if dom.Is(n, blockTags...) && dom.TrimmedLen(prev) > threshold {
            return prev
        }
    }
    return nil
}

func place(pl Placement, m Method, r Rule, target *goquery.Selection) Placement {
    target = liftOutOfLists(target)
    n := target.Get(0)
    marker := newMarker()
    if m == After {
        n.Parent.InsertBefore(marker, n.NextSibling)
    } else {
        n.Parent.InsertBefore(marker, n)
    }
    pl.Method = m
    pl.Rule = r
    pl.Anchor = goquery.NodeName(target)
    pl.Snippet = dom.Snippet(target, 60)
    return pl
}

// liftOutOfLists returns the outermost ul/ol enclosing sel, or sel itself.
func liftOutOfLists(sel *goquery.Selection) *goquery.Selection {
    if outer := sel.ParentsFiltered("ul, ol").Last(); outer.Length() > 0 {
        return outer
    }
    return sel
}

func newMarker() *html.Node {
    return &html.Node{
        Type:     html.ElementNode,
        Data:     "div",
        DataAtom: atom.Div,
        Attr:     []html.Attribute{{Key: "id", Val: MarkerID}},
    }
}

// RemoveMarkers deletes every marker element in doc and returns how many
// there were.
func RemoveMarkers(doc *goquery.Document) int {
    markers := doc.Find(`[id="` + MarkerID + `"]`)
    n := markers.Length()
    markers.Remove()
    return n
}

// InsertMarker is Resolve over a serialized fragment. Input that needs no
// change is returned as is.
func InsertMarker(s string, opts Options) (string, Placement) {
    if strings.TrimSpace(s) == "" {
        return s, Placement{Method: None, Rule: RuleNoAnchor}
    }
    doc, err := dom.Parse(s)
    if err != nil {
        return s, Placement{Method: None, Rule: RuleNoAnchor}
    }
    pl := Resolve(doc, opts)
    if !pl.Placed() && pl.Removed == 0 {
        return s, pl
    }
    return dom.Render(doc), pl
}

// Count returns the number of serialized markers in s.
func Count(s string) int {
    return strings.Count(s, MarkerHTML)
}
