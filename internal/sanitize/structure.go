package sanitize

import (
    "regexp"
    "strings"

    "github.com/PuerkitoBio/goquery"
    "golang.org/x/net/html"
    "golang.org/x/net/html/atom"

    "github.com/hyperifyio/toursplice/internal/dom"
)

// ConservativeMaxBytes is the size under which content dense with page
// builder markup is repaired conservatively: wrappers that still hold
// content keep their structure instead of being unwrapped.
const ConservativeMaxBytes = 20000

const builderWrappers = ".elementor-element, .elementor-widget-container, .elementor-widget, .e-con-inner, .e-con, .e-parent, .e-child"

var (
    builderDataAttrs = []string{
        "data-element_type", "data-id", "data-widget_type", "data-settings",
        "data-elementor-id", "data-elementor-post-type", "data-elementor-type",
    }
    builderClassRe = regexp.MustCompile(`^(elementor-|e-con|e-parent|e-child|wpr-|wp-)`)
    numberedRe     = regexp.MustCompile(`^\d+\.\s`)
)

// IsBuilderHeavy reports whether raw is short content dominated by page
// builder wrappers.
func IsBuilderHeavy(raw string) bool {
    return len(raw) < ConservativeMaxBytes &&
        strings.Contains(raw, "elementor-element") &&
        strings.Contains(raw, "elementor-widget")
}

// RepairStructure fixes structural damage left by the page builder export:
// builder wrappers, stray section headers and inline runs, runs of line
// breaks standing in for paragraphs, empty paragraphs and paragraphs
// wrapping block elements.
func RepairStructure(doc *goquery.Document, conservative bool) {
    if doc == nil {
        return
    }
    wrappers := doc.Find(builderWrappers)
    if conservative {
        wrappers.Each(func(_ int, w *goquery.Selection) {
            if strings.TrimSpace(w.Text()) == "" && w.Find("h1, h2, h3, h4, h5, h6, p, ul, ol, table, img").Length() == 0 {
                w.Remove()
            }
        })
    } else {
        dom.Unwrap(wrappers)
    }

    doc.Find("*").Each(func(_ int, s *goquery.Selection) {
        for _, a := range builderDataAttrs {
            s.RemoveAttr(a)
        }
    })
    doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
        classes, _ := s.Attr("class")
        kept := make([]string, 0, 4)
        for _, c := range strings.Fields(classes) {
            if builderClassRe.MatchString(c) || strings.Contains(c, "elementor") {
                continue
            }
            kept = append(kept, c)
        }
        if len(kept) == 0 {
            s.RemoveAttr("class")
            return
        }
        s.SetAttr("class", strings.Join(kept, " "))
    })

    wrapSectionHeaders(doc)
    wrapOrphanRuns(doc)
    collapseBreakRuns(doc)

    doc.Find("p").FilterFunction(func(_ int, p *goquery.Selection) bool {
        return IsEmptyParagraph(p)
    }).Remove()

    doc.Find("p").Each(func(_ int, p *goquery.Selection) {
        children := p.Children()
        if children.Length() == 0 || strings.TrimSpace(ownText(p.Get(0))) != "" {
            return
        }
        onlyBlocks := true
        children.EachWithBreak(func(_ int, c *goquery.Selection) bool {
            onlyBlocks = dom.Is(c.Get(0), "div", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "li", "table", "blockquote")
            return onlyBlocks
        })
        if onlyBlocks {
            dom.Unwrap(p)
        }
    })

    doc.Find("div, section, article").Each(func(_ int, s *goquery.Selection) {
        if strings.TrimSpace(s.Text()) == "" && s.Find("img, video, iframe, canvas").Length() == 0 {
            s.Remove()
        }
    })
}

// wrapOrphanRuns wraps runs of bare text and inline elements sitting directly
// in the body into paragraphs.
func wrapOrphanRuns(doc *goquery.Document) {
    body := dom.Body(doc).Get(0)
    if body == nil {
        return
    }
    var run []*html.Node
    flush := func(before *html.Node) {
        if hasText(run) {
            p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
            body.InsertBefore(p, before)
            for _, n := range run {
                body.RemoveChild(n)
                p.AppendChild(n)
            }
        }
        run = run[:0]
    }
    for c := body.FirstChild; c != nil; {
        next := c.NextSibling
        if isInline(c) {
            run = append(run, c)
        } else {
            flush(c)
        }
        c = next
    }
    flush(nil)
}

// wrapSectionHeaders wraps a <strong> section header that sits outside any
// paragraph, together with the inline content after it, into a <p>. A header
// is bold text ending in a colon or starting with a number like "2. ".
func wrapSectionHeaders(doc *goquery.Document) {
    var headers []*html.Node
    doc.Find("strong").Each(func(_ int, s *goquery.Selection) {
        n := s.Get(0)
        if isSectionHeader(n) && !inParagraphLike(n.Parent) {
            headers = append(headers, n)
        }
    })
    for _, n := range headers {
        parent := n.Parent
        if parent == nil || inParagraphLike(parent) {
            continue
        }
        p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
        parent.InsertBefore(p, n)
        for c := n; c != nil; {
            next := c.NextSibling
            if c != n && (!isInline(c) || isSectionHeader(c)) {
                break
            }
            parent.RemoveChild(c)
            p.AppendChild(c)
            c = next
        }
    }
}

func isSectionHeader(n *html.Node) bool {
    if n == nil || n.Type != html.ElementNode || n.DataAtom != atom.Strong {
        return false
    }
    t := strings.TrimSpace(nodeText(n))
    return strings.HasSuffix(t, ":") || numberedRe.MatchString(t)
}

// inParagraphLike reports whether content placed in n already reads as a
// paragraph or cannot take one.
func inParagraphLike(n *html.Node) bool {
    return n == nil || n.Type != html.ElementNode || isInline(n) || dom.IsHeading(n) ||
        dom.Is(n, "p", "li", "td", "th")
}

// collapseBreakRuns turns two or more consecutive <br> into a paragraph
// break. Inside a paragraph the run splits it in two; elsewhere it shrinks
// to a single <br>. A run with nothing on one side is dropped.
func collapseBreakRuns(doc *goquery.Document) {
    for _, br := range doc.Find("br").Nodes {
        parent := br.Parent
        if parent == nil {
            continue
        }
        run, count := breakRun(br)
        if count < 2 {
            continue
        }
        last := run[len(run)-1]
        var before, after []*html.Node
        for c := parent.FirstChild; c != br; c = c.NextSibling {
            before = append(before, c)
        }
        for c := last.NextSibling; c != nil; c = c.NextSibling {
            after = append(after, c)
        }
        switch {
        case !hasText(before) || !hasText(after):
            removeAll(parent, run)
        case parent.DataAtom == atom.P && parent.Parent != nil:
            np := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
            parent.Parent.InsertBefore(np, parent.NextSibling)
            for _, c := range after {
                parent.RemoveChild(c)
                np.AppendChild(c)
            }
            removeAll(parent, run)
        default:
            removeAll(parent, run[1:])
        }
    }
}

// breakRun returns the nodes from br through the last <br> that follows it
// with only whitespace in between, and how many <br> the run holds.
func breakRun(br *html.Node) ([]*html.Node, int) {
    run := []*html.Node{br}
    count := 1
    var pending []*html.Node
    for c := br.NextSibling; c != nil; c = c.NextSibling {
        if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
            pending = append(pending, c)
            continue
        }
        if c.Type != html.ElementNode || c.DataAtom != atom.Br {
            break
        }
        run = append(run, pending...)
        run = append(run, c)
        pending = pending[:0]
        count++
    }
    return run, count
}

func removeAll(parent *html.Node, nodes []*html.Node) {
    for _, n := range nodes {
        parent.RemoveChild(n)
    }
}

func isInline(n *html.Node) bool {
    switch n.Type {
    case html.TextNode:
        return true
    case html.ElementNode:
        switch n.DataAtom {
        case atom.Strong, atom.Em, atom.A, atom.Span, atom.B, atom.I, atom.Br:
            return true
        }
    }
    return false
}

// hasText reports whether a run carries visible content; whitespace between
// blocks and lone <br> runs are left alone.
func hasText(run []*html.Node) bool {
    for _, n := range run {
        if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
            return true
        }
        if n.Type == html.ElementNode && n.DataAtom != atom.Br {
            return true
        }
    }
    return false
}

func nodeText(n *html.Node) string {
    if n.Type == html.TextNode {
        return n.Data
    }
    var b strings.Builder
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        b.WriteString(nodeText(c))
    }
    return b.String()
}

func ownText(n *html.Node) string {
    var b strings.Builder
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        if c.Type == html.TextNode {
            b.WriteString(c.Data)
        }
    }
    return b.String()
}
