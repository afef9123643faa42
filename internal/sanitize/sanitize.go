// Package sanitize strips CMS artifacts from a parsed article body: legacy
// navigation widgets, listing markup rendered by an earlier import, template
// boilerplate and presentation attributes.
package sanitize

import (
    "strings"

    "github.com/PuerkitoBio/goquery"
)

// DefaultVendor is the listing vendor whose previously rendered markup is
// removed on re-import.
const DefaultVendor = "viator"

// Options are the per-variant toggles of the sanitizer.
type Options struct {
    // Rules replaces DefaultRules(Vendor) when non-nil.
    Rules  []Rule
    Vendor string

    // MainImageURL and Permalink identify self-referential boilerplate: the
    // article's own featured image and its canonical link.
    MainImageURL string
    Permalink    string

    TrimBoilerplate bool
    StripAttributes bool
    StyleTables     bool
}

// Report counts removed nodes per rule or step name.
type Report map[string]int

// Total returns the number of removed nodes.
func (r Report) Total() int {
    n := 0
    for _, v := range r {
        n += v
    }
    return n
}

func (r Report) add(name string, n int) {
    if n > 0 {
        r[name] += n
    }
}

// Sanitize applies the removal rules and then the fixed post-steps to doc.
// Structural removals run before the boilerplate trim so that a stripped
// widget is never counted as one of the leading paragraphs.
func Sanitize(doc *goquery.Document, opts Options) Report {
    rep := Report{}
    if doc == nil {
        return rep
    }
    rules := opts.Rules
    if rules == nil {
        rules = DefaultRules(opts.Vendor)
    }
    for _, r := range rules {
        rep.add(r.Name, r.Apply(doc))
    }
    rep.add("self-reference", removeSelfReferences(doc, opts.MainImageURL, opts.Permalink))
    if opts.TrimBoilerplate {
        rep.add("boilerplate", TrimBoilerplate(doc))
    }
    if opts.StripAttributes {
        StripPresentation(doc)
    }
    if opts.StyleTables {
        StyleTables(doc)
    }
    return rep
}

// removeSelfReferences drops body-level stray links and images, the block
// holding the permalink, and the featured image (with its wrapping link).
func removeSelfReferences(doc *goquery.Document, mainImage, permalink string) int {
    n := 0
    stray := doc.Find("body > a, body > img")
    n += stray.Length()
    stray.Remove()

    if permalink != "" {
        doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
            if href, _ := a.Attr("href"); href != permalink {
                return
            }
            if div := a.Closest("div"); div.Length() > 0 {
                n += div.Length()
                div.Remove()
            }
        })
    }
    if mainImage != "" {
        doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
            if src, _ := img.Attr("src"); src != mainImage {
                return
            }
            if parent := img.Parent(); goquery.NodeName(parent) == "a" {
                parent.Remove()
            } else {
                img.Remove()
            }
            n++
        })
    }
    return n
}

// TrimBoilerplate removes the CMS template lead-in: the first h1, the first
// two paragraphs, the first list and the first affiliate disclosure.
func TrimBoilerplate(doc *goquery.Document) int {
    n := 0
    if h1 := doc.Find("h1").First(); h1.Length() > 0 {
        h1.Remove()
        n++
    }
    lead := doc.Find("p").Slice(0, min(2, doc.Find("p").Length()))
    n += lead.Length()
    lead.Remove()
    if ul := doc.Find("ul").First(); ul.Length() > 0 {
        ul.Remove()
        n++
    }
    disclosure := doc.Find("p").FilterFunction(func(_ int, p *goquery.Selection) bool {
        t := strings.ToLower(p.Text())
        return strings.Contains(t, "affiliate") || strings.Contains(t, "disclosure")
    }).First()
    if disclosure.Length() > 0 {
        disclosure.Remove()
        n++
    }
    return n
}

// StripPresentation removes every inline style and class attribute; the
// rendering layer applies its own presentation.
func StripPresentation(doc *goquery.Document) {
    doc.Find("[style]").RemoveAttr("style")
    doc.Find("[class]").RemoveAttr("class")
}

const (
    tableWrapperClass = "overflow-x-auto"
    tableHeadClasses  = "bg-indigo-50 text-indigo-900 px-6 py-5 text-left font-bold text-lg"
    tableCellClasses  = "px-6 py-5 border-t border-gray-200 text-gray-800 align-top text-base"
    tableRowClasses   = "odd:bg-gray-50 hover:bg-indigo-50/40 transition-colors duration-150"
)

// StyleTables wraps each table in a horizontal scroll container and applies
// the presentation classes of the site's table style. Tables that already
// sit in the scroll container are not wrapped twice.
func StyleTables(doc *goquery.Document) {
    doc.Find("table").Each(func(_ int, table *goquery.Selection) {
        if parent := table.Parent(); !(goquery.NodeName(parent) == "div" && parent.HasClass(tableWrapperClass)) {
            table.WrapHtml(`<div class="` + tableWrapperClass + `"></div>`)
        }
        table.Find("th").AddClass(tableHeadClasses)
        table.Find("td").AddClass(tableCellClasses)
        table.Find("tr").AddClass(tableRowClasses)
        table.Find("tr:last-child td:first-child").AddClass("rounded-bl-xl")
        table.Find("tr:last-child td:last-child").AddClass("rounded-br-xl")
    })
}
