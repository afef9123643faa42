// Package lazyimg turns lazy-loaded images back into plain images: the real
// source is promoted from data-src, loader attributes are dropped and
// duplicate <noscript> fallbacks are removed.
package lazyimg

import (
    "strings"

    "github.com/PuerkitoBio/goquery"
    "golang.org/x/net/html"
    "golang.org/x/net/html/atom"
)

// Stats counts what Normalize changed.
type Stats struct {
    Promoted        int
    NoscriptRemoved int
}

var loaderAttrs = []string{"data-lazy", "data-srcset", "data-sizes", "data-lazy-src"}

// loaderOnload lists fragments of onload handlers installed by lazy-load
// shims.
var loaderOnload = []string{"data-two_delay_", "lazyload", "lazysizes"}

// Normalize rewrites every image in doc and removes redundant noscript
// fallbacks. The set of seen fallback sources lives only for this call.
func Normalize(doc *goquery.Document) Stats {
    var st Stats
    if doc == nil {
        return st
    }
    doc.Find("img").Each(func(_ int, img *goquery.Selection) {
        if promote(img) {
            st.Promoted++
        }
        for _, a := range loaderAttrs {
            img.RemoveAttr(a)
        }
        if onload, ok := img.Attr("onload"); ok && isLoaderScript(onload) {
            img.RemoveAttr("onload")
        }
    })

    seen := map[string]bool{}
    doc.Find("noscript").Each(func(_ int, ns *goquery.Selection) {
        src := noscriptImageSrc(ns)
        if src == "" {
            return
        }
        if seen[src] || hasRenderedImage(doc, src) {
            ns.Remove()
            st.NoscriptRemoved++
            return
        }
        seen[src] = true
    })
    return st
}

// IsPlaceholder reports whether src is missing or an inline placeholder
// image that a lazy loader swaps out at runtime.
func IsPlaceholder(src string) bool {
    src = strings.TrimSpace(src)
    return src == "" ||
        strings.HasPrefix(src, "data:image/svg+xml") ||
        strings.HasPrefix(src, "data:image/gif;base64")
}

func promote(img *goquery.Selection) bool {
    dataSrc := strings.TrimSpace(img.AttrOr("data-src", ""))
    if dataSrc == "" {
        return false
    }
    if !IsPlaceholder(img.AttrOr("src", "")) {
        return false
    }
    img.SetAttr("src", dataSrc)
    img.RemoveAttr("data-src")
    return true
}

func isLoaderScript(onload string) bool {
    for _, f := range loaderOnload {
        if strings.Contains(onload, f) {
            return true
        }
    }
    return false
}

// noscriptImageSrc returns the src of the first image inside a noscript
// element. With scripting enabled the parser keeps noscript content as raw
// text, so it is parsed again here.
func noscriptImageSrc(ns *goquery.Selection) string {
    raw := ns.Text()
    if !strings.Contains(raw, "<img") {
        return ""
    }
    ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
    nodes, err := html.ParseFragment(strings.NewReader(raw), ctx)
    if err != nil {
        return ""
    }
    for _, n := range nodes {
        if src := firstImageSrc(n); src != "" {
            return src
        }
    }
    return ""
}

func firstImageSrc(n *html.Node) string {
    if n.Type == html.ElementNode && n.DataAtom == atom.Img {
        for _, a := range n.Attr {
            if a.Key == "src" {
                return strings.TrimSpace(a.Val)
            }
        }
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        if src := firstImageSrc(c); src != "" {
            return src
        }
    }
    return ""
}

func hasRenderedImage(doc *goquery.Document, src string) bool {
    found := false
    doc.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
        if strings.TrimSpace(img.AttrOr("src", "")) == src {
            found = true
        }
        return !found
    })
    return found
}
