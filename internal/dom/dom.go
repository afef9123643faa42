// Package dom parses article bodies as HTML fragments and renders them back,
// with small node helpers shared by the content stages.
package dom

import (
    "bytes"
    "strings"
    "unicode/utf8"

    "github.com/PuerkitoBio/goquery"
    "golang.org/x/net/html"
    "golang.org/x/net/html/atom"
)

// Parse parses an article body fragment in <body> context and returns a
// goquery document rooted at a synthetic html/body pair. Parsing in body
// context keeps leading <script>, <style> or <meta> elements in the body
// where a full-document parse would move them into <head>.
func Parse(s string) (*goquery.Document, error) {
    body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
    nodes, err := html.ParseFragment(strings.NewReader(s), body)
    if err != nil {
        return nil, err
    }
    root := &html.Node{Type: html.DocumentNode}
    htmlEl := &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
    root.AppendChild(htmlEl)
    htmlEl.AppendChild(body)
    for _, n := range nodes {
        body.AppendChild(n)
    }
    return goquery.NewDocumentFromNode(root), nil
}

// Render serializes the children of the document body.
func Render(doc *goquery.Document) string {
    if doc == nil {
        return ""
    }
    body := findFirst(doc.Selection.Get(0), "body")
    if body == nil {
        return ""
    }
    var b bytes.Buffer
    for c := body.FirstChild; c != nil; c = c.NextSibling {
        if err := html.Render(&b, c); err != nil {
            return ""
        }
    }
    return b.String()
}

// Body returns the body selection of doc.
func Body(doc *goquery.Document) *goquery.Selection {
    return doc.Find("body").First()
}

func findFirst(n *html.Node, tag string) *html.Node {
    if n == nil {
        return nil
    }
    var res *html.Node
    var dfs func(*html.Node)
    dfs = func(cur *html.Node) {
        if res != nil {
            return
        }
        if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
            res = cur
            return
        }
        for c := cur.FirstChild; c != nil; c = c.NextSibling {
            dfs(c)
            if res != nil {
                return
            }
        }
    }
    dfs(n)
    return res
}

// TrimmedText returns the lowercased, trimmed text content of sel.
func TrimmedText(sel *goquery.Selection) string {
    return strings.ToLower(strings.TrimSpace(sel.Text()))
}

// TrimmedLen counts the runes of the trimmed text content of sel.
func TrimmedLen(sel *goquery.Selection) int {
    return utf8.RuneCountInString(strings.TrimSpace(sel.Text()))
}

// IsHeading reports whether n is an h1-h6 element.
func IsHeading(n *html.Node) bool {
    if n == nil || n.Type != html.ElementNode {
        return false
    }
    switch n.DataAtom {
    case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
        return true
    }
    return false
}

// Is reports whether n is an element with one of the given tag names.
func Is(n *html.Node, tags ...string) bool {
    if n == nil || n.Type != html.ElementNode {
        return false
    }
    for _, t := range tags {
        if strings.EqualFold(n.Data, t) {
            return true
        }
    }
    return false
}

// Snippet returns the first max runes of the collapsed text of sel, for logs.
func Snippet(sel *goquery.Selection, max int) string {
    s := CollapseSpaces(strings.TrimSpace(sel.Text()))
    if utf8.RuneCountInString(s) <= max {
        return s
    }
    return string([]rune(s)[:max])
}

// CollapseSpaces collapses runs of ASCII whitespace into single spaces.
func CollapseSpaces(s string) string {
    var b strings.Builder
    lastSpace := false
    for _, r := range s {
        if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
            if !lastSpace {
                b.WriteByte(' ')
                lastSpace = true
            }
            continue
        }
        b.WriteRune(r)
        lastSpace = false
    }
    return b.String()
}

// Unwrap replaces each element of sel with its children.
func Unwrap(sel *goquery.Selection) {
    sel.Each(func(_ int, s *goquery.Selection) {
        n := s.Get(0)
        if n.Parent == nil {
            return
        }
        for c := n.FirstChild; c != nil; {
            next := c.NextSibling
            n.RemoveChild(c)
            n.Parent.InsertBefore(c, n)
            c = next
        }
        n.Parent.RemoveChild(n)
    })
}

// Detached reports whether n is no longer attached to a document root, which
// happens when an ancestor was removed earlier in the same pass.
func Detached(n *html.Node) bool {
    for p := n; p != nil; p = p.Parent {
        if p.Type == html.DocumentNode {
            return false
        }
    }
    return true
}
