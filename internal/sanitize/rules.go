package sanitize

import (
    "fmt"
    "regexp"
    "strings"

    "github.com/PuerkitoBio/goquery"
    "github.com/andybalholm/cascadia"
    "golang.org/x/net/html"
    "golang.org/x/text/cases"

    "github.com/hyperifyio/toursplice/internal/dom"
)

// Rule removes every node matched by Selector that Match accepts. Target
// widens the removal to another node, such as an enclosing widget wrapper;
// when it is nil the matched node itself is removed. Rules are evaluated one
// at a time in slice order, each against the tree left by the previous one.
type Rule struct {
    Name     string
    Selector cascadia.Selector
    Match    func(*goquery.Selection) bool
    Target   func(*goquery.Selection) *goquery.Selection
    // Reverse visits matches in reverse document order so nested empty
    // containers collapse from the inside out.
    Reverse bool
}

// Apply runs r against doc and returns the number of removed nodes.
func (r Rule) Apply(doc *goquery.Document) int {
    if r.Selector == nil {
        return 0
    }
    nodes := doc.FindMatcher(r.Selector).Nodes
    removed := 0
    for k := range nodes {
        n := nodes[k]
        if r.Reverse {
            n = nodes[len(nodes)-1-k]
        }
        if dom.Detached(n) {
            continue
        }
        sel := doc.FindNodes(n)
        if r.Match != nil && !r.Match(sel) {
            continue
        }
        target := sel
        if r.Target != nil {
            target = r.Target(sel)
        }
        for _, t := range target.Nodes {
            if t.Parent != nil && !dom.Detached(t) {
                t.Parent.RemoveChild(t)
                removed++
            }
        }
    }
    return removed
}

// legacyNavigation selects navigation and author widgets left behind by the
// CMS theme the articles were imported from.
var legacyNavigation = []string{
    ".nsg-adjacent-links", ".nsg-adjacent-links-wrapper",
    ".post-navigation", ".nav-links", ".navigation-links",
    ".prev-post", ".next-post", ".post-nav",
    ".pagination", ".page-navigation",
    ".elementor-widget-post-navigation",
    ".elementor-widget-author-box",
    `[data-widget_type="post-navigation.default"]`,
    `[data-widget_type="theme-post-navigation.default"]`,
}

// navigationPhrases are anchor texts that only ever label post navigation.
var navigationPhrases = []string{
    "previous post",
    "next post",
    "prev post",
    "previous",
    "next",
    "overview",
    "← previous",
    "next →",
    "‹ previous",
    "next ›",
    "previous article",
    "next article",
    "previous page",
    "next page",
    "read previous",
    "read next",
    "view previous",
    "view next",
    "back to overview",
    "continue reading",
    "related posts",
    "more posts",
}

var (
    navContainerPrefixRe = regexp.MustCompile(`^(previous|next|prev|overview|navigation|more posts|related posts)\b`)
    navContainerSuffixRe = regexp.MustCompile(`(previous|next)\s*(post|page|article)$`)
    durationRe           = regexp.MustCompile(`\b(hrs?|hours?|minutes|mins?|duration)\b`)
)

const (
    navContainerMaxChars = 100
    shortContainerChars  = 50
    maxCardChars         = 1000
)

// DefaultRules returns the ordered removal rules: legacy widgets, previously
// rendered listings, navigation anchors, navigation containers and finally
// empty containers. vendor is the listing vendor keyword matched in class
// names, ids, card text and scripts.
func DefaultRules(vendor string) []Rule {
    vendor = vendorToken(vendor)
    rules := []Rule{
        {
            Name:     "legacy-navigation",
            Selector: cascadia.MustCompile(strings.Join(legacyNavigation, ", ")),
        },
        {
            Name:     "author-box",
            Selector: cascadia.MustCompile(`[data-widget_type="author-box.default"]`),
            Target:   enclosingWidget,
        },
        {
            Name:     "image-widget",
            Selector: cascadia.MustCompile(`[data-widget_type="image.default"]`),
            Target:   enclosingWidget,
        },
    }
    if vendor != "" {
        rules = append(rules,
            Rule{
                Name:     "prior-listings",
                Selector: cascadia.MustCompile(fmt.Sprintf(`.%[1]s-tours, .tour-item, [class*=%[1]q], [id*=%[1]q]`, vendor)),
            },
        )
    }
    rules = append(rules,
        Rule{
            Name:     "prior-listings-heading",
            Selector: cascadia.MustCompile("h2, h3"),
            Match:    isListingHeading,
            Target:   withListingSiblings,
        },
        Rule{
            Name:     "prior-listing-card",
            Selector: cascadia.MustCompile("div"),
            Match:    func(s *goquery.Selection) bool { return isListingCard(s, vendor) && !hasListingCardDescendant(s, vendor) },
        },
    )
    if vendor != "" {
        rules = append(rules, Rule{
            Name:     "vendor-script",
            Selector: cascadia.MustCompile("script"),
            Match: func(s *goquery.Selection) bool {
                return strings.Contains(strings.ToLower(s.Text()), vendor)
            },
        })
    }
    rules = append(rules,
        Rule{
            Name:     "navigation-anchor",
            Selector: cascadia.MustCompile("a"),
            Match:    func(s *goquery.Selection) bool { return IsNavigationPhrase(s.Text()) },
            Target:   soleChildParentDiv,
        },
        Rule{
            Name:     "navigation-container",
            Selector: cascadia.MustCompile("div, section, nav"),
            Match:    isNavigationContainer,
        },
        Rule{
            Name:     "link-only-container",
            Selector: cascadia.MustCompile("div"),
            Match:    isLinkOnlyContainer,
        },
        Rule{
            Name:     "empty-container",
            Selector: cascadia.MustCompile("div, section, nav"),
            Match:    isEmptyContainer,
            Reverse:  true,
        },
        Rule{
            Name:     "empty-paragraph",
            Selector: cascadia.MustCompile("p"),
            Match:    IsEmptyParagraph,
        },
    )
    return rules
}

// vendorToken lowercases vendor and keeps only characters that are safe
// inside a CSS identifier and attribute value.
func vendorToken(vendor string) string {
    var b strings.Builder
    for _, r := range strings.ToLower(strings.TrimSpace(vendor)) {
        if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
            b.WriteRune(r)
        }
    }
    return b.String()
}

func fold(s string) string {
    return cases.Fold().String(strings.TrimSpace(s))
}

// IsNavigationPhrase reports whether text contains one of the navigation
// phrases as whole words, so "« Previous Post: Hanoi" matches while
// "next-level dining" is not mistaken for "next".
func IsNavigationPhrase(text string) bool {
    t := fold(text)
    if t == "" {
        return false
    }
    for _, p := range navigationPhrases {
        if containsWord(t, p) {
            return true
        }
    }
    return false
}

// containsWord reports whether some occurrence of p in t has a boundary on
// both sides.
func containsWord(t, p string) bool {
    for from := 0; from <= len(t)-len(p); {
        i := strings.Index(t[from:], p)
        if i < 0 {
            return false
        }
        i += from
        if boundary(t, i-1) && boundary(t, i+len(p)) {
            return true
        }
        from = i + 1
    }
    return false
}

// boundary reports whether the byte at i is not an ASCII letter or digit, or
// lies outside t.
func boundary(t string, i int) bool {
    if i < 0 || i >= len(t) {
        return true
    }
    c := t[i]
    return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-')
}

func enclosingWidget(s *goquery.Selection) *goquery.Selection {
    if w := s.Closest(`[data-element_type="widget"]`); w.Length() > 0 {
        return w
    }
    return s
}

func soleChildParentDiv(s *goquery.Selection) *goquery.Selection {
    parent := s.Parent()
    if parent.Length() > 0 && goquery.NodeName(parent) == "div" && parent.Children().Length() == 1 {
        return parent
    }
    return s
}

func isListingHeading(s *goquery.Selection) bool {
    t := fold(s.Text())
    return strings.Contains(t, "highest rated") && (strings.Contains(t, "tour") || strings.Contains(t, "sight-seeing"))
}

func withListingSiblings(s *goquery.Selection) *goquery.Selection {
    related := s.NextUntil("h1, h2, h3").FilterFunction(func(_ int, sib *goquery.Selection) bool {
        t := fold(sib.Text())
        return strings.Contains(t, "book now") || strings.Contains(t, "from:") ||
            strings.Contains(t, "reviews") || strings.Contains(t, "duration")
    })
    return s.AddSelection(related)
}

func isListingCard(s *goquery.Selection, vendor string) bool {
    t := fold(s.Text())
    if len([]rune(t)) > maxCardChars {
        return false
    }
    if strings.Contains(t, "book now") && strings.Contains(t, "from:") {
        return true
    }
    if strings.Contains(t, "reviews") && durationRe.MatchString(t) {
        return true
    }
    return vendor != "" && strings.Contains(t, vendor)
}

// hasListingCardDescendant keeps the card rule on the innermost matching
// div; outer wrappers that only contained cards are emptied and collected
// by the empty-container rule.
func hasListingCardDescendant(s *goquery.Selection, vendor string) bool {
    found := false
    s.Find("div").EachWithBreak(func(_ int, d *goquery.Selection) bool {
        if isListingCard(d, vendor) {
            found = true
            return false
        }
        return true
    })
    return found
}

func isNavigationContainer(s *goquery.Selection) bool {
    t := fold(s.Text())
    if t == "" || len([]rune(t)) >= navContainerMaxChars {
        return false
    }
    return navContainerPrefixRe.MatchString(t) || navContainerSuffixRe.MatchString(t)
}

func isLinkOnlyContainer(s *goquery.Selection) bool {
    children := s.Children()
    if children.Length() == 0 {
        return false
    }
    if s.Find("img, picture, video, iframe, table").Length() > 0 {
        return false
    }
    onlyNav := true
    children.EachWithBreak(func(_ int, c *goquery.Selection) bool {
        switch goquery.NodeName(c) {
        case "a", "br", "span":
            return true
        case "div":
            if dom.TrimmedLen(c) < shortContainerChars {
                return true
            }
        }
        onlyNav = false
        return false
    })
    if !onlyNav {
        return false
    }
    t := fold(s.Text())
    return strings.Contains(t, "previous") || strings.Contains(t, "next") ||
        strings.Contains(t, "overview") || len([]rune(t)) < shortContainerChars
}

func isEmptyContainer(s *goquery.Selection) bool {
    return strings.TrimSpace(s.Text()) == "" && s.Children().Length() == 0
}

// IsEmptyParagraph reports whether a paragraph has no text and at most <br>
// children.
func IsEmptyParagraph(s *goquery.Selection) bool {
    if strings.TrimSpace(s.Text()) != "" {
        return false
    }
    for c := s.Get(0).FirstChild; c != nil; c = c.NextSibling {
        if c.Type == html.ElementNode && c.Data != "br" {
            return false
        }
    }
    return true
}
