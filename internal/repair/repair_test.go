package repair

import (
    "strings"
    "testing"
)

func TestNormalize_WellFormedIsUnchanged(t *testing.T) {
    inputs := []string{
        "",
        "<h2>Intro</h2>\n<p>Hello <a href=\"/x\">there</a></p>\n",
        `<p><a href="https://x.com" target="_blank" rel="noopener">X</a></p>`,
        `<div class="elementor-element"><p>untouched builder markup</p></div>`,
    }
    for _, in := range inputs {
        out, rep := NormalizeReport(in)
        if out != in || !rep.Skipped {
            t.Fatalf("well-formed input changed:\n in: %q\nout: %q", in, out)
        }
    }
}

func TestNormalize_DecodesEncodedMarkup(t *testing.T) {
    in := "&lt;h2&gt;Title&lt;/h2&gt;&lt;p&gt;Body &amp;amp; more&lt;/p&gt;"
    got := Normalize(in)
    want := "<h2>Title</h2><p>Body &amp; more</p>"
    if got != want {
        t.Fatalf("got %q, want %q", got, want)
    }
}

func TestNormalize_DoubleEncoded(t *testing.T) {
    got := Normalize("&amp;lt;p&amp;gt;Deep&amp;lt;/p&amp;gt;")
    if got != "<p>Deep</p>" {
        t.Fatalf("got %q", got)
    }
}

func TestNormalize_FixesAllSignatures(t *testing.T) {
    in := `<p>Intro</p><p><br></p>` +
        `<img src="data:image/svg+xml,x" data-src="/a.jpg">` +
        `<p><a href="https://x.com" target="_blank">X</a></p>`
    out, rep := NormalizeReport(in)
    if rep.Skipped || rep.Images.Promoted != 1 || rep.Links != 1 {
        t.Fatalf("unexpected report %+v", rep)
    }
    for _, bad := range []string{"<p><br", "data-src", "svg+xml"} {
        if strings.Contains(out, bad) {
            t.Fatalf("output still contains %q: %s", bad, out)
        }
    }
    if !strings.Contains(out, `rel="noopener noreferrer nofollow"`) {
        t.Fatalf("link not normalized: %s", out)
    }
}

func TestNormalize_Idempotent(t *testing.T) {
    inputs := []string{
        "&lt;h2&gt;Title&lt;/h2&gt;&lt;p&gt;Body&lt;/p&gt;",
        `<div class="elementor-element e-con"><div class="elementor-widget"><h2>Hi</h2></div></div><p><br/></p>`,
        `Loose text <strong>run</strong><p><br></p><img data-src="/a.jpg" src="data:image/svg+xml,x">`,
    }
    for _, in := range inputs {
        once := Normalize(in)
        if twice := Normalize(once); twice != once {
            t.Fatalf("not idempotent:\nonce:  %q\ntwice: %q", once, twice)
        }
    }
}

func TestNormalize_ConservativeForShortBuilderContent(t *testing.T) {
    in := `<div class="elementor-element"><div class="elementor-widget"><p>Kept</p></div></div><p><br></p>`
    out, rep := NormalizeReport(in)
    if !rep.Conservative {
        t.Fatalf("expected conservative repair")
    }
    if out != "<div><div><p>Kept</p></div></div>" {
        t.Fatalf("got %q", out)
    }
}
