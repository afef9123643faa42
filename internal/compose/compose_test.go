package compose

import (
    "errors"
    "io"
    "strings"
    "testing"

    "github.com/hyperifyio/toursplice/internal/inject"
    "github.com/hyperifyio/toursplice/internal/listing"
)

type stubRenderer struct{ out string }

func (s stubRenderer) Render(w io.Writer, _ listing.Block) error {
    _, err := io.WriteString(w, s.out)
    return err
}

type failingRenderer struct{}

func (failingRenderer) Render(io.Writer, listing.Block) error { return errors.New("boom") }

func TestSplit(t *testing.T) {
    before, after, ok := Split("<p>a</p>" + inject.MarkerHTML + "<h2>b</h2>")
    if !ok || before != "<p>a</p>" || after != "<h2>b</h2>" {
        t.Fatalf("Split=%q,%q,%v", before, after, ok)
    }
    before, after, ok = Split("<p>a</p>")
    if ok || before != "<p>a</p>" || after != "" {
        t.Fatalf("Split without marker=%q,%q,%v", before, after, ok)
    }
}

func TestCompose_SplicesAtMarker(t *testing.T) {
    got, err := String("<p>a</p>"+inject.MarkerHTML+"<h2>b</h2>", listing.Block{}, stubRenderer{"[TOURS]"})
    if err != nil {
        t.Fatal(err)
    }
    if got != "<p>a</p>[TOURS]<h2>b</h2>" {
        t.Fatalf("got %q", got)
    }
}

func TestCompose_NoMarkerAppendsBlock(t *testing.T) {
    got, _ := String("<p>a</p>", listing.Block{}, stubRenderer{"[TOURS]"})
    if got != "<p>a</p>[TOURS]" {
        t.Fatalf("got %q", got)
    }
}

func TestCompose_RendererError(t *testing.T) {
    if _, err := String("<p>a</p>", listing.Block{}, failingRenderer{}); err == nil || !strings.Contains(err.Error(), "boom") {
        t.Fatalf("expected wrapped renderer error, got %v", err)
    }
}

func TestHTMLRenderer_States(t *testing.T) {
    r := NewHTMLRenderer()
    var b strings.Builder
    if err := r.Render(&b, listing.Block{City: "Hue", Status: listing.StatusSuccess}); err != nil || b.Len() != 0 {
        t.Fatalf("empty success block should render nothing: %q %v", b.String(), err)
    }

    b.Reset()
    _ = r.Render(&b, listing.Block{City: "Hue", Status: listing.StatusNoDestination})
    if !strings.Contains(b.String(), "No destination mapping") || !strings.Contains(b.String(), "Popular Tours in Hue") {
        t.Fatalf("no-destination state: %s", b.String())
    }

    b.Reset()
    _ = r.Render(&b, listing.Block{City: "Hue", Status: listing.StatusError, Error: "HTTP 503"})
    if !strings.Contains(b.String(), "Tours temporarily unavailable. HTTP 503") {
        t.Fatalf("error state: %s", b.String())
    }

    b.Reset()
    _ = r.Render(&b, listing.Block{City: "Hue", Status: listing.StatusError})
    if !strings.Contains(b.String(), "Please try again later.") {
        t.Fatalf("error fallback text: %s", b.String())
    }

    b.Reset()
    _ = r.Render(&b, listing.Block{City: "Hue", Status: listing.StatusException, Error: "timeout"})
    if !strings.Contains(b.String(), "Tours temporarily unavailable. timeout") {
        t.Fatalf("exception state: %s", b.String())
    }
}

func TestHTMLRenderer_Cards(t *testing.T) {
    block := listing.Block{City: "Hanoi", Status: listing.StatusMock, Items: []listing.Listing{
        {ProductCode: "P1", Title: "Food & Beer Tour", ShortDescription: "<b>Eat</b> well", Price: "$25",
            Rating: 4.6, ReviewCount: 12, Duration: "3 hours", Thumbnail: "https://img.test/p1.jpg",
            Link: "https://www.viator.com/tours/351/P1"},
        {ProductCode: "P2", Title: "Unrated"},
    }}
    var b strings.Builder
    if err := NewHTMLRenderer().Render(&b, block); err != nil {
        t.Fatal(err)
    }
    out := b.String()
    for _, want := range []string{
        "Highest Rated Sight-Seeing Tours to Take in Hanoi",
        "Food &amp; Beer Tour",
        "<b>Eat</b> well",
        "From: $25",
        "(12 reviews)",
        "3 hours",
        `rel="nofollow noopener noreferrer sponsored"`,
        "No reviews",
        "Link unavailable",
        "No image",
    } {
        if !strings.Contains(out, want) {
            t.Fatalf("missing %q in %s", want, out)
        }
    }
    if strings.Count(out, "<article") != 2 {
        t.Fatalf("expected two cards: %s", out)
    }
    if strings.Count(out, "star-full") != 4 || strings.Count(out, "star-half") != 1 {
        t.Fatalf("unexpected stars: %s", out)
    }
}

func TestStarsFor(t *testing.T) {
    tests := []struct {
        in   float64
        want Stars
    }{
        {4.6, Stars{Rated: true, Full: 4, Half: 1, Empty: 0}},
        {4.4, Stars{Rated: true, Full: 4, Half: 0, Empty: 1}},
        {7, Stars{Rated: true, Full: 5, Half: 0, Empty: 0}},
        {0, Stars{Rated: false, Full: 0, Half: 0, Empty: 5}},
    }
    for _, tt := range tests {
        if got := StarsFor(tt.in); got != tt.want {
            t.Errorf("StarsFor(%v)=%+v, want %+v", tt.in, got, tt.want)
        }
    }
}
