package pseudotable

import (
    "strings"
    "testing"
    "time"
)

func TestRebuild_TwoRowSpanBecomesTable(t *testing.T) {
    in := `<p>| Name | Price |<br>| Tour | $10 |</p>`
    got := Rebuild(in)
    want := `<p><table><tr><th>Name</th><th>Price</th></tr><tr><td>Tour</td><td>$10</td></tr></table></p>`
    if got != want {
        t.Fatalf("Rebuild:\n got: %s\nwant: %s", got, want)
    }
}

func TestRebuild_DropsSeparatorLines(t *testing.T) {
    in := "| A | B |<br/>|---|:---:|<br />| 1 | 2 |<br>| 3 | 4 |"
    got := Rebuild(in)
    if strings.Count(got, "<th>") != 2 || strings.Count(got, "<td>") != 4 {
        t.Fatalf("unexpected table: %s", got)
    }
    if strings.Contains(got, "---") {
        t.Fatalf("separator row should be discarded: %s", got)
    }
}

func TestRebuild_SingleLineUntouched(t *testing.T) {
    in := `<p>| only one row |</p>`
    if got := Rebuild(in); got != in {
        t.Fatalf("single line span should stay unconverted, got %s", got)
    }
}

func TestRebuild_HeaderPlusSeparatorOnlyUntouched(t *testing.T) {
    in := `<p>| H1 | H2 |<br>| --- | --- |</p>`
    if got := Rebuild(in); got != in {
        t.Fatalf("span with one surviving row should stay, got %s", got)
    }
}

func TestRebuild_DropsEmptyCells(t *testing.T) {
    got := Rebuild("| a || b |<br>| 1 | | 2 |")
    want := "<table><tr><th>a</th><th>b</th></tr><tr><td>1</td><td>2</td></tr></table>"
    if got != want {
        t.Fatalf("got %s, want %s", got, want)
    }
}

func TestRebuild_KeepsTrailingText(t *testing.T) {
    got := Rebuild("<p>Intro | a | b |<br>| 1 | 2 |<br>Closing words</p>")
    want := "<p>Intro <table><tr><th>a</th><th>b</th></tr><tr><td>1</td><td>2</td></tr></table>Closing words</p>"
    if got != want {
        t.Fatalf("got %s, want %s", got, want)
    }
}

func TestRebuild_MultipleSpans(t *testing.T) {
    in := "<p>| a | b |<br>| 1 | 2 |</p><p>Between</p><p>| c | d |<br>| 3 | 4 |</p>"
    got := Rebuild(in)
    if strings.Count(got, "<table>") != 2 {
        t.Fatalf("expected two tables, got %s", got)
    }
    if !strings.Contains(got, "<p>Between</p>") {
        t.Fatalf("text between spans lost: %s", got)
    }
}

func TestRebuild_PreservesRealTables(t *testing.T) {
    in := "<table><tr><td>| x | y |<br>| 1 | 2 |</td></tr></table>"
    if got := Rebuild(in); got != in {
        t.Fatalf("content of an existing table must stay untouched, got %s", got)
    }
}

func TestRebuild_NoPipes(t *testing.T) {
    in := "<p>plain</p>"
    if got := Rebuild(in); got != in {
        t.Fatalf("got %s", got)
    }
    if Rebuild("") != "" {
        t.Fatalf("empty input should stay empty")
    }
}

func TestRebuild_ManyProsePipesScaleLinearly(t *testing.T) {
    in := strings.Repeat("<p>Hanoi | Vietnam travel guide text here</p>", 20000)
    start := time.Now()
    got := Rebuild(in)
    if elapsed := time.Since(start); elapsed > 2*time.Second {
        t.Fatalf("Rebuild took %v on %d bytes", elapsed, len(in))
    }
    if got != in {
        t.Fatalf("prose pipes were rewritten")
    }
}

func TestRebuild_LongSingleLineOfPipes(t *testing.T) {
    in := "<p>" + strings.Repeat("a | ", 50000) + "end</p>"
    start := time.Now()
    got := Rebuild(in)
    if elapsed := time.Since(start); elapsed > 2*time.Second {
        t.Fatalf("Rebuild took %v on %d bytes", elapsed, len(in))
    }
    if got != in {
        t.Fatalf("single line was rewritten")
    }
}

func TestRebuild_SpanAfterRealTable(t *testing.T) {
    in := `<TABLE><tr><td>| x | y |</td></tr></TABLE><p>| A | B |<br/>| 1 | 2 |</p>`
    got := Rebuild(in)
    want := `<TABLE><tr><td>| x | y |</td></tr></TABLE><p><table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table></p>`
    if got != want {
        t.Fatalf("got %q, want %q", got, want)
    }
}
