// Package pseudotable rebuilds pipe-delimited pseudo-tables authored as plain
// text lines separated by <br> into real <table> markup. It works on the raw
// string, before the body is parsed into a DOM.
package pseudotable

import (
    "regexp"
    "strings"
)

var (
    rowRe       = regexp.MustCompile(`^\|.*[^|\s].*\|$`)
    separatorRe = regexp.MustCompile(`^[-|:\s]*$`)
)

// span is a run of contiguous pipe rows found in the raw string.
type span struct {
    start int
    end   int
    rows  []string
}

// Rebuild replaces every pipe-delimited span with at least two non-separator
// rows by a <table>. Spans that do not qualify are left untouched, as is the
// content of existing <table> elements. It runs in a single left-to-right
// pass over s.
func Rebuild(s string) string {
    if !strings.Contains(s, "|") {
        return s
    }
    tables := tableRanges(s)
    var b strings.Builder
    last, pos, t := 0, 0, 0
    for pos < len(s) {
        k := strings.IndexByte(s[pos:], '|')
        if k < 0 {
            break
        }
        i := pos + k
        for t < len(tables) && tables[t][1] <= i {
            t++
        }
        if t < len(tables) && tables[t][0] <= i {
            pos = tables[t][1]
            continue
        }
        sp, firstLineEnd := scanSpan(s, i)
        if len(sp.rows) == 0 {
            // no later pipe on this line can start a row either
            pos = max(firstLineEnd, i+1)
            continue
        }
        pos = sp.end
        table, ok := buildTable(sp.rows)
        if !ok {
            continue
        }
        b.WriteString(s[last:sp.start])
        b.WriteString(table)
        last = sp.end
    }
    if last == 0 {
        return s
    }
    b.WriteString(s[last:])
    return b.String()
}

// scanSpan collects the contiguous pipe rows starting at the pipe at index i
// and also returns where the first line ends. The span stops at the first
// non-<br> tag, the first line that is not a pipe row, or the end of the
// input.
func scanSpan(s string, i int) (span, int) {
    sp := span{start: i, end: i}
    firstLineEnd := -1
    for j := i; ; {
        end, next := nextLine(s, j)
        if firstLineEnd < 0 {
            firstLineEnd = end
        }
        line := strings.TrimSpace(s[j:end])
        if !rowRe.MatchString(line) {
            break
        }
        sp.rows = append(sp.rows, line)
        if next < 0 {
            sp.end = end
            break
        }
        // consume the line break that follows a row; the table is a block
        sp.end = next
        j = next
    }
    return sp, firstLineEnd
}

// nextLine returns the end of the line starting at j and the start of the
// following line. next is -1 when the line is ended by a tag other than
// <br> or by the end of s.
func nextLine(s string, j int) (end, next int) {
    k := strings.IndexByte(s[j:], '<')
    if k < 0 {
        return len(s), -1
    }
    end = j + k
    if n := brLen(s[end:]); n > 0 {
        return end, end + n
    }
    return end, -1
}

// brLen returns the length of the <br>, <br/> or <br /> tag at the start of
// s, or 0.
func brLen(s string) int {
    if len(s) < 4 || s[0] != '<' || (s[1]|0x20) != 'b' || (s[2]|0x20) != 'r' {
        return 0
    }
    i := 3
    for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r' || s[i] == '\f') {
        i++
    }
    if i < len(s) && s[i] == '/' {
        i++
    }
    if i < len(s) && s[i] == '>' {
        return i + 1
    }
    return 0
}

// tableRanges returns the [open, past-close) offsets of the top-level
// <table> elements in s. An unclosed table runs to the end of s.
func tableRanges(s string) [][2]int {
    lower := asciiLower(s)
    var out [][2]int
    for pos := 0; pos < len(lower); {
        o := strings.Index(lower[pos:], "<table")
        if o < 0 {
            break
        }
        o += pos
        c := strings.Index(lower[o:], "</table>")
        if c < 0 {
            out = append(out, [2]int{o, len(s)})
            break
        }
        end := o + c + len("</table>")
        out = append(out, [2]int{o, end})
        pos = end
    }
    return out
}

// asciiLower lowercases ASCII letters only, so offsets into the result are
// offsets into s.
func asciiLower(s string) string {
    b := []byte(s)
    for i, c := range b {
        if c >= 'A' && c <= 'Z' {
            b[i] = c + 'a' - 'A'
        }
    }
    return string(b)
}

func buildTable(rows []string) (string, bool) {
    var kept [][]string
    for _, r := range rows {
        if separatorRe.MatchString(r) {
            continue
        }
        cells := splitCells(r)
        if len(cells) == 0 {
            continue
        }
        kept = append(kept, cells)
    }
    if len(kept) < 2 {
        return "", false
    }
    var b strings.Builder
    b.WriteString("<table>")
    for idx, cells := range kept {
        tag := "td"
        if idx == 0 {
            tag = "th"
        }
        b.WriteString("<tr>")
        for _, c := range cells {
            b.WriteString("<" + tag + ">" + c + "</" + tag + ">")
        }
        b.WriteString("</tr>")
    }
    b.WriteString("</table>")
    return b.String(), true
}

func splitCells(row string) []string {
    parts := strings.Split(row, "|")
    cells := make([]string, 0, len(parts))
    for _, p := range parts {
        if c := strings.TrimSpace(p); c != "" {
            cells = append(cells, c)
        }
    }
    return cells
}
