package ocr

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// Fragment is a positioned run of text on a page. Y grows upward.
type Fragment struct {
	X, Y float64
	S    string
}

// ReadTextLayer returns the embedded text of each page, laid out line by line.
func ReadTextLayer(data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("read pdf text layer: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, LayoutLines(Runs(p.Content().Text)))
	}
	return pages, nil
}

// Runs rebuilds show-text runs from positioned glyphs in content-stream order.
// A glyph continues the current run when it sits on the same baseline and starts
// near where the previous glyph ended; a positioned gap wider than a fifth of the
// font size inside a run reads as a word space. Line breaks and whitespace-only
// runs are dropped.
func Runs(glyphs []pdf.Text) []Fragment {
	var out []Fragment
	var cur *Fragment
	var b strings.Builder
	var end float64

	flush := func() {
		if cur != nil && strings.TrimSpace(b.String()) != "" {
			cur.S = strings.TrimSpace(b.String())
			out = append(out, *cur)
		}
		cur = nil
		b.Reset()
	}

	for _, g := range glyphs {
		if g.S == "" || g.S == "\n" || g.S == "\r" {
			continue
		}
		size := math.Max(g.FontSize, 1)
		gap := g.X - end
		if cur == nil || math.Round(g.Y) != math.Round(cur.Y) || gap > size || gap < -size/2 {
			flush()
			cur = &Fragment{X: g.X, Y: g.Y}
		} else if gap > size/5 && g.S != " " && !strings.HasSuffix(b.String(), " ") {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		end = g.X + g.W
	}
	flush()
	return out
}

// LayoutLines groups fragments into lines by rounded Y, top line first, and orders each
// line left to right. Fragments are joined with three spaces, lines with a newline.
func LayoutLines(frags []Fragment) string {
	lines := map[float64][]Fragment{}
	for _, f := range frags {
		y := math.Round(f.Y)
		lines[y] = append(lines[y], f)
	}
	ys := make([]float64, 0, len(lines))
	for y := range lines {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ys)))

	out := make([]string, 0, len(ys))
	for _, y := range ys {
		line := lines[y]
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
		parts := make([]string, 0, len(line))
		for _, f := range line {
			parts = append(parts, norm.NFC.String(f.S))
		}
		out = append(out, strings.Join(parts, "   "))
	}
	return strings.Join(out, "\n")
}
