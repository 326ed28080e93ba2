package ocr

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutLines(t *testing.T) {
	frags := []Fragment{
		{X: 300, Y: 700.2, S: "7.2 - 7.6"},
		{X: 50, Y: 699.8, S: "pH"},
		{X: 50, Y: 720, S: "Specification"},
		{X: 50, Y: 680, S: "Appearance"},
		{X: 300, Y: 680, S: "Clear"},
	}
	want := "Specification\npH   7.2 - 7.6\nAppearance   Clear"
	assert.Equal(t, want, LayoutLines(frags))
}

func TestLayoutLinesNFC(t *testing.T) {
	// "e" + combining acute composes to U+00E9.
	got := LayoutLines([]Fragment{{X: 0, Y: 0, S: "Cafe\u0301"}})
	assert.Equal(t, "Caf\u00e9", got)
}

func TestLayoutLinesEmpty(t *testing.T) {
	assert.Equal(t, "", LayoutLines(nil))
}

func TestReadTextLayerRejectsGarbage(t *testing.T) {
	_, err := ReadTextLayer([]byte("this is not a pdf"))
	assert.Error(t, err)
}

func TestPageCountRejectsGarbage(t *testing.T) {
	_, err := PageCount([]byte("this is not a pdf"))
	assert.Error(t, err)
}

// buildPDF writes a one-page PDF whose page content is stream, with a single
// WinAnsi Helvetica font named F1.
func buildPDF(stream string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestReadTextLayerKernedRuns(t *testing.T) {
	data := buildPDF("BT /F1 12 Tf 72 720 Td [(Ass) -20 (ay by HP) 10 (LC)] TJ 0 -20 Td (pH) Tj 200 0 Td (7.2 - 7.6) Tj ET")

	pages, err := ReadTextLayer(data)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Assay by HPLC\npH   7.2 - 7.6", pages[0])
}

func TestRuns(t *testing.T) {
	glyphs := []pdf.Text{
		{FontSize: 10, X: 50, Y: 700, W: 5, S: "p"},
		{FontSize: 10, X: 55, Y: 700, W: 5, S: "H"},
		{FontSize: 10, X: 60, Y: 700, S: "\n"},
		{FontSize: 10, X: 60, Y: 700, S: ""},
		// positioned word gap
		{FontSize: 10, X: 63, Y: 700, W: 5, S: "v"},
		// column gap
		{FontSize: 10, X: 200, Y: 700, W: 5, S: "7"},
		{FontSize: 10, X: 205, Y: 700, W: 2, S: " "},
		{FontSize: 10, X: 50, Y: 680, W: 5, S: " "},
	}
	assert.Equal(t, []Fragment{
		{X: 50, Y: 700, S: "pH v"},
		{X: 200, Y: 700, S: "7"},
	}, Runs(glyphs))
}
