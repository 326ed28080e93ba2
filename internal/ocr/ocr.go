package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/joseph-ayodele/specs-importer/internal/common"
)

const (
	MethodText    = "text"
	MethodPDFText = "pdf-text"
	MethodPDFOCR  = "pdf-ocr"

	// SparsePageChars is the trimmed length below which a page is treated as scanned.
	SparsePageChars = 50
)

type Config struct {
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	Scale         float64 // raster scale relative to 72 DPI, default 2
}

// Document is one input to the pipeline: either inline text or PDF bytes.
type Document struct {
	Name string
	Data []byte
	Text string
}

type ExtractionResult struct {
	Text         string
	Pages        int
	Method       string // MethodText | MethodPDFText | MethodPDFOCR
	Language     string
	Duration     time.Duration
	Warnings     []string
	FlaggedPages []int // 1-based pages that triggered OCR
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger

	textLayer func(data []byte) ([]string, error)
	pageCount func(data []byte) (int, error)
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	return &Extractor{
		cfg:       cfg,
		runner:    toolRunner{logger: logger},
		logger:    logger,
		textLayer: ReadTextLayer,
		pageCount: PageCount,
	}
}

// DPI is the rasterization resolution used for OCR.
func (c Config) DPI() int {
	return int(math.Round(72 * c.Scale))
}

// Extract returns the document's text: inline text as-is, otherwise the PDF text layer,
// falling back to OCR of every page when any page looks scanned.
func (e *Extractor) Extract(ctx context.Context, doc Document) (ExtractionResult, error) {
	start := time.Now()
	if doc.Text != "" || len(doc.Data) == 0 {
		if strings.TrimSpace(doc.Text) == "" {
			return ExtractionResult{Method: MethodText}, common.NewExtractionError("document is empty", nil)
		}
		return ExtractionResult{Text: doc.Text, Pages: 1, Method: MethodText, Duration: time.Since(start)}, nil
	}

	res := ExtractionResult{Method: MethodPDFText}
	pages, err := e.textLayer(doc.Data)
	if err != nil {
		e.logger.Warn("ocr.text_layer.failed", "doc", doc.Name, "error", err)
		res.Warnings = append(res.Warnings, err.Error())
	}
	res.FlaggedPages = SparsePages(pages)
	text := strings.Join(pages, "\n\n")

	if err == nil && len(res.FlaggedPages) == 0 && strings.TrimSpace(text) != "" {
		res.Text = text
		res.Pages = len(pages)
		res.Duration = time.Since(start)
		e.logger.Debug("ocr.text_layer.ok", "doc", doc.Name, "pages", res.Pages, "chars", len(text))
		return res, nil
	}

	e.logger.Info("ocr.fallback",
		"doc", doc.Name,
		"flagged_pages", res.FlaggedPages,
		"text_layer_pages", len(pages),
	)
	count, cerr := e.pageCount(doc.Data)
	if cerr != nil || count == 0 {
		if cerr != nil {
			res.Warnings = append(res.Warnings, cerr.Error())
		}
		count = len(pages)
	}
	if count == 0 {
		res.Duration = time.Since(start)
		return res, common.NewExtractionError("pdf has no readable pages", cerr)
	}

	ocrText, warns, err := e.ocrPages(ctx, doc, count)
	res.Warnings = append(res.Warnings, warns...)
	res.Method = MethodPDFOCR
	res.Language = e.cfg.TesseractLang
	res.Pages = count
	res.Duration = time.Since(start)
	if err != nil {
		return res, common.NewExtractionError("ocr failed", err)
	}
	if strings.TrimSpace(ocrText) == "" {
		return res, common.NewExtractionError("empty text layer and OCR", nil)
	}
	res.Text = ocrText
	return res, nil
}

func (e *Extractor) ocrPages(ctx context.Context, doc Document, count int) (string, []string, error) {
	sess, err := OpenSession(doc.Data, e.cfg, e.runner, e.logger)
	if err != nil {
		return "", nil, err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			e.logger.Warn("ocr.session.close_failed", "doc", doc.Name, "error", err)
		}
	}()

	var texts, warns []string
	for page := 1; page <= count; page++ {
		if err := ctx.Err(); err != nil {
			return "", warns, err
		}
		txt, err := sess.RecognizePage(ctx, page)
		if err != nil {
			e.logger.Warn("ocr.page.failed", "doc", doc.Name, "page", page, "error", err)
			warns = append(warns, fmt.Sprintf("page %d: %v", page, err))
			continue
		}
		texts = append(texts, strings.TrimRight(txt, "\n\f "))
	}
	return strings.Join(texts, "\n\n"), warns, nil
}

// SparsePages returns the 1-based numbers of pages whose trimmed text is shorter than
// SparsePageChars.
func SparsePages(pages []string) []int {
	var out []int
	for i, p := range pages {
		if len([]rune(strings.TrimSpace(p))) < SparsePageChars {
			out = append(out, i+1)
		}
	}
	return out
}
