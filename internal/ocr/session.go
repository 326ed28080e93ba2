package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

// Session owns the scratch directory used to OCR one PDF. Close removes it.
type Session struct {
	dir    string
	pdf    string
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func OpenSession(data []byte, cfg Config, runner Runner, logger *slog.Logger) (*Session, error) {
	dir, err := os.MkdirTemp("", "specs-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create ocr dir: %w", err)
	}
	pdf := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(pdf, data, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	logger.Debug("ocr.session.open", "dir", dir, "bytes", len(data))
	return &Session{dir: dir, pdf: pdf, cfg: cfg, runner: runner, logger: logger}, nil
}

// RecognizePage rasterizes a single 1-based page and runs tesseract on it.
func (s *Session) RecognizePage(ctx context.Context, page int) (string, error) {
	n := strconv.Itoa(page)
	prefix := filepath.Join(s.dir, "page-"+n)

	// pdftoppm -r 144 -f N -l N -png -singlefile <in.pdf> <dir/page-N>
	_, errb, err := s.runner.Run(ctx, s.cfg.Pdftoppm,
		"-r", strconv.Itoa(s.cfg.DPI()), "-f", n, "-l", n, "-png", "-singlefile", s.pdf, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, clip(errb, 512))
	}

	// tesseract <file> stdout -l <lang>
	args := []string{prefix + ".png", "stdout", "-l", s.cfg.TesseractLang}
	if s.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", s.cfg.TessdataDir)
	}
	out, errb, err := s.runner.Run(ctx, s.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, clip(errb, 512))
	}
	return string(out), nil
}

func (s *Session) Dir() string { return s.dir }

func (s *Session) Close() error {
	s.logger.Debug("ocr.session.close", "dir", s.dir)
	return os.RemoveAll(s.dir)
}

func clip(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "...(truncated)"
}
