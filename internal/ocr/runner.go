package ocr

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// stderrLogLimit caps how much of a failing tool's stderr lands in the log line.
const stderrLogLimit = 4 << 10

// toolRunner shells out to pdftoppm and tesseract.
type toolRunner struct {
	logger *slog.Logger
}

func (r toolRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	began := time.Now()
	err := cmd.Run()
	attrs := []any{
		slog.String("tool", name),
		slog.Any("argv", args),
		slog.Duration("took", time.Since(began)),
	}
	if err == nil {
		r.logger.Debug("ocr.tool.done", append(attrs, slog.Int("stdout_bytes", stdout.Len()))...)
		return stdout.Bytes(), stderr.Bytes(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		attrs = append(attrs, slog.Int("exit_code", exitErr.ExitCode()))
	}
	if ctx.Err() != nil {
		err = errors.Join(ctx.Err(), err)
	}
	tail := stderr.Bytes()
	if len(tail) > stderrLogLimit {
		tail = tail[len(tail)-stderrLogLimit:]
	}
	r.logger.Error("ocr.tool.failed", append(attrs, slog.Any("error", err), slog.String("stderr_tail", string(tail)))...)
	return stdout.Bytes(), stderr.Bytes(), err
}
