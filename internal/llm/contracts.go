package llm

import (
	"context"

	"github.com/joseph-ayodele/specs-importer/internal/entity"
)

// Extraction is the header + rows structure returned by the model.
type Extraction struct {
	Header entity.Header       `json:"header"`
	Rows   []entity.ParsedLine `json:"rows"`
}

type ExtractRequest struct {
	Text              string
	CustomInstruction string // from a parsing template; empty means defaults only
}

// StructuredExtractor is the interface our pipeline depends on.
// Implementations return a common.ErrTransport error when the call itself fails and a
// common.ErrStructureParse error when the payload cannot be decoded; the raw payload is
// returned alongside whenever one was received.
type StructuredExtractor interface {
	ExtractStructured(ctx context.Context, req ExtractRequest) (*Extraction, []byte /*rawJSON*/, error)
}

// ExtractorFunc adapts a plain function to StructuredExtractor.
type ExtractorFunc func(ctx context.Context, req ExtractRequest) (*Extraction, []byte, error)

func (f ExtractorFunc) ExtractStructured(ctx context.Context, req ExtractRequest) (*Extraction, []byte, error) {
	return f(ctx, req)
}
