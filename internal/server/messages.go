package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/specs-importer/internal/common"
	"github.com/joseph-ayodele/specs-importer/internal/core"
	"github.com/joseph-ayodele/specs-importer/internal/entity"
	"github.com/joseph-ayodele/specs-importer/internal/ocr"
	"google.golang.org/protobuf/types/known/structpb"
)

// DocumentMessage is one input document. Exactly one of Text or PDFBase64 is set.
type DocumentMessage struct {
	Name      string `json:"name"`
	Text      string `json:"text,omitempty"`
	PDFBase64 string `json:"pdfBase64,omitempty"`
}

type ParseDocumentRequest struct {
	Document  DocumentMessage         `json:"document"`
	Template  string                  `json:"template,omitempty"`
	Catalogue []entity.CatalogueEntry `json:"catalogue,omitempty"` // empty means the stored snapshot
}

type ParseBatchRequest struct {
	Documents []DocumentMessage       `json:"documents"`
	Template  string                  `json:"template,omitempty"`
	Catalogue []entity.CatalogueEntry `json:"catalogue,omitempty"`
}

type BatchEventMessage struct {
	BatchID string              `json:"batchId"`
	Index   int                 `json:"index"`
	Total   int                 `json:"total"`
	File    string              `json:"file"`
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Spec    *entity.ProductSpec `json:"spec,omitempty"`
}

func eventMessage(batchID string, ev core.BatchEvent) BatchEventMessage {
	return BatchEventMessage{
		BatchID: batchID,
		Index:   ev.Index,
		Total:   ev.Total,
		File:    ev.File,
		Status:  string(ev.Status),
		Message: ev.Message,
		Spec:    ev.Spec,
	}
}

func (m DocumentMessage) validate(v *common.Validator, field string) {
	v.Field(field+".name", m.Name, common.Required, common.MaxLength(512))
	v.Check(m.Text != "" || m.PDFBase64 != "", field, m.Name, "needs text or pdfBase64")
}

func (m DocumentMessage) toDocument() (ocr.Document, error) {
	doc := ocr.Document{Name: m.Name, Text: m.Text}
	if m.PDFBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(m.PDFBase64))
		if err != nil {
			return doc, common.NewAppError("INVALID_DOCUMENT", fmt.Sprintf("%s: pdfBase64 is not valid base64", m.Name), common.ErrInvalidInput)
		}
		doc.Data = data
	}
	return doc, nil
}

// ToStruct converts any JSON-shaped value to a Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// FromStruct decodes a Struct into out through its JSON form.
func FromStruct(s *structpb.Struct, out any) error {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return common.NewAppError("INVALID_REQUEST", "malformed request", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}
	return nil
}
