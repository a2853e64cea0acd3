package schema

import (
	"context"
	"errors"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// RawDocument is a loaded OpenAPI payload and its origin.
type RawDocument struct {
	source Source
	raw    []byte
}

// NewRawDocument wraps raw, which must not be empty.
func NewRawDocument(src Source, raw []byte) (RawDocument, error) {
	if src == nil {
		return RawDocument{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return RawDocument{}, errors.New("schema: document is empty")
	}
	return RawDocument{source: src, raw: append([]byte(nil), raw...)}, nil
}

// Source returns the origin of the document.
func (d RawDocument) Source() Source { return d.source }

// Location returns the origin as a string.
func (d RawDocument) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Raw returns a copy of the payload.
func (d RawDocument) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Definition builds a form definition from the request body of operationID.
func (d RawDocument) Definition(ctx context.Context, operationID string) (*model.Definition, error) {
	return Import(ctx, d.raw, operationID)
}
