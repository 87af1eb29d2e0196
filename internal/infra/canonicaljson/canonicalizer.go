package canonicaljson

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/go-json-experiment/json/jsontext"
)

var ErrEmptyDocument = errors.New("empty json document")

// Canonicalizer rewrites transaction JSON into RFC 8785 form so equal
// transactions hash to the same tx hash.
type Canonicalizer struct{}

func (Canonicalizer) Canonicalize(ctx context.Context, input []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(input)) == 0 {
		return nil, ErrEmptyDocument
	}

	value := jsontext.Value(append([]byte(nil), input...))
	if err := value.Canonicalize(); err != nil {
		return nil, fmt.Errorf("canonicalize tx json: %w", err)
	}

	return []byte(value), nil
}
