package schema

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed transaction.schema.json
var transactionSchema []byte

const transactionSchemaURL = "transaction.schema.json"

var ErrInvalidDocument = errors.New("document does not match schema")

// JSONSchemaValidator checks submitted transaction JSON against a compiled
// schema before it is decoded.
type JSONSchemaValidator struct {
	schema *jsonschema.Schema
}

func NewTransactionValidator() (*JSONSchemaValidator, error) {
	return NewJSONSchemaValidator(transactionSchemaURL, transactionSchema)
}

func NewJSONSchemaValidator(url string, schema []byte) (*JSONSchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &JSONSchemaValidator{schema: compiled}, nil
}

func (v *JSONSchemaValidator) Validate(ctx context.Context, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var value any
	if err := json.Unmarshal(doc, &value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := v.schema.Validate(value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}
