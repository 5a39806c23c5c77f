package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled holds one compiled validator per *Schema.
var compiled sync.Map // *Schema -> *jsonschema.Schema

// ValidateJSON checks raw against schema after repair and before decoding.
// A nil schema accepts anything. Every failure is an *ErrInvalidResponse
// carrying raw as its Content.
func ValidateJSON(schema *Schema, raw []byte) error {
	if schema == nil {
		return nil
	}
	invalid := func(format string, args ...any) error {
		return &ErrInvalidResponse{Content: string(raw), Err: fmt.Errorf(format, args...)}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return invalid("invalid JSON: %w", err)
	}
	v, err := schema.validator()
	if err != nil {
		return invalid("compile schema %q: %w", schema.Name, err)
	}
	if err := v.Validate(doc); err != nil {
		return invalid("does not match %s: %w", schema.Name, err)
	}
	return nil
}

func (s *Schema) validator() (*jsonschema.Schema, error) {
	if v, ok := compiled.Load(s); ok {
		return v.(*jsonschema.Schema), nil
	}

	// Round-trip through JSON so typed Go slices become the []any the
	// compiler expects.
	raw, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, err
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	url := "mem://" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, err
	}
	v, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	compiled.Store(s, v)
	return v, nil
}
