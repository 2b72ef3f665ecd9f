package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// embeddedAnnounceSchema is used when no external schema file is
// configured or the configured path cannot be read. It bounds the
// ANNOUNCE summary length and endpoint shape per SPEC_FULL.md §3.
const embeddedAnnounceSchema = `{
  "type": "object",
  "properties": {
    "summary": { "type": "string", "maxLength": 1000 },
    "endpoints": {
      "type": "array",
      "items": { "type": "string" }
    }
  },
  "required": ["summary", "endpoints"]
}`

// AnnounceValidator checks an ANNOUNCE's summary/endpoints shape
// against a JSON Schema, falling back to an embedded copy when no
// file is supplied or the file is missing.
type AnnounceValidator struct {
	schema *gojsonschema.Schema
}

// NewAnnounceValidator compiles the schema at path, or the embedded
// default when path is empty or unreadable.
func NewAnnounceValidator(path string) (*AnnounceValidator, error) {
	raw := embeddedAnnounceSchema
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			raw = string(data)
		}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("config: compile announce schema: %w", err)
	}
	return &AnnounceValidator{schema: schema}, nil
}

// Validate marshals v (typically a summary/endpoints pair) and checks
// it against the compiled schema.
func (v *AnnounceValidator) Validate(summary string, endpoints []string) error {
	doc := map[string]interface{}{"summary": summary, "endpoints": endpoints}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(b))
	if err != nil {
		return fmt.Errorf("config: validate announce: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("config: announce invalid: %s", strings.Join(msgs, "; "))
	}
	return nil
}
