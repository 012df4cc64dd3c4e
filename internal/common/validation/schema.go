package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins field errors into one line for logs and job error messages.
func (r *ValidationResult) Error() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// Schema is a compiled JSON schema, safe for concurrent use.
type Schema struct {
	schema *gojsonschema.Schema
}

// MustCompile panics on an invalid schema document; schemas are package-level
// literals so a failure is a programming error.
func MustCompile(doc map[string]interface{}) *Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("validation: invalid schema: %v", err))
	}
	return &Schema{schema: s}
}

// Validate checks a decoded JSON document (maps, slices, scalars) or any
// value encoding/json can marshal.
func (s *Schema) Validate(document interface{}) *ValidationResult {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_DOCUMENT",
			}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

var nullableString = map[string]interface{}{"type": []interface{}{"string", "null"}}

var intentCoreProperties = map[string]interface{}{
	"entity_type":   map[string]interface{}{"type": "string", "minLength": 1},
	"stat_category": map[string]interface{}{"type": "string", "minLength": 1},
}

// IntentCoreSchema is the hard requirement on a parsed intent: entity_type
// and stat_category present and non-empty. Values outside the known
// enumerations are accepted and fall through template selection.
var IntentCoreSchema = MustCompile(map[string]interface{}{
	"type":       "object",
	"required":   []interface{}{"entity_type", "stat_category"},
	"properties": intentCoreProperties,
})

// IntentSchema adds the types of the optional fields. A document can fail
// it on an optional field alone; callers drop such fields rather than the
// whole intent.
var IntentSchema = MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"entity_type", "stat_category"},
	"properties": map[string]interface{}{
		"entity_type":       intentCoreProperties["entity_type"],
		"stat_category":     intentCoreProperties["stat_category"],
		"entity_name":       nullableString,
		"entity_id":         map[string]interface{}{"type": []interface{}{"string", "number", "null"}},
		"stat_name":         nullableString,
		"time_period":       nullableString,
		"comparison_entity": nullableString,
		"comparison_type":   nullableString,
		"sort_by":           nullableString,
		"sort_order":        nullableString,
		"limit":             map[string]interface{}{"type": []interface{}{"integer", "null"}},
		"confidence":        map[string]interface{}{"type": []interface{}{"number", "null"}},
	},
})

// ResponseSchema guards the envelope produced by the build-response worker.
var ResponseSchema = MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"requestId", "status", "template", "chart", "data", "metadata"},
	"properties": map[string]interface{}{
		"requestId":   map[string]interface{}{"type": "string", "minLength": 1},
		"status":      map[string]interface{}{"type": "string", "enum": []interface{}{"success", "error"}},
		"description": map[string]interface{}{"type": "string"},
		"template":    map[string]interface{}{"type": "string", "minLength": 1},
		"chart": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"type"},
			"properties": map[string]interface{}{
				"type": map[string]interface{}{
					"type": "string",
					"enum": []interface{}{"bar", "line", "table", "pie", "none"},
				},
			},
		},
		"data":  map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "object"}},
		"error": map[string]interface{}{"type": "string"},
		"metadata": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"timestamp", "rowCount"},
			"properties": map[string]interface{}{
				"timestamp": map[string]interface{}{"type": "string"},
				"version":   map[string]interface{}{"type": "string"},
				"rowCount":  map[string]interface{}{"type": "integer", "minimum": 0},
			},
		},
	},
})
