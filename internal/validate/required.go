package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RequiredFieldsRule reports absent or empty top-level fields. Presence is
// checked through a compiled JSON Schema; emptiness (null, "", empty array)
// is checked on top since schema "required" only covers key existence.
type RequiredFieldsRule struct {
	fields []string
	schema *jsonschema.Schema
}

func NewRequiredFieldsRule(fields []string) (*RequiredFieldsRule, error) {
	doc := map[string]any{
		"type":     "object",
		"required": fields,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode required-fields schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("required.json", strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("add required-fields schema: %w", err)
	}
	schema, err := compiler.Compile("required.json")
	if err != nil {
		return nil, fmt.Errorf("compile required-fields schema: %w", err)
	}
	return &RequiredFieldsRule{fields: fields, schema: schema}, nil
}

func (r *RequiredFieldsRule) Name() string { return "fields.required" }

func (r *RequiredFieldsRule) Apply(fields map[string]any) []Finding {
	var findings []Finding

	if err := r.schema.Validate(fields); err != nil {
		for _, name := range r.fields {
			if _, ok := fields[name]; !ok {
				findings = append(findings, missingFinding(name, "absent"))
			}
		}
	}

	for _, name := range r.fields {
		v, ok := fields[name]
		if !ok {
			continue // already reported above
		}
		if isEmptyValue(v) {
			findings = append(findings, missingFinding(name, "empty"))
		}
	}
	return findings
}

func missingFinding(field, how string) Finding {
	return Finding{
		Title:        "Required field missing",
		Message:      fmt.Sprintf("field %q is %s in the extraction", field, how),
		Severity:     SeverityWarning,
		RelatedField: field,
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
