// Package validate runs the optional strict checks over a parsed document.
// The parser itself never rejects input.
package validate

import (
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"github.com/chriserin/qmetry/internal/parser"
)

// Issue is one schema violation.
type Issue struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Description)
}

// Report is the strict validation outcome for one document.
type Report struct {
	Path   string  `json:"path"`
	Issues []Issue `json:"issues"`
}

func (r *Report) Valid() bool {
	return len(r.Issues) == 0
}

// Validator checks documents against a schema built from the override
// field set.
type Validator struct {
	schema gojsonschema.JSONLoader
	log    logrus.FieldLogger
}

func New(fields parser.FieldSet, log logrus.FieldLogger) *Validator {
	if fields == nil {
		fields = parser.DefaultOverrideFields()
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Validator{
		schema: gojsonschema.NewGoLoader(documentSchema(fields)),
		log:    log.WithField("component", "validate"),
	}
}

// documentSchema requires a name and at least one step per test case, and
// restricts default and override keys to known fields.
func documentSchema(fields parser.FieldSet) map[string]any {
	names := fields.Names()
	sort.Strings(names)
	known := make([]any, len(names))
	for i, n := range names {
		known[i] = n
	}
	fieldKeys := map[string]any{
		"propertyNames": map[string]any{"enum": known},
	}

	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"properties": map[string]any{
			"defaults": fieldKeys,
			"testCases": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"name", "steps"},
					"properties": map[string]any{
						"name":      map[string]any{"type": "string", "minLength": 1},
						"steps":     map[string]any{"type": "array", "minItems": 1},
						"overrides": fieldKeys,
					},
				},
			},
		},
	}
}

// Check validates doc. The error is only set when the schema itself cannot
// be evaluated.
func (v *Validator) Check(doc *parser.Document) (*Report, error) {
	result, err := gojsonschema.Validate(v.schema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}

	report := &Report{Path: doc.Path, Issues: []Issue{}}
	for _, e := range result.Errors() {
		report.Issues = append(report.Issues, Issue{Field: e.Field(), Description: e.Description()})
	}
	if !report.Valid() {
		v.log.WithFields(logrus.Fields{
			"file":   doc.Path,
			"issues": len(report.Issues),
		}).Warn("strict validation found issues")
	}
	return report, nil
}
