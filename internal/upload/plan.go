// Package upload turns parsed feature files into QMetry test cases.
package upload

import (
	"errors"
	"strings"

	"github.com/chriserin/qmetry/internal/export"
	"github.com/chriserin/qmetry/internal/parser"
	"github.com/chriserin/qmetry/internal/qmetry"
)

// ErrNoFolder is returned when no target folder is known or the folder
// cannot be resolved on the server.
var ErrNoFolder = errors.New("no target folder")

// reservedFields are carried by dedicated columns, not custom fields.
var reservedFields = []string{"Folder", "Status", "Priority"}

// Record is one test case ready to be pushed.
type Record struct {
	Name     string
	Priority string
	Status   string
	Labels   []string
	Input    qmetry.TestCaseInput
}

// Plan is the work an upload will do for one document.
type Plan struct {
	Source  string
	Folder  string
	Records []Record
}

// NewPlan picks the target folder and builds a record per test case. The
// folder is target when set, else the document's Folder default, else
// fallback.
func NewPlan(doc *parser.Document, target, fallback string) (*Plan, error) {
	folder := firstNonEmpty(target, parser.Fields(doc.Defaults).Lookup("Folder", ""), fallback)
	if folder == "" {
		return nil, ErrNoFolder
	}
	if !strings.HasPrefix(folder, "/") {
		folder = "/" + folder
	}

	plan := &Plan{Source: doc.Path, Folder: folder}
	for i := range doc.TestCases {
		tc := &doc.TestCases[i]
		fields := doc.FieldsFor(tc)
		plan.Records = append(plan.Records, Record{
			Name:     tc.Name,
			Priority: fields.Lookup("Priority", export.DefaultPriority),
			Status:   fields.Lookup("Status", export.DefaultStatus),
			Labels:   tc.Labels,
			Input: qmetry.TestCaseInput{
				Summary:        tc.Name,
				Description:    doc.Description,
				Precondition:   doc.Precondition(),
				Steps:          tc.Steps,
				TestData:       tc.TestData,
				ExpectedResult: tc.ExpectedResult,
				CustomFields:   fields.Without(reservedFields...),
			},
		})
	}
	return plan, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
