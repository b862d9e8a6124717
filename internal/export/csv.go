// Package export writes parsed feature files in the QMetry CSV import
// layout.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chriserin/qmetry/internal/parser"
)

// Headers are the 32 import columns in QMetry's order.
var Headers = []string{
	"Issue Key", "Summary", "Description", "Precondition", "Status",
	"Priority", "Assignee", "Reporter", "Estimated Time", "Labels",
	"Components", "Sprint", "Fix Versions", "Step Summary", "Test Data",
	"Expected Result", "Folders", "Story Linkages", "Apps",
	"Component/Feature", "CT Update Target", "Evidence Type",
	"Live Proposition", "Platform", "Regression Type", "Users Applied",
	"Automatable?", "Automated Proposition", "HighVisibility", "IsAds?",
	"NBA Feature", "TC requires use of proxy",
}

const (
	DefaultStatus   = "TO DO"
	DefaultPriority = "Medium"
)

// customColumns are read straight from the merged fields, starting at the
// Apps column.
var customColumns = Headers[18:]

// Row builds the CSV record for one test case.
func Row(doc *parser.Document, tc *parser.TestCase) []string {
	f := doc.FieldsFor(tc)

	row := []string{
		"",
		tc.Name,
		doc.Description,
		doc.Precondition(),
		f.Lookup("Status", DefaultStatus),
		f.Lookup("Priority", DefaultPriority),
		"", "", "",
		tc.LabelString(),
		"", "", "",
		tc.StepSummary(),
		tc.TestData,
		tc.ExpectedResult,
		f.Lookup("Folder", ""),
		"",
	}
	for _, col := range customColumns {
		row = append(row, f.Lookup(col, ""))
	}
	return row
}

// Write emits the header and one row per test case, documents in order.
func Write(w io.Writer, docs ...*parser.Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, doc := range docs {
		for i := range doc.TestCases {
			if err := cw.Write(Row(doc, &doc.TestCases[i])); err != nil {
				return fmt.Errorf("writing %q: %w", doc.TestCases[i].Name, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes docs to path, replacing any existing file.
func WriteFile(path string, docs ...*parser.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, docs...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DefaultPath places the export beside the feature file:
// login.feature becomes login_Export.csv.
func DefaultPath(featurePath string) string {
	base := filepath.Base(featurePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(featurePath), stem+"_Export.csv")
}
