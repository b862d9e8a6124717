package parser

import "strings"

// Document is the result of parsing one feature file.
type Document struct {
	Path            string            `json:"path"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	BackgroundSteps []string          `json:"backgroundSteps"`
	Defaults        map[string]string `json:"defaults"`
	Labels          []string          `json:"labels"`
	TestCases       []TestCase        `json:"testCases"`
}

// TestCase is a single Scenario block.
type TestCase struct {
	Name           string            `json:"name"`
	Steps          []string          `json:"steps"`
	TestData       string            `json:"testData"`
	ExpectedResult string            `json:"expectedResult"`
	Labels         []string          `json:"labels"`
	Overrides      map[string]string `json:"overrides"`
}

// Precondition returns the background steps joined with newlines.
func (d *Document) Precondition() string {
	return strings.Join(d.BackgroundSteps, "\n")
}

// StepSummary returns the steps joined with newlines.
func (tc *TestCase) StepSummary() string {
	return strings.Join(tc.Steps, "\n")
}

// LabelString returns the plain labels joined with spaces.
func (tc *TestCase) LabelString() string {
	return strings.Join(tc.Labels, " ")
}
