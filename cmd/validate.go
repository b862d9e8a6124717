package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chriserin/qmetry/internal/parser"
	"github.com/chriserin/qmetry/internal/ui"
	"github.com/chriserin/qmetry/internal/validate"
)

var (
	validateStrict bool
	validateJSON   bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Parse feature files and show what would be exported",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := optionalConfig(configFlag)
		if err != nil {
			return err
		}
		return RunValidate(cmd.OutOrStdout(), args, cfg.Fields(), validateStrict, validateJSON, newLogger(cmd))
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Fail on scenarios without steps and unknown field tags")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the parsed documents as JSON")
	rootCmd.AddCommand(validateCmd)
}

type validateOutput struct {
	Document *parser.Document `json:"document"`
	Report   *validate.Report `json:"report,omitempty"`
}

func RunValidate(w io.Writer, paths []string, fields parser.FieldSet, strict, asJSON bool, log logrus.FieldLogger) error {
	docs, err := parseFiles(paths, fields, log)
	if err != nil {
		return err
	}

	var v *validate.Validator
	if strict {
		v = validate.New(fields, log)
	}

	outputs := make([]validateOutput, 0, len(docs))
	invalid := 0
	for _, doc := range docs {
		out := validateOutput{Document: doc}
		if v != nil {
			if out.Report, err = v.Check(doc); err != nil {
				return err
			}
			if !out.Report.Valid() {
				invalid++
			}
		}
		outputs = append(outputs, out)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outputs); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
	} else {
		for _, out := range outputs {
			printDocument(w, out.Document)
			if out.Report != nil {
				ui.ValidLine(w, out.Document.Path, out.Report.Valid())
				for _, issue := range out.Report.Issues {
					ui.IssueLine(w, issue.Field, issue.Description)
				}
			}
		}
	}

	if invalid > 0 {
		return fmt.Errorf("strict validation failed for %d of %d files", invalid, len(docs))
	}
	return nil
}

func printDocument(w io.Writer, doc *parser.Document) {
	ui.Header(w, "Feature: "+doc.Name)
	ui.KeyValue(w, "File", doc.Path)
	if doc.Description != "" {
		ui.KeyValue(w, "Description", doc.Description)
	}
	if len(doc.BackgroundSteps) > 0 {
		ui.KeyValue(w, "Background steps", fmt.Sprint(len(doc.BackgroundSteps)))
	}
	if len(doc.Defaults) > 0 {
		ui.KeyValue(w, "Defaults", formatFields(doc.Defaults))
	}
	if len(doc.Labels) > 0 {
		ui.KeyValue(w, "Labels", strings.Join(doc.Labels, " "))
	}
	ui.KeyValue(w, "Test cases", fmt.Sprint(len(doc.TestCases)))
	for i := range doc.TestCases {
		tc := &doc.TestCases[i]
		line := fmt.Sprintf("  - %s (%d steps)", tc.Name, len(tc.Steps))
		if len(tc.Labels) > 0 {
			line += " @" + strings.Join(tc.Labels, " @")
		}
		if len(tc.Overrides) > 0 {
			line += " {" + formatFields(tc.Overrides) + "}"
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

func formatFields(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k]
	}
	return strings.Join(parts, ", ")
}
