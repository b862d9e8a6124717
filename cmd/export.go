package cmd

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chriserin/qmetry/internal/export"
	"github.com/chriserin/qmetry/internal/parser"
	"github.com/chriserin/qmetry/internal/ui"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:     "export <file>...",
	Aliases: []string{"exp"},
	Short:   "Export feature files to QMetry import CSV",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := optionalConfig(configFlag)
		if err != nil {
			return err
		}
		return RunExport(cmd.OutOrStdout(), args, exportOutput, cfg.Fields(), newLogger(cmd))
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write all files into one CSV")
	rootCmd.AddCommand(exportCmd)
}

// RunExport writes one CSV per feature file beside it, or a single combined
// CSV when output is set.
func RunExport(w io.Writer, paths []string, output string, fields parser.FieldSet, log logrus.FieldLogger) error {
	docs, err := parseFiles(paths, fields, log)
	if err != nil {
		return err
	}

	if output != "" {
		if err := export.WriteFile(output, docs...); err != nil {
			return err
		}
		ui.WroteLine(w, output, countTestCases(docs))
		return nil
	}

	for _, doc := range docs {
		out := export.DefaultPath(doc.Path)
		if err := export.WriteFile(out, doc); err != nil {
			return err
		}
		ui.WroteLine(w, out, len(doc.TestCases))
	}
	return nil
}

func countTestCases(docs []*parser.Document) int {
	n := 0
	for _, d := range docs {
		n += len(d.TestCases)
	}
	return n
}
