package cmd

import (
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chriserin/qmetry/internal/export"
	"github.com/chriserin/qmetry/internal/parser"
	"github.com/chriserin/qmetry/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list <file>...",
	Short: "List the test cases in feature files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := optionalConfig(configFlag)
		if err != nil {
			return err
		}
		return RunList(cmd.OutOrStdout(), args, cfg.Fields(), newLogger(cmd))
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type listRow struct {
	fileName string
	name     string
	priority string
	status   string
}

func RunList(w io.Writer, paths []string, fields parser.FieldSet, log logrus.FieldLogger) error {
	docs, err := parseFiles(paths, fields, log)
	if err != nil {
		return err
	}

	var results []listRow
	for _, doc := range docs {
		for i := range doc.TestCases {
			tc := &doc.TestCases[i]
			f := doc.FieldsFor(tc)
			results = append(results, listRow{
				fileName: filepath.Base(doc.Path),
				name:     tc.Name,
				priority: f.Lookup("Priority", export.DefaultPriority),
				status:   f.Lookup("Status", export.DefaultStatus),
			})
		}
	}

	if len(results) == 0 {
		return nil
	}

	// Compute column widths
	fileWidth, nameWidth, priorityWidth := 0, 0, 0
	for _, r := range results {
		if len(r.fileName) > fileWidth {
			fileWidth = len(r.fileName)
		}
		if len(r.name) > nameWidth {
			nameWidth = len(r.name)
		}
		if len(r.priority) > priorityWidth {
			priorityWidth = len(r.priority)
		}
	}

	for _, r := range results {
		ui.ListRow(w, r.fileName, r.name, r.priority, r.status, fileWidth, nameWidth, priorityWidth)
	}

	return nil
}
