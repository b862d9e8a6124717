package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chriserin/qmetry/internal/config"
	"github.com/chriserin/qmetry/internal/parser"
	"github.com/chriserin/qmetry/internal/ui"
	"github.com/chriserin/qmetry/internal/upload"
)

var (
	uploadFolder string
	uploadDry    bool
	uploadYes    bool
)

var uploadCmd = &cobra.Command{
	Use:     "upload <file> [to <folder>]",
	Aliases: []string{"up"},
	Short:   "Create or update the file's test cases in QMetry",
	Args:    cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, folder, err := parseUploadArgs(args, uploadFolder)
		if err != nil {
			return err
		}
		log := newLogger(cmd)

		if uploadDry {
			cfg, err := optionalConfig(configFlag)
			if err != nil {
				return err
			}
			return RunUpload(cmd.Context(), cmd.OutOrStdout(), nil, nil, cfg, log, uploadOptions{path: path, folder: folder, dry: true})
		}

		cfg, err := apiConfig(configFlag)
		if err != nil {
			return err
		}
		client, closeCache, err := newClient(cfg, log)
		if err != nil {
			return err
		}
		defer closeCache()
		opts := uploadOptions{path: path, folder: folder, yes: uploadYes}
		return RunUpload(cmd.Context(), cmd.OutOrStdout(), cmd.InOrStdin(), client, cfg, log, opts)
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadFolder, "folder", "", "Target folder, e.g. /Mobile/PTR")
	uploadCmd.Flags().BoolVar(&uploadDry, "dry", false, "Show what would be uploaded without calling the API")
	uploadCmd.Flags().BoolVarP(&uploadYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(uploadCmd)
}

type uploadOptions struct {
	path   string
	folder string
	dry    bool
	yes    bool
}

// parseUploadArgs accepts "<file>" and "<file> to <folder>". A positional
// folder wins over --folder.
func parseUploadArgs(args []string, flagFolder string) (path, folder string, err error) {
	switch len(args) {
	case 1:
		return args[0], flagFolder, nil
	case 3:
		if !strings.EqualFold(args[1], "to") {
			return "", "", fmt.Errorf("expected \"to\" before the folder, got %q", args[1])
		}
		return args[0], args[2], nil
	}
	return "", "", fmt.Errorf("usage: qmetry upload <file> [to <folder>]")
}

func RunUpload(ctx context.Context, w io.Writer, in io.Reader, remote upload.Remote, cfg *config.Config, log logrus.FieldLogger, opts uploadOptions) error {
	doc, err := parser.New(cfg.Fields(), log.WithField("component", "parser")).ParseFile(opts.path)
	if err != nil {
		return err
	}
	if len(doc.TestCases) == 0 {
		fmt.Fprintf(w, "no test cases in %s\n", opts.path)
		return nil
	}

	plan, err := upload.NewPlan(doc, opts.folder, cfg.DefaultFolder)
	if err != nil {
		return err
	}

	ui.KeyValue(w, "Feature", doc.Name)
	ui.KeyValue(w, "Folder", plan.Folder)
	ui.KeyValue(w, "Test cases", fmt.Sprint(len(plan.Records)))
	if opts.dry {
		for _, rec := range plan.Records {
			ui.PlanLine(w, rec.Name, rec.Priority, rec.Status, rec.Labels)
		}
		return nil
	}

	if !opts.yes && !confirm(w, in, "Proceed? (y/N) ") {
		fmt.Fprintln(w, "aborted")
		return nil
	}

	u := upload.New(remote, log)
	u.OnResult = func(r upload.Result) {
		ui.ResultLine(w, r.Outcome.String(), r.Name, r.Key)
		if r.Err != nil {
			ui.WarnLine(w, r.Err.Error())
		}
	}
	summary, err := u.Run(ctx, plan)
	if err != nil {
		return err
	}
	ui.UploadSummary(w, summary.Created, summary.Updated, summary.Failed)
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d test cases failed", summary.Failed, len(plan.Records))
	}
	return nil
}

func confirm(w io.Writer, in io.Reader, prompt string) bool {
	if in == nil {
		return false
	}
	fmt.Fprint(w, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
