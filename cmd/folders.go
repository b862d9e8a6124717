package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/qmetry/internal/qmetry"
	"github.com/chriserin/qmetry/internal/ui"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Print the project's test case folder tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := apiConfig(configFlag)
		if err != nil {
			return err
		}
		client, closeCache, err := newClient(cfg, newLogger(cmd))
		if err != nil {
			return err
		}
		defer closeCache()
		return RunFolders(cmd.Context(), cmd.OutOrStdout(), client)
	},
}

func init() {
	rootCmd.AddCommand(foldersCmd)
}

type folderLister interface {
	ListFolders(ctx context.Context) ([]qmetry.Folder, error)
}

func RunFolders(ctx context.Context, w io.Writer, remote folderLister) error {
	folders, err := remote.ListFolders(ctx)
	if err != nil {
		return fmt.Errorf("listing folders: %w", err)
	}
	if len(folders) == 0 {
		fmt.Fprintln(w, "no folders")
		return nil
	}

	// The endpoint returns either a nested tree or a flat list with parent
	// ids.
	known := map[int64]bool{}
	children := map[int64][]qmetry.Folder{}
	for _, f := range folders {
		known[f.ID] = true
	}
	var roots []qmetry.Folder
	for _, f := range folders {
		if p := f.Parent(); p != 0 && known[p] {
			children[p] = append(children[p], f)
			continue
		}
		roots = append(roots, f)
	}

	var walk func(f qmetry.Folder, depth int)
	walk = func(f qmetry.Folder, depth int) {
		ui.FolderLine(w, depth, f.Name, f.ID)
		for _, c := range f.Children {
			walk(c, depth+1)
		}
		for _, c := range children[f.ID] {
			walk(c, depth+1)
		}
	}
	for _, f := range roots {
		walk(f, 0)
	}
	return nil
}
