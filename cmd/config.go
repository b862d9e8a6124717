package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/qmetry/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write a configuration template and gitignore local settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunConfig(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// RunConfig writes the template and makes sure the personal config and the
// cache stay out of version control.
func RunConfig(w io.Writer) error {
	path, err := config.WriteTemplate("")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s written\n", path)
	fmt.Fprintf(w, "copy it to %s and fill in your API key\n", config.FileName)

	for _, entry := range []string{config.FileName, config.CacheName} {
		msgs, err := ensureGitignore(entry)
		if err != nil {
			return fmt.Errorf("updating .gitignore: %w", err)
		}
		for _, msg := range msgs {
			fmt.Fprintln(w, msg)
		}
	}
	return nil
}

func ensureGitignore(entry string) ([]string, error) {
	data, err := os.ReadFile(".gitignore")
	if os.IsNotExist(err) {
		if err := os.WriteFile(".gitignore", []byte(entry+"\n"), 0o644); err != nil {
			return nil, err
		}
		return []string{".gitignore created", entry + " added to .gitignore"}, nil
	}
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == entry {
			return []string{entry + " already in .gitignore"}, nil
		}
	}

	content := string(data)
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"

	if err := os.WriteFile(".gitignore", []byte(content), 0o644); err != nil {
		return nil, err
	}
	return []string{entry + " added to .gitignore"}, nil
}
