package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chriserin/qmetry/internal/config"
	"github.com/chriserin/qmetry/internal/db"
	"github.com/chriserin/qmetry/internal/parser"
	"github.com/chriserin/qmetry/internal/qmetry"
)

var (
	configFlag  string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:          "qmetry",
	Short:        "Export and upload Gherkin feature files to QMetry",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to .qmetry_config.yaml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Write debug logs to stderr")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) *logrus.Logger {
	return config.NewLogger(verboseFlag, cmd.ErrOrStderr())
}

// optionalConfig loads the configuration, or returns the defaults when
// there is none. Commands that never call the API use it.
func optionalConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, config.ErrNotFound) && path == "" {
		return &config.Config{DefaultFolder: config.DefaultFolder, BaseURL: config.DefaultBaseURL}, nil
	}
	return cfg, err
}

// apiConfig loads the configuration and checks it carries credentials.
func apiConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if issues := cfg.Validate(true); len(issues) > 0 {
		return nil, fmt.Errorf("invalid configuration %s: %s", cfg.Path, issues[0])
	}
	return cfg, nil
}

var _ qmetry.Cache = (*db.Cache)(nil)

// newClient opens the cache beside the configuration and builds a client
// on top of it. The returned func closes the cache.
func newClient(cfg *config.Config, log logrus.FieldLogger) (*qmetry.Client, func(), error) {
	cache, err := db.OpenCache(cfg.CachePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}
	client := qmetry.New(qmetry.Options{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		Project:      cfg.Project,
		VerifySSL:    cfg.VerifySSL(),
		CustomFields: cfg.CustomFields,
	}, cache, log)
	return client, func() { cache.Close() }, nil
}

func parseFiles(paths []string, fields parser.FieldSet, log logrus.FieldLogger) ([]*parser.Document, error) {
	p := parser.New(fields, log.WithField("component", "parser"))
	docs := make([]*parser.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := p.ParseFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
