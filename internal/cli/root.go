// Package cli implements the chwresume command line.
package cli

import (
	"context"

	"chwresume/internal/config"
	"chwresume/internal/errors"
	"chwresume/internal/parser"

	"github.com/spf13/cobra"
)

type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "chwresume",
	Short: "Extract structured hints from community health worker resumes",
	Long: `chwresume reads plain-text, PDF or DOCX resumes written in English or Spanish
and extracts contact details, location and region, EHR systems, programs,
certifications, languages, work history and education.

Every extracted field is a suggestion for a person to review. Nothing is
sent to an external service.`,
	SilenceUsage: true,
}

// Execute runs the root command with cfg and logger available to subcommands
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	setContext(rootCmd, ctx)
	return rootCmd.Execute()
}

// setContext replaces the context on cmd and every subcommand. Cobra only
// hands the root context to children whose own context is still nil, so a
// second Execute would otherwise see the first call's config.
func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, child := range cmd.Commands() {
		setContext(child, ctx)
	}
}

func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context")
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}

// newParser builds a parser from the configured vocabulary
func newParser(cfg *config.Config) (*parser.Parser, error) {
	vocab, err := config.LoadVocabulary(cfg.Parser)
	if err != nil {
		return nil, err
	}
	return parser.New(vocab)
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(vocabCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
