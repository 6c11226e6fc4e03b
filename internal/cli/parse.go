package cli

import (
	"context"
	"fmt"

	"chwresume/internal/common"
	"chwresume/internal/parser"
	"chwresume/internal/types"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <resume-file|->",
	Short: "Parse a resume into structured fields",
	Long: `Parse a resume file and print the extracted fields.

Plain text (.txt, .md), PDF and DOCX files are supported. Use "-" to read
plain text from standard input. Text beyond parser.maxInputChars is ignored.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &parseConfig)
	},
	RunE: runParse,
}

var parseConfig common.CommandConfig

func init() {
	registerOutputFlags(parseCmd, &parseConfig)
}

// registerOutputFlags adds --output and --format to cmd
func registerOutputFlags(cmd *cobra.Command, cmdConfig *common.CommandConfig) {
	cmd.Flags().StringVarP(&cmdConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVarP(&cmdConfig.OutputFormat, "format", "f", "", "Output format: json, yaml, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return getConfigFromContext(cmd.Context()).App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveFormat applies the configured default format and validates the choice
func resolveFormat(cmd *cobra.Command, cmdConfig *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	format, err := common.ResolveOutputFormat(cmdConfig.OutputFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
	if err != nil {
		return err
	}
	cmdConfig.OutputFormat = format
	return nil
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	p, err := newParser(cfg)
	if err != nil {
		return err
	}

	cmdConfig := parseConfig
	cmdConfig.MaxFileSize = cfg.App.MaxFileSize
	cmdConfig.Stdin = cmd.InOrStdin()
	cmdConfig.Stdout = cmd.OutOrStdout()

	createInput := func(text string) (string, error) {
		return parser.TruncateInput(text, cfg.Parser.MaxInputChars), nil
	}

	logDetails := func(text string, cc common.CommandConfig) {
		logger.Info("Starting resume parse",
			"source", args[0],
			"resume_chars", len(text),
			"output_format", cc.OutputFormat)
	}

	parseOperation := func(_ context.Context, text string) (types.ParsedResume, error) {
		return p.Parse(text), nil
	}

	if err := common.RunCommand(cmd.Context(), logger, cmdConfig, args[0], createInput, parseOperation, logDetails); err != nil {
		return fmt.Errorf("failed to parse resume: %w", err)
	}

	logger.Info("Resume parse completed successfully", "source", args[0])
	return nil
}
