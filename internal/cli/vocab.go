package cli

import (
	"chwresume/internal/common"

	"github.com/spf13/cobra"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Print the effective vocabulary",
	Long: `Print the vocabulary the parser matches against: regions, city to region
map, EHR systems, programs, languages, certifications and certification
aliases. The built-in tables are extended by parser.vocabularyFile and by the
vocabulary secret in Vault when configured.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveFormat(cmd, &vocabConfig)
	},
	RunE: runVocab,
}

var vocabConfig common.CommandConfig

func init() {
	registerOutputFlags(vocabCmd, &vocabConfig)
}

func runVocab(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	p, err := newParser(cfg)
	if err != nil {
		return err
	}

	cmdConfig := vocabConfig
	cmdConfig.Stdout = cmd.OutOrStdout()

	return common.NewOutputHandler(logger).HandleOutput(p.Vocabulary(), cmdConfig)
}
