package common

import (
	"fmt"
	"io"
	"os"

	"chwresume/internal/errors"
	"chwresume/internal/formatters"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
	MaxFileSize  int64

	// Stdin and Stdout default to the process streams when nil
	Stdin  io.Reader
	Stdout io.Writer
}

// OutputHandler renders results through the formatter registry and
// writes them to a file or stdout
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
}

func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger, 0),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
	}
}

// HandleOutput formats data as config.OutputFormat and writes it out
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	rendered, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile == "" {
		return writeStream(config.Stdout, rendered)
	}

	if err := oh.fileProcessor.WriteFile(config.OutputFile, rendered); err != nil {
		return err
	}
	if oh.logger != nil {
		oh.logger.Info("Output written", "file", config.OutputFile, "format", config.OutputFormat,
			"bytes", len(rendered))
	}
	return nil
}

func writeStream(w io.Writer, rendered string) error {
	if w == nil {
		w = os.Stdout
	}
	if _, err := io.WriteString(w, rendered); err != nil {
		return errors.NewIOError("OUTPUT_WRITE_FAILED", "Cannot write output", err)
	}
	return nil
}
