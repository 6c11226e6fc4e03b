package common

import (
	"fmt"
	"io"
	"os"

	"chwresume/internal/errors"
	"chwresume/internal/extract"
	"chwresume/internal/utils"
)

// StdinSource is the input name that selects standard input
const StdinSource = "-"

// FileProcessor handles common file operations
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
}

// NewFileProcessor creates a new file processor instance.
// A maxFileSize of zero disables the size check.
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize}
}

// ReadResume returns the text of a resume file, or of stdin when source is "-"
func (fp *FileProcessor) ReadResume(source string, stdin io.Reader) (string, error) {
	if source == StdinSource {
		return fp.readStdin(stdin)
	}

	info, err := utils.StatInputFile(source)
	if err != nil {
		return "", errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", source), err)
	}
	if err := fp.checkSize(info.Size()); err != nil {
		return "", err.WithContext("file_path", source)
	}

	if !utils.IsResumeFile(source) && fp.logger != nil {
		fp.logger.Warn("File extension not recognized, sniffing content", "filename", source)
	}

	return extract.FromFile(source)
}

func (fp *FileProcessor) readStdin(stdin io.Reader) (string, error) {
	if stdin == nil {
		stdin = os.Stdin
	}

	reader := stdin
	if fp.maxFileSize > 0 {
		reader = io.LimitReader(stdin, fp.maxFileSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to read standard input", err)
	}
	if err := fp.checkSize(int64(len(data))); err != nil {
		return "", err
	}

	return extract.FromBytes(extract.DetectContentType("", "", data), data)
}

func (fp *FileProcessor) checkSize(size int64) *errors.AppError {
	if fp.maxFileSize <= 0 || size <= fp.maxFileSize {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeFileTooLarge,
		fmt.Sprintf("Input exceeds the %s limit", utils.FormatFileSize(fp.maxFileSize)), nil).
		WithContext("size", size)
}

// WriteFile writes content to filename, creating parent directories
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if err := utils.EnsureOutputDir(filename); err != nil {
		return errors.NewIOError("DIRECTORY_CREATE_FAILED",
			fmt.Sprintf("Cannot create directory for %s", filename), err)
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateOutputFile prepares the output path; empty means stdout
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if err := utils.EnsureOutputDir(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}
