// Package extract turns uploaded resume files into plain text for the parser.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"regexp"
	"strings"

	appErrors "chwresume/internal/errors"
	"chwresume/internal/utils"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Supported content types
const (
	MIMEPlain    = "text/plain"
	MIMEMarkdown = "text/markdown"
	MIMEPDF      = "application/pdf"
	MIMEDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var extensionTypes = map[string]string{
	".txt":      MIMEPlain,
	".text":     MIMEPlain,
	".md":       MIMEMarkdown,
	".markdown": MIMEMarkdown,
	".pdf":      MIMEPDF,
	".docx":     MIMEDOCX,
}

var (
	docxBreakRe = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	docxTabRe   = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTagRe    = regexp.MustCompile(`<[^>]*>`)
)

// DetectContentType resolves the content type of an upload. A declared type
// wins, then the file extension, then content sniffing.
func DetectContentType(filename, declared string, data []byte) string {
	if declared != "" {
		if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != "application/octet-stream" {
			return mediaType
		}
	}

	if t, ok := extensionTypes[utils.FileExtension(filename)]; ok {
		return t
	}

	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return sniffed
}

// FromFile reads the file at path and extracts its text
func FromFile(path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return "", appErrors.NewIOError(appErrors.ErrCodeFileNotFound, "input file does not exist", err).
			WithContext("file_path", path)
	}
	if _, err := utils.StatInputFile(path); err != nil {
		return "", appErrors.NewIOError(appErrors.ErrCodeFileNotReadable, "input file is not readable", err).
			WithContext("file_path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", appErrors.NewIOError(appErrors.ErrCodeFileNotReadable, "failed to read input file", err).
			WithContext("file_path", path)
	}

	return FromBytes(DetectContentType(path, "", data), data)
}

// FromBytes extracts text from data according to contentType
func FromBytes(contentType string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch contentType {
	case MIMEPlain, MIMEMarkdown:
		text = strings.ToValidUTF8(string(data), "\uFFFD")
	case MIMEPDF:
		text, err = pdfText(data)
	case MIMEDOCX:
		text, err = docxText(data)
	default:
		return "", appErrors.NewValidationError(appErrors.ErrCodeUnsupportedFileType,
			fmt.Sprintf("unsupported file type: %s", contentType), nil).
			WithContext("content_type", contentType)
	}

	if err != nil {
		return "", appErrors.NewExtractionError(appErrors.ErrCodeExtractionFailed, "failed to extract text", err).
			WithContext("content_type", contentType)
	}

	if strings.TrimSpace(text) == "" {
		return "", appErrors.NewExtractionError(appErrors.ErrCodeEmptyText, "document contains no text", nil).
			WithContext("content_type", contentType)
	}

	return text, nil
}

func pdfText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(pageText)
	}

	return sb.String(), nil
}

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return docxContentToText(doc.Editable().GetContent()), nil
}

// docxContentToText flattens WordprocessingML into lines of text
func docxContentToText(content string) string {
	content = docxBreakRe.ReplaceAllString(content, "\n")
	content = docxTabRe.ReplaceAllString(content, "\t")
	content = xmlTagRe.ReplaceAllString(content, "")
	return strings.TrimSpace(html.UnescapeString(content))
}
