package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"chwresume/internal/common"
	"chwresume/internal/errors"
	"chwresume/internal/extract"
	"chwresume/internal/formatters"
	"chwresume/internal/observability"
	"chwresume/internal/parser"
	"chwresume/internal/types"
)

// Certificates closer to expiry than this report the server as degraded
const certCriticalThreshold = 24 * time.Hour

var formatContentTypes = map[string]string{
	"json":     "application/json",
	"yaml":     "application/yaml",
	"text":     "text/plain; charset=utf-8",
	"markdown": "text/markdown; charset=utf-8",
}

// createParseTextHandler handles POST /parse with a JSON {"text": ...} body
func (s *Server) createParseTextHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := s.requestFormat(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var req types.ParseTextRequest
		if err := parseJSONRequest(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		result := om.TrackParse(r.Context(), "text", func(context.Context) observability.ParseResult {
			if strings.TrimSpace(req.Text) == "" {
				return observability.ParseResult{
					Error: errors.NewExtractionError(errors.ErrCodeEmptyText, "text is empty", nil),
				}
			}
			return observability.ParseResult{Resume: s.parseText(req.Text)}
		})

		s.stats.text.Add(1)
		if result.Error != nil {
			s.stats.failures.Add(1)
			s.writeError(w, r, result.Error)
			return
		}

		s.writeFormatted(w, r, result.Resume, format)
	}
}

// createParseFileHandler handles POST /parse/file with a multipart "file" field
func (s *Server) createParseFileHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := s.requestFormat(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		upload, err := s.readUpload(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		result := om.TrackParse(r.Context(), "file", func(context.Context) observability.ParseResult {
			contentType := extract.DetectContentType(upload.Filename, upload.ContentType, upload.Data)
			text, err := extract.FromBytes(contentType, upload.Data)
			if err != nil {
				if appErr, ok := errors.AsAppError(err); ok {
					appErr.WithContext("filename", upload.Filename)
				}
				return observability.ParseResult{Error: err}
			}
			return observability.ParseResult{Resume: s.parseText(text)}
		})

		s.stats.files.Add(1)
		if result.Error != nil {
			s.stats.failures.Add(1)
			s.writeError(w, r, result.Error)
			return
		}

		s.writeFormatted(w, r, result.Resume, format)
	}
}

func (s *Server) parseText(text string) types.ParsedResume {
	return s.Parser.Parse(parser.TruncateInput(text, s.MaxInputChars))
}

// readUpload reads the "file" part of a multipart request, bounded by MaxFileSize
func (s *Server) readUpload(r *http.Request) (*types.ParseFileInput, error) {
	if err := r.ParseMultipartForm(s.MaxFileSize); err != nil {
		if tooLarge(err) {
			return nil, errors.NewValidationError(errors.ErrCodeFileTooLarge, "request body too large", err)
		}
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "expected multipart/form-data body", err)
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "missing form field 'file'", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.Logger.Warn("Failed to close uploaded file", "error", err)
		}
	}()

	limit := s.MaxFileSize
	if limit <= 0 {
		limit = header.Size
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read uploaded file", err)
	}
	if int64(len(data)) > limit {
		return nil, errors.NewValidationError(errors.ErrCodeFileTooLarge, "uploaded file is too large", nil).
			WithContext("max_file_size", limit).
			WithContext("filename", header.Filename)
	}

	return &types.ParseFileInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// vocabularyHandler returns the vocabulary the parser was built with
func (s *Server) vocabularyHandler(w http.ResponseWriter, r *http.Request) {
	format, err := s.requestFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeFormatted(w, r, s.Parser.Vocabulary(), format)
}

// healthHandler reports liveness, vocabulary size and certificate state
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":     "healthy",
		"service":    "chwresume",
		"version":    s.Version,
		"uptime":     time.Since(s.startTime).Round(time.Second).String(),
		"vocabulary": s.Parser.Vocabulary().Summary(),
	}

	status := http.StatusOK
	if s.CertificateManager != nil {
		response["certificates"] = s.CertificateManager.Status()
		remaining, err := s.CertificateManager.CheckExpiry()
		if err != nil || remaining <= certCriticalThreshold {
			response["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	s.writeJSON(w, r, status, response)
}

// statsHandler reports parse counters and rate limiting state
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "chwresume",
		"version": s.Version,
		"parses": map[string]any{
			"text":     s.stats.text.Load(),
			"file":     s.stats.files.Load(),
			"failures": s.stats.failures.Load(),
		},
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"max_file_size_bytes":    s.MaxFileSize,
			"max_input_chars":        s.MaxInputChars,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	s.writeJSON(w, r, http.StatusOK, response)
}

// requestFormat reads ?format=, defaulting to json
func (s *Server) requestFormat(r *http.Request) (string, error) {
	requested := r.URL.Query().Get("format")

	supported := formatters.GlobalRegistry.GetSupportedFormats()
	if s.AppConfig != nil && len(s.AppConfig.App.SupportedFormats) > 0 {
		supported = s.AppConfig.App.SupportedFormats
	}
	format, err := common.ResolveOutputFormat(requested, "json", supported)
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat, err.Error(), nil).
			WithContext("format", requested)
	}
	return format, nil
}

// parseJSONRequest decodes a JSON body into v
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "content-type must be application/json", nil)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		if tooLarge(err) {
			return errors.NewValidationError(errors.ErrCodeFileTooLarge, "request body too large", err)
		}
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to read request body", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to parse JSON", err)
	}
	return nil
}

func tooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return stderrors.As(err, &maxBytesErr)
}

// writeFormatted renders data with the formatter registry
func (s *Server) writeFormatted(w http.ResponseWriter, r *http.Request, data any, format string) {
	if format == "json" {
		s.writeJSON(w, r, http.StatusOK, data)
		return
	}

	out, err := formatters.GlobalRegistry.Format(data, format)
	if err != nil {
		s.writeError(w, r, errors.NewInternalError(errors.ErrCodeInternal, "failed to format response", err))
		return
	}

	w.Header().Set("Content-Type", formatContentTypes[format])
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, out); err != nil {
		s.Logger.Warn("Failed to write response", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.Logger.Warn("Failed to encode response", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
}

// writeError maps err to its status code and the JSON error body
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.NewInternalError(errors.ErrCodeInternal, "internal server error", err)
	}

	requestID := RequestIDFromContext(r.Context())
	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(appErr, "Request failed", "endpoint", r.URL.Path, "request_id", requestID)
	} else {
		s.Logger.Warn("Request rejected",
			"endpoint", r.URL.Path,
			"request_id", requestID,
			"status", status,
			"error_code", appErr.Code,
			"error_message", appErr.Message)
	}

	s.writeJSON(w, r, status, ErrorResponse{
		Error:     appErr.Message,
		Code:      appErr.Code,
		RequestID: requestID,
	})
}
