package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"chwresume/internal/config"
	"chwresume/internal/errors"
	"chwresume/internal/observability"
	"chwresume/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testResume = "Maria Garcia\nmaria@example.com\n(555) 123-4567\nFresno, CA 93721\n"

func testLogger() *errors.Logger {
	return errors.NewLoggerWithWriter(io.Discard, slog.LevelError)
}

func newTestHandler(t *testing.T, mutate func(*ServerConfig)) (*Server, http.Handler) {
	t.Helper()

	cfg := ServerConfig{
		Host:           "127.0.0.1",
		Port:           "0",
		Version:        "test",
		MaxRequestSize: 1 << 20,
		MaxFileSize:    1 << 20,
		MaxInputChars:  50000,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	s := NewServer(nil, cfg, nil, testLogger())
	t.Cleanup(func() {
		if s.RateLimiter != nil {
			s.RateLimiter.Close()
		}
	})

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{}, testLogger())
	require.NoError(t, err)

	return s, s.setupRoutes(om)
}

func doJSON(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func parseBody(text string) string {
	body, _ := json.Marshal(types.ParseTextRequest{Text: text})
	return string(body)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHealthHandler(t *testing.T) {
	_, h := newTestHandler(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "chwresume", resp["service"])
	assert.Equal(t, "test", resp["version"])
	assert.NotContains(t, resp, "certificates")

	vocab, ok := resp["vocabulary"].(map[string]any)
	require.True(t, ok)
	assert.Positive(t, vocab["cityToRegion"])
}

func TestRequestIDMiddleware(t *testing.T) {
	_, h := newTestHandler(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	id, err := uuid.Parse(rec.Header().Get(requestIDHeader))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	rec = doJSON(t, h, http.MethodGet, "/health", "", map[string]string{requestIDHeader: "caller-supplied"})
	assert.Equal(t, "caller-supplied", rec.Header().Get(requestIDHeader))
}

func TestParseTextHandler(t *testing.T) {
	_, h := newTestHandler(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/parse", parseBody(testResume), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got types.ParsedResume
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Maria", got.FirstName)
	assert.Equal(t, "Garcia", got.LastName)
	assert.Equal(t, "maria@example.com", got.Email)
	assert.Equal(t, "Fresno", got.City)
	assert.Equal(t, "Central Valley", got.Region)
	assert.NotNil(t, got.WorkHistory)
}

func TestParseTextHandler_Formats(t *testing.T) {
	_, h := newTestHandler(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/parse?format=text", parseBody(testResume), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Name: Maria Garcia\n")

	rec = doJSON(t, h, http.MethodPost, "/parse?format=yaml", parseBody(testResume), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "firstName: Maria\n")
}

func TestParseTextHandler_Errors(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		body        string
		contentType string
		maxRequest  int64
		status      int
		code        string
	}{
		{"blank text", "/parse", parseBody("  \n\t"), "application/json", 0, http.StatusUnprocessableEntity, errors.ErrCodeEmptyText},
		{"missing text", "/parse", `{}`, "application/json", 0, http.StatusUnprocessableEntity, errors.ErrCodeEmptyText},
		{"malformed json", "/parse", `{"text":`, "application/json", 0, http.StatusBadRequest, errors.ErrCodeInvalidRequest},
		{"wrong content type", "/parse", parseBody(testResume), "text/plain", 0, http.StatusBadRequest, errors.ErrCodeInvalidRequest},
		{"body too large", "/parse", parseBody(strings.Repeat("a", 200)), "application/json", 64, http.StatusRequestEntityTooLarge, errors.ErrCodeFileTooLarge},
		{"unknown format", "/parse?format=xml", parseBody(testResume), "application/json", 0, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestHandler(t, func(cfg *ServerConfig) {
				if tt.maxRequest > 0 {
					cfg.MaxRequestSize = tt.maxRequest
				}
			})

			rec := doJSON(t, h, http.MethodPost, tt.target, tt.body, map[string]string{"Content-Type": tt.contentType})
			assert.Equal(t, tt.status, rec.Code)

			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, rec.Header().Get(requestIDHeader), resp.RequestID)
		})
	}
}

func TestParseTextHandler_TruncatesInput(t *testing.T) {
	_, h := newTestHandler(t, func(cfg *ServerConfig) { cfg.MaxInputChars = 12 })

	rec := doJSON(t, h, http.MethodPost, "/parse", parseBody(testResume), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got types.ParsedResume
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Maria", got.FirstName)
	assert.Empty(t, got.Email)
}

func TestParseFileHandler(t *testing.T) {
	_, h := newTestHandler(t, nil)

	body, contentType := multipartBody(t, "file", "resume.txt", "application/octet-stream", []byte(testResume))
	req := httptest.NewRequest(http.MethodPost, "/parse/file", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got types.ParsedResume
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Maria", got.FirstName)
	assert.Equal(t, "maria@example.com", got.Email)
}

func TestParseFileHandler_Errors(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		filename    string
		contentType string
		data        []byte
		status      int
		code        string
	}{
		{"unsupported type", "file", "resume.zip", "application/zip", []byte("PK\x03\x04"), http.StatusUnsupportedMediaType, errors.ErrCodeUnsupportedFileType},
		{"empty document", "file", "resume.txt", "text/plain", []byte(" \n "), http.StatusUnprocessableEntity, errors.ErrCodeEmptyText},
		{"missing field", "upload", "resume.txt", "text/plain", []byte(testResume), http.StatusBadRequest, errors.ErrCodeInvalidRequest},
		{"file too large", "file", "resume.txt", "text/plain", bytes.Repeat([]byte("a"), 128), http.StatusRequestEntityTooLarge, errors.ErrCodeFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestHandler(t, func(cfg *ServerConfig) { cfg.MaxFileSize = 64 })

			body, contentType := multipartBody(t, tt.field, tt.filename, tt.contentType, tt.data)
			req := httptest.NewRequest(http.MethodPost, "/parse/file", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestParseFileHandler_NotMultipart(t *testing.T) {
	_, h := newTestHandler(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/parse/file", parseBody(testResume), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.ErrCodeInvalidRequest, decodeError(t, rec).Code)
}

func TestVocabularyHandler(t *testing.T) {
	_, h := newTestHandler(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/vocabulary", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var vocab map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vocab))
	assert.Equal(t, "Other California", vocab["fallbackRegion"])

	rec = doJSON(t, h, http.MethodGet, "/vocabulary?format=markdown", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "| cpr | CPR/BLS |\n")
}

func TestStatsHandler(t *testing.T) {
	_, h := newTestHandler(t, nil)

	doJSON(t, h, http.MethodPost, "/parse", parseBody(testResume), nil)
	doJSON(t, h, http.MethodPost, "/parse", parseBody(""), nil)

	rec := doJSON(t, h, http.MethodGet, "/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Service string           `json:"service"`
		Parses  map[string]int64 `json:"parses"`
		Limits  map[string]any   `json:"rate_limiting"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "chwresume", resp.Service)
	assert.Equal(t, map[string]int64{"text": 2, "file": 0, "failures": 1}, resp.Parses)
	assert.Equal(t, false, resp.Limits["enabled"])
}

func TestMethodNotAllowed(t *testing.T) {
	_, h := newTestHandler(t, nil)

	rec := doJSON(t, h, http.MethodGet, "/parse", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/health", `{}`, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	_, h := newTestHandler(t, func(cfg *ServerConfig) {
		cfg.APIKeys = []string{"secret-key-123", ""}
	})

	tests := []struct {
		name    string
		headers map[string]string
		status  int
		code    string
	}{
		{"missing key", nil, http.StatusUnauthorized, errors.ErrCodeMissingAPIKey},
		{"invalid key", map[string]string{"X-API-Key": "wrong"}, http.StatusUnauthorized, errors.ErrCodeInvalidAPIKey},
		{"header key", map[string]string{"X-API-Key": "secret-key-123"}, http.StatusOK, ""},
		{"bearer token", map[string]string{"Authorization": "Bearer secret-key-123"}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/parse", parseBody(testResume), tt.headers)
			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, rec).Code)
			}
		})
	}

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "health stays public")
}

func TestRateLimitMiddleware(t *testing.T) {
	_, h := newTestHandler(t, func(cfg *ServerConfig) {
		cfg.RateLimit = &config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 1,
			BurstCapacity:  1,
			ByIP:           true,
		}
	})

	first := doJSON(t, h, http.MethodGet, "/vocabulary", "", nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, h, http.MethodGet, "/vocabulary", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.Equal(t, errors.ErrCodeRateLimited, decodeError(t, second).Code)

	other := doJSON(t, h, http.MethodGet, "/vocabulary", "", map[string]string{"X-Forwarded-For": "203.0.113.9"})
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcdefgh****", maskAPIKey("abcdefghijkl"))
}
