package server

import (
	"context"
	"net/http"
	"strings"

	"chwresume/internal/errors"
	"chwresume/internal/observability"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes(om *observability.ObservabilityManager) http.Handler {
	mux := http.NewServeMux()

	rateLimit := s.rateLimitMiddleware(om.GetMetrics())
	requestLimit := s.requestSizeLimitMiddleware()
	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return rateLimit(s.authMiddleware(requestLimit(h)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)
	mux.HandleFunc("GET /vocabulary", protect(s.vocabularyHandler))
	mux.HandleFunc("POST /parse", protect(s.createParseTextHandler(om)))
	mux.HandleFunc("POST /parse/file", protect(s.createParseFileHandler(om)))

	return requestIDMiddleware(mux)
}

// requestIDMiddleware propagates X-Request-ID, minting a UUIDv7 when absent
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = newRequestID()
		}

		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// RequestIDFromContext returns the request ID set by the middleware
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := apiKeyFromRequest(r)
		if apiKey == "" {
			s.writeError(w, r, errors.NewAuthError(errors.ErrCodeMissingAPIKey,
				"X-API-Key header or Authorization Bearer token required", nil))
			return
		}

		if !s.APIKeys[apiKey] {
			s.writeError(w, r, errors.NewAuthError(errors.ErrCodeInvalidAPIKey, "Invalid API key", nil).
				WithContext("api_key_prefix", maskAPIKey(apiKey)))
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// apiKeyFromRequest reads X-API-Key, falling back to a Bearer token
func apiKeyFromRequest(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}
			next(w, r)
		}
	}
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
