// Package server exposes the resume parser over HTTP.
package server

import (
	"sync/atomic"
	"time"

	"chwresume/internal/config"
	"chwresume/internal/errors"
	"chwresume/internal/parser"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	AppConfig *config.Config

	TLSConfig          config.TLSConfig
	CertificateManager *CertificateManager

	// API keys accepted by authMiddleware; empty disables authentication
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64
	MaxFileSize    int64
	MaxInputChars  int

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Parser *parser.Parser
	Logger *errors.Logger

	startTime time.Time
	stats     parseStats
}

// parseStats counts parse outcomes for /stats
type parseStats struct {
	text     atomic.Int64
	files    atomic.Int64
	failures atomic.Int64
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	MaxFileSize    int64
	MaxInputChars  int
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a Server that parses with p
func NewServer(appCfg *config.Config, cfg ServerConfig, p *parser.Parser, logger *errors.Logger) *Server {
	apiKeyMap := make(map[string]bool, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	if p == nil {
		p = parser.Default()
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		MaxFileSize:    cfg.MaxFileSize,
		MaxInputChars:  cfg.MaxInputChars,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Parser:         p,
		Logger:         logger,
		startTime:      time.Now(),
	}
}
