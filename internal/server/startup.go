package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"chwresume/internal/observability"
)

const shutdownTimeout = 30 * time.Second

// Start serves until ctx is cancelled or the listener fails
func (s *Server) Start(ctx context.Context) error {
	om, err := observability.NewObservabilityManager(observability.NewObservabilityConfig(s.AppConfig, s.Version), s.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer s.shutdownObservability(om)

	tlsConfig, err := s.configureTLS(om.GetMetrics())
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(s.Host, s.Port),
		Handler:      om.HTTPMiddleware()(s.setupRoutes(om)),
		TLSConfig:    tlsConfig,
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}

	s.logServerInfo(httpServer.Addr)

	serverErrors := make(chan error, 1)
	go func() {
		var err error
		if httpServer.TLSConfig != nil {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		s.cleanup()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.Logger.Info("Shutdown requested, draining connections")
		return s.shutdown(httpServer)
	}
}

func (s *Server) logServerInfo(addr string) {
	scheme := "http"
	if s.TLSConfig.Mode == "server" || s.TLSConfig.Mode == "mutual" {
		scheme = "https"
	}

	s.Logger.Info("Starting HTTP server",
		"address", fmt.Sprintf("%s://%s", scheme, addr),
		"version", s.Version,
		"tls_mode", s.TLSConfig.Mode,
		"auth_enabled", len(s.APIKeys) > 0,
		"rate_limit_enabled", s.RateLimiter != nil,
		"max_request_size", s.MaxRequestSize,
		"max_file_size", s.MaxFileSize)
}

func (s *Server) shutdown(httpServer *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.cleanup()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return httpServer.Close()
	}

	s.Logger.Info("Server shutdown completed")
	return nil
}

// cleanup stops the certificate watcher and the rate limiter janitor
func (s *Server) cleanup() {
	if s.CertificateManager != nil {
		if err := s.CertificateManager.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop certificate manager")
		}
	}
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}
}

func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}
