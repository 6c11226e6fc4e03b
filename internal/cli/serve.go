package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"chwresume/internal/config"
	"chwresume/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP server exposing the resume parser.

Available endpoints:
- POST /parse: Parse resume text sent as {"text": "..."}
- POST /parse/file: Parse an uploaded resume (multipart field "file")
- GET /vocabulary: The vocabulary the parser matches against
- GET /health: Health check endpoint
- GET /stats: Parse counters and rate limiting info

Parse and vocabulary endpoints accept ?format=json|yaml|text|markdown.

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
	serveCmd.Flags().String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
}

// applyServeFlags copies explicitly set flags over the loaded server config
func applyServeFlags(cmd *cobra.Command, srv *config.ServerConfig) {
	overrides := []struct {
		flag   string
		target *string
	}{
		{"port", &srv.Port},
		{"host", &srv.Host},
		{"tls-mode", &srv.TLS.Mode},
		{"cert-file", &srv.TLS.CertFile},
		{"key-file", &srv.TLS.KeyFile},
		{"ca-file", &srv.TLS.CAFile},
	}

	for _, o := range overrides {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}
		value, _ := cmd.Flags().GetString(o.flag)
		*o.target = value
	}

	// A certificate file given on the command line replaces inline content
	if cmd.Flags().Changed("cert-file") || cmd.Flags().Changed("key-file") {
		srv.TLS.CertContent, srv.TLS.KeyContent = "", ""
	}
	if cmd.Flags().Changed("ca-file") {
		srv.TLS.CAContent = ""
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	applyServeFlags(cmd, &cfg.Server)

	tempConfig := &config.Config{Server: cfg.Server}
	tempConfig.ApplyTLSDefaults()
	if err := tempConfig.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}
	cfg.Server.TLS = tempConfig.Server.TLS

	p, err := newParser(cfg)
	if err != nil {
		return err
	}

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		MaxFileSize:    cfg.App.MaxFileSize,
		MaxInputChars:  cfg.Parser.MaxInputChars,
		RateLimit:      &cfg.Server.RateLimit,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.NewServer(cfg, serverCfg, p, logger).Start(ctx)
}
