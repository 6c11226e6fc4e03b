package server

import (
	"crypto/tls"
	"fmt"

	"chwresume/internal/observability"
)

var cipherSuiteIDs = func() map[string]uint16 {
	ids := make(map[string]uint16)
	for _, suite := range tls.CipherSuites() {
		ids[suite.Name] = suite.ID
	}
	return ids
}()

// configureTLS starts the certificate manager and returns the listener TLS
// config, or nil when TLS is disabled
func (s *Server) configureTLS(metrics *observability.Metrics) (*tls.Config, error) {
	switch s.TLSConfig.Mode {
	case "", "disabled":
		return nil, nil
	case "server", "mutual":
	default:
		return nil, fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	cm := NewCertificateManager(&s.TLSConfig, metrics, s.Logger)
	if err := cm.Start(); err != nil {
		return nil, fmt.Errorf("failed to start certificate manager: %w", err)
	}
	s.CertificateManager = cm

	tlsConfig, err := s.buildTLSConfig(cm)
	if err != nil {
		_ = cm.Stop()
		return nil, err
	}
	return tlsConfig, nil
}

// buildTLSConfig serves certificates from cm so reloads apply to new handshakes
func (s *Server) buildTLSConfig(cm *CertificateManager) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: cm.GetServerCertificate,
	}
	if s.TLSConfig.MinVersion == "1.3" {
		tlsConfig.MinVersion = tls.VersionTLS13
	}

	for _, name := range s.TLSConfig.CipherSuites {
		id, ok := cipherSuiteIDs[name]
		if !ok {
			return nil, fmt.Errorf("unknown cipher suite: %s", name)
		}
		tlsConfig.CipherSuites = append(tlsConfig.CipherSuites, id)
	}

	if s.TLSConfig.Mode != "mutual" {
		return tlsConfig, nil
	}

	clientAuth := clientAuthPolicy(s.TLSConfig.ClientAuthPolicy)
	tlsConfig.ClientAuth = clientAuth
	tlsConfig.ClientCAs = cm.CACertPool()
	tlsConfig.GetConfigForClient = func(*tls.ClientHelloInfo) (*tls.Config, error) {
		perConn := tlsConfig.Clone()
		perConn.GetConfigForClient = nil
		perConn.ClientCAs = cm.CACertPool()
		return perConn, nil
	}

	return tlsConfig, nil
}

// clientAuthPolicy maps the configured policy; mutual TLS defaults to require
func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
