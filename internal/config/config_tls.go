package config

import "fmt"

// certSource is one PEM input that may come from a file or inline content
type certSource struct {
	name    string
	file    string
	content string
}

func (s certSource) present() bool {
	return s.file != "" || s.content != ""
}

func (s certSource) ambiguous() bool {
	return s.file != "" && s.content != ""
}

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	switch tls.MinVersion {
	case "", "1.2", "1.3":
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}

	cert := certSource{name: "cert", file: tls.CertFile, content: tls.CertContent}
	key := certSource{name: "key", file: tls.KeyFile, content: tls.KeyContent}
	ca := certSource{name: "ca", file: tls.CAFile, content: tls.CAContent}

	var required []certSource
	switch tls.Mode {
	case "disabled":
		return nil
	case "server":
		required = []certSource{cert, key}
	case "mutual":
		required = []certSource{cert, key, ca}
		switch tls.ClientAuthPolicy {
		case "require", "request", "verify", "":
		default:
			return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", tls.ClientAuthPolicy)
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}

	// Certificates stored in Vault are only present after ApplyVaultSecrets
	pending := c.Vault.Enabled && c.Vault.Secrets.TLSCerts != ""

	for _, src := range required {
		if !src.present() {
			if pending {
				continue
			}
			return fmt.Errorf("TLS %s is required for %s mode (provide %sFile or %sContent)", src.name, tls.Mode, src.name, src.name)
		}
		if src.ambiguous() {
			return fmt.Errorf("cannot specify both %sFile and %sContent - choose one", src.name, src.name)
		}
	}

	return nil
}
