package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"chwresume/internal/config"
	"chwresume/internal/errors"
	"chwresume/internal/observability"
)

// Reload triggers
const (
	reloadTriggerStartup = "startup"
	reloadTriggerFile    = "file_watcher"
	reloadTriggerManual  = "manual"
)

// CertificateManager holds the serving certificate and client CA pool and
// swaps them in place when the PEM files change
type CertificateManager struct {
	mu sync.RWMutex

	serverCert *tls.Certificate
	caCertPool *x509.CertPool
	notAfter   time.Time

	lastReload      time.Time
	reloadCount     int64
	reloadFailures  int64
	lastReloadError string

	config  *config.TLSConfig
	watcher *CertWatcher
	metrics *observability.Metrics
	logger  *errors.Logger
}

// CertificateStatus is the certificate section of /health
type CertificateStatus struct {
	Mode            string    `json:"mode"`
	NotAfter        time.Time `json:"notAfter"`
	ExpiresIn       string    `json:"expiresIn"`
	LastReload      time.Time `json:"lastReload"`
	ReloadCount     int64     `json:"reloadCount"`
	ReloadFailures  int64     `json:"reloadFailures"`
	LastReloadError string    `json:"lastReloadError,omitempty"`
	Watching        bool      `json:"watching"`
}

// NewCertificateManager creates a manager for tlsCfg; metrics may be nil
func NewCertificateManager(tlsCfg *config.TLSConfig, metrics *observability.Metrics, logger *errors.Logger) *CertificateManager {
	return &CertificateManager{
		config:  tlsCfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Start loads the certificates and, when configured, watches their files
func (cm *CertificateManager) Start() error {
	if err := cm.reload(reloadTriggerStartup); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	reload := cm.config.AutoReload
	if !reload.Enabled || !reload.FileWatcher.Enabled {
		return nil
	}

	files := []string{cm.config.CertFile, cm.config.KeyFile}
	if cm.config.Mode == "mutual" {
		files = append(files, cm.config.CAFile)
	}

	watcher := NewCertWatcher(files, reload.FileWatcher.DebounceDelay, func() {
		if err := cm.reload(reloadTriggerFile); err != nil {
			cm.logger.LogError(err, "Failed to reload certificates, keeping previous ones")
		}
	}, cm.logger)
	if len(watcher.Files()) == 0 {
		cm.logger.Info("Certificate auto reload enabled but certificates come from inline content")
		return nil
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start certificate watcher: %w", err)
	}

	cm.mu.Lock()
	cm.watcher = watcher
	cm.mu.Unlock()
	return nil
}

// Stop stops the file watcher if one is running
func (cm *CertificateManager) Stop() error {
	cm.mu.Lock()
	watcher := cm.watcher
	cm.watcher = nil
	cm.mu.Unlock()

	if watcher == nil {
		return nil
	}
	return watcher.Stop()
}

// GetServerCertificate is the tls.Config.GetCertificate hook
func (cm *CertificateManager) GetServerCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}
	return cm.serverCert, nil
}

// CACertPool returns the current client CA pool, nil outside mutual mode
func (cm *CertificateManager) CACertPool() *x509.CertPool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.caCertPool
}

// Reload re-reads the certificates on demand
func (cm *CertificateManager) Reload() error {
	return cm.reload(reloadTriggerManual)
}

// reload loads a new certificate set and installs it only if every part parses
func (cm *CertificateManager) reload(trigger string) error {
	cert, notAfter, pool, err := cm.load()

	cm.mu.Lock()
	cm.reloadCount++
	if err != nil {
		cm.reloadFailures++
		cm.lastReloadError = err.Error()
		cm.mu.Unlock()
		cm.metrics.RecordCertReload(context.Background(), trigger, false)
		return err
	}
	cm.serverCert = cert
	cm.notAfter = notAfter
	cm.caCertPool = pool
	cm.lastReload = time.Now()
	cm.lastReloadError = ""
	cm.mu.Unlock()

	cm.metrics.RecordCertReload(context.Background(), trigger, true)
	cm.metrics.RecordCertExpiry(context.Background(), time.Until(notAfter))

	cm.logger.Info("Certificates loaded",
		"trigger", trigger,
		"not_after", notAfter)
	return nil
}

func (cm *CertificateManager) load() (*tls.Certificate, time.Time, *x509.CertPool, error) {
	cfg := cm.config

	var (
		cert tls.Certificate
		err  error
	)
	if cfg.CertContent != "" || cfg.KeyContent != "" {
		cert, err = tls.X509KeyPair([]byte(cfg.CertContent), []byte(cfg.KeyContent))
	} else {
		cert, err = tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	}
	if err != nil {
		return nil, time.Time{}, nil, fmt.Errorf("failed to load server certificate: %w", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, time.Time{}, nil, fmt.Errorf("failed to parse server certificate: %w", err)
	}
	cert.Leaf = leaf

	if cfg.Mode != "mutual" {
		return &cert, leaf.NotAfter, nil, nil
	}

	caPEM := []byte(cfg.CAContent)
	if len(caPEM) == 0 {
		if caPEM, err = os.ReadFile(cfg.CAFile); err != nil {
			return nil, time.Time{}, nil, fmt.Errorf("failed to read CA file: %w", err)
		}
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, time.Time{}, nil, fmt.Errorf("failed to parse CA certificate")
	}

	return &cert, leaf.NotAfter, pool, nil
}

// CheckExpiry returns how long the serving certificate remains valid
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	notAfter := cm.notAfter
	cm.mu.RUnlock()

	if notAfter.IsZero() {
		return 0, fmt.Errorf("no certificates loaded")
	}

	remaining := time.Until(notAfter)
	cm.metrics.RecordCertExpiry(context.Background(), remaining)
	return remaining, nil
}

// Status summarizes the certificate state
func (cm *CertificateManager) Status() CertificateStatus {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	status := CertificateStatus{
		Mode:            cm.config.Mode,
		NotAfter:        cm.notAfter,
		LastReload:      cm.lastReload,
		ReloadCount:     cm.reloadCount,
		ReloadFailures:  cm.reloadFailures,
		LastReloadError: cm.lastReloadError,
		Watching:        cm.watcher != nil,
	}
	if !cm.notAfter.IsZero() {
		status.ExpiresIn = time.Until(cm.notAfter).Round(time.Second).String()
	}
	return status
}
