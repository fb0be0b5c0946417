package server

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync"
)

// CertLoader holds the TLS key pair served by the listener.
// Reload swaps in a new pair; a failed reload keeps serving the old one.
type CertLoader struct {
	certFile string
	keyFile  string
	logger   *slog.Logger

	mu   sync.RWMutex
	cert *tls.Certificate
}

// NewCertLoader creates a new CertLoader and loads the key pair.
func NewCertLoader(certFile, keyFile string, logger *slog.Logger) (*CertLoader, error) {
	loader := &CertLoader{
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger,
	}

	// Initial load
	if err := loader.Reload(); err != nil {
		return nil, err
	}

	return loader, nil
}

// GetCertificate is a callback for tls.Config.GetCertificate.
func (l *CertLoader) GetCertificate(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cert, nil
}

// Reload reads the key pair from disk.
func (l *CertLoader) Reload() error {
	cert, err := tls.LoadX509KeyPair(l.certFile, l.keyFile)
	if err != nil {
		return fmt.Errorf("failed to load key pair: %w", err)
	}

	l.mu.Lock()
	l.cert = &cert
	l.mu.Unlock()

	l.logger.Info("loaded tls certificate", "cert", l.certFile, "key", l.keyFile)
	return nil
}

// reloadAndLog is used as a watch callback.
func (l *CertLoader) reloadAndLog() {
	if err := l.Reload(); err != nil {
		l.logger.Error("failed to reload certificate, keeping previous", "error", err)
	}
}
