package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
)

// BuildRedisTLSConfig returns nil when TLS is disabled.
func BuildRedisTLSConfig(cfg RedisConfig) (*tls.Config, error) {
	if !cfg.TLS {
		return nil, nil
	}

	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		return nil, fmt.Errorf("failed to load system CA pool: %w", err)
	}

	if cfg.CACert != "" {
		caBytes, err := os.ReadFile(resolvePath(cfg.CACert)) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		if ok := rootCAs.AppendCertsFromPEM(caBytes); !ok {
			return nil, fmt.Errorf("failed to append CA certificate from %s", cfg.CACert)
		}
	}

	return &tls.Config{
		RootCAs:            rootCAs,
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.InsecureSkipVerify, // #nosec G402
		MinVersion:         tls.VersionTLS12,
	}, nil
}

func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(wd, path)
}
