// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

package uriapp

import (
	"crypto/tls"
	"errors"
	"os"
	"time"
)

// ExternalConfig holds the raw values of the serve flags.
type ExternalConfig struct {
	H2CAddress        string
	TLSAddress        string
	TLSCert           string
	TLSKey            string
	ReadHeaderTimeout time.Duration
}

// Config is the validated serve configuration.
type Config struct {
	H2CAddress        string
	TLSAddress        string
	TLSConfig         *tls.Config
	ReadHeaderTimeout time.Duration
}

// NewConfig validates externalConfig and loads the TLS key pair, if any.
func NewConfig(externalConfig ExternalConfig) (*Config, error) {
	config := &Config{
		H2CAddress:        externalConfig.H2CAddress,
		TLSAddress:        externalConfig.TLSAddress,
		TLSConfig:         nil,
		ReadHeaderTimeout: externalConfig.ReadHeaderTimeout,
	}
	if (externalConfig.TLSCert == "") != (externalConfig.TLSKey == "") {
		return nil, errors.New("-tls-cert and -tls-key must be set together")
	}
	if externalConfig.TLSAddress != "" && externalConfig.TLSCert == "" {
		return nil, errors.New("-tls-address requires -tls-cert and -tls-key")
	}
	if externalConfig.TLSCert != "" && externalConfig.TLSKey != "" {
		cert, err := os.ReadFile(externalConfig.TLSCert)
		if err != nil {
			return nil, err
		}
		key, err := os.ReadFile(externalConfig.TLSKey)
		if err != nil {
			return nil, err
		}
		certificate, err := tls.X509KeyPair(cert, key)
		if err != nil {
			return nil, err
		}
		config.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{certificate},
		}
	}
	if config.H2CAddress == "" && config.TLSAddress == "" {
		return nil, errors.New("one of -h2c-address or -tls-address is required")
	}
	return config, nil
}
