// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

package uriservice

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
)

// Server serves the URIService until its context is cancelled.
type Server interface {
	Run(ctx context.Context) error
}

// ServerConfig configures NewServer. At least one address must be set; the
// TLS address is only used with a TLS config.
type ServerConfig struct {
	H2CAddress        string
	TLSAddress        string
	TLSConfig         *tls.Config
	ReadHeaderTimeout time.Duration
	Logger            *zap.Logger
}

type server struct {
	config ServerConfig
}

// NewServer validates config and returns a Server.
func NewServer(config ServerConfig) (Server, error) {
	if config.H2CAddress == "" && (config.TLSAddress == "" || config.TLSConfig == nil) {
		return nil, errors.New("uriservice: no address to listen on")
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = 5 * time.Second
	}
	return &server{config: config}, nil
}

func (s *server) Run(ctx context.Context) error {
	logger := s.config.Logger
	path, handler := NewHandler(logger)
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	h2Server := new(http2.Server)
	srv := new(http.Server)
	srv.Handler = h2c.NewHandler(mux, h2Server)
	srv.BaseContext = func(net.Listener) context.Context {
		return ctx
	}
	srv.ReadHeaderTimeout = s.config.ReadHeaderTimeout
	srv.TLSConfig = s.config.TLSConfig

	if err := http2.ConfigureServer(srv, h2Server); err != nil {
		return err
	}

	listeners, err := s.listen()
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, ln := range listeners {
		ln := ln
		logger.Info("serving", zap.Stringer("address", ln.Addr()))
		group.Go(func() error {
			return ignoreClosed(srv.Serve(ln))
		})
	}
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// listen opens the configured listeners, closing any already open if one
// fails.
func (s *server) listen() ([]net.Listener, error) {
	var listeners []net.Listener
	closeAll := func() {
		for _, ln := range listeners {
			_ = ln.Close()
		}
	}
	if s.config.H2CAddress != "" {
		ln, err := net.Listen("tcp", s.config.H2CAddress)
		if err != nil {
			return nil, err
		}
		listeners = append(listeners, ln)
	}
	if s.config.TLSAddress != "" && s.config.TLSConfig != nil {
		ln, err := net.Listen("tcp", s.config.TLSAddress)
		if err != nil {
			closeAll()
			return nil, err
		}
		listeners = append(listeners, tls.NewListener(ln, s.config.TLSConfig))
	}
	return listeners, nil
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
