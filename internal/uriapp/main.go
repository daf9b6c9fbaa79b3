// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

// Package uriapp implements the uriparse command.
package uriapp

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"connectrpc.com/uri/internal/uriservice"
	"go.uber.org/zap"
)

// ErrRejected is returned by the parse command when any input fails to
// parse. Each failure has already been reported on stderr.
var ErrRejected = errors.New("rejected")

// Streams are the standard streams of the command.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

const usage = `usage: uriparse <command> [flags] [args]

commands:
  parse   parse URIs given as arguments, or one per line on stdin
  serve   serve the URIService over h2c and/or TLS`

// Main runs the command named by arguments[0].
func Main(ctx context.Context, arguments []string, streams Streams, logger *zap.Logger) error {
	if len(arguments) == 0 {
		fmt.Fprintln(streams.Stderr, usage)
		return flag.ErrHelp
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	switch command, rest := arguments[0], arguments[1:]; command {
	case "parse":
		return runParse(ctx, rest, streams)
	case "serve":
		return runServe(ctx, rest, streams, logger)
	case "help", "-h", "-help", "--help":
		fmt.Fprintln(streams.Stdout, usage)
		return nil
	default:
		fmt.Fprintln(streams.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runServe(ctx context.Context, arguments []string, streams Streams, logger *zap.Logger) error {
	flags := flag.NewFlagSet("serve", flag.ContinueOnError)
	flags.SetOutput(streams.Stderr)
	h2cAddress := flags.String("h2c-address", ":8080", "address to listen for h2c connections on")
	tlsAddress := flags.String("tls-address", "", "address to listen for tls connections on")
	tlsCertName := flags.String("tls-cert", "", "path to tls certificate")
	tlsKeyName := flags.String("tls-key", "", "path to tls private key")
	readHeaderTimeout := flags.Duration("read-header-timeout", 5*time.Second, "time allowed to read request headers")
	err := flags.Parse(arguments)
	if err != nil {
		return err
	}

	config, err := NewConfig(ExternalConfig{
		H2CAddress:        *h2cAddress,
		TLSAddress:        *tlsAddress,
		TLSCert:           *tlsCertName,
		TLSKey:            *tlsKeyName,
		ReadHeaderTimeout: *readHeaderTimeout,
	})
	if err != nil {
		return err
	}

	server, err := uriservice.NewServer(uriservice.ServerConfig{
		H2CAddress:        config.H2CAddress,
		TLSAddress:        config.TLSAddress,
		TLSConfig:         config.TLSConfig,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		Logger:            logger,
	})
	if err != nil {
		return err
	}
	return server.Run(ctx)
}
