// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

package uriapp

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func run(t *testing.T, stdin string, arguments ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Main(context.Background(), arguments, Streams{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	}, zaptest.NewLogger(t))
	return stdout.String(), stderr.String(), err
}

func TestMain_Parse(t *testing.T) {
	t.Parallel()
	stdout, stderr, err := run(t, "",
		"parse", "-jobs", "2",
		"https://user@Example.org:8080/a?q=1#f",
		"/relative/path",
		"//host:",
	)
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Equal(t,
		"https://user@Example.org:8080/a?q=1#f\tscheme=https userinfo=user host=example.org port=8080 path=/a query=q=1 fragment=f\n"+
			"/relative/path\tpath=/relative/path\n"+
			"//host:\thost=host path=\n",
		stdout,
	)
}

func TestMain_ParseStdin(t *testing.T) {
	t.Parallel()
	stdout, _, err := run(t, "https://a.example\n\n  /b  \n", "parse")
	require.NoError(t, err)
	assert.Equal(t,
		"https://a.example\tscheme=https host=a.example path=\n/b\tpath=/b\n",
		stdout,
	)
}

func TestMain_ParseJSON(t *testing.T) {
	t.Parallel()
	stdout, _, err := run(t, "", "parse", "-json", "https://example.org:443/x", "/y")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)

	var first structpb.Struct
	require.NoError(t, protojson.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, map[string]any{
		"scheme":    "https",
		"authority": map[string]any{"host": "example.org", "port": float64(443)},
		"path":      "/x",
	}, first.AsMap())

	var second structpb.Struct
	require.NoError(t, protojson.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, map[string]any{"path": "/y"}, second.AsMap())
}

func TestMain_ParseRejected(t *testing.T) {
	t.Parallel()
	stdout, stderr, err := run(t, "", "parse", "mailto:user", "/ok", "https://")
	assert.ErrorIs(t, err, ErrRejected)
	assert.EqualError(t, err, "2 of 3 inputs: rejected")
	assert.Equal(t, "/ok\tpath=/ok\n", stdout)
	assert.Equal(t,
		"mailto:user: uri: scheme without authority at column 1\n"+
			"https://: uri: missing host at column 9\n",
		stderr,
	)
}

func TestMain_ParseCaret(t *testing.T) {
	t.Parallel()
	_, stderr, err := run(t, "", "parse", "-caret", "https://example.org:x")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t,
		"https://example.org:x\n"+
			"                    ^\n"+
			"syntax error at column 21: invalid port\n",
		stderr,
	)
}

func TestMain_Usage(t *testing.T) {
	t.Parallel()
	_, stderr, err := run(t, "")
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, stderr, "usage: uriparse")

	_, _, err = run(t, "", "frobnicate")
	assert.EqualError(t, err, `unknown command "frobnicate"`)

	stdout, _, err := run(t, "", "help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "commands:")

	_, _, err = run(t, "", "parse", "-jobs", "0", "/a")
	assert.EqualError(t, err, "-jobs must be positive, got 0")
}

func TestMain_ServeStopsOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stderr bytes.Buffer
	err := Main(ctx, []string{"serve", "-h2c-address", "127.0.0.1:0"}, Streams{
		Stdin:  strings.NewReader(""),
		Stdout: &bytes.Buffer{},
		Stderr: &stderr,
	}, zaptest.NewLogger(t))
	assert.NoError(t, err)
}

func TestNewConfig(t *testing.T) {
	t.Parallel()
	config, err := NewConfig(ExternalConfig{H2CAddress: ":8080"})
	require.NoError(t, err)
	assert.Equal(t, ":8080", config.H2CAddress)
	assert.Nil(t, config.TLSConfig)

	_, err = NewConfig(ExternalConfig{})
	assert.EqualError(t, err, "one of -h2c-address or -tls-address is required")

	_, err = NewConfig(ExternalConfig{TLSAddress: ":8443"})
	assert.EqualError(t, err, "-tls-address requires -tls-cert and -tls-key")

	_, err = NewConfig(ExternalConfig{H2CAddress: ":8080", TLSCert: "cert.pem"})
	assert.EqualError(t, err, "-tls-cert and -tls-key must be set together")

	missing := filepath.Join(t.TempDir(), "missing.pem")
	_, err = NewConfig(ExternalConfig{TLSAddress: ":8443", TLSCert: missing, TLSKey: missing})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
