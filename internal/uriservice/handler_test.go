// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

package uriservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"connectrpc.com/uri"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestClient(t *testing.T, opts ...connect.ClientOption) *Client {
	t.Helper()
	path, handler := NewHandler(zaptest.NewLogger(t))
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewUnstartedServer(mux)
	server.EnableHTTP2 = true
	server.StartTLS()
	t.Cleanup(server.Close)
	return NewClient(server.Client(), server.URL, opts...)
}

func TestHandler_Parse(t *testing.T) {
	t.Parallel()
	protocols := []struct {
		name string
		opts []connect.ClientOption
	}{
		{name: "connect"},
		{name: "grpc", opts: []connect.ClientOption{connect.WithGRPC()}},
		{name: "grpcweb", opts: []connect.ClientOption{connect.WithGRPCWeb()}},
	}
	for _, protocol := range protocols {
		protocol := protocol
		t.Run(protocol.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, protocol.opts...)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			got, err := client.Parse(ctx, "HTTPS://user@Example.org:8443/a/b?q=1#frag")
			require.NoError(t, err)
			want, err := structpb.NewStruct(map[string]any{
				"scheme": "https",
				"authority": map[string]any{
					"userinfo": "user",
					"host":     "example.org",
					"port":     8443,
				},
				"path":     "/a/b",
				"query":    "q=1",
				"fragment": "frag",
			})
			require.NoError(t, err)
			if diff := cmp.Diff(want, got, protocmp.Transform()); diff != "" {
				t.Errorf("unexpected response (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandler_ParseError(t *testing.T) {
	t.Parallel()
	client := newTestClient(t)
	_, err := client.Parse(context.Background(), "https://example.org:notanumber")
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	var connectErr *connect.Error
	require.ErrorAs(t, err, &connectErr)
	assert.Equal(t, "uri: invalid port at column 21", connectErr.Message())
	require.Len(t, connectErr.Details(), 1)
	value, err := connectErr.Details()[0].Value()
	require.NoError(t, err)
	badRequest, ok := value.(*errdetails.BadRequest)
	require.True(t, ok)
	require.Len(t, badRequest.GetFieldViolations(), 1)
	assert.Equal(t, "port", badRequest.GetFieldViolations()[0].GetField())
}

func TestHandler_Tokenize(t *testing.T) {
	t.Parallel()
	client := newTestClient(t, connect.WithGRPC())
	got, err := client.Tokenize(context.Background(), "//h:80")
	require.NoError(t, err)
	want, err := structpb.NewList([]any{
		map[string]any{"kind": "/", "start": 0, "length": 1, "text": "/"},
		map[string]any{"kind": "/", "start": 1, "length": 1, "text": "/"},
		map[string]any{"kind": "ident", "start": 2, "length": 1, "text": "h"},
		map[string]any{"kind": ":", "start": 3, "length": 1, "text": ":"},
		map[string]any{"kind": "ident", "start": 4, "length": 2, "text": "80"},
	})
	require.NoError(t, err)
	if diff := cmp.Diff(want, got, protocmp.Transform()); diff != "" {
		t.Errorf("unexpected response (-want +got):\n%s", diff)
	}

	_, err = client.Tokenize(context.Background(), "a b")
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	assert.ErrorContains(t, err, "unexpected character ' '")
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		input string
		want  map[string]any
	}{
		{
			input: "/a/b",
			want:  map[string]any{"path": "/a/b"},
		},
		{
			input: "",
			want:  map[string]any{"path": ""},
		},
		{
			input: "//example.org:/x?#f",
			want: map[string]any{
				"authority": map[string]any{"host": "example.org"},
				"path":      "/x",
				"query":     "",
				"fragment":  "f",
			},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()
			got, err := Describe(uri.MustParse(testCase.input))
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got.AsMap())
		})
	}
}
