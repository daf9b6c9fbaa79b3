// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

// Package uriservice exposes the URI parser as a Connect service. The
// service speaks the Connect, gRPC and gRPC-Web protocols and uses
// well-known types for its messages, so it needs no generated code.
package uriservice

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"connectrpc.com/uri"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully-qualified name of the service.
	ServiceName = "connectrpc.uri.v1.URIService"
	// ParseProcedure parses a StringValue into a Struct of components.
	ParseProcedure = "/" + ServiceName + "/Parse"
	// TokenizeProcedure lexes a StringValue into a ListValue of tokens.
	TokenizeProcedure = "/" + ServiceName + "/Tokenize"
)

type handler struct {
	logger *zap.Logger
}

// NewHandler returns the path prefix and handler serving the service.
func NewHandler(logger *zap.Logger, opts ...connect.HandlerOption) (string, http.Handler) {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &handler{logger: logger}
	mux := http.NewServeMux()
	mux.Handle(ParseProcedure, connect.NewUnaryHandler(ParseProcedure, svc.Parse, opts...))
	mux.Handle(TokenizeProcedure, connect.NewUnaryHandler(TokenizeProcedure, svc.Tokenize, opts...))
	return "/" + ServiceName + "/", mux
}

func (h *handler) Parse(
	_ context.Context,
	req *connect.Request[wrapperspb.StringValue],
) (*connect.Response[structpb.Struct], error) {
	input := req.Msg.GetValue()
	parsed, err := uri.Parse(input)
	if err != nil {
		h.logger.Warn("rejected uri", zap.String("input", input), zap.Error(err))
		return nil, uri.AsConnectError(err)
	}
	components, err := Describe(parsed)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	h.logger.Debug("parsed uri", zap.String("input", input), zap.Stringer("uri", parsed))
	return connect.NewResponse(components), nil
}

func (h *handler) Tokenize(
	_ context.Context,
	req *connect.Request[wrapperspb.StringValue],
) (*connect.Response[structpb.ListValue], error) {
	input := req.Msg.GetValue()
	toks, err := uri.Tokenize(input)
	if err != nil {
		h.logger.Warn("rejected uri", zap.String("input", input), zap.Error(err))
		return nil, uri.AsConnectError(err)
	}
	list, err := DescribeTokens(input, toks)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	h.logger.Debug("tokenized uri", zap.String("input", input), zap.Int("tokens", len(toks)))
	return connect.NewResponse(list), nil
}
