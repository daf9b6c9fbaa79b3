// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

package uriservice

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls a URIService.
type Client struct {
	parse    *connect.Client[wrapperspb.StringValue, structpb.Struct]
	tokenize *connect.Client[wrapperspb.StringValue, structpb.ListValue]
}

// NewClient returns a client for the service hosted at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		parse: connect.NewClient[wrapperspb.StringValue, structpb.Struct](
			httpClient, baseURL+ParseProcedure, opts...,
		),
		tokenize: connect.NewClient[wrapperspb.StringValue, structpb.ListValue](
			httpClient, baseURL+TokenizeProcedure, opts...,
		),
	}
}

// Parse asks the service to parse input.
func (c *Client) Parse(ctx context.Context, input string) (*structpb.Struct, error) {
	rsp, err := c.parse.CallUnary(ctx, connect.NewRequest(wrapperspb.String(input)))
	if err != nil {
		return nil, err
	}
	return rsp.Msg, nil
}

// Tokenize asks the service to lex input.
func (c *Client) Tokenize(ctx context.Context, input string) (*structpb.ListValue, error) {
	rsp, err := c.tokenize.CallUnary(ctx, connect.NewRequest(wrapperspb.String(input)))
	if err != nil {
		return nil, err
	}
	return rsp.Msg, nil
}
