// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

package uriservice

import (
	"connectrpc.com/uri"
	"google.golang.org/protobuf/types/known/structpb"
)

// Describe renders the components of u as a Struct. Absent components are
// omitted; the path is always present.
func Describe(u *uri.URI) (*structpb.Struct, error) {
	fields := map[string]any{
		"path": u.Path(),
	}
	if scheme, ok := u.Scheme(); ok {
		fields["scheme"] = scheme
	}
	if authority := u.Authority(); authority != nil {
		auth := map[string]any{
			"host": authority.Host(),
		}
		if userinfo, ok := authority.Userinfo(); ok {
			auth["userinfo"] = userinfo
		}
		if port, ok := authority.Port(); ok {
			auth["port"] = int(port)
		}
		fields["authority"] = auth
	}
	if query, ok := u.Query(); ok {
		fields["query"] = query
	}
	if fragment, ok := u.Fragment(); ok {
		fields["fragment"] = fragment
	}
	return structpb.NewStruct(fields)
}

// DescribeTokens renders toks, lexed from input, as a list of
// {kind, start, length, text} structs.
func DescribeTokens(input string, toks []uri.Token) (*structpb.ListValue, error) {
	values := make([]any, 0, len(toks))
	for _, tok := range toks {
		values = append(values, map[string]any{
			"kind":   tok.Kind.String(),
			"start":  tok.Span.Start,
			"length": tok.Span.Length,
			"text":   input[tok.Span.Start:tok.Span.End()],
		})
	}
	return structpb.NewList(values)
}
