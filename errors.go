// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

package uri

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"connectrpc.com/connect"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind identifies why a URI was rejected.
type ErrorKind uint8

const (
	// UnexpectedCharacter is a character that is neither a delimiter nor
	// part of an identifier.
	UnexpectedCharacter ErrorKind = iota + 1
	InvalidSchemeCharacters
	InvalidHostCharacters
	// InvalidPort is a non-empty port that is not a decimal uint16.
	InvalidPort
	// MissingHost is a "//" authority marker not followed by a host.
	MissingHost
	// SchemeWithoutAuthority is a scheme with no "//" authority after it.
	SchemeWithoutAuthority
	// UnexpectedToken is a delimiter where the grammar does not allow one.
	UnexpectedToken
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedCharacter:
		return "unexpected character"
	case InvalidSchemeCharacters:
		return "invalid scheme characters"
	case InvalidHostCharacters:
		return "invalid host characters"
	case InvalidPort:
		return "invalid port"
	case MissingHost:
		return "missing host"
	case SchemeWithoutAuthority:
		return "scheme without authority"
	case UnexpectedToken:
		return "unexpected token"
	default:
		return "unknown error"
	}
}

// field names the URI component an error kind refers to.
func (k ErrorKind) field() string {
	switch k {
	case InvalidSchemeCharacters:
		return "scheme"
	case InvalidHostCharacters, MissingHost:
		return "host"
	case InvalidPort:
		return "port"
	case SchemeWithoutAuthority:
		return "authority"
	default:
		return "uri"
	}
}

// Sentinels for use with errors.Is. An *Error matches the sentinel of the
// same kind regardless of position.
var (
	ErrUnexpectedCharacter     = &Error{Kind: UnexpectedCharacter}
	ErrInvalidSchemeCharacters = &Error{Kind: InvalidSchemeCharacters}
	ErrInvalidHostCharacters   = &Error{Kind: InvalidHostCharacters}
	ErrInvalidPort             = &Error{Kind: InvalidPort}
	ErrMissingHost             = &Error{Kind: MissingHost}
	ErrSchemeWithoutAuthority  = &Error{Kind: SchemeWithoutAuthority}
	ErrUnexpectedToken         = &Error{Kind: UnexpectedToken}
)

// Error is returned by Tokenize and Parse.
type Error struct {
	Kind  ErrorKind
	Char  rune      // offending character, for UnexpectedCharacter
	Token TokenKind // offending token, for UnexpectedToken
	Pos   int       // byte offset into Input
	Input string    // lower-cased input being parsed
}

func (e *Error) Error() string {
	return fmt.Sprintf("uri: %s at column %d", e.describe(), e.Pos+1)
}

func (e *Error) describe() string {
	switch e.Kind {
	case UnexpectedCharacter:
		return fmt.Sprintf("unexpected character %q", e.Char)
	case UnexpectedToken:
		return fmt.Sprintf("unexpected token %q", e.Token)
	default:
		return e.Kind.String()
	}
}

// Caret renders the error under the input, like so:
//
//	https://example.org:notanumber
//	                    ^
//	syntax error at column 21: invalid port
func (e *Error) Caret() string {
	return fmt.Sprintf("%s\n%s^\nsyntax error at column %d: %s",
		e.Input, strings.Repeat(" ", utf8.RuneCountInString(e.Input[:e.Pos])), e.Pos+1, e.describe())
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

func (e *Error) badRequest() *errdetails.BadRequest {
	return &errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{{
			Field:       e.Kind.field(),
			Description: e.Error(),
		}},
	}
}

// GRPCStatus lets status.FromError and grpc servers report the error as
// InvalidArgument with a BadRequest detail.
func (e *Error) GRPCStatus() *status.Status {
	st := status.New(codes.InvalidArgument, e.Error())
	if detailed, err := st.WithDetails(e.badRequest()); err == nil {
		return detailed
	}
	return st
}

// AsConnectError converts err to a *connect.Error. Parse errors become
// CodeInvalidArgument carrying a BadRequest detail.
func AsConnectError(err error) *connect.Error {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	var parseErr *Error
	if !errors.As(err, &parseErr) {
		return connect.NewError(connect.CodeInternal, err)
	}
	ce = connect.NewError(connect.CodeInvalidArgument, err)
	if detail, detailErr := connect.NewErrorDetail(parseErr.badRequest()); detailErr == nil {
		ce.AddDetail(detail)
	}
	return ce
}
