// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

// Package uri parses URI references into scheme, authority, path, query and
// fragment components.
//
// Parsing is a single forward pass: the input is ASCII lower-cased, split
// into tokens by a Lexer, and the tokens are consumed in component order by
// ParseTokens. The resulting URI holds the lower-cased text and byte spans
// into it, so accessors return substrings without copying.
//
// Because the whole input is folded, path, query and fragment are returned
// in lower case too; the original spelling is not kept. Percent-encoding,
// IPv6 literals and path normalization are not handled.
package uri

import (
	"strings"
)

// URI is a parsed URI. The zero value is an empty relative reference.
type URI struct {
	source    string
	scheme    *Span
	authority *Authority
	path      Span
	query     *Span
	fragment  *Span
}

// Authority is the "userinfo@host:port" part of a URI.
type Authority struct {
	source   string
	userinfo *Span
	host     Span
	portSpan *Span
	port     uint16
}

// Parse parses input as a URI.
func Parse(input string) (*URI, error) {
	input = asciiLower(input)
	toks, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return ParseTokens(input, toks)
}

// MustParse is like Parse but panics if input cannot be parsed.
func MustParse(input string) *URI {
	uri, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return uri
}

// Source returns the lower-cased text the URI was parsed from.
func (u *URI) Source() string {
	return u.source
}

// Scheme returns the scheme without its trailing colon.
func (u *URI) Scheme() (string, bool) {
	return optional(u.source, u.scheme)
}

// Authority returns the authority, or nil if the URI has none.
func (u *URI) Authority() *Authority {
	return u.authority
}

// Path returns the path, which is empty rather than absent when missing.
func (u *URI) Path() string {
	return u.path.in(u.source)
}

// Query returns the query without its leading "?".
func (u *URI) Query() (string, bool) {
	return optional(u.source, u.query)
}

// Fragment returns the fragment without its leading "#".
func (u *URI) Fragment() (string, bool) {
	return optional(u.source, u.fragment)
}

// String reassembles the URI from its components.
func (u *URI) String() string {
	var out strings.Builder
	if scheme, ok := u.Scheme(); ok {
		out.WriteString(scheme)
		out.WriteByte(':')
	}
	if u.authority != nil {
		out.WriteString("//")
		out.WriteString(u.authority.String())
	}
	out.WriteString(u.Path())
	if query, ok := u.Query(); ok {
		out.WriteByte('?')
		out.WriteString(query)
	}
	if fragment, ok := u.Fragment(); ok {
		out.WriteByte('#')
		out.WriteString(fragment)
	}
	return out.String()
}

// Userinfo returns the userinfo without its trailing "@".
func (a *Authority) Userinfo() (string, bool) {
	return optional(a.source, a.userinfo)
}

// Host returns the host. It is never empty.
func (a *Authority) Host() string {
	return a.host.in(a.source)
}

// PortString returns the port text. An empty port ("host:") is reported
// as absent.
func (a *Authority) PortString() (string, bool) {
	return optional(a.source, a.portSpan)
}

// Port returns the numeric port.
func (a *Authority) Port() (uint16, bool) {
	if a.portSpan == nil {
		return 0, false
	}
	return a.port, true
}

func (a *Authority) String() string {
	var out strings.Builder
	if userinfo, ok := a.Userinfo(); ok {
		out.WriteString(userinfo)
		out.WriteByte('@')
	}
	out.WriteString(a.Host())
	if port, ok := a.PortString(); ok {
		out.WriteByte(':')
		out.WriteString(port)
	}
	return out.String()
}

func optional(source string, span *Span) (string, bool) {
	if span == nil {
		return "", false
	}
	return span.in(source), true
}

// asciiLower folds A-Z only, so byte offsets are the same before and after.
func asciiLower(s string) string {
	i := strings.IndexFunc(s, func(r rune) bool { return 'A' <= r && r <= 'Z' })
	if i < 0 {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		if c := b[i]; 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
