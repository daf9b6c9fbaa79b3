// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

package uri

import (
	"fmt"
	"strconv"
)

// ParseTokens assembles a URI from tokens lexed from input. The input must
// already be lower-cased if case-insensitive comparison is wanted; Parse
// does that before calling ParseTokens.
//
// Components are recognized in a fixed order and tokens are never pushed
// back:
//
//	URI       = [ Scheme ] [ "//" Authority ] Path [ Query ] [ Fragment ] ;
//	Scheme    = IDENT ":" ;
//	Authority = [ IDENT "@" ] IDENT [ ":" [ IDENT ] ] ;
//	Path      = { "/" | IDENT } ;
//	Query     = "?" { IDENT } ;
//	Fragment  = "#" [ IDENT ] ;
//
// A scheme without an authority is rejected. toks must have been lexed
// from input; a token whose span falls outside input is an error.
func ParseTokens(input string, toks []Token) (*URI, error) {
	for i, tok := range toks {
		if tok.Span.Start < 0 || tok.Span.Length < 0 || tok.Span.End() > len(input) {
			return nil, fmt.Errorf("uri: token %d spans [%d:%d], outside input of length %d",
				i, tok.Span.Start, tok.Span.End(), len(input))
		}
	}
	p := &parser{input: input, toks: toks}
	return p.parse()
}

// parser holds the state for the single-pass token consumer.
type parser struct {
	input string
	toks  tokens
	pos   int // index of the next unconsumed token
}

func (p *parser) parse() (*URI, error) {
	uri := &URI{source: p.input}
	var err error
	if uri.scheme, err = p.parseScheme(); err != nil {
		return nil, err
	}
	if uri.authority, err = p.parseAuthority(); err != nil {
		return nil, err
	}
	uri.path = p.parsePath()
	if uri.query, err = p.parseQuery(); err != nil {
		return nil, err
	}
	if uri.fragment, err = p.parseFragment(); err != nil {
		return nil, err
	}
	if uri.scheme != nil && uri.authority == nil {
		return nil, p.errSyntax(SchemeWithoutAuthority, uri.scheme.Start)
	}
	if tok, ok := p.peek(0); ok {
		return nil, p.errUnexpected(tok)
	}
	return uri, nil
}

func (p *parser) peek(offset int) (Token, bool) {
	if i := p.pos + offset; i < len(p.toks) {
		return p.toks[i], true
	}
	return Token{}, false
}

// lookingAt reports whether the next tokens are of the given kinds, in order.
func (p *parser) lookingAt(kinds ...TokenKind) bool {
	for i, kind := range kinds {
		tok, ok := p.peek(i)
		if !ok || tok.Kind != kind {
			return false
		}
	}
	return true
}

func (p *parser) consume(kind TokenKind) (Token, bool) {
	tok, ok := p.peek(0)
	if !ok || tok.Kind != kind {
		return Token{}, false
	}
	p.pos++
	return tok, true
}

func (p *parser) errSyntax(kind ErrorKind, pos int) error {
	return &Error{Kind: kind, Pos: pos, Input: p.input}
}

func (p *parser) errUnexpected(tok Token) error {
	return &Error{Kind: UnexpectedToken, Token: tok.Kind, Pos: tok.Span.Start, Input: p.input}
}

func (p *parser) parseScheme() (*Span, error) {
	if !p.lookingAt(TokenIdent, TokenColon) {
		return nil, nil //nolint:nilnil // no scheme
	}
	ident, _ := p.consume(TokenIdent)
	p.consume(TokenColon)
	if !isValidScheme(ident.Span.in(p.input)) {
		return nil, p.errSyntax(InvalidSchemeCharacters, ident.Span.Start)
	}
	return &ident.Span, nil
}

func (p *parser) parseAuthority() (*Authority, error) {
	if !p.lookingAt(TokenForwardSlash, TokenForwardSlash) {
		return nil, nil //nolint:nilnil // no authority
	}
	p.pos += 2
	authority := &Authority{source: p.input}
	if p.lookingAt(TokenIdent, TokenAt) {
		userinfo, _ := p.consume(TokenIdent)
		p.consume(TokenAt)
		authority.userinfo = &userinfo.Span
	}
	host, ok := p.consume(TokenIdent)
	if !ok {
		pos := len(p.input)
		if tok, ok := p.peek(0); ok {
			pos = tok.Span.Start
		}
		return nil, p.errSyntax(MissingHost, pos)
	}
	if !isValidHost(host.Span.in(p.input)) {
		return nil, p.errSyntax(InvalidHostCharacters, host.Span.Start)
	}
	authority.host = host.Span
	if err := p.parsePort(authority); err != nil {
		return nil, err
	}
	return authority, nil
}

// parsePort reads an optional ":" port. A colon with no identifier after it
// is accepted as no port.
func (p *parser) parsePort(authority *Authority) error {
	if _, ok := p.consume(TokenColon); !ok {
		return nil
	}
	ident, ok := p.consume(TokenIdent)
	if !ok || ident.Span.Length == 0 {
		return nil
	}
	port, err := strconv.ParseUint(ident.Span.in(p.input), 10, 16)
	if err != nil {
		return p.errSyntax(InvalidPort, ident.Span.Start)
	}
	authority.portSpan = &ident.Span
	authority.port = uint16(port)
	return nil
}

func (p *parser) parsePath() Span {
	start := p.pos
	for p.lookingAt(TokenForwardSlash) || p.lookingAt(TokenIdent) {
		p.pos++
	}
	if start == p.pos {
		return Span{Start: p.offset()}
	}
	return p.toks[start:p.pos].span()
}

func (p *parser) parseQuery() (*Span, error) {
	mark, ok := p.consume(TokenQuestionMark)
	if !ok {
		return nil, nil //nolint:nilnil // no query
	}
	start := p.pos
	for {
		tok, ok := p.peek(0)
		if !ok || tok.Kind == TokenPoundSign {
			break
		}
		if tok.Kind != TokenIdent {
			return nil, p.errUnexpected(tok)
		}
		p.pos++
	}
	if start == p.pos {
		return &Span{Start: mark.Span.End()}, nil
	}
	query := p.toks[start:p.pos].span()
	return &query, nil
}

func (p *parser) parseFragment() (*Span, error) {
	if _, ok := p.consume(TokenPoundSign); !ok {
		return nil, nil //nolint:nilnil // no fragment
	}
	tok, ok := p.peek(0)
	if !ok {
		return nil, nil //nolint:nilnil // "#" at end of input
	}
	if tok.Kind != TokenIdent {
		return nil, p.errUnexpected(tok)
	}
	p.pos++
	return &tok.Span, nil
}

// offset is the byte offset of the next unconsumed token.
func (p *parser) offset() int {
	if tok, ok := p.peek(0); ok {
		return tok.Span.Start
	}
	return len(p.input)
}

func isValidScheme(scheme string) bool {
	for i := 0; i < len(scheme); i++ {
		c := scheme[i]
		if !isASCIILetter(c) && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

func isValidHost(host string) bool {
	for i := 0; i < len(host); i++ {
		c := host[i]
		if !isASCIILetter(c) && !isASCIIDigit(c) && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
