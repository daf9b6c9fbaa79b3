// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

package uri

import (
	"unicode"
	"unicode/utf8"
)

// ### Token syntax
//
//     Delim = ":" | "/" | "?" | "#" | "@" ;
//     Ident = ( LETTER | NUMBER ) { LETTER | NUMBER | "." | "-" | "=" } ;
//
// Identifiers are deliberately broad; the parser decides whether a run is a
// valid scheme, host or port.

// Lexer produces tokens from an input one at a time. Positions are byte
// offsets into the input.
type Lexer struct {
	input string
	start int // start of the token being scanned
	pos   int // next byte to read
	width int // width of the last rune read
}

// NewLexer returns a Lexer positioned at the start of input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize splits input into tokens. It stops at the first character that
// is neither a delimiter nor the start of an identifier.
func Tokenize(input string) ([]Token, error) {
	lex := NewLexer(input)
	toks := make([]Token, 0, 16)
	for {
		tok, ok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

const eof = -1

// Next returns the next token. It returns false once the input is
// exhausted.
func (l *Lexer) Next() (Token, bool, error) {
	switch r := l.next(); {
	case r == eof:
		return Token{}, false, nil
	case r == ':':
		return l.emit(TokenColon), true, nil
	case r == '/':
		return l.emit(TokenForwardSlash), true, nil
	case r == '?':
		return l.emit(TokenQuestionMark), true, nil
	case r == '#':
		return l.emit(TokenPoundSign), true, nil
	case r == '@':
		return l.emit(TokenAt), true, nil
	case isIdentStart(r):
		l.acceptRun(isIdent)
		return l.emit(TokenIdent), true, nil
	default:
		return Token{}, false, l.errUnexpected(r)
	}
}

func (l *Lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	var r rune
	if c := l.input[l.pos]; c < utf8.RuneSelf {
		r, l.width = rune(c), 1
	} else {
		r, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	}
	l.pos += l.width
	return r
}

func (l *Lexer) backup() {
	l.pos -= l.width
	l.width = 0
}

func (l *Lexer) acceptRun(isValid func(r rune) bool) int {
	var i int
	for isValid(l.next()) {
		i++
	}
	l.backup()
	return i
}

func (l *Lexer) emit(kind TokenKind) Token {
	tok := Token{Kind: kind, Span: Span{Start: l.start, Length: l.pos - l.start}}
	l.start = l.pos
	return tok
}

func (l *Lexer) errUnexpected(r rune) error {
	err := &Error{
		Kind:  UnexpectedCharacter,
		Char:  r,
		Pos:   l.start,
		Input: l.input,
	}
	l.start = l.pos
	return err
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isIdent(r rune) bool {
	return isIdentStart(r) || r == '.' || r == '-' || r == '='
}
