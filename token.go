// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

package uri

// Span is a half-open byte range [Start, Start+Length) into the buffer a
// URI was parsed from.
type Span struct {
	Start  int
	Length int
}

// End returns the offset just past the span.
func (s Span) End() int {
	return s.Start + s.Length
}

func (s Span) in(input string) string {
	return input[s.Start:s.End()]
}

// TokenKind classifies a Token.
type TokenKind uint8

const (
	TokenColon        TokenKind = iota + 1 // :
	TokenForwardSlash                      // /
	TokenQuestionMark                      // ?
	TokenPoundSign                         // #
	TokenAt                                // @
	TokenIdent                             // letter or number, then letters, numbers, '.', '-', '='
)

func (k TokenKind) String() string {
	switch k {
	case TokenColon:
		return ":"
	case TokenForwardSlash:
		return "/"
	case TokenQuestionMark:
		return "?"
	case TokenPoundSign:
		return "#"
	case TokenAt:
		return "@"
	case TokenIdent:
		return "ident"
	default:
		return "unknown"
	}
}

// Token is a classified, positioned piece of the input. Delimiter tokens
// have a span of length one; identifier spans cover the whole run.
type Token struct {
	Kind TokenKind
	Span Span
}

type tokens []Token

// span covers toks from the start of the first to the end of the last.
// Lexed tokens are contiguous, so this is exactly their concatenated text.
func (toks tokens) span() Span {
	if len(toks) == 0 {
		return Span{}
	}
	start := toks[0].Span.Start
	return Span{Start: start, Length: toks[len(toks)-1].Span.End() - start}
}
