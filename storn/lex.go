// Copyright © 2026 clc
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package storn

import (
	"strconv"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenNumber
	tokenPunct
)

type token struct {
	Kind  tokenKind
	Text  string
	Value int
	Pos   Pos
}

type lexer struct {
	src    []rune
	index  int
	line   int
	column int
}

func newLexer(source string) *lexer {
	return &lexer{src: []rune(source), line: 1, column: 1}
}

func (l *lexer) pos() Pos {
	return Pos{Line: l.line, Column: l.column}
}

func (l *lexer) peekRune() rune {
	if l.index >= len(l.src) {
		return 0
	}
	return l.src[l.index]
}

func (l *lexer) advance() rune {
	r := l.src[l.index]
	l.index++
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *lexer) skipSpace() {
	for l.index < len(l.src) {
		r := l.peekRune()
		if unicode.IsSpace(r) {
			l.advance()
			continue
		}
		if r == '#' {
			for l.index < len(l.src) && l.peekRune() != '\n' {
				l.advance()
			}
			continue
		}
		break
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// next returns the following token. Two-character operators
// (<= >= << >>) lex greedily; the parser splits them back apart in the
// rare places a deref bracket abuts another angle token.
func (l *lexer) next() (token, error) {
	l.skipSpace()
	pos := l.pos()
	if l.index >= len(l.src) {
		return token{Kind: tokenEOF, Pos: pos}, nil
	}

	r := l.peekRune()
	switch {
	case isIdentStart(r):
		start := l.index
		for l.index < len(l.src) && isIdentPart(l.peekRune()) {
			l.advance()
		}
		return token{Kind: tokenIdent, Text: string(l.src[start:l.index]), Pos: pos}, nil

	case unicode.IsDigit(r):
		start := l.index
		for l.index < len(l.src) && (isIdentPart(l.peekRune())) {
			l.advance()
		}
		text := string(l.src[start:l.index])
		value, err := strconv.ParseInt(text, 0, 32)
		if err != nil {
			return token{}, compileErrorf(pos, "malformed number %q", text)
		}
		return token{Kind: tokenNumber, Text: text, Value: int(value), Pos: pos}, nil
	}

	l.advance()
	text := string(r)
	switch r {
	case '<', '>':
		if l.peekRune() == '=' || l.peekRune() == r {
			text += string(l.advance())
		}
	case '|', '&', '^', '=', '+', '-', '*', '/', '@', ':', ',', '.', '(', ')', '{', '}', '[', ']':
	default:
		return token{}, compileErrorf(pos, "unexpected character %q", text)
	}
	return token{Kind: tokenPunct, Text: text, Pos: pos}, nil
}
