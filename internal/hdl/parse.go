// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl parses pin lists and connection strings.
//
//	a, b, bus[4]               // pin list: bus[4] expands to bus[0] .. bus[3]
//	a=x, b[0..3]=y[4..7], c=z  // connections
package hdl

import (
	"strconv"
	"unicode"

	"github.com/pkg/errors"
)

// Type is a token type.
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	BracketOpen
	BracketClose
	Comma
	Int
	Range
	Equal
)

var typeNames = [...]string{"end of input", "character", "identifier", "'['", "']'", "','", "integer", "'..'", "'='"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "token " + strconv.Itoa(int(t))
}

// Item is a lexed token.
type Item struct {
	Type  Type
	Pos   int
	Value interface{}
}

func (i Item) String() string {
	switch i.Type {
	case Ident:
		return "identifier " + strconv.Quote(i.Value.(string))
	case Int:
		return "integer " + strconv.Itoa(i.Value.(int))
	case Raw:
		return "character " + strconv.QuoteRune(i.Value.(rune))
	}
	return i.Type.String()
}

// Lexer splits its input into tokens.
type Lexer struct {
	in  []rune
	pos int
}

// NewLexer returns a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{in: []rune(input)}
}

func (l *Lexer) peek(off int) rune {
	if l.pos+off < len(l.in) {
		return l.in[l.pos+off]
	}
	return -1
}

// Lex returns the next token. Once the end of input is reached, or after a
// Raw token, it only returns EOF.
func (l *Lexer) Lex() Item {
	for l.pos < len(l.in) && unicode.IsSpace(l.in[l.pos]) {
		l.pos++
	}
	start := l.pos
	r := l.peek(0)
	switch {
	case r < 0:
		return Item{EOF, start, nil}
	case unicode.IsLetter(r) || r == '_':
		for r = l.peek(0); unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'; r = l.peek(0) {
			l.pos++
		}
		return Item{Ident, start, string(l.in[start:l.pos])}
	case '0' <= r && r <= '9':
		v := 0
		for r = l.peek(0); '0' <= r && r <= '9'; r = l.peek(0) {
			v = v*10 + int(r-'0')
			l.pos++
		}
		return Item{Int, start, v}
	case r == '.' && l.peek(1) == '.':
		l.pos += 2
		return Item{Range, start, ".."}
	}
	l.pos++
	switch r {
	case '[':
		return Item{BracketOpen, start, "["}
	case ']':
		return Item{BracketClose, start, "]"}
	case ',':
		return Item{Comma, start, ","}
	case '=':
		return Item{Equal, start, "="}
	}
	l.pos = len(l.in)
	return Item{Raw, start, r}
}

// Pin is a simple pin name
type Pin struct {
	Name string
	Pos  int
}

// PinIndex is an indexed pin p[index]
type PinIndex struct {
	Pin
	Index int
}

// PinRange is a pin range p[start..end]
type PinRange struct {
	Pin
	Start int
	End   int
}

// PinAssignment is a part pin to chip pin assignment. pp=pc
type PinAssignment struct {
	LHS interface{}
	RHS interface{}
}

// Parser is a simplistic parser
type Parser struct {
	Input string
	l     *Lexer
	i     Item
	state int
}

const (
	stateInit = iota
	stateStarted
	stateDone
)

// Next returns the next item in the input stream: a Pin, PinIndex, PinRange
// or, if allowConns is true, a PinAssignment. It returns nil, nil at the end
// of input.
func (p *Parser) Next(allowConns bool) (interface{}, error) {
	if p.state == stateDone {
		return nil, nil
	}
	if p.l == nil {
		p.l = NewLexer(p.Input)
	}

	p.i = p.l.Lex()
	if p.state == stateInit && p.i.Type == EOF {
		p.state = stateDone
		return nil, nil
	}
	p.state = stateStarted

	pin, err := p.getPin()
	if err != nil {
		p.state = stateDone
		return nil, err
	}
	switch p.i.Type {
	case EOF:
		p.state = stateDone
		fallthrough
	case Comma:
		return pin, nil
	case Equal:
		if allowConns {
			break
		}
		fallthrough
	default:
		p.state = stateDone
		return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
	}

	p.i = p.l.Lex()
	pin2, err := p.getPin()
	if err != nil {
		p.state = stateDone
		return nil, err
	}
	switch p.i.Type {
	case EOF:
		p.state = stateDone
		fallthrough
	case Comma:
		return PinAssignment{pin, pin2}, nil
	}

	p.state = stateDone
	return nil, parseError(p.Input, p.i.Pos, "unexpected "+p.i.String())
}

func (p *Parser) getPin() (interface{}, error) {
	if p.i.Type != Ident {
		return nil, parseError(p.Input, p.i.Pos, "expected pin name")
	}
	pin := Pin{p.i.Value.(string), p.i.Pos}
	// after ident, expect ',', '[', '=' or EOF
	p.i = p.l.Lex()
	if p.i.Type != BracketOpen {
		return pin, nil
	}
	p.i = p.l.Lex()
	if p.i.Type != Int {
		return nil, parseError(p.Input, p.i.Pos, "integer value expected after '['")
	}
	start := p.i.Value.(int)
	end := -1
	p.i = p.l.Lex()
	if p.i.Type == Range {
		p.i = p.l.Lex()
		if p.i.Type != Int {
			return nil, parseError(p.Input, p.i.Pos, "integer value expected after '..'")
		}
		end = p.i.Value.(int)
		p.i = p.l.Lex()
	}
	if p.i.Type != BracketClose {
		return nil, parseError(p.Input, p.i.Pos, "closing ']' expected after index or range")
	}
	p.i = p.l.Lex()
	if end >= 0 {
		return PinRange{pin, start, end}, nil
	}
	return PinIndex{pin, start}, nil
}

func parseError(in string, pos int, msg string) error {
	return errors.Errorf("in %q at pos %d: %s", in, pos+1, msg)
}
