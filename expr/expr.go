// expr/expr.go
// Copyright(c) 2025 fdrconv contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package expr implements the small expression language used for
// user-defined DREF output fields. Expressions combine numeric and string
// literals, {Placeholder} references, arithmetic and comparison operators,
// and a fixed table of math functions.
//
// The evaluator is deliberately sandboxed: expressions come from
// user-edited configuration files, so there is no access to the
// filesystem, network, environment, or clock, and evaluation of the same
// expression against the same placeholder values always gives the same
// result.
package expr

import (
	"fmt"
	gomath "math"
	"strconv"
	"strings"
)

// Value is the result of evaluating an expression: a float64 or a string.
type Value any

// Lookup resolves a {Placeholder} name; the bool result reports whether
// the name is known.
type Lookup func(name string) (Value, bool)

// Expr is a parsed expression, ready to be evaluated any number of times
// against different placeholder contexts.
type Expr struct {
	src  string
	root node
}

func (e *Expr) String() string { return e.src }

// SyntaxError reports a malformed expression; Pos is a byte offset into
// the source text.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Pos, e.Msg)
}

// EvalError reports a failure during evaluation of a well-formed
// expression (division by zero, type mismatch, non-finite result, ...).
type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string { return e.Msg }

// UnknownPlaceholderError reports a {Placeholder} whose name is not
// provided by the evaluation context.
type UnknownPlaceholderError struct {
	Name string
}

func (e *UnknownPlaceholderError) Error() string {
	return fmt.Sprintf("{%s}: unknown placeholder", e.Name)
}

// Parse parses the given expression source.
func Parse(src string) (*Expr, error) {
	p := &parser{lexer: lexer{src: src}}
	p.next()
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, &SyntaxError{Pos: p.tok.pos, Msg: fmt.Sprintf("unexpected %q", p.tok.text)}
	}
	return &Expr{src: src, root: root}, nil
}

// Eval evaluates the expression, resolving placeholders through lk.
func (e *Expr) Eval(lk Lookup) (Value, error) {
	v, err := e.root.eval(lk)
	if err != nil {
		return nil, err
	}
	if f, ok := v.(float64); ok && (gomath.IsNaN(f) || gomath.IsInf(f, 0)) {
		return nil, &EvalError{Msg: "result is not a finite number"}
	}
	return v, nil
}

///////////////////////////////////////////////////////////////////////////
// lexer

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokPlaceholder
	tokOp // + - * / % ( ) , < <= > >= == !=
)

type token struct {
	kind tokenKind
	pos  int
	text string
	num  float64
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) lex() (token, error) {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	if l.pos == len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	ch := l.src[l.pos]
	switch {
	case ch >= '0' && ch <= '9' || ch == '.':
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
			l.pos++
		}
		// exponent
		if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
			p := l.pos + 1
			if p < len(l.src) && (l.src[p] == '+' || l.src[p] == '-') {
				p++
			}
			if p < len(l.src) && isDigit(l.src[p]) {
				l.pos = p
				for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
					l.pos++
				}
			}
		}
		text := l.src[start:l.pos]
		num, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, &SyntaxError{Pos: start, Msg: fmt.Sprintf("invalid number %q", text)}
		}
		return token{kind: tokNumber, pos: start, text: text, num: num}, nil

	case ch == '\'' || ch == '"':
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] != ch {
			l.pos++
		}
		if l.pos == len(l.src) {
			return token{}, &SyntaxError{Pos: start, Msg: "unterminated string"}
		}
		l.pos++
		return token{kind: tokString, pos: start, text: l.src[start+1 : l.pos-1]}, nil

	case ch == '{':
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] != '}' {
			l.pos++
		}
		if l.pos == len(l.src) {
			return token{}, &SyntaxError{Pos: start, Msg: "unterminated placeholder"}
		}
		name := strings.TrimSpace(l.src[start+1 : l.pos])
		l.pos++
		if name == "" {
			return token{}, &SyntaxError{Pos: start, Msg: "empty placeholder"}
		}
		return token{kind: tokPlaceholder, pos: start, text: name}, nil

	case isAlpha(ch):
		for l.pos < len(l.src) && (isAlpha(l.src[l.pos]) || isDigit(l.src[l.pos])) {
			l.pos++
		}
		return token{kind: tokIdent, pos: start, text: l.src[start:l.pos]}, nil

	case strings.IndexByte("+-*/%(),", ch) != -1:
		l.pos++
		return token{kind: tokOp, pos: start, text: string(ch)}, nil

	case ch == '<' || ch == '>' || ch == '=' || ch == '!':
		l.pos++
		if l.pos < len(l.src) && l.src[l.pos] == '=' {
			l.pos++
		}
		op := l.src[start:l.pos]
		if op == "=" || op == "!" {
			return token{}, &SyntaxError{Pos: start, Msg: fmt.Sprintf("invalid operator %q", op)}
		}
		return token{kind: tokOp, pos: start, text: op}, nil
	}

	return token{}, &SyntaxError{Pos: start, Msg: fmt.Sprintf("unexpected character %q", string(ch))}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isAlpha(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}

///////////////////////////////////////////////////////////////////////////
// parser

type parser struct {
	lexer
	tok token
	err error
}

func (p *parser) next() {
	if p.err == nil {
		p.tok, p.err = p.lex()
	}
}

func (p *parser) expectOp(op string) error {
	if p.err != nil {
		return p.err
	}
	if p.tok.kind != tokOp || p.tok.text != op {
		return &SyntaxError{Pos: p.tok.pos, Msg: fmt.Sprintf("expected %q, found %q", op, p.tok.text)}
	}
	p.next()
	return p.err
}

func (p *parser) isOp(ops ...string) (string, bool) {
	if p.err != nil || p.tok.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if p.tok.text == op {
			return op, true
		}
	}
	return "", false
}

// parseExpr parses at the lowest precedence level: comparisons.
func (p *parser) parseExpr() (node, error) {
	n, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("<", "<=", ">", ">=", "==", "!=")
		if !ok {
			return n, p.err
		}
		p.next()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		n = &binaryNode{op: op, lhs: n, rhs: rhs}
	}
}

func (p *parser) parseAdditive() (node, error) {
	n, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("+", "-")
		if !ok {
			return n, p.err
		}
		p.next()
		rhs, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		n = &binaryNode{op: op, lhs: n, rhs: rhs}
	}
}

func (p *parser) parseMultiplicative() (node, error) {
	n, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("*", "/", "%")
		if !ok {
			return n, p.err
		}
		p.next()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n = &binaryNode{op: op, lhs: n, rhs: rhs}
	}
}

func (p *parser) parseUnary() (node, error) {
	if _, ok := p.isOp("-"); ok {
		p.next()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negateNode{arg: arg}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.err != nil {
		return nil, p.err
	}

	tok := p.tok
	switch tok.kind {
	case tokNumber:
		p.next()
		return numberNode(tok.num), p.err

	case tokString:
		p.next()
		return stringNode(tok.text), p.err

	case tokPlaceholder:
		p.next()
		return placeholderNode(tok.text), p.err

	case tokIdent:
		p.next()
		if _, ok := p.isOp("("); !ok {
			if c, ok := constants[tok.text]; ok {
				return numberNode(c), p.err
			}
			return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unknown constant %q", tok.text)}
		}
		fn, ok := functions[tok.text]
		if !ok {
			return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unknown function %q", tok.text)}
		}
		p.next() // consume '('

		var args []node
		if _, ok := p.isOp(")"); !ok {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if _, ok := p.isOp(","); !ok {
					break
				}
				p.next()
			}
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		if len(args) < fn.minArgs || (fn.maxArgs != -1 && len(args) > fn.maxArgs) {
			return nil, &SyntaxError{Pos: tok.pos,
				Msg: fmt.Sprintf("%s: expected %s arguments, given %d", tok.text, fn.arityString(), len(args))}
		}
		return &callNode{name: tok.text, fn: fn, args: args}, nil

	case tokOp:
		if tok.text == "(" {
			p.next()
			n, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return n, nil
		}
	}

	return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
}
