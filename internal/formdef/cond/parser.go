package cond

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/hearthbot/hearth/forms"
)

// ParseError is a structured error from the condition parser with position
// information.
type ParseError struct {
	Message string
	Line    int
	Col     int
	Pos     int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d col %d: %s", e.Line, e.Col, e.Message)
}

// Parser implements a recursive descent parser for condition expressions.
// It compiles directly to forms predicates instead of building an AST: the
// expression language is surface syntax for that closed predicate set and
// adds no semantics of its own.
type Parser struct {
	tokens []Token
	pos    int
	errors []*ParseError
}

// NewParser creates a parser from a token slice (typically from
// Lexer.Tokenize).
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Compile tokenizes and parses src into a condition. It is the package's
// front door; an empty src yields a condition that always holds.
func Compile(src string) (forms.Condition, error) {
	toks, lexErrs := NewLexer(src).Tokenize()
	if len(lexErrs) > 0 {
		return nil, errors.Join(lexErrs...)
	}
	if len(toks) == 1 && toks[0].Type == TokenEOF {
		return forms.All(), nil
	}
	p := NewParser(toks)
	cond, parseErrs := p.Parse()
	if len(parseErrs) > 0 {
		errs := make([]error, len(parseErrs))
		for i, e := range parseErrs {
			errs[i] = e
		}
		return nil, errors.Join(errs...)
	}
	return cond, nil
}

// Parse parses the token stream into a single condition. Trailing tokens
// after the expression are an error.
func (p *Parser) Parse() (forms.Condition, []*ParseError) {
	cond := p.parseOrExpr()
	if cond != nil && !p.atEnd() {
		p.addError(p.peek(), fmt.Sprintf("unexpected %s after expression", p.peek().Type))
	}
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return cond, nil
}

// ── Token navigation ────────────────────────────────────────────────────────

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) atEnd() bool {
	return p.peek().Type == TokenEOF
}

func (p *Parser) check(t TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) match(types ...TokenType) (Token, bool) {
	for _, t := range types {
		if p.check(t) {
			return p.advance(), true
		}
	}
	return Token{}, false
}

func (p *Parser) expect(t TokenType) (Token, bool) {
	if p.check(t) {
		return p.advance(), true
	}
	tok := p.peek()
	p.addError(tok, fmt.Sprintf("expected %s, got %s", t, tok.Type))
	return tok, false
}

func (p *Parser) addError(tok Token, msg string) {
	p.errors = append(p.errors, &ParseError{
		Message: msg,
		Line:    tok.Line,
		Col:     tok.Col,
		Pos:     tok.Pos,
	})
}

// ── Expression parsing ──────────────────────────────────────────────────────

func (p *Parser) parseOrExpr() forms.Condition {
	left := p.parseAndExpr()
	if left == nil {
		return nil
	}
	for p.check(TokenOr) {
		p.advance()
		right := p.parseAndExpr()
		if right == nil {
			return left
		}
		left = forms.Any(left, right)
	}
	return left
}

func (p *Parser) parseAndExpr() forms.Condition {
	left := p.parseUnaryExpr()
	if left == nil {
		return nil
	}
	for p.check(TokenAnd) {
		p.advance()
		right := p.parseUnaryExpr()
		if right == nil {
			return left
		}
		left = forms.All(left, right)
	}
	return left
}

func (p *Parser) parseUnaryExpr() forms.Condition {
	if _, ok := p.match(TokenNot); ok {
		expr := p.parseUnaryExpr()
		if expr == nil {
			return nil
		}
		return forms.Not(expr)
	}

	if p.check(TokenLParen) {
		p.advance()
		expr := p.parseOrExpr()
		p.expect(TokenRParen)
		return expr
	}

	return p.parseComparison()
}

func (p *Parser) parseComparison() forms.Condition {
	if !p.check(TokenIdent) {
		p.addError(p.peek(), fmt.Sprintf("expected field name, got %s", p.peek().Type))
		return nil
	}
	field := p.advance().Literal

	if p.check(TokenIn) {
		p.advance()
		values := p.parseList()
		conds := make([]forms.Condition, len(values))
		for i, lit := range values {
			if lit.kind == litNull {
				conds[i] = forms.IsUnset(field)
			} else {
				conds[i] = forms.Eq(field, lit.value())
			}
		}
		return forms.Any(conds...)
	}

	opTok := p.peek()
	switch opTok.Type {
	case TokenEQ, TokenNEQ, TokenGT, TokenLT, TokenGTE, TokenLTE:
		p.advance()
	default:
		p.addError(opTok, fmt.Sprintf("expected comparison operator (=, !=, >, <, >=, <=, in), got %s", opTok.Type))
		return nil
	}

	lit, ok := p.parseLiteral()
	if !ok {
		return nil
	}

	switch opTok.Type {
	case TokenEQ:
		if lit.kind == litNull {
			return forms.IsUnset(field)
		}
		return forms.Eq(field, lit.value())
	case TokenNEQ:
		if lit.kind == litNull {
			return forms.IsSet(field)
		}
		return forms.NotEq(field, lit.value())
	}

	bound, isNum := lit.number()
	if !isNum {
		p.addError(opTok, fmt.Sprintf("%s needs a numeric bound, got %s", opTok.Type, lit.kindName()))
		return nil
	}
	switch opTok.Type {
	case TokenGT:
		return forms.Gt(field, bound)
	case TokenLT:
		return forms.Lt(field, bound)
	case TokenGTE:
		return forms.Ge(field, bound)
	default:
		return forms.Le(field, bound)
	}
}

// ── Literals ────────────────────────────────────────────────────────────────

type litKind int

const (
	litString litKind = iota
	litInt
	litFloat
	litBool
	litNull
)

type literal struct {
	kind litKind
	s    string
	i    int64
	f    float64
	b    bool
}

func (l literal) value() any {
	switch l.kind {
	case litString:
		return l.s
	case litInt:
		return l.i
	case litFloat:
		return l.f
	case litBool:
		return l.b
	default:
		return nil
	}
}

func (l literal) number() (float64, bool) {
	switch l.kind {
	case litInt:
		return float64(l.i), true
	case litFloat:
		return l.f, true
	default:
		return 0, false
	}
}

func (l literal) kindName() string {
	switch l.kind {
	case litString:
		return "string"
	case litInt:
		return "integer"
	case litFloat:
		return "float"
	case litBool:
		return "boolean"
	default:
		return "null"
	}
}

func (p *Parser) parseLiteral() (literal, bool) {
	tok := p.peek()
	switch tok.Type {
	case TokenString:
		p.advance()
		return literal{kind: litString, s: tok.Literal}, true
	case TokenInt:
		p.advance()
		i, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.addError(tok, fmt.Sprintf("invalid integer %q", tok.Literal))
			return literal{}, false
		}
		return literal{kind: litInt, i: i}, true
	case TokenFloat:
		p.advance()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.addError(tok, fmt.Sprintf("invalid float %q", tok.Literal))
			return literal{}, false
		}
		return literal{kind: litFloat, f: f}, true
	case TokenBool:
		p.advance()
		return literal{kind: litBool, b: tok.Literal == "true"}, true
	case TokenNull:
		p.advance()
		return literal{kind: litNull}, true
	default:
		p.addError(tok, fmt.Sprintf("expected literal value, got %s", tok.Type))
		p.advance()
		return literal{}, false
	}
}

func (p *Parser) parseList() []literal {
	if _, ok := p.expect(TokenLBrack); !ok {
		return nil
	}

	var values []literal
	for !p.check(TokenRBrack) && !p.atEnd() {
		lit, ok := p.parseLiteral()
		if !ok {
			break
		}
		values = append(values, lit)
		if !p.check(TokenRBrack) {
			if _, ok := p.expect(TokenComma); !ok {
				break
			}
		}
	}

	p.expect(TokenRBrack)
	return values
}
