package eval

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/js-lib-com/wood-sub003/pkg"
)

// MaxOpcodeLen bounds the length of an opcode token. Longer tokens fail with
// [ErrOpcodeTooLong] before the registry is consulted.
const MaxOpcodeLen = 16

const (
	openMark  = '('
	closeMark = ')'
)

// Arg is one expression argument: either a literal token or a nested
// expression, never both.
type Arg struct {
	Literal string
	Expr    *Expression
}

// IsExpr reports whether the argument is a nested expression.
func (a Arg) IsExpr() bool { return a.Expr != nil }

// String returns the source form of the argument.
func (a Arg) String() string {
	if a.Expr != nil {
		return a.Expr.String()
	}

	return a.Literal
}

// Expression is a parsed "(opcode arg arg ...)" form.
type Expression struct {
	Opcode string
	Args   []Arg
}

// String returns the canonical source form of the expression, with single
// spaces between tokens.
func (x *Expression) String() string {
	var sb strings.Builder

	sb.WriteByte(openMark)
	sb.WriteString(x.Opcode)

	for _, a := range x.Args {
		sb.WriteByte(' ')
		sb.WriteString(a.String())
	}

	sb.WriteByte(closeMark)

	return sb.String()
}

// Parse parses a single parenthesized expression. Leading and trailing white
// space is ignored; anything else after the closing parenthesis is an error.
func Parse(text string) (*Expression, error) {
	p := &parser{input: text}

	p.skipWhitespace()

	x, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()

	if !p.eof() {
		return nil, ErrSyntax.
			With(slog.String("expression", text)).
			With(slog.String("issue", "trailing characters after expression")).
			With(slog.Int("offset", p.pos))
	}

	return x, nil
}

// parser holds the parser state for one expression text.
type parser struct {
	input string
	pos   int
}

// parseExpression parses: '(' Opcode (WS+ Arg)* WS* ')'.
// A nested '(' inside the argument list recurses.
func (p *parser) parseExpression() (*Expression, error) {
	if !p.expect(openMark) {
		return nil, p.syntax("expected '('")
	}

	opcode, err := p.parseOpcode()
	if err != nil {
		return nil, err
	}

	x := &Expression{Opcode: opcode}

	for {
		p.skipWhitespace()

		if p.eof() {
			return nil, p.syntax("missing ')'")
		}

		switch p.peek() {
		case closeMark:
			p.advance()

			return x, nil

		case openMark:
			nested, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			x.Args = append(x.Args, Arg{Expr: nested})

		default:
			x.Args = append(x.Args, Arg{Literal: p.parseToken()})
		}
	}
}

// parseOpcode reads the opcode keyword that immediately follows '('.
func (p *parser) parseOpcode() (string, error) {
	start := p.pos

	for !p.eof() {
		r := p.peek()
		if unicode.IsSpace(r) || r == openMark || r == closeMark {
			break
		}

		if r == ',' {
			return "", p.syntax("comma is not an expression separator")
		}

		if p.pos-start >= MaxOpcodeLen {
			return "", ErrOpcodeTooLong.
				With(slog.String("opcode", p.input[start:p.pos]+string(r))).
				With(slog.Int("max", MaxOpcodeLen))
		}

		if !isOpcodeRune(r) {
			return "", p.syntax("invalid opcode character " + strconv.QuoteRune(r))
		}

		p.advance()
	}

	if p.pos == start {
		return "", p.syntax("missing opcode")
	}

	return p.input[start:p.pos], nil
}

// parseToken reads a literal argument up to white space or a parenthesis.
func (p *parser) parseToken() string {
	start := p.pos

	for !p.eof() {
		r := p.peek()
		if unicode.IsSpace(r) || r == openMark || r == closeMark {
			break
		}

		p.advance()
	}

	return p.input[start:p.pos]
}

func (p *parser) syntax(issue string) *pkg.Error {
	return ErrSyntax.
		With(slog.String("expression", p.input)).
		With(slog.String("issue", issue)).
		With(slog.Int("offset", p.pos))
}

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])

	return r
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	_, size := utf8.DecodeRuneInString(p.input[p.pos:])
	p.pos += size
}

func (p *parser) expect(ch rune) bool {
	if p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

func isOpcodeRune(r rune) bool {
	return r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
