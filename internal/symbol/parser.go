package symbol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Parse compiles an arithmetic expression string into an Expr.
//
// The grammar covers +, -, *, /, ^ (also ** as an alias), unary minus,
// parentheses, numeric literals, symbols, and applications of the
// recognized function names. "pi" parses as the constant.
// Malformed input or an unknown function name is a parse error.
func Parse(src string) (Expr, error) {
	p := &parser{src: src}
	p.next()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return e.Simplify(), nil
}

// MustParse is Parse for expressions known good at compile time.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
	tokBad
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	src string
	off int
	tok token
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("symbol: parse %q at offset %d: %s", p.src, p.tok.pos, fmt.Sprintf(format, args...))
}

func (p *parser) next() {
	for p.off < len(p.src) && (p.src[p.off] == ' ' || p.src[p.off] == '\t') {
		p.off++
	}
	start := p.off
	if p.off >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}
	c := p.src[p.off]
	switch {
	case c == '+':
		p.off++
		p.tok = token{kind: tokPlus, text: "+", pos: start}
	case c == '-':
		p.off++
		p.tok = token{kind: tokMinus, text: "-", pos: start}
	case c == '*':
		p.off++
		if p.off < len(p.src) && p.src[p.off] == '*' {
			p.off++
			p.tok = token{kind: tokCaret, text: "**", pos: start}
			return
		}
		p.tok = token{kind: tokStar, text: "*", pos: start}
	case c == '/':
		p.off++
		p.tok = token{kind: tokSlash, text: "/", pos: start}
	case c == '^':
		p.off++
		p.tok = token{kind: tokCaret, text: "^", pos: start}
	case c == '(':
		p.off++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		p.off++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	case c >= '0' && c <= '9' || c == '.':
		for p.off < len(p.src) && (p.src[p.off] >= '0' && p.src[p.off] <= '9' || p.src[p.off] == '.') {
			p.off++
		}
		// Exponent suffix, e.g. 1e-3.
		if p.off < len(p.src) && (p.src[p.off] == 'e' || p.src[p.off] == 'E') {
			rest := p.src[p.off+1:]
			if len(rest) > 0 && (rest[0] == '+' || rest[0] == '-' || rest[0] >= '0' && rest[0] <= '9') {
				p.off++
				if p.src[p.off] == '+' || p.src[p.off] == '-' {
					p.off++
				}
				for p.off < len(p.src) && p.src[p.off] >= '0' && p.src[p.off] <= '9' {
					p.off++
				}
			}
		}
		p.tok = token{kind: tokNumber, text: p.src[start:p.off], pos: start}
	case isIdentStart(rune(c)):
		for p.off < len(p.src) && isIdentPart(rune(p.src[p.off])) {
			p.off++
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.off], pos: start}
	default:
		p.off++
		p.tok = token{kind: tokBad, text: string(c), pos: start}
	}
}

func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isIdentPart(r rune) bool  { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }

func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		neg := p.tok.kind == tokMinus
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if neg {
			right = Product(Number(-1), right)
		}
		left = Sum(left, right)
	}
	return left, nil
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokStar || p.tok.kind == tokSlash {
		div := p.tok.kind == tokSlash
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if div {
			right = Power(right, Number(-1))
		}
		left = Product(left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.tok.kind == tokMinus {
		p.next()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Product(Number(-1), e), nil
	}
	if p.tok.kind == tokPlus {
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokCaret {
		p.next()
		// Right associative; exponent may carry a unary sign.
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Power(base, exp), nil
	}
	return base, nil
}

func (p *parser) parseAtom() (Expr, error) {
	switch p.tok.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return nil, p.errorf("bad number %q", p.tok.text)
		}
		p.next()
		return Number(v), nil
	case tokIdent:
		name := p.tok.text
		p.next()
		if p.tok.kind == tokLParen {
			if !KnownFunc(name) {
				return nil, p.errorf("unknown function %q", name)
			}
			p.next()
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if p.tok.kind != tokRParen {
				return nil, p.errorf("missing ) after %s(...", name)
			}
			p.next()
			return Fn(name, arg), nil
		}
		if strings.EqualFold(name, "pi") {
			return Number(math.Pi), nil
		}
		return Symbol(name), nil
	case tokLParen:
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf("missing )")
		}
		p.next()
		return e, nil
	}
	return nil, p.errorf("unexpected %q", p.tok.text)
}
