// Package parser turns NumFu source text into the AST contract of
// spec.md §6: a hand-written recursive-descent parser with precedence
// climbing, desugaring `let ... in`, pipes and chained comparisons into
// plain Calls the way original_source/parser.py's Lark transformer does.
package parser

import (
	"fmt"
	"strings"

	"github.com/sunholo/numfu/internal/ast"
	"github.com/sunholo/numfu/internal/errors"
	"github.com/sunholo/numfu/internal/lexer"
)

// Parser parses NumFu source code into an AST
type Parser struct {
	l       *lexer.Lexer
	cur     lexer.Token
	peek    lexer.Token
	prevEnd int
	file    string
}

// New creates a new Parser over l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, file: ""}
	p.cur = l.NextToken()
	p.peek = l.NextToken()
	p.file = p.cur.File
	return p
}

// Parse reads source text and returns the ordered top-level nodes, with
// Pos.Index assigned in declaration order, or a SyntaxError.
func Parse(src, path string) ([]ast.Node, error) {
	l := lexer.New(src, path)
	return New(l).Parse()
}

// Parse returns the program's top-level nodes or the first SyntaxError.
func (p *Parser) Parse() ([]ast.Node, error) {
	var nodes []ast.Node
	for p.cur.Type != lexer.EOF {
		if p.cur.Type == lexer.SEMICOLON {
			p.next()
			continue
		}
		node, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		if node != nil {
			nodes = append(nodes, node)
		}
	}
	for i, n := range nodes {
		if idx, ok := n.(ast.Indexed); ok {
			idx.SetIndex(i)
		}
	}
	return nodes, nil
}

func (p *Parser) next() {
	p.prevEnd = p.cur.End
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) expect(t lexer.TokenType) (lexer.Token, error) {
	if p.cur.Type != t {
		return p.cur, p.errorf("expected '%s', got '%s'", t, p.cur.Lit)
	}
	tok := p.cur
	p.next()
	return tok, nil
}

func (p *Parser) errorf(format string, args ...any) error {
	pos := ast.Pos{Start: p.cur.Start, End: p.cur.End, Module: p.file, Index: -1}
	if p.cur.Type == lexer.EOF {
		pos = ast.Pos{Start: p.cur.Start, End: p.cur.Start + 1, Module: p.file, Index: -1}
	}
	return errors.Wrap(errors.Newf(errors.SyntaxError, &pos, p.file, p.l.Source(), false, format, args...))
}

func (p *Parser) span(start int) ast.Pos {
	return ast.Pos{Start: start, End: p.prevEnd, Module: p.file, Index: -1}
}

func (p *Parser) tokPos(t lexer.Token) ast.Pos {
	return ast.Pos{Start: t.Start, End: t.End, Module: p.file, Index: -1}
}

// parseTopLevel parses one statement: import/export/del declarations,
// a bare `let` Constant, or an expression.
func (p *Parser) parseTopLevel() (ast.Node, error) {
	switch p.cur.Type {
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.FROM:
		return p.parseFromImport()
	case lexer.EXPORT:
		return p.parseExport()
	case lexer.DEL:
		return p.parseDelete()
	case lexer.LET:
		return p.parseLet(true)
	default:
		return p.parseExpression()
	}
}

// parseModuleName reads `name` or `dir/name` (spec.md §4.4's relative
// path prefix form).
func (p *Parser) parseModuleName() (string, error) {
	tok, err := p.expect(lexer.IDENT)
	if err != nil {
		return "", err
	}
	name := tok.Lit
	for p.cur.Type == lexer.SLASH {
		p.next()
		seg, err := p.expect(lexer.IDENT)
		if err != nil {
			return "", err
		}
		name += "/" + seg.Lit
	}
	return name, nil
}

func (p *Parser) parseImport() (ast.Node, error) {
	start := p.cur.Start
	p.next()
	name, err := p.parseModuleName()
	if err != nil {
		return nil, err
	}
	return ast.NewImport(name, nil, p.span(start)), nil
}

func (p *Parser) parseFromImport() (ast.Node, error) {
	start := p.cur.Start
	p.next()
	name, err := p.parseModuleName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IMPORT); err != nil {
		return nil, err
	}
	var names []ast.ImportName
	if p.cur.Type == lexer.STAR {
		names = append(names, ast.ImportName{Name: "*", Pos: p.tokPos(p.cur)})
		p.next()
	} else {
		for {
			tok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			names = append(names, ast.ImportName{Name: tok.Lit, Pos: p.tokPos(tok)})
			if p.cur.Type != lexer.COMMA {
				break
			}
			p.next()
		}
	}
	return ast.NewImport(name, names, p.span(start)), nil
}

func (p *Parser) parseExport() (ast.Node, error) {
	start := p.cur.Start
	p.next()
	var names []ast.ImportName
	for {
		tok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		names = append(names, ast.ImportName{Name: tok.Lit, Pos: p.tokPos(tok)})
		if p.cur.Type != lexer.COMMA {
			break
		}
		p.next()
	}
	return ast.NewExport(names, p.span(start)), nil
}

func (p *Parser) parseDelete() (ast.Node, error) {
	start := p.cur.Start
	p.next()
	tok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	return ast.NewDelete(tok.Lit, p.span(start)), nil
}

// parseLet parses `let x = e, y = f in body`. At top level the `in` is
// optional: a binding without a body is a Constant declaration
// (spec.md §6's parser contract). With a body, the form desugars to
// ((x, y -> body))(e, f), exactly original_source/parser.py's
// let_binding rule.
func (p *Parser) parseLet(topLevel bool) (ast.Node, error) {
	start := p.cur.Start
	p.next()

	var names []lexer.Token
	var values []ast.Node
	for {
		tok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.ASSIGN); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		names = append(names, tok)
		values = append(values, value)
		if p.cur.Type != lexer.COMMA {
			break
		}
		p.next()
	}

	if p.cur.Type != lexer.IN {
		if !topLevel {
			return nil, p.errorf("expected 'in' after let binding")
		}
		if len(names) > 1 {
			return nil, p.errorf("top-level let declares a single constant; use 'in' for multiple bindings")
		}
		if lam, ok := values[0].(*ast.Lambda); ok {
			lam.Name = names[0].Lit
		}
		return ast.NewConstant(names[0].Lit, values[0], p.span(start)), nil
	}
	p.next()
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	argNames := make([]string, len(names))
	for i, n := range names {
		argNames[i] = n.Lit
		if lam, ok := values[i].(*ast.Lambda); ok && lam.Name == "" {
			lam.Name = n.Lit
		}
	}
	lambda := ast.NewLambda(argNames, body, p.span(start))
	return ast.NewCall(lambda, values, p.span(start)), nil
}

// parseExpression is the entry point of the precedence ladder. The
// prefix forms `let`, `if` extend maximally to the right.
func (p *Parser) parseExpression() (ast.Node, error) {
	switch p.cur.Type {
	case lexer.LET:
		return p.parseLet(false)
	case lexer.IF:
		return p.parseIf()
	default:
		return p.parsePipe()
	}
}

func (p *Parser) parseIf() (ast.Node, error) {
	start := p.cur.Start
	p.next()
	test, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.THEN); err != nil {
		return nil, err
	}
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ELSE); err != nil {
		return nil, err
	}
	els, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.NewConditional(test, then, els, p.span(start)), nil
}

// parsePipe desugars `x |> f(a)` to f(x, a) and `x |> f` to f(x).
func (p *Parser) parsePipe() (ast.Node, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.PIPE {
		start := left.Position().Start
		p.next()
		right, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if call, ok := right.(*ast.Call); ok {
			args := append([]ast.Node{left}, call.Args...)
			left = ast.NewCall(call.Func, args, p.span(start))
		} else {
			left = ast.NewCall(right, []ast.Node{left}, p.span(start))
		}
	}
	return left, nil
}

func (p *Parser) parseOr() (ast.Node, error) {
	return p.parseBinary([]lexer.TokenType{lexer.OR}, p.parseAnd)
}

func (p *Parser) parseAnd() (ast.Node, error) {
	return p.parseBinary([]lexer.TokenType{lexer.AND}, p.parseComparison)
}

func (p *Parser) parseBinary(ops []lexer.TokenType, operand func() (ast.Node, error)) (ast.Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for matches(p.cur.Type, ops) {
		op := p.cur
		p.next()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		pos := ast.Pos{Start: left.Position().Start, End: right.Position().End, Module: p.file, Index: -1}
		left = ast.NewCall(ast.NewVariable(op.Lit, p.tokPos(op)), []ast.Node{left, right}, pos)
	}
	return left, nil
}

var comparisonOps = []lexer.TokenType{lexer.EQ, lexer.NEQ, lexer.LT, lexer.GT, lexer.LTE, lexer.GTE}

// parseComparison desugars chains: `a < b < c` means `a < b && b < c`,
// mirroring original_source/parser.py's comp rule.
func (p *Parser) parseComparison() (ast.Node, error) {
	first, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if !matches(p.cur.Type, comparisonOps) {
		return first, nil
	}

	operands := []ast.Node{first}
	var opToks []lexer.Token
	for matches(p.cur.Type, comparisonOps) {
		opToks = append(opToks, p.cur)
		p.next()
		operand, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}

	link := func(i int) ast.Node {
		op := opToks[i]
		pos := ast.Pos{Start: operands[i].Position().Start, End: operands[i+1].Position().End, Module: p.file, Index: -1}
		return ast.NewCall(ast.NewVariable(op.Lit, p.tokPos(op)), []ast.Node{operands[i], operands[i+1]}, pos)
	}
	expr := link(0)
	for i := 1; i < len(opToks); i++ {
		pos := ast.Pos{Start: operands[0].Position().Start, End: operands[i+1].Position().End, Module: p.file, Index: -1}
		expr = ast.NewCall(ast.NewVariable("&&", p.tokPos(opToks[i])), []ast.Node{expr, link(i)}, pos)
	}
	return expr, nil
}

func (p *Parser) parseAdditive() (ast.Node, error) {
	return p.parseBinary([]lexer.TokenType{lexer.PLUS, lexer.MINUS}, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Node, error) {
	return p.parseBinary([]lexer.TokenType{lexer.STAR, lexer.SLASH, lexer.PERCENT}, p.parseUnary)
}

func (p *Parser) parseUnary() (ast.Node, error) {
	switch p.cur.Type {
	case lexer.MINUS:
		op := p.cur
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewCall(ast.NewVariable("-", p.tokPos(op)), []ast.Node{operand}, p.tokPos(op)), nil
	case lexer.PLUS:
		// Unary plus is the identity, per original_source/parser.py's
		// `pos` rule.
		p.next()
		return p.parseUnary()
	case lexer.BANG:
		op := p.cur
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewCall(ast.NewVariable("!", p.tokPos(op)), []ast.Node{operand}, p.tokPos(op)), nil
	default:
		return p.parsePower()
	}
}

// parsePower is right-associative and allows a unary right operand:
// 2 ^ -3.
func (p *Parser) parsePower() (ast.Node, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.CARET {
		return left, nil
	}
	op := p.cur
	p.next()
	right, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	pos := ast.Pos{Start: left.Position().Start, End: right.Position().End, Module: p.file, Index: -1}
	return ast.NewCall(ast.NewVariable("^", p.tokPos(op)), []ast.Node{left, right}, pos), nil
}

func (p *Parser) parsePostfix() (ast.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur.Type {
		case lexer.LPAREN:
			start := expr.Position().Start
			p.next()
			var args []ast.Node
			for p.cur.Type != lexer.RPAREN {
				arg, err := p.parseArg()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.cur.Type != lexer.COMMA {
					break
				}
				p.next()
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			expr = ast.NewCall(expr, args, p.span(start))
		case lexer.LBRACKET:
			start := expr.Position().Start
			p.next()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			expr = ast.NewIndex(expr, index, p.span(start))
		default:
			return expr, nil
		}
	}
}

// parseArg parses one call argument, allowing `...expr` spreads.
func (p *Parser) parseArg() (ast.Node, error) {
	if p.cur.Type == lexer.ELLIPSIS {
		start := p.cur.Start
		p.next()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return ast.NewSpread(expr, p.span(start)), nil
	}
	return p.parseExpression()
}

func (p *Parser) parsePrimary() (ast.Node, error) {
	switch p.cur.Type {
	case lexer.NUMBER:
		tok := p.cur
		p.next()
		return ast.NewNumber(tok.Lit, p.tokPos(tok)), nil
	case lexer.STRING:
		tok := p.cur
		p.next()
		return ast.NewString(tok.Lit, p.tokPos(tok)), nil
	case lexer.TRUE, lexer.FALSE:
		tok := p.cur
		p.next()
		return ast.NewBool(tok.Type == lexer.TRUE, p.tokPos(tok)), nil
	case lexer.IDENT:
		tok := p.cur
		p.next()
		name := tok.Lit
		end := tok.End
		// Qualified reference from a bare `import foo`: foo.bar
		for p.cur.Type == lexer.DOT && p.peek.Type == lexer.IDENT {
			p.next()
			name += "." + p.cur.Lit
			end = p.cur.End
			p.next()
		}
		return ast.NewVariable(name, ast.Pos{Start: tok.Start, End: end, Module: p.file, Index: -1}), nil
	case lexer.LBRACKET:
		return p.parseList()
	case lexer.LBRACE:
		return p.parseLambda()
	case lexer.LPAREN:
		p.next()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.LET:
		return p.parseLet(false)
	case lexer.IF:
		return p.parseIf()
	default:
		return nil, p.errorf("unexpected token '%s'", p.cur.Lit)
	}
}

func (p *Parser) parseList() (ast.Node, error) {
	start := p.cur.Start
	p.next()
	var elements []ast.Node
	for p.cur.Type != lexer.RBRACKET {
		el, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
		if p.cur.Type != lexer.COMMA {
			break
		}
		p.next()
	}
	if _, err := p.expect(lexer.RBRACKET); err != nil {
		return nil, err
	}
	return ast.NewList(elements, p.span(start)), nil
}

// parseLambda parses `{a, b -> body}` and `{xs, ...rest -> body}`.
func (p *Parser) parseLambda() (ast.Node, error) {
	start := p.cur.Start
	p.next()
	var params []string
	for p.cur.Type != lexer.ARROW {
		prefix := ""
		if p.cur.Type == lexer.ELLIPSIS {
			prefix = "..."
			p.next()
		}
		tok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, prefix+tok.Lit)
		if p.cur.Type != lexer.COMMA {
			break
		}
		if prefix != "" {
			return nil, p.errorf("rest parameter must be the last parameter")
		}
		p.next()
	}
	if _, err := p.expect(lexer.ARROW); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewLambda(params, body, p.span(start)), nil
}

func matches(t lexer.TokenType, set []lexer.TokenType) bool {
	for _, s := range set {
		if t == s {
			return true
		}
	}
	return false
}

// Describe renders a compact one-line summary of a node, used by error
// paths and debugging helpers.
func Describe(n ast.Node) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T%s", n, strings.TrimPrefix(n.String(), "*"))
}
