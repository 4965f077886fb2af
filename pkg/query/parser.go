package query

// parser is a small recursive-descent parser over the scanned tokens.
// Precedence: OR binds loosest, AND tightest, parentheses group. Adjacent
// operands with no explicit operator are joined by an implicit AND.
type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

// parseTop parses the whole input. Stray closing parens at the top level
// are skipped and whatever follows is joined with the implicit AND.
func (p *parser) parseTop() Expr {
	left := p.parseOr()
	for {
		tok, ok := p.peek()
		if !ok {
			return left
		}
		if tok.kind == tokRParen {
			p.pos++
		}
		right := p.parseOr()
		if right == nil {
			if _, ok := p.peek(); !ok {
				return left
			}
			continue
		}
		if left == nil {
			left = right
			continue
		}
		left = &And{Left: left, Right: right}
	}
}

func (p *parser) parseOr() Expr {
	left := p.parseAnd()
	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokOr {
			return left
		}
		p.pos++ // consume |
		right := p.parseAnd()
		if right == nil {
			// Dangling or doubled operator: strip it.
			continue
		}
		if left == nil {
			left = right
			continue
		}
		left = &Or{Left: left, Right: right}
	}
}

func (p *parser) parseAnd() Expr {
	var left Expr
	for {
		tok, ok := p.peek()
		if !ok || tok.kind == tokOr || tok.kind == tokRParen {
			return left
		}
		if tok.kind == tokAnd {
			// Explicit & is the same join the implicit AND performs; a
			// dangling one simply finds no right operand and disappears.
			p.pos++
			continue
		}

		operand := p.parseOperand()
		if operand == nil {
			continue
		}
		if left == nil {
			left = operand
			continue
		}
		left = &And{Left: left, Right: operand}
	}
}

// parseOperand parses a term, phrase or parenthesized group. Empty groups
// parse to nil and are dropped by the caller; a missing closing paren is
// tolerated (the group ends at end of input).
func (p *parser) parseOperand() Expr {
	tok, ok := p.peek()
	if !ok {
		return nil
	}

	switch tok.kind {
	case tokTerm:
		p.pos++
		return &Term{Text: tok.text, Scope: tok.scope, Quote: tok.quote}

	case tokLParen:
		p.pos++
		inner := p.parseOr()
		if next, ok := p.peek(); ok && next.kind == tokRParen {
			p.pos++
		}
		if inner == nil {
			return nil
		}
		return &Group{Inner: inner}
	}

	// Anything else is not an operand; let the caller decide.
	p.pos++
	return nil
}
