package query

type tokenKind int

const (
	tokTerm tokenKind = iota
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	text  string // term or phrase body, quotes stripped
	scope Scope
	quote byte // quote character for phrases, 0 for bare terms
}

// scan splits raw input into tokens. Characters that fit nothing are
// skipped: the scanner cannot fail.
func scan(raw string) []token {
	var toks []token

	i := 0
	n := len(raw)
	for i < n {
		c := raw[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '&':
			toks = append(toks, token{kind: tokAnd})
			i++
		case c == '|':
			toks = append(toks, token{kind: tokOr})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen})
			i++
		case c == '"' || c == '\'':
			var tok token
			tok, i = scanPhrase(raw, i)
			if tok.text != "" {
				toks = append(toks, tok)
			}
		case isTermByte(c):
			var tok token
			tok, i = scanTerm(raw, i)
			toks = append(toks, tok)
		default:
			// Unrecognized byte: malformed fragment, drop it.
			i++
		}
	}

	return toks
}

// scanPhrase reads a quoted phrase starting at the opening quote. An
// unterminated phrase runs to the end of input. Spaces inside are part of
// the phrase, not separators.
func scanPhrase(raw string, start int) (token, int) {
	quote := raw[start]
	i := start + 1
	for i < len(raw) && raw[i] != quote {
		i++
	}
	body := raw[start+1 : i]
	if i < len(raw) {
		i++ // closing quote
	}

	scope, i := scanScope(raw, i)
	return token{kind: tokTerm, text: body, scope: scope, quote: quote}, i
}

// scanTerm reads a bare term ([-'a-zA-Z0-9]+) and an optional trailing
// field marker like `:title`.
func scanTerm(raw string, start int) (token, int) {
	i := start
	for i < len(raw) && isTermByte(raw[i]) {
		i++
	}
	body := raw[start:i]

	scope, i := scanScope(raw, i)
	return token{kind: tokTerm, text: body, scope: scope}, i
}

// scanScope consumes a `:marker` suffix when the marker is a recognized
// field name. An unknown marker is consumed and dropped, leaving the term
// unscoped.
func scanScope(raw string, start int) (Scope, int) {
	if start >= len(raw) || raw[start] != ':' {
		return ScopeAny, start
	}

	i := start + 1
	for i < len(raw) && isLowerAlpha(raw[i]) {
		i++
	}
	marker := raw[start+1 : i]
	if scope, ok := scopeMarkers[marker]; ok {
		return scope, i
	}
	return ScopeAny, i
}

func isTermByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '\'':
		return true
	}
	return false
}

func isLowerAlpha(c byte) bool {
	return c >= 'a' && c <= 'z'
}
