// Package query turns free-form user search text into a normalized boolean
// query the ranking engine can evaluate.
//
// Search input is end-user text, not a programming-language query, so the
// sanitizer is total: any input produces a valid Query. Malformed fragments
// are dropped, dangling operators stripped, and the empty input maps to the
// distinguished match-all query.
package query

// Scope restricts a term to one of the searchable headline fields. An
// unscoped term matches any field.
type Scope int

const (
	ScopeAny Scope = iota
	ScopeTitle
	ScopeDescription
	ScopeContent
)

// scopeMarkers maps the user-facing field markers to scopes.
var scopeMarkers = map[string]Scope{
	"title":       ScopeTitle,
	"description": ScopeDescription,
	"content":     ScopeContent,
}

// scopeTags are the internal field tags used in the normalized form.
var scopeTags = map[Scope]string{
	ScopeTitle:       "A",
	ScopeDescription: "B",
	ScopeContent:     "D",
}

// Tag returns the internal field tag of the scope ("" for unscoped).
func (s Scope) Tag() string {
	return scopeTags[s]
}

// Expr is a node of the sanitized query AST.
type Expr interface {
	String() string
	isExpr()
}

// Term is a single search term or quoted phrase, optionally field-scoped.
type Term struct {
	Text  string
	Scope Scope

	// Quote is the quote character the user typed (0 for a bare term).
	// Quotes are preserved verbatim in the normalized form and mark the
	// term as a phrase: spaces inside are not separators.
	Quote byte
}

// And requires both operands to match.
type And struct {
	Left, Right Expr
}

// Or requires either operand to match.
type Or struct {
	Left, Right Expr
}

// Group is a parenthesized sub-expression.
type Group struct {
	Inner Expr
}

func (*Term) isExpr()  {}
func (*And) isExpr()   {}
func (*Or) isExpr()    {}
func (*Group) isExpr() {}

// Phrase reports whether the term was quoted.
func (t *Term) Phrase() bool { return t.Quote != 0 }

func (t *Term) String() string {
	s := t.Text
	if t.Quote != 0 {
		q := string(t.Quote)
		s = q + s + q
	}
	if tag := t.Scope.Tag(); tag != "" {
		s += ":" + tag
	}
	return s
}

func (a *And) String() string { return a.Left.String() + " & " + a.Right.String() }
func (o *Or) String() string  { return o.Left.String() + " | " + o.Right.String() }
func (g *Group) String() string {
	return "(" + g.Inner.String() + ")"
}

// Query is a sanitized boolean search query. The zero value (nil Root) is
// the valid, distinguished match-all query.
type Query struct {
	Root Expr
}

// IsEmpty reports whether this is the match-all query: no relevance filter,
// every document matches.
func (q Query) IsEmpty() bool { return q.Root == nil }

// String renders the normalized boolean form, e.g. `hello:A & world`.
// The match-all query renders as the empty string.
func (q Query) String() string {
	if q.Root == nil {
		return ""
	}
	return q.Root.String()
}

// Sanitize parses raw user search text into a Query. It never fails:
// whatever cannot be understood is dropped rather than rejected.
func Sanitize(raw string) Query {
	p := &parser{toks: scan(raw)}
	return Query{Root: p.parseTop()}
}
