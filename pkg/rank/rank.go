// Package rank scores indexed headlines against a sanitized query,
// combining field-weighted text relevance with a time-decay modifier.
package rank

import (
	"math"
	"time"

	"headline-search/pkg/index"
	"headline-search/pkg/query"
)

// DecayFunc maps a document's creation time to a multiplicative recency
// weight. It is supplied by the caller so the curve can be swapped and
// tested independently of the scoring logic.
type DecayFunc func(addedAt time.Time) float64

// HalfLifeDecay returns an exponential decay curve: a document loses half
// its weight every halfLife. The shape and scale are tunable defaults, not
// a law; see NewEngine callers for the values in use. A non-positive
// halfLife disables decay instead of producing NaN or Inf weights.
func HalfLifeDecay(halfLife time.Duration, now func() time.Time) DecayFunc {
	if halfLife <= 0 {
		return func(time.Time) float64 { return 1.0 }
	}
	return func(addedAt time.Time) float64 {
		age := now().Sub(addedAt)
		if age < 0 {
			age = 0
		}
		return math.Pow(0.5, float64(age)/float64(halfLife))
	}
}

// Engine evaluates sanitized queries against index entries. It is pure and
// safe for concurrent use.
type Engine struct {
	decay DecayFunc
}

// NewEngine creates an engine with the given decay curve.
func NewEngine(decay DecayFunc) *Engine {
	return &Engine{decay: decay}
}

// Score computes the combined score of a document for a non-empty query.
//
// The text relevance is the field-weighted evaluation of the query AST;
// the combined score multiplies it by the decay weight for addedAt. The
// second return is false when the document is ineligible: zero raw
// relevance, or a combined score below minRank. Ineligible documents are
// excluded from results, not scored as zero.
//
// Callers must not invoke Score for the match-all query; that mode skips
// scoring entirely.
func (e *Engine) Score(entry *index.Entry, q query.Query, addedAt time.Time, minRank float64) (float64, bool) {
	if q.IsEmpty() || entry == nil {
		return 0, false
	}

	relevance := evalExpr(entry, q.Root)
	if relevance <= 0 {
		return 0, false
	}

	score := relevance * e.decay(addedAt)
	if score < minRank {
		return 0, false
	}
	return score, true
}

// evalExpr returns the relevance contribution of a subtree: 0 means no
// match. AND sums both sides but requires both to match; OR takes the best
// matching side.
func evalExpr(entry *index.Entry, expr query.Expr) float64 {
	switch n := expr.(type) {
	case *query.Term:
		return evalTerm(entry, n)
	case *query.And:
		left := evalExpr(entry, n.Left)
		if left == 0 {
			return 0
		}
		right := evalExpr(entry, n.Right)
		if right == 0 {
			return 0
		}
		return left + right
	case *query.Or:
		return math.Max(evalExpr(entry, n.Left), evalExpr(entry, n.Right))
	case *query.Group:
		return evalExpr(entry, n.Inner)
	}
	return 0
}

// evalTerm scores a single term or phrase: the weight of the best
// (highest-weight) field that matches, honoring the term's field scope.
// Field weights are fixed in the index package; checking fields in
// descending weight order makes the first hit the best one.
func evalTerm(entry *index.Entry, t *query.Term) float64 {
	normalized := index.NormalizeTerm(t.Text)
	if normalized == "" {
		return 0
	}

	for _, f := range index.Fields() {
		if !scopeAllows(t.Scope, f) {
			continue
		}
		var hit bool
		if t.Phrase() {
			hit = entry.ContainsPhrase(f, normalized)
		} else {
			hit = entry.Contains(f, normalized)
		}
		if hit {
			return f.Weight()
		}
	}
	return 0
}

func scopeAllows(s query.Scope, f index.Field) bool {
	switch s {
	case query.ScopeAny:
		return true
	case query.ScopeTitle:
		return f == index.FieldTitle
	case query.ScopeDescription:
		return f == index.FieldDescription
	case query.ScopeContent:
		return f == index.FieldContent
	}
	return false
}
