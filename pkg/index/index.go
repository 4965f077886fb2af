// Package index builds the weighted multi-field search representation of a
// headline. Each headline contributes tokens from four sources with fixed
// priority weights: title > description > source label > extracted content.
package index

import (
	"encoding/json"
	"sort"
	"strings"
)

// Field identifies one of the weighted text sources of a document.
type Field int

const (
	FieldTitle Field = iota
	FieldDescription
	FieldSource
	FieldContent
	numFields
)

// fieldWeights is the fixed per-field multiplier table. The ordering
// (title > description > source > content) is significant: ranking relies
// on it for scoring and tie-breaking and it must not be reshuffled.
var fieldWeights = [numFields]float64{
	FieldTitle:       1.0,
	FieldDescription: 0.4,
	FieldSource:      0.2,
	FieldContent:     0.1,
}

// fieldTags are the short labels used in the normalized query form.
var fieldTags = [numFields]string{"A", "B", "C", "D"}

// Weight returns the fixed relevance multiplier for the field.
func (f Field) Weight() float64 {
	return fieldWeights[f]
}

// Tag returns the single-letter label of the field ("A".."D").
func (f Field) Tag() string {
	return fieldTags[f]
}

// Fields lists all weighted fields in descending weight order.
func Fields() []Field {
	return []Field{FieldTitle, FieldDescription, FieldSource, FieldContent}
}

// Document carries the raw text sources of one headline. Absent fields are
// simply empty strings and contribute nothing.
type Document struct {
	Title       string
	Description string
	Source      string
	Content     string
}

// FieldEntry is the indexed form of a single field: the normalized text
// (for phrase matching) and its sorted, deduplicated token set.
type FieldEntry struct {
	Text   string   `json:"text"`
	Tokens []string `json:"tokens"`
}

// Entry is the search index entry of one headline.
type Entry struct {
	Fields [numFields]FieldEntry `json:"fields"`
}

// Build produces the index entry for a document. It is pure and
// deterministic: identical input fields yield byte-identical entries
// (tokens are sorted, no map iteration order leaks through).
func Build(doc Document) Entry {
	var e Entry
	e.Fields[FieldTitle] = buildField(doc.Title)
	e.Fields[FieldDescription] = buildField(doc.Description)
	e.Fields[FieldSource] = buildField(doc.Source)
	e.Fields[FieldContent] = buildField(doc.Content)
	return e
}

func buildField(text string) FieldEntry {
	tokens := Tokenize(text)

	normalized := strings.Join(tokens, " ")

	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)
	sorted = dedupe(sorted)

	return FieldEntry{Text: normalized, Tokens: sorted}
}

// Contains reports whether the field's token set contains the (already
// normalized) token.
func (e *Entry) Contains(f Field, token string) bool {
	tokens := e.Fields[f].Tokens
	i := sort.SearchStrings(tokens, token)
	return i < len(tokens) && tokens[i] == token
}

// ContainsPhrase reports whether the normalized phrase occurs as a
// contiguous token sequence in the field.
func (e *Entry) ContainsPhrase(f Field, phrase string) bool {
	if phrase == "" {
		return false
	}
	text := e.Fields[f].Text
	if text == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}

// Encode serializes the entry deterministically, for persistence alongside
// the headline row.
func (e Entry) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode restores an entry persisted with Encode.
func Decode(data []byte) (Entry, error) {
	var e Entry
	err := json.Unmarshal(data, &e)
	return e, err
}

// Tokenize lowercases text and splits it into word tokens. A token is a run
// of letters, digits, apostrophes or hyphens; everything else separates.
// Query terms are normalized with the same rules so lookups line up.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)

	var tokens []string
	var b strings.Builder
	flush := func() {
		if tok := trimWordPunct(b.String()); tok != "" {
			tokens = append(tokens, tok)
		}
		b.Reset()
	}

	for _, r := range lower {
		if isWordRune(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// NormalizeTerm normalizes a single query term or phrase the same way
// indexed text is normalized.
func NormalizeTerm(term string) string {
	return strings.Join(Tokenize(term), " ")
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '\'' || r == '-':
		return true
	}
	return false
}

// trimWordPunct strips leading/trailing apostrophes and hyphens so "'quoted'"
// and "-flag" index as plain words. Tokens that were pure punctuation vanish.
func trimWordPunct(tok string) string {
	return strings.Trim(tok, "'-")
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, tok := range sorted {
		if i == 0 || tok != sorted[i-1] {
			out = append(out, tok)
		}
	}
	return out
}
