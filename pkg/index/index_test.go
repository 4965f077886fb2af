package index

import (
	"bytes"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{"Hello World", []string{"hello", "world"}},
		{"Go 1.22 released!", []string{"go", "1", "22", "released"}},
		{"state-of-the-art", []string{"state-of-the-art"}},
		{"don't panic", []string{"don't", "panic"}},
		{"'quoted' -flag", []string{"quoted", "flag"}},
		{"--- ''", nil},
		{"", nil},
	}

	for _, c := range cases {
		got := Tokenize(c.input)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	doc := Document{
		Title:       "Go Generics in Production",
		Description: "What we learned shipping generics, and shipping them again",
		Source:      "Example Engineering",
		Content:     "Long form body text about generics in Go services.",
	}

	first, err := Build(doc).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, err := Build(doc).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("Expected identical documents to encode to identical bytes")
	}

	decoded, err := Decode(first)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(decoded, Build(doc)) {
		t.Error("Expected decoded entry to equal the built entry")
	}
}

func TestBuildSortsAndDedupes(t *testing.T) {
	e := Build(Document{Title: "beta alpha beta gamma alpha"})

	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(e.Fields[FieldTitle].Tokens, want) {
		t.Errorf("Expected tokens %v, got %v", want, e.Fields[FieldTitle].Tokens)
	}
	// The normalized text keeps the original token order for phrase matching.
	if e.Fields[FieldTitle].Text != "beta alpha beta gamma alpha" {
		t.Errorf("Unexpected normalized text %q", e.Fields[FieldTitle].Text)
	}
}

func TestContains(t *testing.T) {
	e := Build(Document{Title: "Kubernetes Operators Explained", Description: "A gentle intro"})

	if !e.Contains(FieldTitle, "kubernetes") {
		t.Error("Expected title to contain 'kubernetes'")
	}
	if e.Contains(FieldTitle, "gentle") {
		t.Error("Expected 'gentle' only in the description field")
	}
	if !e.Contains(FieldDescription, "gentle") {
		t.Error("Expected description to contain 'gentle'")
	}
	if e.Contains(FieldContent, "kubernetes") {
		t.Error("Expected empty content field to contain nothing")
	}
}

func TestContainsPhrase(t *testing.T) {
	e := Build(Document{Title: "The Rise of Vector Databases"})

	if !e.ContainsPhrase(FieldTitle, "vector databases") {
		t.Error("Expected contiguous phrase to match")
	}
	if e.ContainsPhrase(FieldTitle, "rise vector") {
		t.Error("Expected non-contiguous words not to match as a phrase")
	}
	if e.ContainsPhrase(FieldTitle, "") {
		t.Error("Expected empty phrase not to match")
	}
	if !e.ContainsPhrase(FieldTitle, "the rise") {
		t.Error("Expected phrase at the start to match")
	}
}

func TestFieldsOrderedByWeight(t *testing.T) {
	fields := Fields()
	if len(fields) != 4 {
		t.Fatalf("Expected 4 fields, got %d", len(fields))
	}
	for i := 1; i < len(fields); i++ {
		if fields[i].Weight() >= fields[i-1].Weight() {
			t.Errorf("Expected descending weights, got %v >= %v at %d",
				fields[i].Weight(), fields[i-1].Weight(), i)
		}
	}

	if FieldTitle.Weight() != 1.0 {
		t.Errorf("Expected title weight 1.0, got %v", FieldTitle.Weight())
	}
	if FieldTitle.Tag() != "A" || FieldContent.Tag() != "D" {
		t.Errorf("Unexpected field tags: %s..%s", FieldTitle.Tag(), FieldContent.Tag())
	}
}

func TestNormalizeTerm(t *testing.T) {
	if got := NormalizeTerm("  Vector   Databases! "); got != "vector databases" {
		t.Errorf("NormalizeTerm = %q, want 'vector databases'", got)
	}
	if got := NormalizeTerm("???"); got != "" {
		t.Errorf("NormalizeTerm of punctuation = %q, want empty", got)
	}
}
