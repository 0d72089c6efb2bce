package normalize

import "strings"

// Lemmatizer reduces a lowercase token to its dictionary base form.
// Implementations must be idempotent: Lemma(Lemma(w)) == Lemma(w).
type Lemmatizer interface {
	Lemma(word string) string
}

// NounLemmatizer is a suffix-rule lemmatizer for English nouns. It covers the
// regular plural forms plus a table of irregular ones.
type NounLemmatizer struct {
	irregular map[string]string
}

// NewNounLemmatizer returns a NounLemmatizer with the built-in irregular table.
func NewNounLemmatizer() *NounLemmatizer {
	return &NounLemmatizer{irregular: map[string]string{
		"children":  "child",
		"men":       "man",
		"women":     "woman",
		"people":    "people",
		"mice":      "mouse",
		"feet":      "foot",
		"teeth":     "tooth",
		"geese":     "goose",
		"indices":   "index",
		"matrices":  "matrix",
		"vertices":  "vertex",
		"analyses":  "analysis",
		"criteria":  "criterion",
		"phenomena": "phenomenon",
		"series":    "series",
		"species":   "species",
		"caches":    "cache",
		"niches":    "niche",
		"cookies":   "cookie",
		"movies":    "movie",
	}}
}

// Lemma implements Lemmatizer.
func (l *NounLemmatizer) Lemma(word string) string {
	base := l.regular(word)
	if irregular, ok := l.irregular[base]; ok {
		return irregular
	}
	return base
}

func (l *NounLemmatizer) regular(word string) string {
	if _, ok := l.irregular[word]; ok || len(word) <= 3 {
		return word
	}

	switch {
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"), strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "sses"):
		return strings.TrimSuffix(word, "es")
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return strings.TrimSuffix(word, "ies") + "y"
	case strings.HasSuffix(word, "xes"), strings.HasSuffix(word, "zzes"),
		strings.HasSuffix(word, "ches"), strings.HasSuffix(word, "shes"):
		return strings.TrimSuffix(word, "es")
	case strings.HasSuffix(word, "s"):
		return strings.TrimSuffix(word, "s")
	}
	return word
}
