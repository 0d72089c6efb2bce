// Package normalize canonicalizes free text before it is compared or
// classified.
package normalize

import (
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// nonAlphanumeric keeps every rune unicode.IsSpace accepts so that
// strings.Fields still splits on them.
var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\t\n\v\f\r\x{85}\p{Z}]+`)

// Normalizer turns raw text into lowercase lemmatized tokens with stopwords
// removed. It holds no mutable state and is safe to share.
type Normalizer struct {
	stopwords  map[string]struct{}
	lemmatizer Lemmatizer
}

// New creates a Normalizer from an explicit stopword set and lemmatizer.
func New(stopwords map[string]struct{}, lemmatizer Lemmatizer) *Normalizer {
	if stopwords == nil {
		stopwords = map[string]struct{}{}
	}
	return &Normalizer{stopwords: stopwords, lemmatizer: lemmatizer}
}

// NewEnglish creates a Normalizer using the English stopword list and the
// noun lemmatizer.
func NewEnglish() *Normalizer {
	return New(EnglishStopwords(), NewNounLemmatizer())
}

// Clean returns the canonical form of text, or nil when text is nil.
// Cleaning its own output returns the same value.
func (n *Normalizer) Clean(text *string) *string {
	if text == nil {
		return nil
	}
	cleaned := n.CleanString(*text)
	return &cleaned
}

// CleanString is Clean for a plain string.
func (n *Normalizer) CleanString(text string) string {
	s := html.UnescapeString(stripMarkup(text))
	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "")

	tokens := strings.Fields(s)
	kept := tokens[:0]
	for _, tok := range tokens {
		if n.isStopword(tok) {
			continue
		}
		if n.lemmatizer != nil {
			tok = n.lemmatizer.Lemma(tok)
		}
		// a lemma can itself be a stopword ("wills" -> "will")
		if tok == "" || n.isStopword(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func (n *Normalizer) isStopword(tok string) bool {
	_, ok := n.stopwords[tok]
	return ok
}

// stripMarkup returns the visible text of an HTML fragment. Script and style
// bodies are dropped. Input the tokenizer cannot handle is returned unchanged.
func stripMarkup(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}

	z := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return b.String()
			}
			return text
		case html.StartTagToken:
			if isHiddenTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isHiddenTag(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isHiddenTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

// Unescape decodes HTML entities and backslash escapes ("é", "\n") but
// otherwise leaves text untouched. It is meant for short exact tokens such as
// repository languages, where "C++" must stay "C++".
func Unescape(text *string) *string {
	if text == nil {
		return nil
	}
	s := decodeBackslashEscapes(html.UnescapeString(*text))
	return &s
}

func decodeBackslashEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	rest := s
	for len(rest) > 0 {
		r, _, tail, err := strconv.UnquoteChar(rest, 0)
		if err != nil {
			return s
		}
		b.WriteRune(r)
		rest = tail
	}
	return b.String()
}
