package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/danielolaszy/convostat/pkg/models"
)

// Rule labels answers containing any of its terms.
type Rule struct {
	Name  string
	Label models.Classification
	Terms []string

	pattern *regexp.Regexp
}

// NewRule compiles a case-insensitive whole-word rule. Terms may contain
// spaces or hyphens; runs of whitespace in a term match any whitespace.
func NewRule(name string, label models.Classification, terms ...string) (Rule, error) {
	if len(terms) == 0 {
		return Rule{}, fmt.Errorf("rule %s has no terms", name)
	}
	if label != models.InferredOpen && label != models.InferredClosed {
		return Rule{}, fmt.Errorf("rule %s: label must be Open or Closed, got %q", name, label)
	}

	alternatives := make([]string, 0, len(terms))
	for _, term := range terms {
		words := strings.Fields(term)
		if len(words) == 0 {
			return Rule{}, fmt.Errorf("rule %s has an empty term", name)
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alternatives = append(alternatives, strings.Join(words, `\s+`))
	}

	pattern, err := regexp.Compile(`(?i)\b(?:` + strings.Join(alternatives, "|") + `)\b`)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: %w", name, err)
	}

	return Rule{Name: name, Label: label, Terms: terms, pattern: pattern}, nil
}

// MustRule is NewRule for built-in tables; it panics on error.
func MustRule(name string, label models.Classification, terms ...string) Rule {
	r, err := NewRule(name, label, terms...)
	if err != nil {
		panic(err)
	}
	return r
}

// Match reports whether text contains one of the rule's terms.
func (r Rule) Match(text string) bool {
	return r.pattern != nil && r.pattern.MatchString(text)
}

// DefaultRules is the built-in table. Open rules come first so that an
// answer carrying both kinds of signal is classified Open.
func DefaultRules() []Rule {
	return []Rule{
		MustRule("open-concerns", models.InferredOpen,
			"concerns", "revisit", "review", "thoroughly", "additional information",
			"reconsider"),
		MustRule("open-alternatives", models.InferredOpen,
			"alternative", "explore", "possibilities", "alternative solutions"),
		MustRule("open-disagreement", models.InferredOpen,
			"not on the same page", "not the same page", "not reached a resolution",
			"challenge", "less-than-ideal situation"),
		MustRule("open-investigation", models.InferredOpen,
			"collaboration", "issue", "investigate", "progress", "insights"),
		MustRule("closed-resolution", models.InferredClosed,
			"closed", "closure", "result", "confirmation", "resolved"),
		MustRule("closed-gratitude", models.InferredClosed,
			"gratitude", "appreciate", "thanks", "assistance", "information"),
		MustRule("closed-followup", models.InferredClosed,
			"future", "reach out", "follow up", "circle back", "findings"),
		MustRule("closed-implementation", models.InferredClosed,
			"implement", "discussing", "consider", "understanding", "approaches",
			"solutions", "investigating"),
	}
}
