// Package classify infers a resolution state from conversation text.
//
// The result is a heuristic signal. It is kept apart from the state a source
// declares and is never written back onto a record.
package classify

import (
	"fmt"

	"github.com/danielolaszy/convostat/pkg/models"
)

// Classifier applies an ordered rule table to answer text. It is stateless
// after construction.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier. All Open rules are evaluated before any Closed
// rule regardless of their position in rules.
func New(rules []Rule) (*Classifier, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("classifier needs at least one rule")
	}

	ordered := make([]Rule, 0, len(rules))
	for _, label := range []models.Classification{models.InferredOpen, models.InferredClosed} {
		for _, r := range rules {
			if r.pattern == nil {
				return nil, fmt.Errorf("rule %s was not built with NewRule", r.Name)
			}
			if r.Label == label {
				ordered = append(ordered, r)
			}
		}
	}
	return &Classifier{rules: ordered}, nil
}

// NewDefault creates a Classifier with DefaultRules.
func NewDefault() *Classifier {
	c, _ := New(DefaultRules())
	return c
}

// Classify labels a single answer.
func (c *Classifier) Classify(answer string) models.Classification {
	label, _ := c.Explain(answer)
	return label
}

// Explain is Classify that also returns the name of the deciding rule, or
// an empty name when the answer is Uncertain.
func (c *Classifier) Explain(answer string) (models.Classification, string) {
	for _, r := range c.rules {
		if r.Match(answer) {
			return r.Label, r.Name
		}
	}
	return models.InferredUncertain, ""
}

// ClassifyRecord labels a record by the answer of its final conversation
// turn. Records without conversations are Uncertain.
func (c *Classifier) ClassifyRecord(record models.Record) models.Classification {
	answer, ok := record.LastAnswer()
	if !ok {
		return models.InferredUncertain
	}
	return c.Classify(answer)
}

// Agreement counts inferred labels per declared state.
type Agreement map[models.State]map[models.Classification]int

// Tally classifies every record and groups the labels by declared state.
func (c *Classifier) Tally(records []models.Record) Agreement {
	out := Agreement{
		models.Open:   {},
		models.Closed: {},
	}
	for _, r := range records {
		if out[r.DeclaredState] == nil {
			out[r.DeclaredState] = map[models.Classification]int{}
		}
		out[r.DeclaredState][c.ClassifyRecord(r)]++
	}
	return out
}
