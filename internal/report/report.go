// Package report assembles the per-run results handed to renderers. The
// types here are plain data; nothing in this package knows how results are
// drawn.
package report

import (
	"fmt"

	"github.com/danielolaszy/convostat/internal/aggregate"
	"github.com/danielolaszy/convostat/internal/classify"
	"github.com/danielolaszy/convostat/internal/corpus"
	"github.com/danielolaszy/convostat/pkg/models"
)

// Categories is the order in which declared states are reported.
var Categories = []models.State{models.Open, models.Closed}

// CorpusSummary holds the finalized statistics of one corpus. Comparisons
// between corpora only ever combine summaries, never records.
type CorpusSummary struct {
	Label    string `json:"label" yaml:"label"`
	Path     string `json:"path" yaml:"path"`
	Records  int    `json:"records" yaml:"records"`
	Skipped  int    `json:"skipped" yaml:"skipped"`
	Enriched int    `json:"enriched_languages,omitempty" yaml:"enriched_languages,omitempty"`

	PromptAverages []aggregate.KindAverages                       `json:"prompt_averages" yaml:"prompt_averages"`
	Precision      []aggregate.LanguagePrecision                  `json:"precision" yaml:"precision"`
	Latency        aggregate.LatencySummary                       `json:"latency" yaml:"latency"`
	Inferred       map[models.State]map[models.Classification]int `json:"inferred_states" yaml:"inferred_states"`
}

// PromptComparison lines up the prompt-count averages of several corpora.
// There is one series per corpus and source kind; a corpus holding several
// kinds contributes one series per kind, labelled "<label> (<kind>)". Values
// maps each category ("Open", "Closed") to one value per series, in the order
// of Series.
type PromptComparison struct {
	Categories []string         `json:"categories" yaml:"categories"`
	Series     []string         `json:"series" yaml:"series"`
	Values     map[string][]int `json:"values" yaml:"values"`
}

// Report is everything one run produces.
type Report struct {
	Prompts PromptComparison `json:"prompts" yaml:"prompts"`
	Corpora []CorpusSummary  `json:"corpora" yaml:"corpora"`
}

// Summarize computes all statistics for a loaded corpus.
func Summarize(c *corpus.Corpus, classifier *classify.Classifier, outlierHours float64) CorpusSummary {
	summary := CorpusSummary{
		Label:          c.Name(),
		Path:           c.Source.Path,
		Records:        len(c.Records),
		Skipped:        len(c.Skipped),
		Enriched:       c.Enriched,
		PromptAverages: aggregate.AveragesByKind(c.Records),
		Precision:      aggregate.PrecisionTable(c.Records),
		Latency:        aggregate.Latency(c.Records, outlierHours),
	}
	if classifier != nil {
		summary.Inferred = classifier.Tally(c.Records)
	}
	return summary
}

// ComparePrompts builds the prompt comparison from corpus summaries. A corpus
// without records still contributes a series of zeros.
func ComparePrompts(summaries []CorpusSummary) PromptComparison {
	cmp := PromptComparison{
		Categories: make([]string, 0, len(Categories)),
		Series:     make([]string, 0, len(summaries)),
		Values:     make(map[string][]int, len(Categories)),
	}
	for _, state := range Categories {
		cmp.Categories = append(cmp.Categories, string(state))
		cmp.Values[string(state)] = make([]int, 0, len(summaries))
	}

	for _, s := range summaries {
		groups := s.PromptAverages
		if len(groups) == 0 {
			groups = []aggregate.KindAverages{{}}
		}
		for _, g := range groups {
			label := s.Label
			if len(groups) > 1 {
				label = fmt.Sprintf("%s (%s)", s.Label, g.Kind)
			}
			cmp.Series = append(cmp.Series, label)
			for _, state := range Categories {
				cmp.Values[string(state)] = append(cmp.Values[string(state)], g.Averages[state])
			}
		}
	}
	return cmp
}

// Build summarizes every corpus and lines up their prompt averages.
func Build(corpora []*corpus.Corpus, classifier *classify.Classifier, outlierHours float64) Report {
	summaries := make([]CorpusSummary, 0, len(corpora))
	for _, c := range corpora {
		summaries = append(summaries, Summarize(c, classifier, outlierHours))
	}
	return Report{
		Prompts: ComparePrompts(summaries),
		Corpora: summaries,
	}
}
