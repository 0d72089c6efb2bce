package aggregate

import (
	"sort"

	"github.com/danielolaszy/convostat/pkg/models"
)

// LanguagePrecision is the share of a language's records that are closed.
type LanguagePrecision struct {
	Language  string  `json:"language" yaml:"language"`
	Closed    int     `json:"closed" yaml:"closed"`
	Total     int     `json:"total" yaml:"total"`
	Precision float64 `json:"precision" yaml:"precision"`
}

// PrecisionTable computes the precision of every repository language found
// in records, sorted by language. Languages seen only on open records are
// reported with precision 0. Records without a language are ignored.
func PrecisionTable(records []models.Record) []LanguagePrecision {
	byLanguage := make(map[string]*LanguagePrecision)
	for _, r := range records {
		if r.RepoLanguage == nil {
			continue
		}
		lang := *r.RepoLanguage
		entry, ok := byLanguage[lang]
		if !ok {
			entry = &LanguagePrecision{Language: lang}
			byLanguage[lang] = entry
		}
		entry.Total++
		if r.DeclaredState == models.Closed {
			entry.Closed++
		}
	}

	table := make([]LanguagePrecision, 0, len(byLanguage))
	for _, entry := range byLanguage {
		entry.Precision = ratio(entry.Closed, entry.Total)
		table = append(table, *entry)
	}
	sort.Slice(table, func(i, j int) bool {
		return table[i].Language < table[j].Language
	})
	return table
}

func ratio(part, total int) float64 {
	if total <= 0 {
		return 0.0
	}
	return float64(part) / float64(total)
}
