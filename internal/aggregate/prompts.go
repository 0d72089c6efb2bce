// Package aggregate computes the corpus statistics: prompt-count averages by
// declared state, resolution precision by language and the distribution of
// creation-to-update latency.
package aggregate

import (
	"math"
	"sort"

	"github.com/danielolaszy/convostat/internal/logging"
	"github.com/danielolaszy/convostat/pkg/models"
)

// Bucket accumulates integer samples for one group.
type Bucket struct {
	Count   int
	Sum     int
	Samples []int
}

// Add appends values to the bucket.
func (b *Bucket) Add(values ...int) {
	for _, v := range values {
		b.Count++
		b.Sum += v
		b.Samples = append(b.Samples, v)
	}
}

// Average returns the rounded mean of the bucket, 0 when empty.
func (b *Bucket) Average() int {
	if b.Count == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(b.Sum) / float64(b.Count)))
}

// Average returns the mean of values rounded half to even, so 4.5 becomes 4
// and 5.5 becomes 6. An empty slice averages to 0.
func Average(values []int) int {
	var b Bucket
	b.Add(values...)
	return b.Average()
}

// GroupKey identifies a prompt-count group.
type GroupKey struct {
	Kind  models.SourceKind
	State models.State
}

// PromptGroups flattens the prompt counts of all records into one bucket per
// (source kind, declared state).
func PromptGroups(records []models.Record) map[GroupKey]*Bucket {
	groups := make(map[GroupKey]*Bucket)
	for _, r := range records {
		key := GroupKey{Kind: r.Kind, State: r.DeclaredState}
		b, ok := groups[key]
		if !ok {
			b = &Bucket{}
			groups[key] = b
		}
		b.Add(r.PromptCounts...)
	}
	return groups
}

// PromptAverages returns the average prompt count for every (source kind,
// declared state) pair present in records. Both states are reported for each
// kind; a state without samples averages to 0.
func PromptAverages(records []models.Record) map[GroupKey]int {
	groups := PromptGroups(records)

	kinds := make(map[models.SourceKind]struct{})
	for key := range groups {
		kinds[key.Kind] = struct{}{}
	}

	out := make(map[GroupKey]int, len(kinds)*2)
	for kind := range kinds {
		for _, state := range []models.State{models.Open, models.Closed} {
			key := GroupKey{Kind: kind, State: state}
			b := groups[key]
			if b == nil || b.Count == 0 {
				logging.Debug("empty prompt-count group",
					"kind", kind,
					"state", state,
					"warning", models.ErrEmptyGroup)
				out[key] = 0
				continue
			}
			out[key] = b.Average()
		}
	}
	return out
}

// KindAverages holds the prompt-count averages of one source kind. Averages
// always has Open and Closed entries.
type KindAverages struct {
	Kind     models.SourceKind    `json:"kind" yaml:"kind"`
	Averages map[models.State]int `json:"averages" yaml:"averages"`
}

// AveragesByKind is PromptAverages regrouped per source kind, ordered by kind.
// Records of different kinds never share a group.
func AveragesByKind(records []models.Record) []KindAverages {
	averages := PromptAverages(records)

	var out []KindAverages
	for _, key := range SortedKeys(averages) {
		if len(out) == 0 || out[len(out)-1].Kind != key.Kind {
			out = append(out, KindAverages{Kind: key.Kind, Averages: make(map[models.State]int, 2)})
		}
		out[len(out)-1].Averages[key.State] = averages[key]
	}
	return out
}

// SortedKeys returns the keys of groups ordered by kind then state.
func SortedKeys[V any](groups map[GroupKey]V) []GroupKey {
	keys := make([]GroupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return stateOrder(keys[i].State) < stateOrder(keys[j].State)
	})
	return keys
}

func stateOrder(s models.State) int {
	if s == models.Open {
		return 0
	}
	return 1
}
