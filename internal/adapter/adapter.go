// Package adapter maps the differently shaped corpus items (pull requests,
// issues, discussions) onto models.Record.
package adapter

import (
	"fmt"
	"math"
	"time"

	"github.com/danielolaszy/convostat/internal/logging"
	"github.com/danielolaszy/convostat/internal/normalize"
	"github.com/danielolaszy/convostat/pkg/models"
	"github.com/tidwall/gjson"
)

// TimeLayout is the timestamp format used by the corpora.
const TimeLayout = "2006-01-02T15:04:05Z"

// Adapter converts raw corpus items into canonical records.
type Adapter struct {
	normalizer *normalize.Normalizer
}

// New creates an Adapter that cleans titles and bodies with n.
func New(n *normalize.Normalizer) *Adapter {
	return &Adapter{normalizer: n}
}

// Adapt converts the item at position index of a corpus. The item's Type
// field selects the source kind; fallback is used when the item has none.
// Items that cannot be adapted yield a *models.SchemaError.
func (a *Adapter) Adapt(index int, item gjson.Result, fallback models.SourceKind) (models.Record, error) {
	if !item.IsObject() {
		return models.Record{}, &models.SchemaError{Index: index, Reason: "source is not an object"}
	}

	id, ok := recordID(item)
	if !ok {
		return models.Record{}, &models.SchemaError{Index: index, Reason: "missing URL and RepoName/Number"}
	}

	kind, err := sourceKind(item, fallback)
	if err != nil {
		return models.Record{}, &models.SchemaError{Index: index, ID: id, Reason: "unrecognized source kind", Err: err}
	}

	reader, err := ReaderFor(kind)
	if err != nil {
		return models.Record{}, &models.SchemaError{Index: index, ID: id, Reason: "unrecognized source kind", Err: err}
	}
	state, err := reader.ResolvedState(item)
	if err != nil {
		return models.Record{}, &models.SchemaError{Index: index, ID: id, Reason: "invalid resolved state", Err: err}
	}

	record := models.Record{
		ID:            id,
		Kind:          kind,
		RepoName:      item.Get("RepoName").String(),
		RepoLanguage:  normalize.Unescape(optionalString(item, "RepoLanguage")),
		CreatedAt:     parseTime(item.Get("CreatedAt")),
		UpdatedAt:     parseTime(item.Get("UpdatedAt")),
		DeclaredState: state,
	}
	if a.normalizer != nil {
		record.Title = a.normalizer.Clean(optionalString(item, "Title"))
		record.Body = a.normalizer.Clean(optionalString(item, "Body"))
	} else {
		record.Title = optionalString(item, "Title")
		record.Body = optionalString(item, "Body")
	}

	record.PromptCounts, record.Conversations = readSharings(item.Get("ChatgptSharing"))
	if len(record.Conversations) == 0 {
		record.PromptCounts = nil
	}

	return record, nil
}

func recordID(item gjson.Result) (string, bool) {
	if url := item.Get("URL"); url.Type == gjson.String && url.Str != "" {
		return url.Str, true
	}
	repo := item.Get("RepoName")
	number := item.Get("Number")
	if repo.Type == gjson.String && repo.Str != "" && number.Type == gjson.Number {
		return fmt.Sprintf("%s#%d", repo.Str, number.Int()), true
	}
	return "", false
}

func sourceKind(item gjson.Result, fallback models.SourceKind) (models.SourceKind, error) {
	discriminator := item.Get("Type")
	if discriminator.Exists() && discriminator.Type != gjson.Null {
		return models.ParseSourceKind(discriminator.String())
	}
	if fallback == "" {
		return "", fmt.Errorf("item has no Type and corpus kind is unset")
	}
	return fallback, nil
}

func optionalString(item gjson.Result, field string) *string {
	v := item.Get(field)
	if v.Type != gjson.String {
		return nil
	}
	s := v.Str
	return &s
}

func parseTime(v gjson.Result) time.Time {
	if v.Type != gjson.String {
		return time.Time{}
	}
	t, err := time.Parse(TimeLayout, v.Str)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// readSharings collects prompt counts and conversation turns from the
// ChatgptSharing array in encounter order. Turns use Question, or Prompt in
// older snapshots.
func readSharings(sharings gjson.Result) ([]int, []models.Conversation) {
	var counts []int
	var conversations []models.Conversation

	for _, sharing := range sharings.Array() {
		if n, ok := promptCount(sharing.Get("NumberOfPrompts")); ok {
			counts = append(counts, n)
		}
		for _, turn := range sharing.Get("Conversations").Array() {
			question := turn.Get("Question")
			if !question.Exists() {
				question = turn.Get("Prompt")
			}
			conversations = append(conversations, models.Conversation{
				Question: question.String(),
				Answer:   turn.Get("Answer").String(),
			})
		}
	}

	return counts, conversations
}

// promptCount accepts non-negative whole numbers only.
func promptCount(v gjson.Result) (int, bool) {
	if !v.Exists() {
		return 0, false
	}
	if v.Type != gjson.Number || v.Num < 0 || v.Num != math.Trunc(v.Num) {
		logging.Debug("ignoring invalid prompt count", "value", v.Raw)
		return 0, false
	}
	return int(v.Num), true
}
