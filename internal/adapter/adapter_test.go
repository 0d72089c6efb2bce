package adapter

import (
	"errors"
	"testing"
	"time"

	"github.com/danielolaszy/convostat/internal/normalize"
	"github.com/danielolaszy/convostat/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const prItem = `{
	"Type": "pull request",
	"URL": "https://github.com/acme/widgets/pull/7",
	"RepoName": "acme/widgets",
	"RepoLanguage": "C&#43;&#43;",
	"Number": 7,
	"Title": "<b>Fixes</b> the parsers",
	"Body": null,
	"CreatedAt": "2023-01-01T00:00:00Z",
	"UpdatedAt": "2023-01-01T10:00:00Z",
	"State": "CLOSED",
	"ChatgptSharing": [
		{
			"NumberOfPrompts": 3,
			"Conversations": [
				{"Prompt": "How do I fix this?", "Answer": "Try this."},
				{"Question": "And now?", "Answer": "Thanks, resolved."}
			]
		},
		{"NumberOfPrompts": null, "Conversations": []},
		{"NumberOfPrompts": 5}
	]
}`

func TestAdaptPullRequest(t *testing.T) {
	a := New(normalize.NewEnglish())

	record, err := a.Adapt(0, gjson.Parse(prItem), "")
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/acme/widgets/pull/7", record.ID)
	assert.Equal(t, models.PullRequest, record.Kind)
	assert.Equal(t, "acme/widgets", record.RepoName)
	require.NotNil(t, record.RepoLanguage)
	assert.Equal(t, "C++", *record.RepoLanguage)
	require.NotNil(t, record.Title)
	assert.Equal(t, "fix parser", *record.Title)
	assert.Nil(t, record.Body)
	assert.Equal(t, models.Closed, record.DeclaredState)
	assert.Equal(t, []int{3, 5}, record.PromptCounts)
	require.Len(t, record.Conversations, 2)
	assert.Equal(t, "How do I fix this?", record.Conversations[0].Question)
	assert.Equal(t, "Thanks, resolved.", record.Conversations[1].Answer)
	assert.Equal(t, time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC), record.UpdatedAt)
}

func TestAdaptDeclaredState(t *testing.T) {
	testCases := []struct {
		name     string
		item     string
		fallback models.SourceKind
		want     models.State
	}{
		{
			name:     "Issue closed",
			item:     `{"URL": "u", "State": "CLOSED"}`,
			fallback: models.Issue,
			want:     models.Closed,
		},
		{
			name:     "Issue open",
			item:     `{"URL": "u", "State": "OPEN"}`,
			fallback: models.Issue,
			want:     models.Open,
		},
		{
			name:     "State is case-sensitive",
			item:     `{"URL": "u", "State": "closed"}`,
			fallback: models.Issue,
			want:     models.Open,
		},
		{
			name:     "Any other string is open",
			item:     `{"URL": "u", "State": "MERGED"}`,
			fallback: models.PullRequest,
			want:     models.Open,
		},
		{
			name: "Discussion closed flag",
			item: `{"URL": "u", "Type": "discussion", "Closed": true}`,
			want: models.Closed,
		},
		{
			name:     "Discussion open flag",
			item:     `{"URL": "u", "Closed": false}`,
			fallback: models.Discussion,
			want:     models.Open,
		},
	}

	a := New(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record, err := a.Adapt(0, gjson.Parse(tc.item), tc.fallback)
			require.NoError(t, err)
			assert.Equal(t, tc.want, record.DeclaredState)
		})
	}
}

func TestAdaptSchemaErrors(t *testing.T) {
	testCases := []struct {
		name     string
		item     string
		fallback models.SourceKind
		reason   string
	}{
		{
			name:     "Missing state field",
			item:     `{"URL": "u"}`,
			fallback: models.PullRequest,
			reason:   "invalid resolved state",
		},
		{
			name:     "Discussion with string state",
			item:     `{"URL": "u", "State": "CLOSED"}`,
			fallback: models.Discussion,
			reason:   "invalid resolved state",
		},
		{
			name:     "Numeric state",
			item:     `{"URL": "u", "State": 1}`,
			fallback: models.Issue,
			reason:   "invalid resolved state",
		},
		{
			name:     "Missing id",
			item:     `{"State": "OPEN"}`,
			fallback: models.Issue,
			reason:   "missing URL and RepoName/Number",
		},
		{
			name:   "Missing discriminator",
			item:   `{"URL": "u", "State": "OPEN"}`,
			reason: "unrecognized source kind",
		},
		{
			name:     "Unknown discriminator",
			item:     `{"URL": "u", "Type": "commit", "State": "OPEN"}`,
			fallback: models.Issue,
			reason:   "unrecognized source kind",
		},
		{
			name:     "Not an object",
			item:     `[1, 2]`,
			fallback: models.Issue,
			reason:   "source is not an object",
		},
	}

	a := New(nil)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Adapt(4, gjson.Parse(tc.item), tc.fallback)
			require.Error(t, err)

			var schemaErr *models.SchemaError
			require.True(t, errors.As(err, &schemaErr))
			assert.Equal(t, 4, schemaErr.Index)
			assert.Equal(t, tc.reason, schemaErr.Reason)
		})
	}
}

func TestAdaptFallbackID(t *testing.T) {
	item := `{"RepoName": "acme/widgets", "Number": 12, "State": "OPEN"}`
	record, err := New(nil).Adapt(0, gjson.Parse(item), models.Issue)
	require.NoError(t, err)
	assert.Equal(t, "acme/widgets#12", record.ID)
}

func TestAdaptOptionalFields(t *testing.T) {
	item := `{"URL": "u", "State": "OPEN", "CreatedAt": "yesterday"}`
	record, err := New(normalize.NewEnglish()).Adapt(0, gjson.Parse(item), models.Issue)
	require.NoError(t, err)

	assert.Nil(t, record.RepoLanguage)
	assert.Nil(t, record.Title)
	assert.Nil(t, record.Body)
	assert.True(t, record.CreatedAt.IsZero())
	assert.True(t, record.UpdatedAt.IsZero())
	assert.Empty(t, record.PromptCounts)
	assert.Empty(t, record.Conversations)
}

func TestAdaptPromptCountsRequireConversations(t *testing.T) {
	item := `{"URL": "u", "State": "OPEN", "ChatgptSharing": [{"NumberOfPrompts": 4}]}`
	record, err := New(nil).Adapt(0, gjson.Parse(item), models.Issue)
	require.NoError(t, err)
	assert.Empty(t, record.PromptCounts)
}

func TestAdaptSkipsNegativePromptCounts(t *testing.T) {
	item := `{"URL": "u", "State": "OPEN", "ChatgptSharing": [
		{"NumberOfPrompts": -2, "Conversations": [{"Question": "q", "Answer": "a"}]},
		{"NumberOfPrompts": 2}
	]}`
	record, err := New(nil).Adapt(0, gjson.Parse(item), models.Issue)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, record.PromptCounts)
}

func TestAdaptSkipsFractionalPromptCounts(t *testing.T) {
	item := `{"URL": "u", "State": "OPEN", "ChatgptSharing": [
		{"NumberOfPrompts": 3.7, "Conversations": [{"Question": "q", "Answer": "a"}]},
		{"NumberOfPrompts": 4.0},
		{"NumberOfPrompts": "5"}
	]}`
	record, err := New(nil).Adapt(0, gjson.Parse(item), models.Issue)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, record.PromptCounts)
}

func TestReaderFor(t *testing.T) {
	r, err := ReaderFor(models.Discussion)
	require.NoError(t, err)
	state, err := r.ResolvedState(gjson.Parse(`{"Closed": true, "State": "OPEN"}`))
	require.NoError(t, err)
	assert.Equal(t, models.Closed, state)

	r, err = ReaderFor(models.PullRequest)
	require.NoError(t, err)
	state, err = r.ResolvedState(gjson.Parse(`{"Closed": true, "State": "OPEN"}`))
	require.NoError(t, err)
	assert.Equal(t, models.Open, state)

	_, err = ReaderFor(models.SourceKind("commit"))
	assert.Error(t, err)
}
