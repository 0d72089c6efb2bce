package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pullRequests = `{"Sources": [
  {"Type": "pull request", "URL": "https://github.com/acme/api/pull/1", "RepoName": "acme/api",
   "RepoLanguage": "Go", "State": "OPEN", "Title": "Add retries",
   "CreatedAt": "2023-07-01T00:00:00Z", "UpdatedAt": "2023-07-01T10:00:00Z",
   "ChatgptSharing": [
     {"NumberOfPrompts": 1, "Conversations": [{"Prompt": "why?", "Answer": "Sure."}]},
     {"NumberOfPrompts": 3, "Conversations": [{"Prompt": "and?", "Answer": "I have some concerns about this approach."}]}
   ]},
  {"Type": "pull request", "URL": "https://github.com/acme/api/pull/2", "RepoName": "acme/api",
   "RepoLanguage": "Go", "State": "CLOSED",
   "CreatedAt": "2023-07-01T00:00:00Z", "UpdatedAt": "2023-07-01T20:00:00Z",
   "ChatgptSharing": [
     {"NumberOfPrompts": 4, "Conversations": [{"Prompt": "fix?", "Answer": "Thanks, that resolved it."}]}
   ]},
  {"Type": "pull request", "URL": "https://github.com/acme/web/pull/3", "RepoName": "acme/web",
   "RepoLanguage": "Python", "State": "CLOSED",
   "CreatedAt": "2023-07-01T00:00:00Z", "UpdatedAt": "2023-07-09T08:00:00Z",
   "ChatgptSharing": [
     {"NumberOfPrompts": 5, "Conversations": [{"Prompt": "code?", "Answer": "Here is the code you asked for."}]},
     {"NumberOfPrompts": 3, "Conversations": [{"Prompt": "more?", "Answer": "Here is the code you asked for."}]}
   ]},
  {"Type": "pull request", "URL": "https://github.com/acme/web/pull/4", "State": 42}
]}`

const discussions = `{"Sources": [
  {"URL": "https://github.com/acme/api/discussions/7", "RepoName": "acme/api", "Closed": false,
   "ChatgptSharing": [{"NumberOfPrompts": 6, "Conversations": [{"Question": "q", "Answer": "a"}]}]},
  {"URL": "https://github.com/acme/api/discussions/8", "RepoName": "acme/lib", "Closed": true,
   "ChatgptSharing": [{"NumberOfPrompts": 2, "Conversations": [{"Question": "q", "Answer": "a"}]}]}
]}`

func writeCorpus(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPromptsCommand(t *testing.T) {
	prs := writeCorpus(t, "prs.json", pullRequests)

	out, err := execute(t, "prompts", "--corpus", "pr="+prs, "--label", "Pull Request")
	require.NoError(t, err)

	assert.Contains(t, out, "Pull Request")
	assert.Regexp(t, `(?m)^Open\s+2$`, out)
	assert.Regexp(t, `(?m)^Closed\s+4$`, out)
}

func TestPromptsCommandJSON(t *testing.T) {
	prs := writeCorpus(t, "prs.json", pullRequests)
	disc := writeCorpus(t, "discussions.json", discussions)

	out, err := execute(t, "prompts", "-f", "json",
		"--corpus", "pr="+prs, "--corpus", "discussion="+disc,
		"-l", "Pull Request", "-l", "Discussions")
	require.NoError(t, err)

	var got struct {
		Categories []string         `json:"categories"`
		Series     []string         `json:"series"`
		Values     map[string][]int `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, []string{"Open", "Closed"}, got.Categories)
	assert.Equal(t, []string{"Pull Request", "Discussions"}, got.Series)
	assert.Equal(t, []int{2, 6}, got.Values["Open"])
	assert.Equal(t, []int{4, 2}, got.Values["Closed"])
}

func TestPrecisionCommand(t *testing.T) {
	prs := writeCorpus(t, "prs.json", pullRequests)

	out, err := execute(t, "precision", "--corpus", "pr="+prs)
	require.NoError(t, err)

	assert.Regexp(t, `Go\s+1\s+2\s+0\.50`, out)
	assert.Regexp(t, `Python\s+1\s+1\s+1\.00`, out)
}

func TestLatencyCommandJSON(t *testing.T) {
	prs := writeCorpus(t, "prs.json", pullRequests)

	out, err := execute(t, "latency", "--format", "json", "--corpus", "pr="+prs)
	require.NoError(t, err)

	var got []labelledLatency
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)

	l := got[0].Latency
	assert.Equal(t, []float64{10, 20}, l.Samples)
	assert.Equal(t, 1, l.Discarded)
	assert.InDelta(t, 15.0, l.Mean, 1e-9)
	assert.InDelta(t, 15.0, l.Median, 1e-9)
	assert.InDelta(t, 5.0, l.StdDev, 1e-9)
}

func TestLatencyCommandOutlierOverride(t *testing.T) {
	prs := writeCorpus(t, "prs.json", pullRequests)

	out, err := execute(t, "latency", "-f", "json", "--outlier-hours", "500", "--corpus", "pr="+prs)
	require.NoError(t, err)

	var got []labelledLatency
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Len(t, got[0].Latency.Samples, 3)
	assert.Equal(t, 0, got[0].Latency.Discarded)
}

func TestClassifyCommand(t *testing.T) {
	prs := writeCorpus(t, "prs.json", pullRequests)

	out, err := execute(t, "classify", "--records", "--corpus", "pr="+prs)
	require.NoError(t, err)

	assert.Regexp(t, `(?m)^Open\s+1\s+0\s+0$`, out)
	assert.Regexp(t, `(?m)^Closed\s+0\s+1\s+1$`, out)
	assert.Contains(t, out, "https://github.com/acme/api/pull/1\tOpen\tOpen\topen-concerns")
	assert.Contains(t, out, "https://github.com/acme/web/pull/3\tClosed\tUncertain\t")
	assert.NotContains(t, out, "pull/4")
}

func TestReportCommandJSON(t *testing.T) {
	prs := writeCorpus(t, "prs.json", pullRequests)
	disc := writeCorpus(t, "discussions.json", discussions)

	out, err := execute(t, "report", "-f", "json", "--corpus", "pr="+prs, "--corpus", "discussion="+disc)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	corpora, ok := got["corpora"].([]any)
	require.True(t, ok)
	require.Len(t, corpora, 2)

	first := corpora[0].(map[string]any)
	assert.Equal(t, float64(3), first["records"])
	assert.Equal(t, float64(1), first["skipped"])
}

func TestReportCommandText(t *testing.T) {
	prs := writeCorpus(t, "prs.json", pullRequests)

	out, err := execute(t, "report", "--corpus", "pr="+prs, "-l", "PRs")
	require.NoError(t, err)
	assert.Contains(t, out, "PRs")
}

func TestCommandErrors(t *testing.T) {
	prs := writeCorpus(t, "prs.json", pullRequests)
	missing := filepath.Join(t.TempDir(), "missing.json")

	testCases := []struct {
		name string
		args []string
	}{
		{name: "No corpus", args: []string{"prompts"}},
		{name: "Too many corpora", args: []string{"prompts",
			"--corpus", prs, "--corpus", prs, "--corpus", prs, "--corpus", prs}},
		{name: "More labels than corpora", args: []string{"prompts", "--corpus", prs, "-l", "a", "-l", "b"}},
		{name: "Unknown kind", args: []string{"prompts", "--corpus", "tweet=" + prs}},
		{name: "Unknown format", args: []string{"prompts", "--corpus", prs, "-f", "xml"}},
		{name: "Missing file", args: []string{"prompts", "--corpus", "pr=" + missing}},
		{name: "Unexpected argument", args: []string{"prompts", "extra", "--corpus", prs}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestLanguagesCommandRequiresToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	prs := writeCorpus(t, "prs.json", pullRequests)

	_, err := execute(t, "languages", "--corpus", "pr="+prs)
	assert.Error(t, err)
}

type stubResolver map[string]string

func (s stubResolver) RepositoryLanguage(_ context.Context, repository string) (string, error) {
	lang, ok := s[repository]
	if !ok {
		return "", errors.New("not found")
	}
	return lang, nil
}

func TestResolveLanguages(t *testing.T) {
	resolver := stubResolver{"acme/api": "Go"}

	got := resolveLanguages(context.Background(), resolver, []string{"acme/api", "acme/gone"})

	require.Len(t, got, 2)
	assert.Equal(t, repositoryLanguage{Repository: "acme/api", Language: "Go"}, got[0])
	assert.Equal(t, "acme/gone", got[1].Repository)
	assert.Equal(t, "not found", got[1].Error)
}

func TestPrecisionCommandYAML(t *testing.T) {
	prs := writeCorpus(t, "prs.json", pullRequests)

	out, err := execute(t, "precision", "-f", "yaml", "--corpus", "pr="+prs, "-l", "PRs")
	require.NoError(t, err)

	assert.Contains(t, out, "label: PRs")
	assert.Contains(t, out, "language: Go")
	assert.Contains(t, out, "precision: 0.5")
}

func TestPromptsCommandWithConfigFile(t *testing.T) {
	prs := writeCorpus(t, "prs.json", pullRequests)
	disc := writeCorpus(t, "discussions.json", discussions)
	cfg := writeCorpus(t, "run.yaml", `
corpora:
  - path: `+prs+`
    label: Pull Request
    kind: pr
  - path: `+disc+`
    label: Discussions
    kind: discussion
format: json
`)

	out, err := execute(t, "prompts", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"Discussions"`)

	// a label flag overrides the file
	out, err = execute(t, "prompts", "--config", cfg, "-l", "PRs", "-f", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "PRs")
	assert.Contains(t, out, "Discussions")
	assert.Regexp(t, `(?m)^Open\s+2\s+6$`, out)
}

const mixedKinds = `{"Sources": [
  {"Type": "pull request", "URL": "https://github.com/acme/api/pull/9", "State": "CLOSED",
   "ChatgptSharing": [{"NumberOfPrompts": 10, "Conversations": [{"Prompt": "q", "Answer": "a"}]}]},
  {"Type": "discussion", "URL": "https://github.com/acme/api/discussions/9", "Closed": true,
   "ChatgptSharing": [{"NumberOfPrompts": 2, "Conversations": [{"Question": "q", "Answer": "a"}]}]}
]}`

func TestPromptsCommandKeepsKindsApart(t *testing.T) {
	mixed := writeCorpus(t, "mixed.json", mixedKinds)

	out, err := execute(t, "prompts", "-f", "json", "--corpus", mixed, "-l", "Mixed")
	require.NoError(t, err)

	var got struct {
		Series []string         `json:"series"`
		Values map[string][]int `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, []string{"Mixed (discussion)", "Mixed (pull request)"}, got.Series)
	assert.Equal(t, []int{2, 10}, got.Values["Closed"])
	assert.Equal(t, []int{0, 0}, got.Values["Open"])
}
