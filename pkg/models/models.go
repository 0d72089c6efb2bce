// Package models defines data structures shared across the application.
package models

import (
	"fmt"
	"strings"
	"time"
)

// SourceKind identifies which kind of artifact a record was read from.
type SourceKind string

const (
	// PullRequest records come from pull request corpora.
	PullRequest SourceKind = "pull request"
	// Issue records come from issue corpora.
	Issue SourceKind = "issue"
	// Discussion records come from discussion corpora.
	Discussion SourceKind = "discussion"
)

// ParseSourceKind maps a discriminator value to a SourceKind. It accepts the
// values found in the Type field of corpus items as well as the short names
// used on the command line ("pr", "pull_request").
func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pull request", "pull_request", "pullrequest", "pr":
		return PullRequest, nil
	case "issue":
		return Issue, nil
	case "discussion":
		return Discussion, nil
	}
	return "", fmt.Errorf("unknown source kind %q", s)
}

// State is the resolution state declared by a source.
type State string

const (
	// Open means the artifact is still open.
	Open State = "Open"
	// Closed means the artifact was resolved.
	Closed State = "Closed"
)

// Classification is the resolution state inferred from conversation text.
type Classification string

const (
	InferredOpen      Classification = "Open"
	InferredClosed    Classification = "Closed"
	InferredUncertain Classification = "Uncertain"
)

// Conversation is a single question/answer turn shared with the assistant.
type Conversation struct {
	Question string
	Answer   string
}

// Record is the canonical form of one PR, issue or discussion.
type Record struct {
	// ID is the source-specific key, usually the artifact URL
	ID string

	// Kind is the source kind; it is set once by the adapter
	Kind SourceKind

	// RepoName is the "owner/repo" the artifact belongs to, empty if unknown
	RepoName string

	// RepoLanguage is the unescaped repository language, nil if unknown
	RepoLanguage *string

	// Title and Body hold normalized text, nil if absent
	Title *string
	Body  *string

	// CreatedAt and UpdatedAt are zero when missing or unparsable
	CreatedAt time.Time
	UpdatedAt time.Time

	// DeclaredState is the state reported by the source schema
	DeclaredState State

	// PromptCounts holds one entry per sharing that reported a prompt count
	PromptCounts []int

	// Conversations are all turns of all sharings in encounter order
	Conversations []Conversation
}

// Language returns the repository language or an empty string.
func (r Record) Language() string {
	if r.RepoLanguage == nil {
		return ""
	}
	return *r.RepoLanguage
}

// LastAnswer returns the answer of the final conversation turn and whether
// the record has any conversations at all.
func (r Record) LastAnswer() (string, bool) {
	if len(r.Conversations) == 0 {
		return "", false
	}
	return r.Conversations[len(r.Conversations)-1].Answer, true
}
