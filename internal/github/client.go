// Package github resolves repository metadata through the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/retry"
	"github.com/danielolaszy/convostat/internal/config"
	"github.com/danielolaszy/convostat/internal/logging"
	"github.com/danielolaszy/convostat/pkg/models"
	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"
)

// LanguageResolver looks up the primary language of an "owner/repo".
type LanguageResolver interface {
	RepositoryLanguage(ctx context.Context, repository string) (string, error)
}

// maxAttempts bounds the lookups of one repository when GitHub answers with a
// server error or a rate limit.
const maxAttempts = 3

// Client encapsulates the GitHub API client. Language lookups are cached for
// the lifetime of the client.
type Client struct {
	client    *github.Client
	languages map[string]string

	retryFloor time.Duration
	retryCeil  time.Duration
}

// NewClient creates a GitHub client from the GitHub section of the run
// configuration. Domains other than github.com are treated as GitHub
// Enterprise installations.
func NewClient(ctx context.Context, cfg config.GitHubConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}

	domain := cfg.Domain
	if domain == "" {
		domain = "github.com"
	}

	logging.Info("github configuration",
		"domain", domain,
		"token", logging.MaskSensitive(cfg.Token))

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	tc := oauth2.NewClient(ctx, ts)

	if domain == "github.com" {
		return newClient(tc, "")
	}
	return newClient(tc, fmt.Sprintf("https://%s/api/v3/", domain))
}

func newClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := github.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		parsedURL, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}
	return &Client{
		client:     client,
		languages:  make(map[string]string),
		retryFloor: 500 * time.Millisecond,
		retryCeil:  5 * time.Second,
	}, nil
}

// RepositoryLanguage returns the primary language GitHub reports for the
// repository, which should be in the format "owner/repo". Repositories
// without a detected language yield an empty string.
func (c *Client) RepositoryLanguage(ctx context.Context, repository string) (string, error) {
	if lang, ok := c.languages[repository]; ok {
		return lang, nil
	}

	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}

	ret := retry.New(c.retryFloor, c.retryCeil)
	var repo *github.Repository
	for attempt := 1; ; attempt++ {
		var resp *github.Response
		var err error
		repo, resp, err = c.client.Repositories.Get(ctx, parts[0], parts[1])
		if err == nil {
			break
		}
		if attempt < maxAttempts && retryable(resp) && ret.Wait(ctx) {
			logging.Warn("retrying repository lookup", "repository", repository, "attempt", attempt, "error", err)
			continue
		}
		return "", fmt.Errorf("failed to get repository %s: %w", repository, err)
	}

	lang := repo.GetLanguage()
	c.languages[repository] = lang
	logging.Debug("resolved repository language", "repository", repository, "language", lang)
	return lang, nil
}

func retryable(resp *github.Response) bool {
	if resp == nil || resp.Response == nil {
		return false
	}
	return resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
}

// EnrichLanguages fills in RepoLanguage on records that have a RepoName but
// no language. Lookup failures are logged and leave the record unchanged.
// It returns the number of records that gained a language.
func EnrichLanguages(ctx context.Context, records []models.Record, resolver LanguageResolver) int {
	enriched := 0
	failed := make(map[string]bool)

	for i := range records {
		r := &records[i]
		if r.RepoLanguage != nil || r.RepoName == "" || failed[r.RepoName] {
			continue
		}

		lang, err := resolver.RepositoryLanguage(ctx, r.RepoName)
		if err != nil {
			logging.Warn("failed to resolve repository language",
				"repository", r.RepoName,
				"error", err)
			failed[r.RepoName] = true
			continue
		}
		if lang == "" {
			continue
		}

		r.RepoLanguage = &lang
		enriched++
	}

	return enriched
}
