package cmd

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/danielolaszy/convostat/internal/github"
	"github.com/danielolaszy/convostat/internal/logging"
	"github.com/spf13/cobra"
)

type repositoryLanguage struct {
	Repository string `json:"repository" yaml:"repository"`
	Language   string `json:"language" yaml:"language"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newLanguagesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "Resolve missing repository languages through the GitHub API",
		Long: `List the repositories whose records carry no RepoLanguage and look up their
primary language on GitHub. Requires GITHUB_TOKEN; set GITHUB_DOMAIN for GitHub
Enterprise.

Use --enrich-languages on the other commands to apply the lookup before the
statistics are computed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.GitHub.EnrichLanguages = false

			corpora, err := loadCorpora(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			missing := make(map[string]struct{})
			for _, c := range corpora {
				for _, r := range c.Records {
					if r.RepoLanguage == nil && r.RepoName != "" {
						missing[r.RepoName] = struct{}{}
					}
				}
			}
			repositories := make([]string, 0, len(missing))
			for repo := range missing {
				repositories = append(repositories, repo)
			}
			sort.Strings(repositories)

			if len(repositories) == 0 {
				logging.Info("every record already has a repository language")
			}

			client, err := github.NewClient(cmd.Context(), cfg.GitHub)
			if err != nil {
				return fmt.Errorf("failed to initialize github client: %w", err)
			}

			results := resolveLanguages(cmd.Context(), client, repositories)

			out := cmd.OutOrStdout()
			if ok, err := writeStructured(out, cfg.Format, results); ok {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REPOSITORY\tLANGUAGE")
			for _, r := range results {
				lang := r.Language
				if r.Error != "" {
					lang = "error: " + r.Error
				} else if lang == "" {
					lang = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\n", r.Repository, lang)
			}
			return tw.Flush()
		},
	}
}

func resolveLanguages(ctx context.Context, resolver github.LanguageResolver, repositories []string) []repositoryLanguage {
	results := make([]repositoryLanguage, 0, len(repositories))
	for _, repo := range repositories {
		lang, err := resolver.RepositoryLanguage(ctx, repo)
		entry := repositoryLanguage{Repository: repo, Language: lang}
		if err != nil {
			logging.Warn("failed to resolve repository language", "repository", repo, "error", err)
			entry.Error = err.Error()
		}
		results = append(results, entry)
	}
	return results
}
