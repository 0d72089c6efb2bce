// Package cmd provides the command-line interface for convostat.
package cmd

import (
	"github.com/danielolaszy/convostat/internal/logging"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile      string
	logLevel        string
	format          string
	corpora         []string
	labels          []string
	outlierHours    float64
	enrichLanguages bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "convostat",
		Short: "Convostat summarizes developer conversations with AI assistants",
		Long: `Convostat reads corpora of pull requests, issues and discussions that link
to shared AI-assistant conversations, normalizes them into one record model and
reports statistics about them:

- average prompt count per declared state (open/closed), across up to 3 corpora
- the share of closed artifacts per repository language
- the time between creation and last update, with outliers removed
- a heuristic open/closed/uncertain state inferred from the final answer

Corpora are given with --corpus kind=path (repeatable) or in a run config file.

Example:
  convostat prompts --corpus pr=pr.json --corpus issue=issues.json \
    --corpus discussion=discussions.json \
    --label "Pull Request" --label Issue --label Discussions`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("log-level") {
				logging.SetupLogger(cmd.ErrOrStderr(), logging.LogLevel(opts.logLevel))
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Run config file (YAML, JSON or TOML)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVarP(&opts.format, "format", "f", "text", "Output format (text, json, yaml)")
	flags.StringArrayVar(&opts.corpora, "corpus", nil, "Corpus as kind=path, kind one of pr, issue, discussion (repeatable)")
	flags.StringArrayVarP(&opts.labels, "label", "l", nil, "Series label for the corpus at the same position (repeatable)")
	flags.Float64Var(&opts.outlierHours, "outlier-hours", 150, "Discard update latencies at or above this many hours")
	flags.BoolVar(&opts.enrichLanguages, "enrich-languages", false, "Look up missing repository languages on GitHub (needs GITHUB_TOKEN)")

	rootCmd.AddCommand(
		newPromptsCmd(opts),
		newPrecisionCmd(opts),
		newLatencyCmd(opts),
		newClassifyCmd(opts),
		newReportCmd(opts),
		newLanguagesCmd(opts),
	)

	return rootCmd
}

// Execute builds the command tree and runs it.
func Execute() error {
	return newRootCmd().Execute()
}
