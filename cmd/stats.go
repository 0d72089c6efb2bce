package cmd

import (
	"fmt"
	"io"

	"github.com/danielolaszy/convostat/internal/aggregate"
	"github.com/danielolaszy/convostat/internal/classify"
	"github.com/danielolaszy/convostat/internal/logging"
	"github.com/danielolaszy/convostat/internal/report"
	"github.com/danielolaszy/convostat/pkg/models"
	"github.com/spf13/cobra"
)

func newPromptsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "Compare average prompt counts of open and closed artifacts",
		Long: `Compare the average number of prompts per shared conversation for open and
closed artifacts across up to three corpora.

Averages are rounded half to even; a state without any prompt counts averages to 0.

Example:
  convostat prompts --corpus pr=pr.json --corpus issue=issues.json -l "Pull Request" -l Issue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, corpora, err := opts.prepare(cmd)
			if err != nil {
				return err
			}

			summaries := make([]report.CorpusSummary, 0, len(corpora))
			for _, c := range corpora {
				summaries = append(summaries, report.CorpusSummary{
					Label:          c.Name(),
					Path:           c.Source.Path,
					Records:        len(c.Records),
					Skipped:        len(c.Skipped),
					PromptAverages: aggregate.AveragesByKind(c.Records),
				})
			}
			cmp := report.ComparePrompts(summaries)

			logging.Info("computed prompt averages", "series", cmp.Series)

			out := cmd.OutOrStdout()
			if ok, err := writeStructured(out, cfg.Format, cmp); ok {
				return err
			}
			return report.WritePrompts(out, cmp)
		},
	}
}

type labelledPrecision struct {
	Label     string                        `json:"label" yaml:"label"`
	Precision []aggregate.LanguagePrecision `json:"precision" yaml:"precision"`
}

func newPrecisionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "precision",
		Short: "Show the share of closed artifacts per repository language",
		Long: `Show, for every repository language, the number of closed artifacts divided
by the number of all artifacts in that language. Languages that only appear on
open artifacts are listed with precision 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, corpora, err := opts.prepare(cmd)
			if err != nil {
				return err
			}

			results := make([]labelledPrecision, 0, len(corpora))
			for _, c := range corpora {
				results = append(results, labelledPrecision{
					Label:     c.Name(),
					Precision: aggregate.PrecisionTable(c.Records),
				})
			}

			out := cmd.OutOrStdout()
			if ok, err := writeStructured(out, cfg.Format, results); ok {
				return err
			}
			for i, r := range results {
				writeHeading(out, i, r.Label)
				if err := report.WritePrecision(out, r.Precision); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type labelledLatency struct {
	Label   string                   `json:"label" yaml:"label"`
	Latency aggregate.LatencySummary `json:"latency" yaml:"latency"`
}

func newLatencyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "latency",
		Short: "Describe the time between creation and last update",
		Long: `Describe the number of hours between CreatedAt and UpdatedAt. Samples at or
above --outlier-hours (default 150) are discarded before the mean, median and
population standard deviation are computed. Records without both timestamps are
skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, corpora, err := opts.prepare(cmd)
			if err != nil {
				return err
			}

			results := make([]labelledLatency, 0, len(corpora))
			for _, c := range corpora {
				results = append(results, labelledLatency{
					Label:   c.Name(),
					Latency: aggregate.Latency(c.Records, cfg.OutlierHours),
				})
			}

			out := cmd.OutOrStdout()
			if ok, err := writeStructured(out, cfg.Format, results); ok {
				return err
			}
			for i, r := range results {
				writeHeading(out, i, r.Label)
				if err := report.WriteLatency(out, r.Latency); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type inferredRecord struct {
	ID       string `json:"id" yaml:"id"`
	Declared string `json:"declared" yaml:"declared"`
	Inferred string `json:"inferred" yaml:"inferred"`
	Rule     string `json:"rule,omitempty" yaml:"rule,omitempty"`
}

type labelledInference struct {
	Label     string             `json:"label" yaml:"label"`
	Agreement classify.Agreement `json:"agreement" yaml:"agreement"`
	Records   []inferredRecord   `json:"records,omitempty" yaml:"records,omitempty"`
}

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var listRecords bool

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Infer open/closed/uncertain states from the final answers",
		Long: `Infer a resolution state from the answer of the final conversation turn of
every record and compare it with the state the source declares.

Open signals (concerns, revisit, review, ...) are checked before closed signals
(thanks, resolved, implement, ...). Answers with neither are Uncertain. The
inferred state is a heuristic and never replaces the declared state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, corpora, err := opts.prepare(cmd)
			if err != nil {
				return err
			}

			classifier := classify.NewDefault()
			results := make([]labelledInference, 0, len(corpora))
			for _, c := range corpora {
				result := labelledInference{
					Label:     c.Name(),
					Agreement: classifier.Tally(c.Records),
				}
				if listRecords {
					for _, r := range c.Records {
						entry := inferredRecord{ID: r.ID, Declared: string(r.DeclaredState), Inferred: string(models.InferredUncertain)}
						if answer, ok := r.LastAnswer(); ok {
							label, rule := classifier.Explain(answer)
							entry.Inferred, entry.Rule = string(label), rule
						}
						result.Records = append(result.Records, entry)
					}
				}
				results = append(results, result)
			}

			out := cmd.OutOrStdout()
			if ok, err := writeStructured(out, cfg.Format, results); ok {
				return err
			}
			for i, r := range results {
				writeHeading(out, i, r.Label)
				if err := report.WriteInferred(out, r.Agreement); err != nil {
					return err
				}
				if len(r.Records) > 0 {
					fmt.Fprintln(out)
				}
				for _, rec := range r.Records {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", rec.ID, rec.Declared, rec.Inferred, rec.Rule)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&listRecords, "records", false, "Also list the inferred state of every record")
	return cmd
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Run every statistic over the configured corpora",
		Long: `Run every statistic over the configured corpora and print a single report.
With --format json the report is the data handed to chart renderers.

Example:
  convostat report --config run.yaml --format json > report.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, corpora, err := opts.prepare(cmd)
			if err != nil {
				return err
			}

			r := report.Build(corpora, classify.NewDefault(), cfg.OutlierHours)
			logging.Info("report complete", "corpora", len(r.Corpora))

			out := cmd.OutOrStdout()
			if ok, err := writeStructured(out, cfg.Format, r); ok {
				return err
			}
			return report.WriteText(out, r)
		},
	}
}

// writeStructured writes v when format is json or yaml and reports whether it
// did.
func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case "json":
		return true, report.WriteJSON(w, v)
	case "yaml":
		return true, report.WriteYAML(w, v)
	}
	return false, nil
}

func writeHeading(w io.Writer, i int, label string) {
	if i > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "== %s\n", label)
}
