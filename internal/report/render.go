package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/danielolaszy/convostat/internal/aggregate"
	"github.com/danielolaszy/convostat/pkg/models"
	"gopkg.in/yaml.v3"
)

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteYAML writes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// WritePrompts writes the prompt comparison as a table with one row per
// category and one column per series.
func WritePrompts(w io.Writer, cmp PromptComparison) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "STATE")
	for _, s := range cmp.Series {
		fmt.Fprintf(tw, "\t%s", s)
	}
	fmt.Fprintln(tw)
	for _, category := range cmp.Categories {
		fmt.Fprint(tw, category)
		for _, v := range cmp.Values[category] {
			fmt.Fprintf(tw, "\t%d", v)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// WritePrecision writes a precision table.
func WritePrecision(w io.Writer, table []aggregate.LanguagePrecision) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LANGUAGE\tCLOSED\tTOTAL\tPRECISION")
	for _, p := range table {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\n", p.Language, p.Closed, p.Total, p.Precision)
	}
	return tw.Flush()
}

// WriteLatency writes the latency statistics in hours.
func WriteLatency(w io.Writer, l aggregate.LatencySummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "samples\t%d\n", len(l.Samples))
	fmt.Fprintf(tw, "discarded (>= %.0fh)\t%d\n", l.Threshold, l.Discarded)
	fmt.Fprintf(tw, "skipped (no timestamps)\t%d\n", l.Skipped)
	fmt.Fprintf(tw, "mean\t%.2f hours\n", l.Mean)
	fmt.Fprintf(tw, "median\t%.2f hours\n", l.Median)
	fmt.Fprintf(tw, "stddev\t%.2f hours\n", l.StdDev)
	fmt.Fprintf(tw, "q1 / q3\t%.2f / %.2f hours\n", l.Q1, l.Q3)
	fmt.Fprintf(tw, "min / max\t%.2f / %.2f hours\n", l.Min, l.Max)
	return tw.Flush()
}

// WriteInferred writes the declared versus inferred state counts.
func WriteInferred(w io.Writer, inferred map[models.State]map[models.Classification]int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DECLARED\tINFERRED OPEN\tINFERRED CLOSED\tUNCERTAIN")
	for _, state := range Categories {
		counts := inferred[state]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", state,
			counts[models.InferredOpen],
			counts[models.InferredClosed],
			counts[models.InferredUncertain])
	}
	return tw.Flush()
}

// WriteText writes the whole report as plain text.
func WriteText(w io.Writer, r Report) error {
	fmt.Fprintln(w, "Average prompt count by state")
	if err := WritePrompts(w, r.Prompts); err != nil {
		return err
	}

	for _, s := range r.Corpora {
		fmt.Fprintf(w, "\n== %s (%d records, %d skipped)\n", s.Label, s.Records, s.Skipped)

		fmt.Fprintln(w, "\nPrecision by repository language")
		if err := WritePrecision(w, s.Precision); err != nil {
			return err
		}

		fmt.Fprintln(w, "\nTime to update")
		if err := WriteLatency(w, s.Latency); err != nil {
			return err
		}

		if s.Inferred != nil {
			fmt.Fprintln(w, "\nInferred state from final answers")
			if err := WriteInferred(w, s.Inferred); err != nil {
				return err
			}
		}
	}
	return nil
}
