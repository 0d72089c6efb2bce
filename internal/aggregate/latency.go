package aggregate

import (
	"math"

	"github.com/danielolaszy/convostat/internal/logging"
	"github.com/danielolaszy/convostat/pkg/models"
	"github.com/montanaflynn/stats"
)

// DefaultOutlierHours is the latency at or above which a sample is dropped.
const DefaultOutlierHours = 150.0

// LatencySummary describes the creation-to-update latency of a corpus in
// hours. Samples holds the values left after outlier filtering, in record
// order.
type LatencySummary struct {
	Samples   []float64 `json:"samples" yaml:"samples"`
	Mean      float64   `json:"mean" yaml:"mean"`
	Median    float64   `json:"median" yaml:"median"`
	StdDev    float64   `json:"stddev" yaml:"stddev"`
	Q1        float64   `json:"q1" yaml:"q1"`
	Q3        float64   `json:"q3" yaml:"q3"`
	Min       float64   `json:"min" yaml:"min"`
	Max       float64   `json:"max" yaml:"max"`
	Threshold float64   `json:"threshold_hours" yaml:"threshold_hours"`
	Discarded int       `json:"discarded_outliers" yaml:"discarded_outliers"`
	Skipped   int       `json:"skipped_records" yaml:"skipped_records"`
}

// ElapsedHours returns UpdatedAt minus CreatedAt in hours. A record missing
// either timestamp yields a *models.TimestampError.
func ElapsedHours(r models.Record) (float64, error) {
	if r.CreatedAt.IsZero() {
		return 0, &models.TimestampError{ID: r.ID, Field: "CreatedAt"}
	}
	if r.UpdatedAt.IsZero() {
		return 0, &models.TimestampError{ID: r.ID, Field: "UpdatedAt"}
	}
	return r.UpdatedAt.Sub(r.CreatedAt).Seconds() / 3600, nil
}

// Latency collects ElapsedHours for every record, drops samples at or above
// thresholdHours and describes what is left. Records without usable
// timestamps are skipped. A non-positive threshold selects
// DefaultOutlierHours.
func Latency(records []models.Record, thresholdHours float64) LatencySummary {
	if thresholdHours <= 0 {
		thresholdHours = DefaultOutlierHours
	}

	summary := LatencySummary{Threshold: thresholdHours, Samples: []float64{}}
	for _, r := range records {
		hours, err := ElapsedHours(r)
		if err != nil {
			summary.Skipped++
			continue
		}
		if hours >= thresholdHours {
			summary.Discarded++
			continue
		}
		summary.Samples = append(summary.Samples, hours)
	}

	if len(summary.Samples) == 0 {
		logging.Debug("empty latency sample set",
			"skipped", summary.Skipped,
			"discarded", summary.Discarded,
			"warning", models.ErrEmptyGroup)
		return summary
	}

	summary.Mean, summary.Median, summary.StdDev = Describe(summary.Samples)
	summary.Min = finite(stats.Min(summary.Samples))
	summary.Max = finite(stats.Max(summary.Samples))
	summary.Q1, summary.Q3 = quartiles(summary.Samples)
	return summary
}

// Describe returns the mean, median and population standard deviation of
// samples. All three are 0 for an empty slice.
func Describe(samples []float64) (mean, median, stddev float64) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	mean = finite(stats.Mean(samples))
	median = finite(stats.Median(samples))
	stddev = finite(stats.StandardDeviationPopulation(samples))
	return mean, median, stddev
}

func quartiles(samples []float64) (float64, float64) {
	if len(samples) < 2 {
		return samples[0], samples[0]
	}
	q, err := stats.Quartile(samples)
	if err != nil {
		return 0, 0
	}
	return finite(q.Q1, nil), finite(q.Q3, nil)
}

// finite turns the (value, error) pairs returned by the stats package into a
// plain value, mapping errors and NaN to 0.
func finite(v float64, err error) float64 {
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
