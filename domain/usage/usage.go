// Package usage provides the daily consumption window and data cap
// classification.
package usage

import "github.com/subwave-io/subwave/domain/plan"

// WindowSize is the fixed rolling window of daily samples kept per
// account. Recording a sample into a full window drops the oldest one.
const WindowSize = 30

// Append adds a daily sample to the window, keeping at most size entries
// (most recent last). A size of zero or less falls back to WindowSize.
// This is a PURE function: the input slice is not mutated.
func Append(window []float64, gb float64, size int) []float64 {
	if size <= 0 {
		size = WindowSize
	}
	out := make([]float64, 0, len(window)+1)
	out = append(out, window...)
	out = append(out, gb)
	if len(out) > size {
		out = out[len(out)-size:]
	}
	return out
}

// Summary aggregates a usage window.
type Summary struct {
	AverageGB float64
	MaxGB     float64
	TotalGB   float64
}

// Summarize computes the summary over a window. ok is false when the
// window is empty; callers surface "no data" rather than a zero summary.
// This is a PURE function.
func Summarize(window []float64) (Summary, bool) {
	if len(window) == 0 {
		return Summary{}, false
	}

	var s Summary
	s.MaxGB = window[0]
	for _, v := range window {
		s.TotalGB += v
		if v > s.MaxGB {
			s.MaxGB = v
		}
	}
	s.AverageGB = s.TotalGB / float64(len(window))
	return s, true
}

// Tier is the severity band of consumption against a plan's data cap.
type Tier string

const (
	TierUnlimited Tier = "unlimited"
	TierNominal   Tier = "nominal"
	TierWarning   Tier = "warning"
	TierCritical  Tier = "critical"
)

// Classification is the result of checking a record against its cap.
type Classification struct {
	Tier        Tier
	UsedPercent float64
	OverCap     bool
}

// Classify grades consumed data against the cap and flags windows whose
// total exceeds it. Exactly 80% stays nominal and exactly 95% stays a
// warning; the boundary resolves to the lower severity.
// This is a PURE function.
func Classify(dataUsedGB float64, cap plan.DataCap, window []float64) Classification {
	if cap.Unlimited {
		return Classification{Tier: TierUnlimited}
	}

	c := Classification{}
	if cap.GB > 0 {
		c.UsedPercent = dataUsedGB / cap.GB * 100
	}

	switch {
	case c.UsedPercent <= 80:
		c.Tier = TierNominal
	case c.UsedPercent <= 95:
		c.Tier = TierWarning
	default:
		c.Tier = TierCritical
	}

	var total float64
	for _, v := range window {
		total += v
	}
	c.OverCap = total > cap.GB

	return c
}
