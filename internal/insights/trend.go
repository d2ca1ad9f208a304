package insights

import (
	"sort"

	"github.com/basil51/ai-school-sub003/internal/events"
)

// Trend is the direction of recent assessment scores.
type Trend string

const (
	TrendImproving        Trend = "improving"
	TrendDeclining        Trend = "declining"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

const (
	// TrendWindow is how many of the newest attempts the trend looks at.
	TrendWindow = 10

	// TrendMargin is the exclusive score difference between the newer and
	// older half needed to call a trend.
	TrendMargin = 0.1

	// MinTrendAttempts is the fewest attempts a trend is computed from.
	MinTrendAttempts = 2
)

// recentChronological returns up to TrendWindow of the newest attempts,
// oldest first.
func recentChronological(attempts []events.AttemptEvent) []events.AttemptEvent {
	sorted := make([]events.AttemptEvent, len(attempts))
	copy(sorted, attempts)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].At(), sorted[j].At()
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return sorted[i].Sequence < sorted[j].Sequence
	})
	if len(sorted) > TrendWindow {
		sorted = sorted[len(sorted)-TrendWindow:]
	}
	return sorted
}

// shift is the newer half's mean score minus the older half's. The newer
// half takes the extra attempt when the count is odd.
func shift(attempts []events.AttemptEvent) (float64, bool) {
	recent := recentChronological(attempts)
	if len(recent) < MinTrendAttempts {
		return 0, false
	}
	mid := len(recent) / 2
	return meanScore(recent[mid:]) - meanScore(recent[:mid]), true
}

func meanScore(attempts []events.AttemptEvent) float64 {
	if len(attempts) == 0 {
		return 0
	}
	var sum float64
	for _, a := range attempts {
		sum += a.Score
	}
	return sum / float64(len(attempts))
}

func classifyShift(d float64) Trend {
	switch {
	case d > TrendMargin:
		return TrendImproving
	case d < -TrendMargin:
		return TrendDeclining
	}
	return TrendStable
}

// DetectTrend compares the newer and older halves of one student's most
// recent attempts.
func DetectTrend(attempts []events.AttemptEvent) Trend {
	d, ok := shift(attempts)
	if !ok {
		return TrendInsufficientData
	}
	return classifyShift(d)
}

// CohortTrend averages the per-student score shift across students. A
// student with fewer than MinTrendAttempts attempts has no shift and is
// left out of the average rather than counted as 0; with no qualifying
// student the trend is insufficient_data.
func CohortTrend(attempts []events.AttemptEvent) Trend {
	byStudent := make(map[string][]events.AttemptEvent)
	var order []string
	for _, a := range attempts {
		if _, ok := byStudent[a.StudentID]; !ok {
			order = append(order, a.StudentID)
		}
		byStudent[a.StudentID] = append(byStudent[a.StudentID], a)
	}

	var sum float64
	n := 0
	for _, id := range order {
		if d, ok := shift(byStudent[id]); ok {
			sum += d
			n++
		}
	}
	if n == 0 {
		return TrendInsufficientData
	}
	return classifyShift(sum / float64(n))
}
