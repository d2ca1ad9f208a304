package mastery

import (
	"sort"

	"github.com/basil51/ai-school-sub003/internal/events"
)

const (
	// RecentAttempts is how many of the newest attempts feed RecentAverage.
	RecentAttempts = 10

	// TopTopics bounds the strongest and weakest topic lists.
	TopTopics = 3
)

// AssessmentPerformance summarizes attempt scores. ImprovementTrend is
// filled in by the caller from the trend detector.
type AssessmentPerformance struct {
	Attempts         int      `json:"attempts"`
	AverageScore     float64  `json:"averageScore"`
	RecentAverage    float64  `json:"recentAverage"`
	ImprovementTrend string   `json:"improvementTrend,omitempty"`
	StrongestTopics  []string `json:"strongestTopics"`
	WeakestTopics    []string `json:"weakestTopics"`
}

// NewestFirst returns a copy of attempts ordered from most to least recent.
// Ties keep the higher sequence first.
func NewestFirst(attempts []events.AttemptEvent) []events.AttemptEvent {
	out := make([]events.AttemptEvent, len(attempts))
	copy(out, attempts)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].At(), out[j].At()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].Sequence > out[j].Sequence
	})
	return out
}

// PerformanceOf computes the score summary over the attempts in scope.
func PerformanceOf(attempts []events.AttemptEvent, scope Scope) AssessmentPerformance {
	var inScope []events.AttemptEvent
	for _, a := range attempts {
		if includes(scope, a.StudentID) {
			inScope = append(inScope, a)
		}
	}
	perf := AssessmentPerformance{
		Attempts:        len(inScope),
		StrongestTopics: []string{},
		WeakestTopics:   []string{},
	}
	if len(inScope) == 0 {
		return perf
	}

	var all tally
	topics := newArena[tally]()
	for _, a := range inScope {
		all.addAttempt(a.Passed, a.Score)
		if a.Topic != "" {
			topics.slot(a.Topic).addAttempt(a.Passed, a.Score)
		}
	}
	perf.AverageScore = ratio(all.scoreSum, all.attempts)

	var recent tally
	for i, a := range NewestFirst(inScope) {
		if i == RecentAttempts {
			break
		}
		recent.addAttempt(a.Passed, a.Score)
	}
	perf.RecentAverage = ratio(recent.scoreSum, recent.attempts)

	type topicScore struct {
		topic string
		mean  float64
	}
	ranked := make([]topicScore, 0, topics.len())
	for _, topic := range topics.sortedKeys() {
		t := topics.get(topic)
		ranked = append(ranked, topicScore{topic, ratio(t.scoreSum, t.attempts)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].mean > ranked[j].mean })
	for i := 0; i < len(ranked) && i < TopTopics; i++ {
		perf.StrongestTopics = append(perf.StrongestTopics, ranked[i].topic)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].mean < ranked[j].mean })
	for i := 0; i < len(ranked) && i < TopTopics; i++ {
		perf.WeakestTopics = append(perf.WeakestTopics, ranked[i].topic)
	}
	return perf
}
