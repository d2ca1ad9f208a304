package insights

import (
	"fmt"
	"sort"

	"github.com/basil51/ai-school-sub003/internal/curve"
	"github.com/basil51/ai-school-sub003/internal/events"
)

// Recommendation types.
const (
	TypeRemediation = "remediation"
	TypePerformance = "performance"
	TypePractice    = "practice"
	TypePlateau     = "plateau"
	TypeDifficulty  = "difficulty"
)

// Severities.
const (
	SeverityHigh    = "high"
	SeverityWarning = "warning"
	SeverityMedium  = "medium"
	SeverityInfo    = "info"
)

const (
	// RemediationAttempts is the exclusive attempt count above which a
	// failed lesson needs remediation.
	RemediationAttempts = 1

	// RecentSpikePoints is how many of the newest curve points are checked
	// for a difficulty spike.
	RecentSpikePoints = 3
)

// Recommendation is an intervention suggestion. It is never persisted.
type Recommendation struct {
	Type           string   `json:"type"`
	Message        string   `json:"message"`
	Severity       string   `json:"severity"`
	RelatedLessons []string `json:"relatedLessons,omitempty"`
	RelatedTopics  []string `json:"relatedTopics,omitempty"`
}

// Input is everything the rules look at. Curve and LessonTitles may be
// nil. An empty Trend is computed from Attempts with DetectTrend.
type Input struct {
	Progress     []events.ProgressEvent
	Attempts     []events.AttemptEvent
	Curve        *events.LearningCurve
	Trend        Trend
	LessonTitles map[string]string
}

type rule func(Input) *Recommendation

// rules are all evaluated; each contributes at most one recommendation.
var rules = []rule{
	remediationRule,
	performanceRule,
	practiceRule,
	plateauRule,
	difficultyRule,
}

// Recommend evaluates every rule against in.
func Recommend(in Input) []Recommendation {
	if in.Trend == "" {
		in.Trend = DetectTrend(in.Attempts)
	}
	out := []Recommendation{}
	for _, r := range rules {
		if rec := r(in); rec != nil {
			out = append(out, *rec)
		}
	}
	return out
}

// StrugglingLessons returns the lessons failed after more than one attempt,
// named by title where known.
func StrugglingLessons(progress []events.ProgressEvent, titles map[string]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range progress {
		if p.Status != events.StatusFailed || p.Attempts <= RemediationAttempts {
			continue
		}
		name := p.LessonID
		if t, ok := titles[p.LessonID]; ok && t != "" {
			name = t
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func remediationRule(in Input) *Recommendation {
	lessons := StrugglingLessons(in.Progress, in.LessonTitles)
	if len(lessons) == 0 {
		return nil
	}
	return &Recommendation{
		Type:           TypeRemediation,
		Message:        fmt.Sprintf("Consider reviewing %d lesson(s) where you're struggling", len(lessons)),
		Severity:       SeverityHigh,
		RelatedLessons: lessons,
	}
}

func performanceRule(in Input) *Recommendation {
	if in.Trend != TrendDeclining {
		return nil
	}
	return &Recommendation{
		Type:     TypePerformance,
		Message:  "Your recent performance has declined. Consider reviewing previous lessons.",
		Severity: SeverityWarning,
	}
}

func practiceRule(in Input) *Recommendation {
	weak := Classify(in.Attempts).Weaknesses
	if len(weak) == 0 {
		return nil
	}
	return &Recommendation{
		Type:          TypePractice,
		Message:       fmt.Sprintf("Extra practice is suggested in %d topic(s) with a low pass rate", len(weak)),
		Severity:      SeverityMedium,
		RelatedTopics: weak,
	}
}

func plateauRule(in Input) *Recommendation {
	c := in.Curve
	if c == nil || len(c.DataPoints) == 0 || len(c.PlateauPoints) == 0 {
		return nil
	}
	last := c.PlateauPoints[len(c.PlateauPoints)-1]
	// Only the most recent plateau-able point counts as a current plateau.
	tail := len(c.DataPoints) - 1 - curve.PlateauWindow/2
	if tail < 0 || !last.Time.Equal(c.DataPoints[tail].Time) {
		return nil
	}
	return &Recommendation{
		Type:     TypePlateau,
		Message:  "Progress has levelled off. Try a new kind of activity or a harder lesson.",
		Severity: SeverityInfo,
	}
}

func difficultyRule(in Input) *Recommendation {
	c := in.Curve
	if c == nil || len(c.DifficultySpikes) == 0 || len(c.DataPoints) == 0 {
		return nil
	}
	from := len(c.DataPoints) - RecentSpikePoints
	if from < 0 {
		from = 0
	}
	since := c.DataPoints[from].Time
	last := c.DifficultySpikes[len(c.DifficultySpikes)-1]
	if last.Time.Before(since) {
		return nil
	}
	return &Recommendation{
		Type:     TypeDifficulty,
		Message:  fmt.Sprintf("Mastery dropped sharply on recent %s material", last.Difficulty),
		Severity: SeverityWarning,
	}
}
