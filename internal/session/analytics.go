package session

import (
	"math"
	"time"
)

// Error pattern cutoffs, in seconds and attempts.
const (
	ConceptualErrorSeconds = 120
	ProceduralAttempts     = 2
	RushedErrorSeconds     = 30
)

// Analytics summarizes a session's responses.
type Analytics struct {
	Questions            int           `json:"questions"`
	Correct              int           `json:"correct"`
	Accuracy             float64       `json:"accuracy"`
	LearningVelocity     float64       `json:"learningVelocity"`
	RetentionRate        float64       `json:"retentionRate"`
	EngagementScore      float64       `json:"engagementScore"`
	ConfidenceLevel      float64       `json:"confidenceLevel"`
	DifficultyAdjustment float64       `json:"difficultyAdjustment"`
	MasteryProgression   float64       `json:"masteryProgression"`
	TimeEfficiency       float64       `json:"timeEfficiency"`
	ErrorPatterns        ErrorPatterns `json:"errorPatterns"`
	Time                 TimeStats     `json:"time"`
	Hints                HintStats     `json:"hints"`
}

// ErrorPatterns classifies incorrect responses. One response may count
// in several categories.
type ErrorPatterns struct {
	Total          int `json:"total"`
	Conceptual     int `json:"conceptual"`
	Procedural     int `json:"procedural"`
	TimeManagement int `json:"timeManagement"`
}

type TimeStats struct {
	Total   int     `json:"total"`
	Average float64 `json:"average"`
	Fastest int     `json:"fastest"`
	Slowest int     `json:"slowest"`
}

type HintStats struct {
	Total       int     `json:"total"`
	PerQuestion float64 `json:"perQuestion"`
}

// Analyze computes analytics from the session's responses.
func Analyze(s *Session) Analytics {
	a := Analytics{
		Questions:       len(s.Responses),
		Correct:         s.Correct(),
		Accuracy:        s.Accuracy(),
		ConfidenceLevel: s.Confidence,
	}
	a.Time = timeStats(s.Responses)
	if a.Time.Average > 0 {
		a.TimeEfficiency = 60 / a.Time.Average
		a.LearningVelocity = a.Accuracy * a.TimeEfficiency
	}
	a.RetentionRate = a.Accuracy
	a.EngagementScore = math.Min(1, float64(len(s.Responses))/10)
	a.DifficultyAdjustment = math.Round((s.Difficulty-StartDifficulty)*100) / 100
	a.MasteryProgression = a.Accuracy * s.Difficulty

	for _, r := range s.Responses {
		a.Hints.Total += r.HintsUsed
		if r.Correct {
			continue
		}
		a.ErrorPatterns.Total++
		if r.TimeSpent > ConceptualErrorSeconds {
			a.ErrorPatterns.Conceptual++
		}
		if r.Attempts > ProceduralAttempts {
			a.ErrorPatterns.Procedural++
		}
		if r.TimeSpent < RushedErrorSeconds {
			a.ErrorPatterns.TimeManagement++
		}
	}
	if len(s.Responses) > 0 {
		a.Hints.PerQuestion = float64(a.Hints.Total) / float64(len(s.Responses))
	}
	return a
}

func timeStats(responses []Response) TimeStats {
	var ts TimeStats
	for i, r := range responses {
		ts.Total += r.TimeSpent
		if i == 0 || r.TimeSpent < ts.Fastest {
			ts.Fastest = r.TimeSpent
		}
		if r.TimeSpent > ts.Slowest {
			ts.Slowest = r.TimeSpent
		}
	}
	if len(responses) > 0 {
		ts.Average = float64(ts.Total) / float64(len(responses))
	}
	return ts
}

// Gap and recommendation labels.
const (
	GapConceptual     = "CONCEPTUAL_UNDERSTANDING"
	GapTimeManagement = "TIME_MANAGEMENT"

	RecStudyMethod        = "STUDY_METHOD"
	RecReviewSchedule     = "REVIEW_SCHEDULE"
	RecConfidenceBuilding = "CONFIDENCE_BUILDING"

	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
)

// LearningGap is a weakness identified at completion.
type LearningGap struct {
	Type        string   `json:"type"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

// Recommendation is a study suggestion produced at completion.
type Recommendation struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Gaps derives learning gaps from analytics.
func Gaps(a Analytics) []LearningGap {
	gaps := []LearningGap{}
	if a.RetentionRate < 0.6 {
		severity := PriorityMedium
		if a.RetentionRate < 0.4 {
			severity = PriorityHigh
		}
		gaps = append(gaps, LearningGap{
			Type:        GapConceptual,
			Severity:    severity,
			Description: "Difficulty with conceptual understanding in this assessment.",
			Actions: []string{
				"Review fundamental concepts",
				"Provide additional practice problems",
				"Use visual learning aids",
				"Schedule a one-on-one tutoring session",
			},
		})
	}
	if a.TimeEfficiency < 0.5 {
		gaps = append(gaps, LearningGap{
			Type:        GapTimeManagement,
			Severity:    PriorityMedium,
			Description: "Questions take longer than expected to complete.",
			Actions: []string{
				"Practice time management techniques",
				"Break complex problems into smaller steps",
				"Use timers during practice sessions",
			},
		})
	}
	return gaps
}

// Recommend derives completion recommendations from analytics.
func Recommend(a Analytics) []Recommendation {
	recs := []Recommendation{}
	if a.LearningVelocity < 0.5 {
		recs = append(recs, Recommendation{
			Type:        RecStudyMethod,
			Title:       "Improve learning velocity",
			Description: "Focus on understanding concepts more deeply before moving to practice.",
			Priority:    PriorityHigh,
		})
	}
	if a.RetentionRate < 0.7 {
		recs = append(recs, Recommendation{
			Type:        RecReviewSchedule,
			Title:       "Increase review frequency",
			Description: "Schedule regular review sessions to improve retention.",
			Priority:    PriorityMedium,
		})
	}
	if a.ConfidenceLevel < 0.6 {
		recs = append(recs, Recommendation{
			Type:        RecConfidenceBuilding,
			Title:       "Build confidence",
			Description: "Start with easier problems and gradually increase difficulty.",
			Priority:    PriorityMedium,
		})
	}
	return recs
}

// Completion is the cached result of completing a session.
type Completion struct {
	SessionID       string           `json:"sessionId"`
	AttemptID       string           `json:"attemptId"`
	Score           float64          `json:"score"`
	Passed          bool             `json:"passed"`
	Exhausted       bool             `json:"exhausted,omitempty"`
	Analytics       Analytics        `json:"analytics"`
	Gaps            []LearningGap    `json:"learningGaps"`
	Recommendations []Recommendation `json:"recommendations"`
	CompletedAt     time.Time        `json:"completedAt"`
}

func buildCompletion(s *Session, attemptID string, exhausted bool, now time.Time) *Completion {
	a := Analyze(s)
	return &Completion{
		SessionID:       s.ID,
		AttemptID:       attemptID,
		Score:           a.Accuracy,
		Passed:          a.Accuracy >= PassMark,
		Exhausted:       exhausted,
		Analytics:       a,
		Gaps:            Gaps(a),
		Recommendations: Recommend(a),
		CompletedAt:     now,
	}
}
