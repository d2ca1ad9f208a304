package session

import (
	"math"

	"github.com/basil51/ai-school-sub003/internal/store"
)

// Decision cutoffs, checked in order after every answer.
const (
	CompleteMinQuestions    = 10
	CompleteAccuracy        = 0.8
	MaxQuestions            = 15
	RemediationAccuracy     = 0.3
	RemediationMinQuestions = 5
)

// Difficulty adaptation.
const (
	StartDifficulty = 0.5
	DifficultyStep  = 0.1
	MinDifficulty   = 0.1
	MaxDifficulty   = 1.0
	RaiseAccuracy   = 0.7 // correct answer with accuracy above this raises difficulty
	LowerAccuracy   = 0.5 // wrong answer with accuracy below this lowers it
)

const (
	StartConfidence  = 0.5
	ConfidenceWindow = 5
	MinConfidence    = 0.1

	// PassMark is the accuracy at which a completed session counts as a
	// passed assessment attempt.
	PassMark = 0.7
)

// Decide picks the next action from the running totals.
func Decide(total int, accuracy float64) NextAction {
	switch {
	case total >= CompleteMinQuestions && accuracy >= CompleteAccuracy:
		return NextComplete
	case total >= MaxQuestions:
		return NextComplete
	case accuracy < RemediationAccuracy && total >= RemediationMinQuestions:
		return NextRemediation
	default:
		return NextContinue
	}
}

// AdjustDifficulty moves d one step after an answer.
func AdjustDifficulty(d float64, correct bool, accuracy float64) float64 {
	switch {
	case correct && accuracy > RaiseAccuracy:
		d += DifficultyStep
	case !correct && accuracy < LowerAccuracy:
		d -= DifficultyStep
	}
	// Round away float drift from repeated steps.
	d = math.Round(d*100) / 100
	return math.Max(MinDifficulty, math.Min(MaxDifficulty, d))
}

// ConfidenceOf is the accuracy over the last ConfidenceWindow responses,
// clamped to [MinConfidence, 1].
func ConfidenceOf(responses []Response) float64 {
	if len(responses) == 0 {
		return StartConfidence
	}
	recent := responses
	if len(recent) > ConfidenceWindow {
		recent = recent[len(recent)-ConfidenceWindow:]
	}
	correct := 0
	for _, r := range recent {
		if r.Correct {
			correct++
		}
	}
	c := float64(correct) / float64(len(recent))
	return math.Max(MinConfidence, math.Min(1, c))
}

// PickQuestion returns the unasked question closest to difficulty. For
// remediation, questions on concept at or below difficulty are preferred.
// Ties go to the earlier question in bank. nil means the supply is
// exhausted.
func PickQuestion(bank []store.Question, asked map[string]bool, difficulty float64, remediation bool, concept string) *store.Question {
	if remediation && concept != "" {
		if q := closest(bank, asked, difficulty, func(q store.Question) bool {
			return q.Concept == concept && q.Difficulty <= difficulty
		}); q != nil {
			return q
		}
	}
	return closest(bank, asked, difficulty, func(store.Question) bool { return true })
}

func closest(bank []store.Question, asked map[string]bool, difficulty float64, keep func(store.Question) bool) *store.Question {
	var best *store.Question
	bestDist := math.Inf(1)
	for i := range bank {
		q := &bank[i]
		if asked[q.ID] || !keep(*q) {
			continue
		}
		if d := math.Abs(q.Difficulty - difficulty); d < bestDist {
			best, bestDist = q, d
		}
	}
	return best
}
