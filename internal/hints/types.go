// Package hints produces progressive hints and answer explanations for
// adaptive-session questions, memoized in the content cache.
package hints

import (
	"github.com/basil51/ai-school-sub003/internal/events"
)

// MaxLevels is the number of distinct hint levels. Later hints repeat the
// strongest level.
const MaxLevels = 3

// Level is how much a hint gives away.
type Level string

const (
	LevelSubtle   Level = "subtle"
	LevelModerate Level = "moderate"
	LevelStrong   Level = "strong"
)

// LevelFor maps a 1-based hint number to its level.
func LevelFor(hintNumber int) Level {
	switch {
	case hintNumber <= 1:
		return LevelSubtle
	case hintNumber == 2:
		return LevelModerate
	default:
		return LevelStrong
	}
}

// Source tells where returned text came from.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceCache     Source = "cache"
	SourceFallback  Source = "fallback"
)

// Hint is one hint shown for a question.
type Hint struct {
	QuestionID string `json:"questionId"`
	Number     int    `json:"hintNumber"`
	Level      Level  `json:"level"`
	Type       string `json:"type"`
	Text       string `json:"text"`
	Source     Source `json:"source"`
}

// Explanation explains the correct answer to a question.
type Explanation struct {
	QuestionID  string   `json:"questionId"`
	Answer      string   `json:"answer"`
	Correct     bool     `json:"correct"`
	Text        string   `json:"text"`
	Steps       []string `json:"steps"`
	KeyConcepts []string `json:"keyConcepts"`
	Source      Source   `json:"source"`
}

// DifficultyLabel buckets a [0.1, 1] question difficulty.
func DifficultyLabel(d float64) events.Difficulty {
	switch {
	case d < 0.4:
		return events.DifficultyBeginner
	case d < 0.7:
		return events.DifficultyIntermediate
	default:
		return events.DifficultyAdvanced
	}
}
