package hints

import (
	"fmt"

	"github.com/basil51/ai-school-sub003/internal/store"
)

func fallbackHint(q store.Question, hintNumber int) (kind, text string) {
	switch LevelFor(hintNumber) {
	case LevelSubtle:
		return "approach", "Read the question carefully and identify what is being asked."
	case LevelModerate:
		if q.Concept != "" {
			return "concept", fmt.Sprintf("Think about the key ideas of %s.", q.Concept)
		}
		return "concept", "Think about the key concepts related to this topic."
	default:
		if len(q.Options) > 1 {
			return "approach", "Rule out the options that clearly do not fit, then compare the ones left."
		}
		return "approach", "Consider the most common approach to solving this type of problem."
	}
}

var defaultSteps = []string{
	"Read and understand the question",
	"Identify the key concepts involved",
	"Apply the appropriate method or formula",
	"Check your answer for reasonableness",
}

func fallbackExplanation(q store.Question, answer string, correct bool) (text string, steps, concepts []string) {
	text = q.Explanation
	if text == "" {
		text = fmt.Sprintf("The correct answer is %s.", q.CorrectAnswer)
		if !correct && answer != "" {
			text = fmt.Sprintf("You answered %s. The correct answer is %s.", answer, q.CorrectAnswer)
		}
	}
	steps = append([]string(nil), defaultSteps...)
	concepts = []string{}
	if q.Concept != "" {
		concepts = append(concepts, q.Concept)
	}
	if q.Topic != "" && q.Topic != q.Concept {
		concepts = append(concepts, q.Topic)
	}
	return text, steps, concepts
}
