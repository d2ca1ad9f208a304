package hints

import (
	"fmt"
	"strings"

	"github.com/basil51/ai-school-sub003/internal/store"
)

const hintSystemPrompt = `You are an expert educational tutor. Give progressive hints that guide a student toward the answer without giving it away.`

var levelGuidance = map[Level]string{
	LevelSubtle:   "Subtle: a gentle nudge that reveals very little.",
	LevelModerate: "Moderate: more specific guidance about the method.",
	LevelStrong:   "Strong: almost gives away the approach, but never the final answer.",
}

func writeQuestion(b *strings.Builder, q store.Question) {
	fmt.Fprintf(b, "Question: %s\n", q.Prompt)
	if len(q.Options) > 0 {
		b.WriteString("Options:\n")
		for _, o := range q.Options {
			fmt.Fprintf(b, "- %s\n", o)
		}
	}
	if q.Topic != "" {
		fmt.Fprintf(b, "Topic: %s\n", q.Topic)
	}
	if q.Concept != "" {
		fmt.Fprintf(b, "Concept: %s\n", q.Concept)
	}
	fmt.Fprintf(b, "Difficulty: %s\n", DifficultyLabel(q.Difficulty))
	fmt.Fprintf(b, "Correct answer (do not reveal): %s\n", q.CorrectAnswer)
}

func buildHintUserMessage(q store.Question, hintNumber int) string {
	var b strings.Builder
	writeQuestion(&b, q)

	level := LevelFor(hintNumber)
	fmt.Fprintf(&b, "\nThis is hint %d. Level: %s\n", hintNumber, levelGuidance[level])
	b.WriteString("Keep it to at most 3 sentences and plain ASCII text.")
	return b.String()
}

const explanationSystemPrompt = `You are an expert educational tutor. Explain the solution to an assessment question clearly and step by step.`

func buildExplanationUserMessage(q store.Question, answer string, correct bool) string {
	var b strings.Builder
	writeQuestion(&b, q)

	fmt.Fprintf(&b, "\nStudent answer: %s\n", answer)
	if correct {
		b.WriteString("The student answered correctly. Reinforce why the answer is right.\n")
	} else {
		b.WriteString("The student answered incorrectly. Explain the likely mistake, then the correct method.\n")
	}
	b.WriteString("List 2-5 short steps and 1-3 key concepts.")
	return b.String()
}
