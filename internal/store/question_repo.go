package store

import (
	"context"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// questionRepo implements QuestionRepo.
type questionRepo struct {
	drv *entsql.Driver
}

var questionColumns = []string{
	"question_id", "assessment_id", "lesson_id", "topic", "concept",
	"prompt", "options", "correct_answer", "difficulty", "explanation",
}

type questionRow struct {
	QuestionID    string  `sql:"question_id"`
	AssessmentID  string  `sql:"assessment_id"`
	LessonID      string  `sql:"lesson_id"`
	Topic         string  `sql:"topic"`
	Concept       string  `sql:"concept"`
	Prompt        string  `sql:"prompt"`
	Options       []byte  `sql:"options"`
	CorrectAnswer string  `sql:"correct_answer"`
	Difficulty    float64 `sql:"difficulty"`
	Explanation   string  `sql:"explanation"`
}

func (r *questionRepo) UpsertQuestion(ctx context.Context, q Question) error {
	var opts []byte
	if len(q.Options) > 0 {
		b, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options: %w", err)
		}
		opts = b
	}
	if q.Difficulty == 0 {
		q.Difficulty = 0.5
	}
	ins := sqlite.Insert(tableQuestions).
		Columns(questionColumns...).
		Values(q.ID, q.AssessmentID, q.LessonID, q.Topic, q.Concept, q.Prompt,
			opts, q.CorrectAnswer, q.Difficulty, q.Explanation).
		OnConflict(
			entsql.ConflictColumns("question_id"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := execute(ctx, r.drv, ins); err != nil {
		return fmt.Errorf("upsert question: %w", err)
	}
	return nil
}

func (r *questionRepo) Questions(ctx context.Context, assessmentID string) ([]Question, error) {
	sel := sqlite.Select(questionColumns...).
		From(sqlite.Table(tableQuestions)).
		Where(entsql.EQ("assessment_id", assessmentID)).
		OrderBy("difficulty", "question_id")
	var rows []questionRow
	if err := selectAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	out := make([]Question, 0, len(rows))
	for _, row := range rows {
		q := Question{
			ID:            row.QuestionID,
			AssessmentID:  row.AssessmentID,
			LessonID:      row.LessonID,
			Topic:         row.Topic,
			Concept:       row.Concept,
			Prompt:        row.Prompt,
			CorrectAnswer: row.CorrectAnswer,
			Difficulty:    row.Difficulty,
			Explanation:   row.Explanation,
		}
		if len(row.Options) > 0 {
			if err := json.Unmarshal(row.Options, &q.Options); err != nil {
				return nil, fmt.Errorf("unmarshal options of %s: %w", row.QuestionID, err)
			}
		}
		out = append(out, q)
	}
	return out, nil
}
