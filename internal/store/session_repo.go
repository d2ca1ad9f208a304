package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// sessionRepo implements SessionRepo.
type sessionRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

var sessionColumns = []string{
	"session_id", "assessment_id", "student_id", "state", "data", "archived", "updated_at",
}

type sessionRow struct {
	SessionID    string    `sql:"session_id"`
	AssessmentID string    `sql:"assessment_id"`
	StudentID    string    `sql:"student_id"`
	State        string    `sql:"state"`
	Data         []byte    `sql:"data"`
	Archived     bool      `sql:"archived"`
	UpdatedAt    time.Time `sql:"updated_at"`
}

func (r sessionRow) record() SessionRecord {
	return SessionRecord{
		ID:           r.SessionID,
		AssessmentID: r.AssessmentID,
		StudentID:    r.StudentID,
		State:        r.State,
		Data:         r.Data,
		Archived:     r.Archived,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r *sessionRepo) Save(ctx context.Context, rec SessionRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	ins := sqlite.Insert(tableSessions).
		Columns(sessionColumns...).
		Values(rec.ID, rec.AssessmentID, rec.StudentID, rec.State, rec.Data,
			rec.Archived, rec.UpdatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("session_id"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := execute(ctx, r.drv, ins); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Load(ctx context.Context, id string) (*SessionRecord, error) {
	sel := sqlite.Select(sessionColumns...).
		From(sqlite.Table(tableSessions)).
		Where(entsql.EQ("session_id", id)).
		Limit(1)
	var rows []sessionRow
	if err := selectAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	rec := rows[0].record()
	return &rec, nil
}

func (r *sessionRepo) ListActive(ctx context.Context, since time.Time) ([]SessionRecord, error) {
	return r.list(ctx, entsql.GTE("updated_at", since.UTC()))
}

func (r *sessionRepo) ListIdle(ctx context.Context, cutoff time.Time) ([]SessionRecord, error) {
	return r.list(ctx, entsql.LT("updated_at", cutoff.UTC()))
}

func (r *sessionRepo) list(ctx context.Context, p *entsql.Predicate) ([]SessionRecord, error) {
	sel := sqlite.Select(sessionColumns...).
		From(sqlite.Table(tableSessions)).
		Where(entsql.And(entsql.EQ("archived", false), p)).
		OrderBy(entsql.Desc("updated_at"))
	var rows []sessionRow
	if err := selectAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	out := make([]SessionRecord, len(rows))
	for i, row := range rows {
		out[i] = row.record()
	}
	return out, nil
}

func (r *sessionRepo) Archive(ctx context.Context, id string) error {
	upd := sqlite.Update(tableSessions).
		Set("archived", true).
		Where(entsql.EQ("session_id", id))
	if _, err := execute(ctx, r.drv, upd); err != nil {
		return fmt.Errorf("archive session: %w", err)
	}
	return nil
}

func (r *sessionRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	ins := sqlite.Insert(tableSessionLog).
		Columns("sequence", "timestamp", "session_id", "action", "student_id",
			"assessment_id", "questions_served", "correct_answers", "duration_secs").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.Action, data.StudentID,
			data.AssessmentID, data.QuestionsServed, data.CorrectAnswers, data.DurationSecs)
	if _, err := execute(ctx, r.drv, ins); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *sessionRepo) AppendHint(ctx context.Context, data HintEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	ins := sqlite.Insert(tableHints).
		Columns("sequence", "timestamp", "session_id", "question_id", "hint_number", "hint_text").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.QuestionID, data.HintNumber, data.HintText)
	if _, err := execute(ctx, r.drv, ins); err != nil {
		return fmt.Errorf("save hint event: %w", err)
	}
	return nil
}
