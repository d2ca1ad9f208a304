package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/basil51/ai-school-sub003/internal/events"
)

// eventRepo implements EventRepo over the progress, attempt, enrollment
// and lesson tables.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

var progressColumns = []string{
	"sequence", "timestamp", "student_id", "lesson_id", "subject_id",
	"status", "attempts", "time_spent", "started_at", "completed_at",
}

type progressRow struct {
	Sequence    int64      `sql:"sequence"`
	Timestamp   time.Time  `sql:"timestamp"`
	StudentID   string     `sql:"student_id"`
	LessonID    string     `sql:"lesson_id"`
	SubjectID   string     `sql:"subject_id"`
	Status      string     `sql:"status"`
	Attempts    int        `sql:"attempts"`
	TimeSpent   int        `sql:"time_spent"`
	StartedAt   *time.Time `sql:"started_at"`
	CompletedAt *time.Time `sql:"completed_at"`
}

func (r progressRow) event() events.ProgressEvent {
	return events.ProgressEvent{
		Sequence:    r.Sequence,
		StudentID:   r.StudentID,
		LessonID:    r.LessonID,
		SubjectID:   r.SubjectID,
		Status:      events.ProgressStatus(r.Status),
		Attempts:    r.Attempts,
		TimeSpent:   r.TimeSpent,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
		UpdatedAt:   r.Timestamp,
	}
}

var attemptColumns = []string{
	"sequence", "attempt_id", "student_id", "assessment_id", "lesson_id",
	"subject_id", "topic", "score", "passed", "started_at", "completed_at",
}

type attemptRow struct {
	Sequence     int64      `sql:"sequence"`
	AttemptID    string     `sql:"attempt_id"`
	StudentID    string     `sql:"student_id"`
	AssessmentID string     `sql:"assessment_id"`
	LessonID     string     `sql:"lesson_id"`
	SubjectID    string     `sql:"subject_id"`
	Topic        string     `sql:"topic"`
	Score        float64    `sql:"score"`
	Passed       bool       `sql:"passed"`
	StartedAt    time.Time  `sql:"started_at"`
	CompletedAt  *time.Time `sql:"completed_at"`
}

func (r attemptRow) event() events.AttemptEvent {
	return events.AttemptEvent{
		Sequence:     r.Sequence,
		ID:           r.AttemptID,
		StudentID:    r.StudentID,
		AssessmentID: r.AssessmentID,
		LessonID:     r.LessonID,
		SubjectID:    r.SubjectID,
		Topic:        r.Topic,
		Score:        r.Score,
		Passed:       r.Passed,
		StartedAt:    r.StartedAt,
		CompletedAt:  r.CompletedAt,
	}
}

type enrollmentRow struct {
	StudentID    string    `sql:"student_id"`
	SubjectID    string    `sql:"subject_id"`
	TotalLessons int       `sql:"total_lessons"`
	EnrolledAt   time.Time `sql:"enrolled_at"`
}

type lessonRow struct {
	LessonID   string `sql:"lesson_id"`
	Title      string `sql:"title"`
	TopicID    string `sql:"topic_id"`
	TopicName  string `sql:"topic_name"`
	SubjectID  string `sql:"subject_id"`
	Difficulty string `sql:"difficulty"`
}

func (r lessonRow) lesson() events.Lesson {
	return events.Lesson{
		ID:         r.LessonID,
		Title:      r.Title,
		TopicID:    r.TopicID,
		TopicName:  r.TopicName,
		SubjectID:  r.SubjectID,
		Difficulty: events.Difficulty(r.Difficulty),
	}
}

func (r *eventRepo) FetchProgress(ctx context.Context, f events.Filter) ([]events.ProgressEvent, error) {
	sel := sqlite.Select(progressColumns...).
		From(sqlite.Table(tableProgress)).
		OrderBy("sequence")
	applyIDFilter(sel, f)
	if !f.From.IsZero() {
		sel.Where(entsql.ExprP("COALESCE(completed_at, timestamp) >= ?", f.From.UTC()))
	}
	if !f.To.IsZero() {
		sel.Where(entsql.ExprP("COALESCE(completed_at, timestamp) <= ?", f.To.UTC()))
	}
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	var rows []progressRow
	if err := selectAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	out := make([]events.ProgressEvent, len(rows))
	for i, row := range rows {
		out[i] = row.event()
	}
	return out, nil
}

func (r *eventRepo) FetchAttempts(ctx context.Context, f events.Filter) ([]events.AttemptEvent, error) {
	sel := sqlite.Select(attemptColumns...).
		From(sqlite.Table(tableAttempts)).
		OrderBy("sequence")
	applyIDFilter(sel, f)
	if !f.From.IsZero() {
		sel.Where(entsql.GTE("started_at", f.From.UTC()))
	}
	if !f.To.IsZero() {
		sel.Where(entsql.LTE("started_at", f.To.UTC()))
	}
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	var rows []attemptRow
	if err := selectAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	out := make([]events.AttemptEvent, len(rows))
	for i, row := range rows {
		out[i] = row.event()
	}
	return out, nil
}

func (r *eventRepo) FetchEnrollments(ctx context.Context, f events.Filter) ([]events.Enrollment, error) {
	sel := sqlite.Select("student_id", "subject_id", "total_lessons", "enrolled_at").
		From(sqlite.Table(tableEnrollments)).
		OrderBy("student_id", "subject_id")
	if f.StudentID != "" {
		sel.Where(entsql.EQ("student_id", f.StudentID))
	}
	if f.SubjectID != "" {
		sel.Where(entsql.EQ("subject_id", f.SubjectID))
	}

	var rows []enrollmentRow
	if err := selectAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	out := make([]events.Enrollment, len(rows))
	for i, row := range rows {
		out[i] = events.Enrollment(row)
	}
	return out, nil
}

func (r *eventRepo) Progress(ctx context.Context, studentID, lessonID string) (*events.ProgressEvent, error) {
	sel := sqlite.Select(progressColumns...).
		From(sqlite.Table(tableProgress)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("lesson_id", lessonID),
		)).
		Limit(1)
	var rows []progressRow
	if err := selectAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := rows[0].event()
	return &p, nil
}

func (r *eventRepo) UpsertProgress(ctx context.Context, p events.ProgressEvent) error {
	if p.SubjectID == "" {
		subject, err := r.subjectOf(ctx, p.LessonID)
		if err != nil {
			return err
		}
		p.SubjectID = subject
	}
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if !p.UpdatedAt.IsZero() {
		now = p.UpdatedAt.UTC()
	}

	ins := sqlite.Insert(tableProgress).
		Columns(progressColumns...).
		Values(seqNum, now, p.StudentID, p.LessonID, p.SubjectID,
			string(p.Status), p.Attempts, p.TimeSpent,
			nullableTime(p.StartedAt), nullableTime(p.CompletedAt)).
		OnConflict(
			entsql.ConflictColumns("student_id", "lesson_id"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := execute(ctx, r.drv, ins); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAttempt(ctx context.Context, a events.AttemptEvent) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.SubjectID == "" && a.LessonID != "" {
		subject, err := r.subjectOf(ctx, a.LessonID)
		if err != nil {
			return err
		}
		a.SubjectID = subject
	}
	if a.Topic == "" && a.LessonID != "" {
		l, err := r.Lesson(ctx, a.LessonID)
		if err != nil {
			return err
		}
		if l != nil {
			a.Topic = l.TopicName
		}
	}
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	ins := sqlite.Insert(tableAttempts).
		Columns(append([]string{"timestamp"}, attemptColumns...)...).
		Values(time.Now().UTC(), seqNum, a.ID, a.StudentID, a.AssessmentID,
			a.LessonID, a.SubjectID, a.Topic, a.Score, a.Passed,
			a.StartedAt.UTC(), nullableTime(a.CompletedAt))
	if _, err := execute(ctx, r.drv, ins); err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

func (r *eventRepo) UpsertEnrollment(ctx context.Context, e events.Enrollment) error {
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now()
	}
	ins := sqlite.Insert(tableEnrollments).
		Columns("student_id", "subject_id", "total_lessons", "enrolled_at").
		Values(e.StudentID, e.SubjectID, e.TotalLessons, e.EnrolledAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("student_id", "subject_id"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := execute(ctx, r.drv, ins); err != nil {
		return fmt.Errorf("upsert enrollment: %w", err)
	}
	return nil
}

func (r *eventRepo) UpsertLesson(ctx context.Context, l events.Lesson) error {
	if l.Difficulty == "" {
		l.Difficulty = events.DifficultyIntermediate
	}
	ins := sqlite.Insert(tableLessons).
		Columns("lesson_id", "title", "topic_id", "topic_name", "subject_id", "difficulty").
		Values(l.ID, l.Title, l.TopicID, l.TopicName, l.SubjectID, string(l.Difficulty)).
		OnConflict(
			entsql.ConflictColumns("lesson_id"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := execute(ctx, r.drv, ins); err != nil {
		return fmt.Errorf("upsert lesson: %w", err)
	}
	return nil
}

func (r *eventRepo) Lesson(ctx context.Context, id string) (*events.Lesson, error) {
	sel := sqlite.Select("lesson_id", "title", "topic_id", "topic_name", "subject_id", "difficulty").
		From(sqlite.Table(tableLessons)).
		Where(entsql.EQ("lesson_id", id)).
		Limit(1)
	var rows []lessonRow
	if err := selectAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query lesson: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	l := rows[0].lesson()
	return &l, nil
}

func (r *eventRepo) Lessons(ctx context.Context, subjectID string) ([]events.Lesson, error) {
	sel := sqlite.Select("lesson_id", "title", "topic_id", "topic_name", "subject_id", "difficulty").
		From(sqlite.Table(tableLessons)).
		OrderBy("lesson_id")
	if subjectID != "" {
		sel.Where(entsql.EQ("subject_id", subjectID))
	}
	var rows []lessonRow
	if err := selectAll(ctx, r.drv, sel, &rows); err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	out := make([]events.Lesson, len(rows))
	for i, row := range rows {
		out[i] = row.lesson()
	}
	return out, nil
}

// subjectOf resolves a lesson's subject, or "" when the lesson is unknown.
func (r *eventRepo) subjectOf(ctx context.Context, lessonID string) (string, error) {
	l, err := r.Lesson(ctx, lessonID)
	if err != nil {
		return "", err
	}
	if l == nil {
		return "", nil
	}
	return l.SubjectID, nil
}

func applyIDFilter(sel *entsql.Selector, f events.Filter) {
	if f.StudentID != "" {
		sel.Where(entsql.EQ("student_id", f.StudentID))
	}
	if f.LessonID != "" {
		sel.Where(entsql.EQ("lesson_id", f.LessonID))
	}
	if f.SubjectID != "" {
		sel.Where(entsql.EQ("subject_id", f.SubjectID))
	}
}
