package report

import (
	"context"

	"github.com/google/uuid"

	"github.com/basil51/ai-school-sub003/internal/apperr"
	"github.com/basil51/ai-school-sub003/internal/events"
)

// Ingest records a completed assessment attempt, updates the student's
// progress on the lesson, re-analyzes the subject's learning curve and
// returns the refreshed report.
func (s *Service) Ingest(ctx context.Context, a events.AttemptEvent, timeSpent int) (*Report, error) {
	if a.StudentID == "" || a.AssessmentID == "" || a.LessonID == "" {
		return nil, apperr.Validation("studentId, assessmentId and lessonId are required")
	}
	if a.Score < 0 || a.Score > 1 {
		return nil, apperr.Validation("score must be within [0,1], got %v", a.Score)
	}

	lesson, err := s.lessons.Lesson(ctx, a.LessonID)
	if err != nil {
		return nil, apperr.Upstream("lesson catalog", err)
	}
	if lesson == nil {
		return nil, apperr.NotFound("lesson", a.LessonID)
	}

	now := s.now()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CompletedAt == nil {
		a.CompletedAt = &now
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = *a.CompletedAt
	}
	a.SubjectID = lesson.SubjectID
	if a.Topic == "" {
		a.Topic = lesson.TopicName
	}
	if err := s.events.AppendAttempt(ctx, a); err != nil {
		return nil, apperr.Upstream("event store", err)
	}

	prev, err := s.events.Progress(ctx, a.StudentID, a.LessonID)
	if err != nil {
		return nil, apperr.Upstream("event store", err)
	}
	p := events.ProgressAfter(prev, a, timeSpent)
	p.UpdatedAt = now
	if err := s.events.UpsertProgress(ctx, p); err != nil {
		return nil, apperr.Upstream("event store", err)
	}
	s.log.Info("attempt ingested",
		"student", a.StudentID,
		"lesson", a.LessonID,
		"passed", a.Passed,
		"status", string(p.Status),
	)

	if s.curves != nil {
		if _, err := s.curves.Refresh(ctx, a.StudentID, a.SubjectID); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, Query{StudentID: a.StudentID, SubjectID: a.SubjectID})
}
