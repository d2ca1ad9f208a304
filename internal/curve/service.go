package curve

import (
	"context"
	"errors"
	"fmt"

	"github.com/basil51/ai-school-sub003/internal/apperr"
	"github.com/basil51/ai-school-sub003/internal/events"
	"github.com/basil51/ai-school-sub003/internal/logger"
	"github.com/basil51/ai-school-sub003/internal/metrics"
)

// DefaultMaxRetries bounds how often Refresh recomputes after losing a
// version race.
const DefaultMaxRetries = 5

// Service analyzes and persists learning curves.
type Service struct {
	events  events.Reader
	lessons events.LessonCatalog
	curves  events.CurveStore
	params  Params
	retries int
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewService creates a curve service. log and m may be nil.
func NewService(reader events.Reader, lessons events.LessonCatalog, curves events.CurveStore, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		events:  reader,
		lessons: lessons,
		curves:  curves,
		params:  DefaultParams(),
		retries: DefaultMaxRetries,
		log:     logger.OrNop(log),
		metrics: m,
	}
}

// Refresh recomputes the curve of (studentID, subjectID) from the current
// events and stores it. The stored version is read before the events, so
// a concurrent refresh that commits first makes this write stale; Refresh
// then starts over with fresh events instead of overwriting newer data.
func (s *Service) Refresh(ctx context.Context, studentID, subjectID string) (*events.LearningCurve, error) {
	if studentID == "" || subjectID == "" {
		return nil, apperr.Validation("studentId and subjectId are required")
	}

	for attempt := 1; attempt <= s.retries; attempt++ {
		c, err := s.refreshOnce(ctx, studentID, subjectID)
		if err == nil {
			s.metrics.CurveAnalysis(metrics.CurveUpdated)
			s.log.Debug("learning curve updated",
				"student_id", studentID, "subject_id", subjectID,
				"points", len(c.DataPoints), "version", c.Version)
			return c, nil
		}
		if !errors.Is(err, events.ErrStaleCurve) {
			s.metrics.CurveAnalysis(metrics.CurveFailed)
			return nil, err
		}
		s.metrics.CurveAnalysis(metrics.CurveConflict)
		s.log.Info("learning curve changed during analysis, retrying",
			"student_id", studentID, "subject_id", subjectID, "attempt", attempt)
	}
	s.metrics.CurveAnalysis(metrics.CurveFailed)
	return nil, apperr.Internal("learning curve kept changing during analysis", events.ErrStaleCurve)
}

func (s *Service) refreshOnce(ctx context.Context, studentID, subjectID string) (*events.LearningCurve, error) {
	prev, err := s.curves.LoadCurve(ctx, studentID, subjectID, events.CurveTypeMastery)
	if err != nil {
		return nil, apperr.Upstream("curve store", err)
	}
	var version int64
	if prev != nil {
		version = prev.Version
	}

	f := events.Filter{StudentID: studentID, SubjectID: subjectID}
	progress, err := s.events.FetchProgress(ctx, f)
	if err != nil {
		return nil, apperr.Upstream("event store", err)
	}
	attempts, err := s.events.FetchAttempts(ctx, f)
	if err != nil {
		return nil, apperr.Upstream("event store", err)
	}
	difficulties, err := s.difficulties(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	c := s.params.Analyze(studentID, subjectID, progress, attempts, difficulties)
	c.Version = version
	if err := s.curves.UpsertCurve(ctx, c); err != nil {
		if errors.Is(err, events.ErrStaleCurve) {
			return nil, err
		}
		return nil, apperr.Upstream("curve store", err)
	}
	return c, nil
}

func (s *Service) difficulties(ctx context.Context, subjectID string) (map[string]events.Difficulty, error) {
	if s.lessons == nil {
		return nil, nil
	}
	lessons, err := s.lessons.Lessons(ctx, subjectID)
	if err != nil {
		return nil, apperr.Upstream("lesson catalog", err)
	}
	out := make(map[string]events.Difficulty, len(lessons))
	for _, l := range lessons {
		out[l.ID] = l.Difficulty
	}
	return out, nil
}

// Load returns the stored curve of (studentID, subjectID).
func (s *Service) Load(ctx context.Context, studentID, subjectID string) (*events.LearningCurve, error) {
	c, err := s.curves.LoadCurve(ctx, studentID, subjectID, events.CurveTypeMastery)
	if err != nil {
		return nil, apperr.Upstream("curve store", err)
	}
	if c == nil {
		return nil, apperr.NotFound("learning curve", fmt.Sprintf("%s/%s", studentID, subjectID))
	}
	return c, nil
}
