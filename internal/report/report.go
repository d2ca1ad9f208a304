// Package report assembles the mastery bundle served by the mastery
// endpoint and ingests completed assessment attempts.
package report

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/basil51/ai-school-sub003/internal/apperr"
	"github.com/basil51/ai-school-sub003/internal/events"
	"github.com/basil51/ai-school-sub003/internal/insights"
	"github.com/basil51/ai-school-sub003/internal/logger"
	"github.com/basil51/ai-school-sub003/internal/mastery"
)

// EventStore is the event store plus the single-row progress lookup
// ingestion needs. store.EventRepo satisfies it.
type EventStore interface {
	events.Store
	Progress(ctx context.Context, studentID, lessonID string) (*events.ProgressEvent, error)
}

// Curves loads and recomputes learning curves. curve.Service satisfies it.
type Curves interface {
	Load(ctx context.Context, studentID, subjectID string) (*events.LearningCurve, error)
	Refresh(ctx context.Context, studentID, subjectID string) (*events.LearningCurve, error)
}

// Query selects what a report covers. An empty StudentID means the cohort.
type Query struct {
	StudentID string
	LessonID  string
	SubjectID string
	Period    string
}

// Report is the mastery bundle.
type Report struct {
	Scope       string         `json:"scope"`
	StudentID   string         `json:"studentId,omitempty"`
	LessonID    string         `json:"lessonId,omitempty"`
	SubjectID   string         `json:"subjectId,omitempty"`
	Period      mastery.Period `json:"period"`
	GeneratedAt time.Time      `json:"generatedAt"`

	Mastery         mastery.Snapshot              `json:"mastery"`
	Subjects        []mastery.EntitySnapshot      `json:"subjects"`
	Lessons         []mastery.EntitySnapshot      `json:"lessons"`
	SubjectProgress []mastery.SubjectProgress     `json:"subjectProgress"`
	LessonMastery   []mastery.LessonMastery       `json:"lessonMastery"`
	Performance     mastery.AssessmentPerformance `json:"assessmentPerformance"`
	Velocity        mastery.Velocity              `json:"learningVelocity"`
	Curve           *events.LearningCurve         `json:"learningCurve,omitempty"`
	Strengths       []string                      `json:"strengths"`
	Weaknesses      []string                      `json:"weaknesses"`
	Topics          []insights.TopicStat          `json:"topicPerformance"`
	Trend           insights.Trend                `json:"trend"`
	Recommendations []insights.Recommendation     `json:"recommendations"`
}

// Service builds reports. It holds no state of its own.
type Service struct {
	events  EventStore
	lessons events.LessonCatalog
	curves  Curves
	log     *logger.Logger
	now     func() time.Time
}

// NewService creates a Service. curves may be nil, in which case reports
// carry no learning curve and ingestion does not re-analyze.
func NewService(store EventStore, lessons events.LessonCatalog, curves Curves, log *logger.Logger) *Service {
	return &Service{
		events:  store,
		lessons: lessons,
		curves:  curves,
		log:     logger.OrNop(log),
		now:     time.Now,
	}
}

// Get builds the mastery bundle for q.
func (s *Service) Get(ctx context.Context, q Query) (*Report, error) {
	period, err := mastery.ParsePeriod(q.Period)
	if err != nil {
		return nil, err
	}
	if q.LessonID != "" {
		l, err := s.lessons.Lesson(ctx, q.LessonID)
		if err != nil {
			return nil, apperr.Upstream("lesson catalog", err)
		}
		if l == nil {
			return nil, apperr.NotFound("lesson", q.LessonID)
		}
	}

	f := events.Filter{StudentID: q.StudentID, LessonID: q.LessonID, SubjectID: q.SubjectID}
	var (
		progress    []events.ProgressEvent
		attempts    []events.AttemptEvent
		enrollments []events.Enrollment
		catalog     []events.Lesson
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		progress, err = s.events.FetchProgress(gctx, f)
		return upstream("event store", err)
	})
	g.Go(func() (err error) {
		attempts, err = s.events.FetchAttempts(gctx, f)
		return upstream("event store", err)
	})
	g.Go(func() (err error) {
		enrollments, err = s.events.FetchEnrollments(gctx, events.Filter{StudentID: q.StudentID, SubjectID: q.SubjectID})
		return upstream("event store", err)
	})
	g.Go(func() (err error) {
		catalog, err = s.lessons.Lessons(gctx, q.SubjectID)
		return upstream("lesson catalog", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if q.SubjectID != "" && len(catalog) == 0 && len(enrollments) == 0 {
		return nil, apperr.NotFound("subject", q.SubjectID)
	}

	titles := make(map[string]string, len(catalog))
	for _, l := range catalog {
		titles[l.ID] = l.Title
	}

	scope := mastery.ScopeFor(q.StudentID)
	b := mastery.Batch{Progress: progress, Attempts: attempts}
	now := s.now()

	r := &Report{
		Scope:           "cohort",
		StudentID:       q.StudentID,
		LessonID:        q.LessonID,
		SubjectID:       q.SubjectID,
		Period:          period,
		GeneratedAt:     now,
		Mastery:         mastery.Compute(b, scope),
		Subjects:        mastery.BySubject(b, scope),
		Lessons:         mastery.ByLesson(b, scope),
		SubjectProgress: mastery.SubjectProgressOf(b, enrollments, scope),
		LessonMastery:   mastery.LessonMasteryOf(b, scope, titles),
		Performance:     mastery.PerformanceOf(attempts, scope),
		Velocity:        mastery.VelocityOf(progress, scope, period, now),
	}

	if q.StudentID != "" {
		r.Scope = "student"
		r.Trend = insights.DetectTrend(attempts)
	} else {
		r.Trend = insights.CohortTrend(attempts)
	}
	r.Performance.ImprovementTrend = string(r.Trend)

	if q.StudentID != "" && q.SubjectID != "" && s.curves != nil {
		c, err := s.curve(ctx, q.StudentID, q.SubjectID, newestSequence(progress, attempts))
		if err != nil {
			return nil, err
		}
		r.Curve = c
	}

	cls := insights.Classify(attempts)
	r.Strengths, r.Weaknesses, r.Topics = cls.Strengths, cls.Weaknesses, cls.Topics
	r.Recommendations = insights.Recommend(insights.Input{
		Progress:     progress,
		Attempts:     attempts,
		Curve:        r.Curve,
		Trend:        r.Trend,
		LessonTitles: titles,
	})
	return r, nil
}

// curve returns the stored curve, analyzing on first use and again when
// an event newer than the curve's source has been stored since.
func (s *Service) curve(ctx context.Context, studentID, subjectID string, newest int64) (*events.LearningCurve, error) {
	c, err := s.curves.Load(ctx, studentID, subjectID)
	switch {
	case err == nil && c.SourceSequence >= newest:
		return c, nil
	case err == nil:
		s.log.Debug("learning curve behind event log, re-analyzing",
			"student_id", studentID, "subject_id", subjectID,
			"curve_sequence", c.SourceSequence, "event_sequence", newest)
	case !apperr.Is(err, apperr.KindNotFound):
		return nil, err
	}
	return s.curves.Refresh(ctx, studentID, subjectID)
}

func newestSequence(progress []events.ProgressEvent, attempts []events.AttemptEvent) int64 {
	var n int64
	for _, p := range progress {
		n = max(n, p.Sequence)
	}
	for _, a := range attempts {
		n = max(n, a.Sequence)
	}
	return n
}

func upstream(what string, err error) error {
	if err == nil {
		return nil
	}
	return apperr.Upstream(what, err)
}
