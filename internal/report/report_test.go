package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basil51/ai-school-sub003/internal/apperr"
	"github.com/basil51/ai-school-sub003/internal/events"
	"github.com/basil51/ai-school-sub003/internal/insights"
	"github.com/basil51/ai-school-sub003/internal/mastery"
)

type memStore struct {
	mu          sync.Mutex
	progress    []events.ProgressEvent
	attempts    []events.AttemptEvent
	enrollments []events.Enrollment
	err         error
}

func match(f events.Filter, student, lesson, subject string) bool {
	return (f.StudentID == "" || f.StudentID == student) &&
		(f.LessonID == "" || f.LessonID == lesson) &&
		(f.SubjectID == "" || f.SubjectID == subject)
}

func (m *memStore) FetchProgress(_ context.Context, f events.Filter) ([]events.ProgressEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.ProgressEvent
	for _, p := range m.progress {
		if match(f, p.StudentID, p.LessonID, p.SubjectID) {
			out = append(out, p)
		}
	}
	return out, m.err
}

func (m *memStore) FetchAttempts(_ context.Context, f events.Filter) ([]events.AttemptEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.AttemptEvent
	for _, a := range m.attempts {
		if match(f, a.StudentID, a.LessonID, a.SubjectID) {
			out = append(out, a)
		}
	}
	return out, m.err
}

func (m *memStore) FetchEnrollments(_ context.Context, f events.Filter) ([]events.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.Enrollment
	for _, e := range m.enrollments {
		if match(f, e.StudentID, "", e.SubjectID) {
			out = append(out, e)
		}
	}
	return out, m.err
}

func (m *memStore) UpsertProgress(_ context.Context, p events.ProgressEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.progress {
		if m.progress[i].StudentID == p.StudentID && m.progress[i].LessonID == p.LessonID {
			m.progress[i] = p
			return nil
		}
	}
	m.progress = append(m.progress, p)
	return nil
}

func (m *memStore) AppendAttempt(_ context.Context, a events.AttemptEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.Sequence = int64(len(m.attempts) + 1)
	m.attempts = append(m.attempts, a)
	return nil
}

func (m *memStore) Progress(_ context.Context, studentID, lessonID string) (*events.ProgressEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.progress {
		if p.StudentID == studentID && p.LessonID == lessonID {
			return &p, nil
		}
	}
	return nil, nil
}

type catalog []events.Lesson

func (c catalog) Lesson(_ context.Context, id string) (*events.Lesson, error) {
	for _, l := range c {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, nil
}

func (c catalog) Lessons(_ context.Context, subjectID string) ([]events.Lesson, error) {
	var out []events.Lesson
	for _, l := range c {
		if subjectID == "" || l.SubjectID == subjectID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeCurves struct {
	events    *memStore
	stored    map[string]*events.LearningCurve
	refreshed []string
}

func (f *fakeCurves) Load(_ context.Context, studentID, subjectID string) (*events.LearningCurve, error) {
	if c, ok := f.stored[studentID+"/"+subjectID]; ok {
		return c, nil
	}
	return nil, apperr.NotFound("learning curve", studentID+"/"+subjectID)
}

func (f *fakeCurves) Refresh(ctx context.Context, studentID, subjectID string) (*events.LearningCurve, error) {
	f.refreshed = append(f.refreshed, studentID+"/"+subjectID)
	c := &events.LearningCurve{StudentID: studentID, SubjectID: subjectID, Confidence: 0.3}
	if f.events != nil {
		q := events.Filter{StudentID: studentID, SubjectID: subjectID}
		progress, _ := f.events.FetchProgress(ctx, q)
		attempts, _ := f.events.FetchAttempts(ctx, q)
		c.SourceSequence = newestSequence(progress, attempts)
	}
	if f.stored == nil {
		f.stored = map[string]*events.LearningCurve{}
	}
	f.stored[studentID+"/"+subjectID] = c
	return c, nil
}

var testCatalog = catalog{
	{ID: "l1", Title: "Halves", TopicName: "fractions", SubjectID: "math"},
	{ID: "l2", Title: "Tenths", TopicName: "decimals", SubjectID: "math"},
	{ID: "l3", Title: "Verbs", TopicName: "grammar", SubjectID: "english"},
}

func at(day int) time.Time {
	return time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func seeded() *memStore {
	return &memStore{
		progress: []events.ProgressEvent{
			{StudentID: "s1", LessonID: "l1", SubjectID: "math", Status: events.StatusCompleted, CompletedAt: ptr(at(2))},
			{StudentID: "s1", LessonID: "l2", SubjectID: "math", Status: events.StatusFailed, Attempts: 2},
			{StudentID: "s2", LessonID: "l1", SubjectID: "math", Status: events.StatusCompleted, CompletedAt: ptr(at(3))},
		},
		attempts: []events.AttemptEvent{
			{Sequence: 1, StudentID: "s1", LessonID: "l1", SubjectID: "math", Topic: "fractions", Score: 0.9, Passed: true, StartedAt: at(1), CompletedAt: ptr(at(1))},
			{Sequence: 2, StudentID: "s1", LessonID: "l1", SubjectID: "math", Topic: "fractions", Score: 0.8, Passed: true, StartedAt: at(2), CompletedAt: ptr(at(2))},
			{Sequence: 3, StudentID: "s1", LessonID: "l2", SubjectID: "math", Topic: "decimals", Score: 0.3, Passed: false, StartedAt: at(3), CompletedAt: ptr(at(3))},
			{Sequence: 4, StudentID: "s2", LessonID: "l1", SubjectID: "math", Topic: "fractions", Score: 1.0, Passed: true, StartedAt: at(3), CompletedAt: ptr(at(3))},
		},
		enrollments: []events.Enrollment{
			{StudentID: "s1", SubjectID: "math", TotalLessons: 2},
			{StudentID: "s2", SubjectID: "math", TotalLessons: 2},
		},
	}
}

func newTestService(store *memStore, curves Curves) *Service {
	s := NewService(store, testCatalog, curves, nil)
	s.now = func() time.Time { return at(5) }
	return s
}

func TestGet_StudentReport(t *testing.T) {
	store := seeded()
	curves := &fakeCurves{events: store}
	s := newTestService(store, curves)

	r, err := s.Get(context.Background(), Query{StudentID: "s1", SubjectID: "math"})
	require.NoError(t, err)

	assert.Equal(t, "student", r.Scope)
	assert.Equal(t, mastery.DefaultPeriod, r.Period)
	assert.Equal(t, 50.0, r.Mastery.LessonCompletionRate)
	assert.InDelta(t, 66.67, r.Mastery.AssessmentPassRate, 0.01)
	assert.InDelta(t, 2.0/3, r.Mastery.OverallScore, 1e-9)

	assert.Equal(t, []string{"fractions"}, r.Strengths)
	assert.Equal(t, []string{"decimals"}, r.Weaknesses)
	assert.Equal(t, insights.TrendDeclining, r.Trend)
	assert.Equal(t, string(insights.TrendDeclining), r.Performance.ImprovementTrend)

	require.NotNil(t, r.Curve, "curve is analyzed on first request")
	assert.Equal(t, []string{"s1/math"}, curves.refreshed)

	// The stored curve is reused while no newer event exists.
	_, err = s.Get(context.Background(), Query{StudentID: "s1", SubjectID: "math"})
	require.NoError(t, err)
	assert.Len(t, curves.refreshed, 1)

	var types []string
	for _, rec := range r.Recommendations {
		types = append(types, rec.Type)
	}
	assert.Contains(t, types, insights.TypeRemediation)
	assert.Contains(t, types, insights.TypePerformance)
}

func TestGet_StaleCurveIsReanalyzed(t *testing.T) {
	store := seeded()
	curves := &fakeCurves{
		events: store,
		stored: map[string]*events.LearningCurve{
			"s1/math": {StudentID: "s1", SubjectID: "math", SourceSequence: 2},
		},
	}
	s := newTestService(store, curves)

	r, err := s.Get(context.Background(), Query{StudentID: "s1", SubjectID: "math"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1/math"}, curves.refreshed, "attempt 3 is newer than the stored curve")
	assert.Equal(t, int64(3), r.Curve.SourceSequence)

	// An attempt written behind the report's back makes it stale again.
	require.NoError(t, store.AppendAttempt(context.Background(), events.AttemptEvent{
		StudentID: "s1", LessonID: "l2", SubjectID: "math", Score: 0.7, Passed: true,
		StartedAt: at(4), CompletedAt: ptr(at(4)),
	}))
	r, err = s.Get(context.Background(), Query{StudentID: "s1", SubjectID: "math"})
	require.NoError(t, err)
	assert.Len(t, curves.refreshed, 2)
	assert.Equal(t, int64(5), r.Curve.SourceSequence)
}

func TestGet_Cohort(t *testing.T) {
	s := newTestService(seeded(), nil)

	r, err := s.Get(context.Background(), Query{Period: "monthly"})
	require.NoError(t, err)

	assert.Equal(t, "cohort", r.Scope)
	assert.Equal(t, mastery.PeriodMonthly, r.Period)
	assert.Equal(t, 2, r.Mastery.Students)
	// Mean of per-student rates (50 and 100), not the pooled 2 of 3.
	assert.Equal(t, 75.0, r.Mastery.LessonCompletionRate)
	assert.Nil(t, r.Curve)
	assert.Len(t, r.SubjectProgress, 1)
}

func TestGet_Errors(t *testing.T) {
	s := newTestService(seeded(), nil)
	ctx := context.Background()

	_, err := s.Get(ctx, Query{Period: "yearly"})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "err = %v", err)

	_, err = s.Get(ctx, Query{LessonID: "nope"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "err = %v", err)

	_, err = s.Get(ctx, Query{SubjectID: "history"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "err = %v", err)

	broken := seeded()
	broken.err = errors.New("connection refused")
	_, err = newTestService(broken, nil).Get(ctx, Query{StudentID: "s1"})
	assert.True(t, apperr.Is(err, apperr.KindUpstream), "err = %v", err)
}

func TestGet_EmptyStudentIsZero(t *testing.T) {
	s := newTestService(seeded(), nil)

	r, err := s.Get(context.Background(), Query{StudentID: "nobody"})
	require.NoError(t, err)
	assert.Equal(t, mastery.Snapshot{}, r.Mastery)
	assert.Equal(t, insights.TrendInsufficientData, r.Trend)
	assert.Empty(t, r.Strengths)
}

func TestIngest_FailedThenPassed(t *testing.T) {
	store := seeded()
	curves := &fakeCurves{events: store}
	s := newTestService(store, curves)
	ctx := context.Background()

	failed := events.AttemptEvent{StudentID: "s3", AssessmentID: "quiz-1", LessonID: "l2", Score: 0.4}
	r, err := s.Ingest(ctx, failed, 120)
	require.NoError(t, err)
	assert.Equal(t, "math", r.SubjectID)

	p, err := store.Progress(ctx, "s3", "l2")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, events.StatusFailed, p.Status)
	assert.Equal(t, 1, p.Attempts)
	assert.Equal(t, 120, p.TimeSpent)

	passed := events.AttemptEvent{StudentID: "s3", AssessmentID: "quiz-1", LessonID: "l2", Score: 0.9, Passed: true}
	_, err = s.Ingest(ctx, passed, 60)
	require.NoError(t, err)

	p, err = store.Progress(ctx, "s3", "l2")
	require.NoError(t, err)
	assert.Equal(t, events.StatusCompleted, p.Status)
	assert.Equal(t, 1, p.Attempts)
	assert.Equal(t, 180, p.TimeSpent)
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, at(5), *p.CompletedAt)

	last := store.attempts[len(store.attempts)-1]
	assert.NotEmpty(t, last.ID)
	assert.Equal(t, "decimals", last.Topic)
	assert.Equal(t, "math", last.SubjectID)
	assert.Equal(t, []string{"s3/math", "s3/math"}, curves.refreshed)
}

func TestIngest_Validation(t *testing.T) {
	s := newTestService(seeded(), nil)
	ctx := context.Background()

	_, err := s.Ingest(ctx, events.AttemptEvent{StudentID: "s1"}, 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "err = %v", err)

	_, err = s.Ingest(ctx, events.AttemptEvent{StudentID: "s1", AssessmentID: "a", LessonID: "l1", Score: 1.5}, 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "err = %v", err)

	_, err = s.Ingest(ctx, events.AttemptEvent{StudentID: "s1", AssessmentID: "a", LessonID: "zz"}, 0)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "err = %v", err)
}
