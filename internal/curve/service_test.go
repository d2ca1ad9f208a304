package curve

import (
	"context"
	"errors"
	"testing"

	"github.com/basil51/ai-school-sub003/internal/apperr"
	"github.com/basil51/ai-school-sub003/internal/events"
)

type fakeEvents struct {
	progress []events.ProgressEvent
	attempts []events.AttemptEvent
	err      error
	reads    int
}

func (f *fakeEvents) FetchProgress(_ context.Context, _ events.Filter) ([]events.ProgressEvent, error) {
	f.reads++
	return f.progress, f.err
}

func (f *fakeEvents) FetchAttempts(_ context.Context, _ events.Filter) ([]events.AttemptEvent, error) {
	return f.attempts, f.err
}

func (f *fakeEvents) FetchEnrollments(_ context.Context, _ events.Filter) ([]events.Enrollment, error) {
	return nil, f.err
}

// fakeCurves is a CurveStore with the same version rule as the sqlite
// store. beforeWrite runs inside UpsertCurve before the version check.
type fakeCurves struct {
	stored      *events.LearningCurve
	beforeWrite func()
	writes      int
}

func (f *fakeCurves) LoadCurve(_ context.Context, _, _, _ string) (*events.LearningCurve, error) {
	if f.stored == nil {
		return nil, nil
	}
	c := *f.stored
	return &c, nil
}

func (f *fakeCurves) UpsertCurve(_ context.Context, c *events.LearningCurve) error {
	if f.beforeWrite != nil {
		hook := f.beforeWrite
		f.beforeWrite = nil
		hook()
	}
	var current int64
	if f.stored != nil {
		current = f.stored.Version
	}
	if current != c.Version {
		return events.ErrStaleCurve
	}
	c.Version++
	stored := *c
	f.stored = &stored
	f.writes++
	return nil
}

func TestRefresh_Validation(t *testing.T) {
	s := NewService(&fakeEvents{}, nil, &fakeCurves{}, nil, nil)
	_, err := s.Refresh(context.Background(), "", "math")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestRefresh_StoresCurve(t *testing.T) {
	ev := &fakeEvents{attempts: attempts(false, true)}
	curves := &fakeCurves{}
	s := NewService(ev, nil, curves, nil, nil)

	c, err := s.Refresh(context.Background(), "s1", "math")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if c.Version != 1 || curves.stored == nil || curves.stored.Version != 1 {
		t.Errorf("version = %d, want 1", c.Version)
	}
	if len(curves.stored.DataPoints) != 2 {
		t.Errorf("stored points = %d, want 2", len(curves.stored.DataPoints))
	}

	c, err = s.Refresh(context.Background(), "s1", "math")
	if err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	if c.Version != 2 {
		t.Errorf("version after second refresh = %d, want 2", c.Version)
	}
}

func TestRefresh_RetriesOnConcurrentWrite(t *testing.T) {
	ev := &fakeEvents{attempts: attempts(true)}
	curves := &fakeCurves{}
	s := NewService(ev, nil, curves, nil, nil)

	// Another analysis commits a newer curve, with one more event, while
	// this one is computing.
	curves.beforeWrite = func() {
		ev.attempts = attempts(true, true, false)
		other := Analyze("s1", "math", nil, ev.attempts, nil)
		other.Version = 1
		curves.stored = other
	}

	c, err := s.Refresh(context.Background(), "s1", "math")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if ev.reads != 2 {
		t.Errorf("event reads = %d, want 2", ev.reads)
	}
	if c.Version != 2 || len(c.DataPoints) != 3 {
		t.Errorf("curve = v%d with %d points, want v2 with 3", c.Version, len(c.DataPoints))
	}
	if len(curves.stored.DataPoints) != 3 {
		t.Errorf("stored curve lost the newer events: %d points", len(curves.stored.DataPoints))
	}
}

type alwaysStale struct{ fakeCurves }

func (a *alwaysStale) UpsertCurve(context.Context, *events.LearningCurve) error {
	return events.ErrStaleCurve
}

func TestRefresh_GivesUpAfterRetries(t *testing.T) {
	s := NewService(&fakeEvents{}, nil, &alwaysStale{}, nil, nil)
	_, err := s.Refresh(context.Background(), "s1", "math")
	if !errors.Is(err, events.ErrStaleCurve) {
		t.Errorf("err = %v, want ErrStaleCurve", err)
	}
}

func TestRefresh_UpstreamFailure(t *testing.T) {
	s := NewService(&fakeEvents{err: errors.New("disk gone")}, nil, &fakeCurves{}, nil, nil)
	_, err := s.Refresh(context.Background(), "s1", "math")
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Errorf("err = %v, want upstream error", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := NewService(&fakeEvents{}, nil, &fakeCurves{}, nil, nil)
	_, err := s.Load(context.Background(), "s1", "math")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}
