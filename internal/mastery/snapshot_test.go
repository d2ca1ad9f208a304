package mastery

import (
	"fmt"
	"math"
	"testing"

	"github.com/basil51/ai-school-sub003/internal/events"
)

const epsilon = 0.001

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func progress(student, lesson string, status events.ProgressStatus) events.ProgressEvent {
	return events.ProgressEvent{StudentID: student, LessonID: lesson, SubjectID: "math", Status: status}
}

func attempt(student string, score float64, passed bool) events.AttemptEvent {
	return events.AttemptEvent{StudentID: student, LessonID: "l1", SubjectID: "math", Score: score, Passed: passed}
}

// pooled reduces every event into one tally. It exists only to show the
// cohort figure differs from it.
func pooled(b Batch) Snapshot {
	var t tally
	for _, p := range b.Progress {
		t.addProgress(p.Mastered())
	}
	for _, a := range b.Attempts {
		t.addAttempt(a.Passed, a.Score)
	}
	return t.snapshot()
}

func TestCompute_EmptyBatch(t *testing.T) {
	for _, scope := range []Scope{Student{ID: "s1"}, Cohort{}} {
		got := Compute(Batch{}, scope)
		if got != (Snapshot{}) {
			t.Errorf("Compute(empty, %T) = %+v, want zero", scope, got)
		}
	}
}

func TestCompute_SingleStudent(t *testing.T) {
	b := Batch{
		Progress: []events.ProgressEvent{
			progress("s1", "l1", events.StatusCompleted),
			progress("s1", "l2", events.StatusInProgress),
			progress("s1", "l3", events.StatusFailed),
			progress("s1", "l4", events.StatusCompleted),
			progress("s2", "l1", events.StatusCompleted),
		},
		Attempts: []events.AttemptEvent{
			attempt("s1", 0.9, true),
			attempt("s1", 0.4, false),
			attempt("s2", 0.1, false),
		},
	}
	got := Compute(b, Student{ID: "s1"})
	if !almostEqual(got.LessonCompletionRate, 50) {
		t.Errorf("LessonCompletionRate = %f, want 50", got.LessonCompletionRate)
	}
	if !almostEqual(got.AssessmentPassRate, 50) {
		t.Errorf("AssessmentPassRate = %f, want 50", got.AssessmentPassRate)
	}
	if !almostEqual(got.OverallScore, 0.65) {
		t.Errorf("OverallScore = %f, want 0.65", got.OverallScore)
	}
	if got.Students != 1 {
		t.Errorf("Students = %d, want 1", got.Students)
	}
}

func TestCompute_NoAttemptsMeansZeroPassRate(t *testing.T) {
	b := Batch{Progress: []events.ProgressEvent{progress("s1", "l1", events.StatusCompleted)}}
	got := Compute(b, Student{ID: "s1"})
	if got.AssessmentPassRate != 0 || got.OverallScore != 0 {
		t.Errorf("got %+v, want zero pass rate and score", got)
	}
	if !almostEqual(got.LessonCompletionRate, 100) {
		t.Errorf("LessonCompletionRate = %f, want 100", got.LessonCompletionRate)
	}
}

func TestCompute_CohortIsMeanOfMeans(t *testing.T) {
	b := Batch{Progress: []events.ProgressEvent{progress("a", "only", events.StatusCompleted)}}
	for i := 0; i < 100; i++ {
		status := events.StatusInProgress
		if i == 0 {
			status = events.StatusCompleted
		}
		b.Progress = append(b.Progress, progress("b", fmt.Sprintf("l%d", i), status))
	}

	got := Compute(b, Cohort{})
	if !almostEqual(got.LessonCompletionRate, 50.5) {
		t.Errorf("cohort LessonCompletionRate = %f, want 50.5", got.LessonCompletionRate)
	}
	if got.Students != 2 {
		t.Errorf("Students = %d, want 2", got.Students)
	}
	if p := pooled(b); almostEqual(p.LessonCompletionRate, got.LessonCompletionRate) {
		t.Errorf("cohort figure equals pooled ratio %f", p.LessonCompletionRate)
	}
}

func TestCompute_CohortEqualsMeanOfPerStudent(t *testing.T) {
	b := Batch{
		Progress: []events.ProgressEvent{
			progress("a", "l1", events.StatusCompleted),
			progress("a", "l2", events.StatusFailed),
			progress("b", "l1", events.StatusCompleted),
		},
		Attempts: []events.AttemptEvent{
			attempt("a", 1, true),
			attempt("a", 0.2, false),
			attempt("a", 0.3, false),
			attempt("c", 0.8, true),
		},
	}

	per := PerStudent(b)
	if len(per) != 3 {
		t.Fatalf("PerStudent len = %d, want 3", len(per))
	}
	var want Snapshot
	for _, s := range per {
		want.LessonCompletionRate += s.LessonCompletionRate / 3
		want.AssessmentPassRate += s.AssessmentPassRate / 3
		want.OverallScore += s.OverallScore / 3
	}

	got := Compute(b, Cohort{})
	if !almostEqual(got.LessonCompletionRate, want.LessonCompletionRate) ||
		!almostEqual(got.AssessmentPassRate, want.AssessmentPassRate) ||
		!almostEqual(got.OverallScore, want.OverallScore) {
		t.Errorf("cohort = %+v, want mean of per-student %+v", got, want)
	}
}

func TestCompute_Bounds(t *testing.T) {
	b := Batch{
		Progress: []events.ProgressEvent{
			progress("a", "l1", events.StatusCompleted),
			progress("b", "l1", events.StatusNotStarted),
		},
		Attempts: []events.AttemptEvent{
			attempt("a", 1.7, true),
			attempt("b", -0.5, false),
		},
	}
	for _, scope := range []Scope{Student{ID: "a"}, Student{ID: "b"}, Cohort{}} {
		got := Compute(b, scope)
		if got.LessonCompletionRate < 0 || got.LessonCompletionRate > 100 {
			t.Errorf("%v: LessonCompletionRate = %f out of range", scope, got.LessonCompletionRate)
		}
		if got.AssessmentPassRate < 0 || got.AssessmentPassRate > 100 {
			t.Errorf("%v: AssessmentPassRate = %f out of range", scope, got.AssessmentPassRate)
		}
		if got.OverallScore < 0 || got.OverallScore > 1 {
			t.Errorf("%v: OverallScore = %f out of range", scope, got.OverallScore)
		}
	}
}

func TestScopeFor(t *testing.T) {
	if _, ok := ScopeFor("").(Cohort); !ok {
		t.Error("ScopeFor(\"\") should be Cohort")
	}
	if s, ok := ScopeFor("s1").(Student); !ok || s.ID != "s1" {
		t.Errorf("ScopeFor(s1) = %#v, want Student{s1}", ScopeFor("s1"))
	}
}

func TestBySubject_UsesScope(t *testing.T) {
	b := Batch{
		Progress: []events.ProgressEvent{
			{StudentID: "a", LessonID: "m1", SubjectID: "math", Status: events.StatusCompleted},
			{StudentID: "b", LessonID: "m1", SubjectID: "math", Status: events.StatusInProgress},
			{StudentID: "b", LessonID: "m2", SubjectID: "math", Status: events.StatusInProgress},
			{StudentID: "a", LessonID: "p1", SubjectID: "physics", Status: events.StatusFailed},
		},
	}

	got := BySubject(b, Cohort{})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "math" || got[1].ID != "physics" {
		t.Fatalf("order = %s, %s; want math, physics", got[0].ID, got[1].ID)
	}
	// a: 1/1, b: 0/2 -> mean 50
	if !almostEqual(got[0].LessonCompletionRate, 50) {
		t.Errorf("math cohort rate = %f, want 50", got[0].LessonCompletionRate)
	}

	student := BySubject(b, Student{ID: "a"})
	if !almostEqual(student[0].LessonCompletionRate, 100) {
		t.Errorf("math rate for a = %f, want 100", student[0].LessonCompletionRate)
	}
	if student[1].LessonCompletionRate != 0 {
		t.Errorf("physics rate for a = %f, want 0", student[1].LessonCompletionRate)
	}
}

func TestByLesson(t *testing.T) {
	b := Batch{
		Attempts: []events.AttemptEvent{
			{StudentID: "a", LessonID: "l1", Score: 1, Passed: true},
			{StudentID: "a", LessonID: "l1", Score: 1, Passed: true},
			{StudentID: "a", LessonID: "l1", Score: 1, Passed: true},
			{StudentID: "b", LessonID: "l1", Score: 0, Passed: false},
			{StudentID: "b", LessonID: "l2", Score: 0.5, Passed: false},
		},
	}
	got := ByLesson(b, Cohort{})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// a passes 100%, b 0% -> 50, not 75.
	if !almostEqual(got[0].AssessmentPassRate, 50) {
		t.Errorf("l1 pass rate = %f, want 50", got[0].AssessmentPassRate)
	}
	if !almostEqual(got[1].OverallScore, 0.5) {
		t.Errorf("l2 score = %f, want 0.5", got[1].OverallScore)
	}
}
