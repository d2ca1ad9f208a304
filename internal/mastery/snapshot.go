package mastery

import (
	"github.com/basil51/ai-school-sub003/internal/events"
)

// Snapshot is a derived mastery aggregate for one scope. It is never
// persisted.
type Snapshot struct {
	LessonCompletionRate float64 `json:"lessonCompletionRate"` // [0,100]
	AssessmentPassRate   float64 `json:"assessmentPassRate"`   // [0,100]
	OverallScore         float64 `json:"overallScore"`         // [0,1]
	Students             int     `json:"students,omitempty"`
}

// Batch is the event set a computation runs over. Progress holds at most
// one event per (student, lesson), as the store returns them.
type Batch struct {
	Progress []events.ProgressEvent
	Attempts []events.AttemptEvent
}

// Empty reports whether the batch has no events at all.
func (b Batch) Empty() bool {
	return len(b.Progress) == 0 && len(b.Attempts) == 0
}

// Compute returns the mastery snapshot of b for the given scope.
func Compute(b Batch, scope Scope) Snapshot {
	switch s := scope.(type) {
	case Student:
		return studentSnapshot(b, s.ID)
	case Cohort:
		return cohortSnapshot(b)
	}
	return Snapshot{}
}

func studentSnapshot(b Batch, studentID string) Snapshot {
	var t tally
	for _, p := range b.Progress {
		if p.StudentID == studentID {
			t.addProgress(p.Mastered())
		}
	}
	for _, a := range b.Attempts {
		if a.StudentID == studentID {
			t.addAttempt(a.Passed, a.Score)
		}
	}
	snap := t.snapshot()
	if t.lessons > 0 || t.attempts > 0 {
		snap.Students = 1
	}
	return snap
}

// cohortSnapshot groups by student, reduces each student on its own, then
// averages the per-student snapshots.
func cohortSnapshot(b Batch) Snapshot {
	students := groupByStudent(b)
	return meanOf(students)
}

func groupByStudent(b Batch) *arena[tally] {
	students := newArena[tally]()
	for _, p := range b.Progress {
		students.slot(p.StudentID).addProgress(p.Mastered())
	}
	for _, a := range b.Attempts {
		students.slot(a.StudentID).addAttempt(a.Passed, a.Score)
	}
	return students
}

func meanOf(students *arena[tally]) Snapshot {
	n := students.len()
	if n == 0 {
		return Snapshot{}
	}
	var sum Snapshot
	for _, t := range students.slots {
		s := t.snapshot()
		sum.LessonCompletionRate += s.LessonCompletionRate
		sum.AssessmentPassRate += s.AssessmentPassRate
		sum.OverallScore += s.OverallScore
	}
	return Snapshot{
		LessonCompletionRate: sum.LessonCompletionRate / float64(n),
		AssessmentPassRate:   sum.AssessmentPassRate / float64(n),
		OverallScore:         sum.OverallScore / float64(n),
		Students:             n,
	}
}

// PerStudent returns each student's individual snapshot, keyed by student ID.
func PerStudent(b Batch) map[string]Snapshot {
	students := groupByStudent(b)
	out := make(map[string]Snapshot, students.len())
	for i, key := range students.keys {
		s := students.slots[i].snapshot()
		s.Students = 1
		out[key] = s
	}
	return out
}
