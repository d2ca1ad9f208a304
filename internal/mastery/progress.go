package mastery

import (
	"github.com/basil51/ai-school-sub003/internal/events"
)

// SubjectProgress summarizes enrolled students' progress in one subject.
// Rates are means of per-student rates; the lesson counts are totals.
type SubjectProgress struct {
	SubjectID            string  `json:"subjectId"`
	LessonCompletionRate float64 `json:"lessonCompletionRate"`
	AssessmentPassRate   float64 `json:"assessmentPassRate"`
	AverageScore         float64 `json:"averageScore"`
	CompletedLessons     int     `json:"completedLessons"`
	TotalLessons         int     `json:"totalLessons"`
	Students             int     `json:"students"`
}

// SubjectProgressOf reports progress for every subject with an enrollment
// in scope. A student's completion rate uses the enrollment's lesson total
// as the denominator.
func SubjectProgressOf(b Batch, enrollments []events.Enrollment, scope Scope) []SubjectProgress {
	subjects := newArena[*arena[tally]]()
	for _, e := range enrollments {
		if !includes(scope, e.StudentID) {
			continue
		}
		g := subjects.slot(e.SubjectID)
		if *g == nil {
			*g = newArena[tally]()
		}
		(*g).slot(e.StudentID).lessons += e.TotalLessons
	}

	student := func(subjectID, studentID string) *tally {
		g := subjects.get(subjectID)
		if g == nil {
			return nil
		}
		return (*g).get(studentID)
	}
	for _, p := range b.Progress {
		if t := student(p.SubjectID, p.StudentID); t != nil && p.Mastered() {
			t.completed++
		}
	}
	for _, a := range b.Attempts {
		if t := student(a.SubjectID, a.StudentID); t != nil {
			t.addAttempt(a.Passed, a.Score)
		}
	}

	out := make([]SubjectProgress, 0, subjects.len())
	for _, id := range subjects.sortedKeys() {
		students := *subjects.get(id)
		mean := meanOf(students)
		sp := SubjectProgress{
			SubjectID:            id,
			LessonCompletionRate: mean.LessonCompletionRate,
			AssessmentPassRate:   mean.AssessmentPassRate,
			AverageScore:         mean.OverallScore,
			Students:             mean.Students,
		}
		for _, t := range students.slots {
			sp.CompletedLessons += t.completed
			sp.TotalLessons += t.lessons
		}
		out = append(out, sp)
	}
	return out
}

// MasteryLevel labels a lesson by its assessment outcomes.
type MasteryLevel string

const (
	LevelMastered     MasteryLevel = "mastered"
	LevelStruggling   MasteryLevel = "struggling"
	LevelNotAttempted MasteryLevel = "not_attempted"
)

// LessonMastery is the per-lesson view of a mastery report.
type LessonMastery struct {
	LessonID     string                `json:"lessonId"`
	LessonTitle  string                `json:"lessonTitle,omitempty"`
	Status       events.ProgressStatus `json:"status"`
	Attempts     int                   `json:"attempts"`
	MasteryLevel MasteryLevel          `json:"masteryLevel"`
	AverageScore float64               `json:"averageScore"`
	TimeSpent    int                   `json:"timeSpent"`
}

type lessonGroup struct {
	statuses  map[events.ProgressStatus]int
	attempts  int
	timeSpent int
	scores    tally
}

// statusPriority orders statuses when several students' rows are folded
// into one lesson view.
var statusPriority = []events.ProgressStatus{
	events.StatusCompleted,
	events.StatusFailed,
	events.StatusInProgress,
}

// LessonMasteryOf builds one LessonMastery per lesson touched by the
// events in scope. titles may be nil.
func LessonMasteryOf(b Batch, scope Scope, titles map[string]string) []LessonMastery {
	lessons := newArena[lessonGroup]()
	for _, p := range b.Progress {
		if !includes(scope, p.StudentID) {
			continue
		}
		g := lessons.slot(p.LessonID)
		if g.statuses == nil {
			g.statuses = make(map[events.ProgressStatus]int)
		}
		g.statuses[p.Status]++
		g.attempts += p.Attempts
		g.timeSpent += p.TimeSpent
	}
	for _, a := range b.Attempts {
		if !includes(scope, a.StudentID) || a.LessonID == "" {
			continue
		}
		lessons.slot(a.LessonID).scores.addAttempt(a.Passed, a.Score)
	}

	out := make([]LessonMastery, 0, lessons.len())
	for _, id := range lessons.sortedKeys() {
		g := lessons.get(id)
		lm := LessonMastery{
			LessonID:     id,
			LessonTitle:  titles[id],
			Status:       events.StatusNotStarted,
			Attempts:     g.attempts,
			AverageScore: ratio(g.scores.scoreSum, g.scores.attempts),
			TimeSpent:    g.timeSpent,
		}
		for _, s := range statusPriority {
			if g.statuses[s] > 0 {
				lm.Status = s
				break
			}
		}
		switch {
		case g.scores.passed > 0:
			lm.MasteryLevel = LevelMastered
		case g.scores.attempts > 0:
			lm.MasteryLevel = LevelStruggling
		default:
			lm.MasteryLevel = LevelNotAttempted
		}
		out = append(out, lm)
	}
	return out
}
