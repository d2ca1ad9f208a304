package mastery

import (
	"github.com/basil51/ai-school-sub003/internal/events"
)

// EntitySnapshot is a Snapshot for one subject or lesson.
type EntitySnapshot struct {
	ID string `json:"id"`
	Snapshot
}

// BySubject computes one snapshot per subject, each over the events whose
// lesson belongs to that subject.
func BySubject(b Batch, scope Scope) []EntitySnapshot {
	return breakdown(b, scope,
		func(p events.ProgressEvent) string { return p.SubjectID },
		func(a events.AttemptEvent) string { return a.SubjectID },
	)
}

// ByLesson computes one snapshot per lesson.
func ByLesson(b Batch, scope Scope) []EntitySnapshot {
	return breakdown(b, scope,
		func(p events.ProgressEvent) string { return p.LessonID },
		func(a events.AttemptEvent) string { return a.LessonID },
	)
}

func breakdown(b Batch, scope Scope, progressKey func(events.ProgressEvent) string, attemptKey func(events.AttemptEvent) string) []EntitySnapshot {
	groups := newArena[Batch]()
	for _, p := range b.Progress {
		if k := progressKey(p); k != "" {
			g := groups.slot(k)
			g.Progress = append(g.Progress, p)
		}
	}
	for _, a := range b.Attempts {
		if k := attemptKey(a); k != "" {
			g := groups.slot(k)
			g.Attempts = append(g.Attempts, a)
		}
	}

	out := make([]EntitySnapshot, 0, groups.len())
	for _, key := range groups.sortedKeys() {
		out = append(out, EntitySnapshot{ID: key, Snapshot: Compute(*groups.get(key), scope)})
	}
	return out
}
