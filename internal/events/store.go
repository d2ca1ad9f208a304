package events

import (
	"context"
)

// Reader supplies the three event kinds.
type Reader interface {
	FetchProgress(ctx context.Context, f Filter) ([]ProgressEvent, error)
	FetchAttempts(ctx context.Context, f Filter) ([]AttemptEvent, error)
	FetchEnrollments(ctx context.Context, f Filter) ([]Enrollment, error)
}

// Writer records new facts produced by the service.
type Writer interface {
	// UpsertProgress creates or replaces the (student, lesson) progress row.
	UpsertProgress(ctx context.Context, p ProgressEvent) error

	// AppendAttempt records a new assessment attempt.
	AppendAttempt(ctx context.Context, a AttemptEvent) error
}

// Store is the event store adapter consumed by the analytics components.
type Store interface {
	Reader
	Writer
}

// LessonCatalog resolves lesson metadata.
type LessonCatalog interface {
	// Lesson returns the lesson with the given ID, or nil if unknown.
	Lesson(ctx context.Context, id string) (*Lesson, error)

	// Lessons returns lessons, optionally restricted to one subject.
	Lessons(ctx context.Context, subjectID string) ([]Lesson, error)
}
