// Package events defines the learning-event records the analytics
// components read and the store contract that supplies them.
package events

import (
	"time"
)

// ProgressStatus is the lifecycle state of a student's work on a lesson.
type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
	StatusFailed     ProgressStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Difficulty labels a lesson for learning-curve data points.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ProgressEvent records one student's state on one lesson.
type ProgressEvent struct {
	Sequence    int64          `json:"sequence,omitempty" yaml:"-"`
	StudentID   string         `json:"studentId" yaml:"studentId"`
	LessonID    string         `json:"lessonId" yaml:"lessonId"`
	SubjectID   string         `json:"subjectId" yaml:"subjectId"`
	Status      ProgressStatus `json:"status" yaml:"status"`
	Attempts    int            `json:"attempts" yaml:"attempts"`
	TimeSpent   int            `json:"timeSpent" yaml:"timeSpent"` // seconds
	StartedAt   *time.Time     `json:"startedAt,omitempty" yaml:"startedAt,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt" yaml:"updatedAt"`
}

// Mastered reports whether the event counts toward the mastery ratio.
func (p ProgressEvent) Mastered() bool { return p.Status == StatusCompleted }

// AttemptEvent records one finished (or started) assessment attempt.
type AttemptEvent struct {
	Sequence     int64      `json:"sequence,omitempty" yaml:"-"`
	ID           string     `json:"id" yaml:"id"`
	StudentID    string     `json:"studentId" yaml:"studentId"`
	AssessmentID string     `json:"assessmentId" yaml:"assessmentId"`
	LessonID     string     `json:"lessonId" yaml:"lessonId"`
	SubjectID    string     `json:"subjectId" yaml:"subjectId"`
	Topic        string     `json:"topic,omitempty" yaml:"topic,omitempty"`
	Score        float64    `json:"score" yaml:"score"` // [0,1]
	Passed       bool       `json:"passed" yaml:"passed"`
	StartedAt    time.Time  `json:"startedAt" yaml:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty" yaml:"completedAt,omitempty"`
}

// At is the attempt's position on a timeline: completion time when known,
// start time otherwise.
func (a AttemptEvent) At() time.Time {
	if a.CompletedAt != nil {
		return *a.CompletedAt
	}
	return a.StartedAt
}

// Enrollment links a student to a subject.
type Enrollment struct {
	StudentID    string    `json:"studentId" yaml:"studentId"`
	SubjectID    string    `json:"subjectId" yaml:"subjectId"`
	TotalLessons int       `json:"totalLessons" yaml:"totalLessons"`
	EnrolledAt   time.Time `json:"enrolledAt" yaml:"enrolledAt"`
}

// Lesson is catalog data used to resolve lesson -> topic -> subject.
type Lesson struct {
	ID         string     `json:"id" yaml:"id"`
	Title      string     `json:"title" yaml:"title"`
	TopicID    string     `json:"topicId" yaml:"topicId"`
	TopicName  string     `json:"topicName" yaml:"topicName"`
	SubjectID  string     `json:"subjectId" yaml:"subjectId"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
}

// Filter narrows event queries. Zero fields do not filter.
type Filter struct {
	StudentID string
	LessonID  string
	SubjectID string
	From      time.Time // inclusive
	To        time.Time // inclusive
	Limit     int       // 0 = unlimited
}

// Contains reports whether t falls in the filter's time range.
func (f Filter) Contains(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.After(f.To) {
		return false
	}
	return true
}
