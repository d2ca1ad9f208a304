// Package fixture loads catalog and learning-event data from YAML files
// into the store.
package fixture

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/basil51/ai-school-sub003/internal/events"
	"github.com/basil51/ai-school-sub003/internal/store"
)

// File is the YAML document layout.
type File struct {
	Lessons     []events.Lesson        `yaml:"lessons"`
	Enrollments []events.Enrollment    `yaml:"enrollments"`
	Progress    []events.ProgressEvent `yaml:"progress"`
	Attempts    []events.AttemptEvent  `yaml:"attempts"`
	Questions   []store.Question       `yaml:"questions"`
}

// Counts reports how many rows of each kind were written.
type Counts struct {
	Lessons, Enrollments, Progress, Attempts, Questions int
}

// Pair names one student's learning curve in one subject.
type Pair struct {
	StudentID, SubjectID string
}

// Sink is the set of store writers a fixture needs.
type Sink interface {
	UpsertLesson(ctx context.Context, l events.Lesson) error
	UpsertEnrollment(ctx context.Context, e events.Enrollment) error
	UpsertProgress(ctx context.Context, p events.ProgressEvent) error
	AppendAttempt(ctx context.Context, a events.AttemptEvent) error
}

func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, f.Validate()
}

// Validate checks required identifiers and value ranges.
func (f *File) Validate() error {
	for i, l := range f.Lessons {
		if l.ID == "" || l.SubjectID == "" {
			return fmt.Errorf("lessons[%d]: id and subjectId are required", i)
		}
	}
	for i, e := range f.Enrollments {
		if e.StudentID == "" || e.SubjectID == "" {
			return fmt.Errorf("enrollments[%d]: studentId and subjectId are required", i)
		}
	}
	for i, p := range f.Progress {
		if p.StudentID == "" || p.LessonID == "" {
			return fmt.Errorf("progress[%d]: studentId and lessonId are required", i)
		}
		if p.Status != "" && !p.Status.Valid() {
			return fmt.Errorf("progress[%d]: unknown status %q", i, p.Status)
		}
	}
	for i, a := range f.Attempts {
		if a.StudentID == "" || a.LessonID == "" {
			return fmt.Errorf("attempts[%d]: studentId and lessonId are required", i)
		}
		if a.Score < 0 || a.Score > 1 {
			return fmt.Errorf("attempts[%d]: score %v outside [0,1]", i, a.Score)
		}
	}
	for i, q := range f.Questions {
		if q.ID == "" || q.AssessmentID == "" || q.CorrectAnswer == "" {
			return fmt.Errorf("questions[%d]: id, assessmentId and correctAnswer are required", i)
		}
	}
	return nil
}

// Apply writes the fixture. Lessons go first so later rows can resolve
// their subject.
func (f *File) Apply(ctx context.Context, sink Sink, questions store.QuestionRepo) (Counts, error) {
	var c Counts
	for _, l := range f.Lessons {
		if err := sink.UpsertLesson(ctx, l); err != nil {
			return c, fmt.Errorf("lesson %s: %w", l.ID, err)
		}
		c.Lessons++
	}
	for _, e := range f.Enrollments {
		if err := sink.UpsertEnrollment(ctx, e); err != nil {
			return c, fmt.Errorf("enrollment %s/%s: %w", e.StudentID, e.SubjectID, err)
		}
		c.Enrollments++
	}
	for _, p := range f.Progress {
		if p.Status == "" {
			p.Status = events.StatusInProgress
		}
		if err := sink.UpsertProgress(ctx, p); err != nil {
			return c, fmt.Errorf("progress %s/%s: %w", p.StudentID, p.LessonID, err)
		}
		c.Progress++
	}
	for _, a := range f.Attempts {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if err := sink.AppendAttempt(ctx, a); err != nil {
			return c, fmt.Errorf("attempt %s: %w", a.ID, err)
		}
		c.Attempts++
	}
	if questions != nil {
		for _, q := range f.Questions {
			if q.Difficulty == 0 {
				q.Difficulty = 0.5
			}
			if err := questions.UpsertQuestion(ctx, q); err != nil {
				return c, fmt.Errorf("question %s: %w", q.ID, err)
			}
			c.Questions++
		}
	}
	return c, nil
}

// Pairs lists the (student, subject) curves the fixture's progress and
// attempt rows feed, in file order without repeats. A row without a subject
// takes its lesson's, looked up in the file first and then in lessons.
// Rows whose lesson is unknown are skipped.
func (f *File) Pairs(ctx context.Context, lessons events.LessonCatalog) ([]Pair, error) {
	subjects := make(map[string]string, len(f.Lessons))
	for _, l := range f.Lessons {
		subjects[l.ID] = l.SubjectID
	}
	resolve := func(lessonID, subjectID string) (string, error) {
		if subjectID != "" {
			return subjectID, nil
		}
		if s, ok := subjects[lessonID]; ok {
			return s, nil
		}
		if lessons == nil {
			return "", nil
		}
		l, err := lessons.Lesson(ctx, lessonID)
		if err != nil {
			return "", fmt.Errorf("lesson %s: %w", lessonID, err)
		}
		if l != nil {
			subjects[lessonID] = l.SubjectID
			return l.SubjectID, nil
		}
		return "", nil
	}

	var out []Pair
	seen := make(map[Pair]bool)
	add := func(studentID, lessonID, subjectID string) error {
		subject, err := resolve(lessonID, subjectID)
		if err != nil || subject == "" {
			return err
		}
		p := Pair{StudentID: studentID, SubjectID: subject}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
		return nil
	}
	for _, p := range f.Progress {
		if err := add(p.StudentID, p.LessonID, p.SubjectID); err != nil {
			return nil, err
		}
	}
	for _, a := range f.Attempts {
		if err := add(a.StudentID, a.LessonID, a.SubjectID); err != nil {
			return nil, err
		}
	}
	return out, nil
}
