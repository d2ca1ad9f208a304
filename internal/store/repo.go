package store

import (
	"context"
	"time"

	"github.com/basil51/ai-school-sub003/internal/events"
)

// QueryOpts configures log queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match ("" = any)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// EventRepo is the SQLite event store adapter plus the catalog tables the
// analytics need to resolve lessons and enrollments.
type EventRepo interface {
	events.Store
	events.LessonCatalog

	// UpsertLesson creates or replaces a catalog lesson.
	UpsertLesson(ctx context.Context, l events.Lesson) error

	// UpsertEnrollment creates or replaces a (student, subject) enrollment.
	UpsertEnrollment(ctx context.Context, e events.Enrollment) error

	// Progress returns the stored progress for (student, lesson), or nil.
	Progress(ctx context.Context, studentID, lessonID string) (*events.ProgressEvent, error)
}

// CurveRepo persists learning curves with optimistic versioning.
type CurveRepo interface {
	events.CurveStore
}

// SessionRecord is the persisted envelope of an adaptive session.
type SessionRecord struct {
	ID           string
	AssessmentID string
	StudentID    string
	State        string
	Data         []byte
	Archived     bool
	UpdatedAt    time.Time
}

// SessionEventData captures a session lifecycle action.
type SessionEventData struct {
	SessionID       string
	Action          string
	StudentID       string
	AssessmentID    string
	QuestionsServed int
	CorrectAnswers  int
	DurationSecs    int
}

// HintEventData captures one hint shown to a student.
type HintEventData struct {
	SessionID  string
	QuestionID string
	HintNumber int
	HintText   string
}

// SessionRepo persists adaptive sessions and their lifecycle log.
type SessionRepo interface {
	// Save creates or replaces the session row.
	Save(ctx context.Context, rec SessionRecord) error

	// Load returns the session row, or nil if none exists.
	Load(ctx context.Context, id string) (*SessionRecord, error)

	// ListActive returns non-archived sessions updated at or after since.
	ListActive(ctx context.Context, since time.Time) ([]SessionRecord, error)

	// ListIdle returns non-archived sessions last updated before cutoff.
	ListIdle(ctx context.Context, cutoff time.Time) ([]SessionRecord, error)

	// Archive marks the session archived.
	Archive(ctx context.Context, id string) error

	// AppendSessionEvent records a lifecycle action.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendHint records a hint shown during a session.
	AppendHint(ctx context.Context, data HintEventData) error
}

// Question is one question-bank row.
type Question struct {
	ID            string   `json:"id" yaml:"id"`
	AssessmentID  string   `json:"assessmentId" yaml:"assessmentId"`
	LessonID      string   `json:"lessonId" yaml:"lessonId"`
	Topic         string   `json:"topic" yaml:"topic"`
	Concept       string   `json:"concept" yaml:"concept"`
	Prompt        string   `json:"prompt" yaml:"prompt"`
	Options       []string `json:"options,omitempty" yaml:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correctAnswer"`
	Difficulty    float64  `json:"difficulty" yaml:"difficulty"`
	Explanation   string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// QuestionRepo manages the question bank.
type QuestionRepo interface {
	UpsertQuestion(ctx context.Context, q Question) error

	// Questions returns all questions of an assessment ordered by difficulty.
	Questions(ctx context.Context, assessmentID string) ([]Question, error)
}

// LLMRequestEventData captures the data for a single text-generation request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored text-generation request.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one group (purpose or model).
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMEventRepo records and queries text-generation requests.
type LLMEventRepo interface {
	// AppendLLMRequest records a text-generation call.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
