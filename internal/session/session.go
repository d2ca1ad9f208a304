// Package session runs adaptive assessment sessions: an explicit state
// machine that serves questions from an assessment's bank, adapts
// difficulty to the running accuracy, and records one assessment attempt
// when the session completes.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/basil51/ai-school-sub003/internal/apperr"
	"github.com/basil51/ai-school-sub003/internal/store"
)

// Response is one answered question.
type Response struct {
	QuestionID string    `json:"questionId"`
	LessonID   string    `json:"lessonId,omitempty"`
	Topic      string    `json:"topic,omitempty"`
	Concept    string    `json:"concept,omitempty"`
	Answer     string    `json:"answer"`
	Correct    bool      `json:"correct"`
	TimeSpent  int       `json:"timeSpent"` // seconds
	HintsUsed  int       `json:"hintsUsed"`
	Attempts   int       `json:"attempts"`
	Difficulty float64   `json:"difficulty"`
	At         time.Time `json:"at"`
}

// Result is the graded outcome of the most recent answer.
type Result struct {
	QuestionID    string `json:"questionId"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Feedback      string `json:"feedback"`
}

// Session is the persisted state of one student's attempt at one
// assessment. Methods are pure; the Manager serializes access.
type Session struct {
	ID           string `json:"id"`
	AssessmentID string `json:"assessmentId"`
	StudentID    string `json:"studentId"`
	State        State  `json:"state"`

	CurrentQuestionID string    `json:"currentQuestionId,omitempty"`
	QuestionShownAt   time.Time `json:"questionShownAt,omitempty"`
	HintsUsed         int       `json:"hintsUsed"`
	Remediation       bool      `json:"remediation,omitempty"`

	NextAction NextAction `json:"nextAction,omitempty"`
	LastResult *Result    `json:"lastResult,omitempty"`

	Difficulty float64         `json:"difficulty"`
	Confidence float64         `json:"confidence"`
	Responses  []Response      `json:"responses"`
	Asked      map[string]bool `json:"asked"`

	StartedAt   time.Time   `json:"startedAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	Completion  *Completion `json:"completion,omitempty"`
	Abandoned   bool        `json:"abandoned,omitempty"`

	// EventRecorded is set once the completion attempt event is stored.
	EventRecorded bool `json:"eventRecorded,omitempty"`

	// Revision increases with every mutation; older snapshots are never
	// persisted over newer ones.
	Revision int64 `json:"revision"`
}

func newSession(id, assessmentID, studentID string, now time.Time) *Session {
	return &Session{
		ID:           id,
		AssessmentID: assessmentID,
		StudentID:    studentID,
		State:        StateInit,
		Difficulty:   StartDifficulty,
		Confidence:   StartConfidence,
		Responses:    []Response{},
		Asked:        map[string]bool{},
		StartedAt:    now,
		UpdatedAt:    now,
	}
}

// CurrentState is State, or StateAbandoned for swept sessions.
func (s *Session) CurrentState() State {
	if s.Abandoned {
		return StateAbandoned
	}
	return s.State
}

func (s *Session) apply(a Action, now time.Time) error {
	if s.Abandoned {
		return apperr.InvalidTransition(string(a), string(StateAbandoned))
	}
	to, err := Next(s.State, a)
	if err != nil {
		return err
	}
	s.State = to
	s.UpdatedAt = now
	s.Revision++
	return nil
}

// Correct counts correct responses.
func (s *Session) Correct() int {
	n := 0
	for _, r := range s.Responses {
		if r.Correct {
			n++
		}
	}
	return n
}

// timeSpent sums the seconds reported with each answer.
func (s *Session) timeSpent() int {
	n := 0
	for _, r := range s.Responses {
		n += r.TimeSpent
	}
	return n
}

// Accuracy is correct/answered, 0 before the first answer.
func (s *Session) Accuracy() float64 {
	if len(s.Responses) == 0 {
		return 0
	}
	return float64(s.Correct()) / float64(len(s.Responses))
}

// present serves q, or completes the session when q is nil.
func (s *Session) present(a Action, q *store.Question, now time.Time) error {
	if q == nil {
		if err := s.apply(ActionExhaust, now); err != nil {
			return err
		}
		s.CurrentQuestionID = ""
		return nil
	}
	if err := s.apply(a, now); err != nil {
		return err
	}
	s.CurrentQuestionID = q.ID
	s.QuestionShownAt = now
	s.HintsUsed = 0
	s.Asked[q.ID] = true
	return nil
}

// AnswerInput is a submitted answer.
type AnswerInput struct {
	QuestionID string
	Answer     string
	TimeSpent  int // seconds; 0 derives it from when the question was shown
	Attempts   int // 0 counts as 1
}

// answer grades in against q and decides the next action.
func (s *Session) answer(q store.Question, in AnswerInput, correct bool, now time.Time) error {
	if s.State == StateQuestionPresented && in.QuestionID != s.CurrentQuestionID {
		return apperr.InvalidTransition(
			fmt.Sprintf("answer question %s", in.QuestionID),
			fmt.Sprintf("%s(%s)", s.State, s.CurrentQuestionID))
	}
	if err := s.apply(ActionAnswer, now); err != nil {
		return err
	}

	spent := in.TimeSpent
	if spent <= 0 && !s.QuestionShownAt.IsZero() {
		spent = int(now.Sub(s.QuestionShownAt).Seconds())
	}
	attempts := in.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	s.Responses = append(s.Responses, Response{
		QuestionID: q.ID,
		LessonID:   q.LessonID,
		Topic:      q.Topic,
		Concept:    q.Concept,
		Answer:     in.Answer,
		Correct:    correct,
		TimeSpent:  spent,
		HintsUsed:  s.HintsUsed,
		Attempts:   attempts,
		Difficulty: q.Difficulty,
		At:         now,
	})

	accuracy := s.Accuracy()
	s.Difficulty = AdjustDifficulty(s.Difficulty, correct, accuracy)
	s.Confidence = ConfidenceOf(s.Responses)
	s.NextAction = Decide(len(s.Responses), accuracy)
	s.Remediation = s.NextAction == NextRemediation
	s.LastResult = &Result{
		QuestionID:    q.ID,
		Correct:       correct,
		CorrectAnswer: q.CorrectAnswer,
		Feedback:      feedback(correct, q.CorrectAnswer),
	}
	return nil
}

func feedback(correct bool, answer string) string {
	if correct {
		return "Correct, well done."
	}
	return fmt.Sprintf("Not quite. The correct answer is %s.", answer)
}

// lastConcept is the concept of the most recent missed question.
func (s *Session) lastConcept() string {
	if n := len(s.Responses); n > 0 && !s.Responses[n-1].Correct {
		return s.Responses[n-1].Concept
	}
	return ""
}

// primaryQuestion returns the lesson and topic answered most often, used
// to attribute the completion attempt.
func (s *Session) primaryQuestion() (lessonID, topic string) {
	counts := map[string]int{}
	best := 0
	for _, r := range s.Responses {
		counts[r.LessonID]++
		if c := counts[r.LessonID]; c > best || (c == best && r.LessonID < lessonID) {
			best, lessonID, topic = c, r.LessonID, r.Topic
		}
	}
	return lessonID, topic
}

func (s *Session) record() (store.SessionRecord, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return store.SessionRecord{}, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return store.SessionRecord{
		ID:           s.ID,
		AssessmentID: s.AssessmentID,
		StudentID:    s.StudentID,
		State:        string(s.CurrentState()),
		Data:         data,
		Archived:     s.State == StateCompleted || s.Abandoned,
		UpdatedAt:    s.UpdatedAt,
	}, nil
}

func fromRecord(rec store.SessionRecord) (*Session, error) {
	var s Session
	if err := json.Unmarshal(rec.Data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", rec.ID, err)
	}
	if s.Asked == nil {
		s.Asked = map[string]bool{}
	}
	return &s, nil
}
