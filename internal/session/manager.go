package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/basil51/ai-school-sub003/internal/apperr"
	"github.com/basil51/ai-school-sub003/internal/events"
	"github.com/basil51/ai-school-sub003/internal/grading"
	"github.com/basil51/ai-school-sub003/internal/hints"
	"github.com/basil51/ai-school-sub003/internal/logger"
	"github.com/basil51/ai-school-sub003/internal/metrics"
	"github.com/basil51/ai-school-sub003/internal/store"
)

// QuestionSource supplies an assessment's question bank.
type QuestionSource interface {
	Questions(ctx context.Context, assessmentID string) ([]store.Question, error)
}

// HintSource produces hints and wrong-answer explanations.
type HintSource interface {
	Hint(ctx context.Context, q store.Question, hintNumber int) (*hints.Hint, error)
	Explanation(ctx context.Context, q store.Question, answer string) (*hints.Explanation, error)
}

// EventSink records completion attempts and the lesson progress they
// imply. store.EventRepo satisfies it.
type EventSink interface {
	events.Writer
	Progress(ctx context.Context, studentID, lessonID string) (*events.ProgressEvent, error)
}

// CurveRefresher recomputes a learning curve after a new attempt.
type CurveRefresher interface {
	Refresh(ctx context.Context, studentID, subjectID string) (*events.LearningCurve, error)
}

// Deps wires a Manager. Questions, Sessions and Events are required.
type Deps struct {
	Questions QuestionSource
	Sessions  store.SessionRepo
	Events    EventSink
	Lessons   events.LessonCatalog
	Hints     HintSource
	Curves    CurveRefresher
	Log       *logger.Logger
	Metrics   *metrics.Metrics
}

// Manager owns live sessions. Each session has its own lock that guards
// state mutation only; storage and generation run outside it.
type Manager struct {
	deps        Deps
	log         *logger.Logger
	idleTimeout time.Duration
	now         func() time.Time
	newID       func() string

	mu   sync.Mutex
	live map[string]*entry
}

type entry struct {
	id           string
	assessmentID string
	studentID    string

	mu       sync.Mutex
	s        *Session
	emitting bool

	saveMu   sync.Mutex
	savedRev int64
}

// NewManager creates a Manager. Sessions idle longer than idleTimeout are
// excluded from Active and abandoned by SweepAbandoned.
func NewManager(deps Deps, idleTimeout time.Duration) *Manager {
	log := logger.OrNop(deps.Log)
	if deps.Hints == nil {
		deps.Hints = hints.NewService(nil, nil, hints.DefaultConfig(), log)
	}
	return &Manager{
		deps:        deps,
		log:         log,
		idleTimeout: idleTimeout,
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
		live:        make(map[string]*entry),
	}
}

// QuestionView is a question as shown to the student.
type QuestionView struct {
	ID         string   `json:"id"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options,omitempty"`
	Topic      string   `json:"topic,omitempty"`
	Difficulty float64  `json:"difficulty"`
}

// View is the client-facing snapshot of a session.
type View struct {
	SessionID    string        `json:"sessionId"`
	AssessmentID string        `json:"assessmentId"`
	StudentID    string        `json:"studentId"`
	State        State         `json:"state"`
	Question     *QuestionView `json:"question,omitempty"`
	HintsUsed    int           `json:"hintsUsed"`
	Answered     int           `json:"answered"`
	Correct      int           `json:"correct"`
	Accuracy     float64       `json:"accuracy"`
	Difficulty   float64       `json:"difficulty"`
	Confidence   float64       `json:"confidence"`
	NextAction   NextAction    `json:"nextAction,omitempty"`
	LastResult   *Result       `json:"lastResult,omitempty"`
	StartedAt    time.Time     `json:"startedAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Step is the result of a session operation.
type Step struct {
	View
	Hint        *hints.Hint        `json:"hint,omitempty"`
	Explanation *hints.Explanation `json:"explanation,omitempty"`
	Analytics   *Analytics         `json:"analytics,omitempty"`
	Completion  *Completion        `json:"completion,omitempty"`
}

func viewOf(s *Session, bank []store.Question) View {
	v := View{
		SessionID:    s.ID,
		AssessmentID: s.AssessmentID,
		StudentID:    s.StudentID,
		State:        s.CurrentState(),
		HintsUsed:    s.HintsUsed,
		Answered:     len(s.Responses),
		Correct:      s.Correct(),
		Accuracy:     s.Accuracy(),
		Difficulty:   s.Difficulty,
		Confidence:   s.Confidence,
		NextAction:   s.NextAction,
		LastResult:   s.LastResult,
		StartedAt:    s.StartedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.State == StateQuestionPresented && !s.Abandoned {
		if q := questionByID(bank, s.CurrentQuestionID); q != nil {
			v.Question = &QuestionView{
				ID:         q.ID,
				Prompt:     q.Prompt,
				Options:    q.Options,
				Topic:      q.Topic,
				Difficulty: q.Difficulty,
			}
		}
	}
	return v
}

func questionByID(bank []store.Question, id string) *store.Question {
	for i := range bank {
		if bank[i].ID == id {
			return &bank[i]
		}
	}
	return nil
}

// Start opens a session and presents the first question.
func (m *Manager) Start(ctx context.Context, studentID, assessmentID string) (*Step, error) {
	if studentID == "" || assessmentID == "" {
		return nil, apperr.Validation("studentId and assessmentId are required")
	}
	bank, err := m.bank(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := newSession(m.newID(), assessmentID, studentID, now)
	q := PickQuestion(bank, s.Asked, s.Difficulty, false, "")
	if err := s.present(ActionStart, q, now); err != nil {
		return nil, err
	}

	e := &entry{id: s.ID, assessmentID: assessmentID, studentID: studentID, s: s}
	rec, err := s.record()
	if err != nil {
		return nil, apperr.Internal("encode session", err)
	}
	// A session becomes reachable only once its first record is stored.
	if err := m.persist(ctx, e, rec, s.Revision); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.live[s.ID] = e
	m.mu.Unlock()
	m.logEvent(ctx, s, "start")
	m.deps.Metrics.SessionEvent(metrics.SessionStarted)
	m.log.Info("session started", "session", s.ID, "student", studentID, "assessment", assessmentID)

	return &Step{View: viewOf(s, bank)}, nil
}

// Answer grades an answer to the current question.
func (m *Manager) Answer(ctx context.Context, sessionID string, in AnswerInput) (*Step, error) {
	if sessionID == "" || in.QuestionID == "" {
		return nil, apperr.Validation("sessionId and questionId are required")
	}
	e, err := m.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	bank, err := m.bank(ctx, e.assessmentID)
	if err != nil {
		return nil, err
	}
	q := questionByID(bank, in.QuestionID)
	if q == nil {
		return nil, apperr.NotFound("question", in.QuestionID)
	}
	correct := grading.Match(in.Answer, q.CorrectAnswer, q.Options)

	e.mu.Lock()
	if err := e.s.answer(*q, in, correct, m.now()); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	rec, err := e.s.record()
	rev := e.s.Revision
	analytics := Analyze(e.s)
	step := &Step{View: viewOf(e.s, bank), Analytics: &analytics}
	e.mu.Unlock()

	if err != nil {
		return nil, apperr.Internal("encode session", err)
	}
	if err := m.persist(ctx, e, rec, rev); err != nil {
		return nil, err
	}

	if !correct {
		exp, err := m.deps.Hints.Explanation(ctx, *q, in.Answer)
		if err != nil {
			m.log.Warn("explanation unavailable", "session", sessionID, "question", q.ID, "error", err)
		} else {
			step.Explanation = exp
		}
	}
	return step, nil
}

// Next leaves FEEDBACK. It presents another question, or completes the
// session when the rules say so or the bank is exhausted.
func (m *Manager) Next(ctx context.Context, sessionID string) (*Step, error) {
	e, err := m.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	bank, err := m.bank(ctx, e.assessmentID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	s := e.s
	if s.Abandoned {
		e.mu.Unlock()
		return nil, apperr.InvalidTransition(string(ActionNext), string(StateAbandoned))
	}
	if _, err := Next(s.State, ActionNext); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if s.NextAction == NextComplete {
		e.mu.Unlock()
		return m.complete(ctx, e, false)
	}
	q := PickQuestion(bank, s.Asked, s.Difficulty, s.Remediation, s.lastConcept())
	if q == nil {
		e.mu.Unlock()
		return m.complete(ctx, e, true)
	}
	if err := s.present(ActionNext, q, m.now()); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	rec, err := s.record()
	rev := s.Revision
	step := &Step{View: viewOf(s, bank)}
	e.mu.Unlock()

	if err != nil {
		return nil, apperr.Internal("encode session", err)
	}
	if err := m.persist(ctx, e, rec, rev); err != nil {
		return nil, err
	}
	return step, nil
}

// Hint returns the next hint for the current question. questionID may be
// empty; when set it must name the current question.
func (m *Manager) Hint(ctx context.Context, sessionID, questionID string) (*Step, error) {
	e, err := m.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	current, n, err := hintable(e.s, questionID)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	bank, err := m.bank(ctx, e.assessmentID)
	if err != nil {
		return nil, err
	}
	q := questionByID(bank, current)
	if q == nil {
		return nil, apperr.NotFound("question", current)
	}
	h, err := m.deps.Hints.Hint(ctx, *q, n)
	if err != nil {
		return nil, err
	}

	// The session may have moved on while the hint was generated.
	e.mu.Lock()
	if _, _, err := hintable(e.s, current); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := e.s.apply(ActionHint, m.now()); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.s.HintsUsed++
	rec, err := e.s.record()
	rev := e.s.Revision
	step := &Step{View: viewOf(e.s, bank), Hint: h}
	e.mu.Unlock()

	if err != nil {
		return nil, apperr.Internal("encode session", err)
	}
	if err := m.persist(ctx, e, rec, rev); err != nil {
		return nil, err
	}
	if err := m.deps.Sessions.AppendHint(ctx, store.HintEventData{
		SessionID:  sessionID,
		QuestionID: current,
		HintNumber: h.Number,
		HintText:   h.Text,
	}); err != nil {
		m.log.Warn("failed to record hint", "session", sessionID, "error", err)
	}
	return step, nil
}

// hintable reports the current question and the number of the next hint.
func hintable(s *Session, questionID string) (string, int, error) {
	if s.Abandoned {
		return "", 0, apperr.InvalidTransition(string(ActionHint), string(StateAbandoned))
	}
	if _, err := Next(s.State, ActionHint); err != nil {
		return "", 0, err
	}
	if questionID != "" && questionID != s.CurrentQuestionID {
		return "", 0, apperr.InvalidTransition("hint for question "+questionID, string(s.State)+"("+s.CurrentQuestionID+")")
	}
	return s.CurrentQuestionID, s.HintsUsed + 1, nil
}

// Complete finishes the session. Repeated calls return the same result and
// record the attempt event once; a session without answers records none.
func (m *Manager) Complete(ctx context.Context, sessionID string) (*Step, error) {
	e, err := m.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.complete(ctx, e, false)
}

func (m *Manager) complete(ctx context.Context, e *entry, exhausted bool) (*Step, error) {
	now := m.now()

	e.mu.Lock()
	s := e.s
	finished := false
	if s.State != StateCompleted {
		action := ActionComplete
		if exhausted {
			action = ActionExhaust
		}
		if err := s.apply(action, now); err != nil {
			e.mu.Unlock()
			return nil, err
		}
		s.CurrentQuestionID = ""
		s.NextAction = NextComplete
		s.CompletedAt = &now
		s.Completion = buildCompletion(s, m.newID(), exhausted, now)
		finished = true
	}
	// A session closed before any answer records no attempt.
	emit := len(s.Responses) > 0 && !s.EventRecorded && !e.emitting
	if emit {
		e.emitting = true
	}
	attempt := attemptOf(s)
	spent := s.timeSpent()
	step := &Step{View: viewOf(s, nil), Completion: s.Completion}
	e.mu.Unlock()

	if !emit && !finished {
		return step, nil
	}

	var err error
	if emit {
		err = m.emit(ctx, &attempt)
	}

	e.mu.Lock()
	if emit {
		e.emitting = false
		if err == nil {
			s.EventRecorded = true
			s.Revision++
		}
	}
	rec, recErr := s.record()
	rev := s.Revision
	e.mu.Unlock()

	if recErr != nil {
		return nil, apperr.Internal("encode session", recErr)
	}
	if perr := m.persist(ctx, e, rec, rev); perr != nil {
		return nil, perr
	}
	if err != nil {
		return nil, err
	}

	m.logEvent(ctx, s, "complete")
	m.deps.Metrics.SessionEvent(metrics.SessionCompleted)
	m.log.Info("session completed",
		"session", s.ID,
		"score", step.Completion.Score,
		"passed", step.Completion.Passed,
		"exhausted", exhausted,
		"recorded", emit,
	)
	if emit {
		m.updateProgress(ctx, attempt, spent)
		m.refreshCurve(ctx, attempt)
	}
	m.forget(s.ID)
	return step, nil
}

func attemptOf(s *Session) events.AttemptEvent {
	lessonID, topic := s.primaryQuestion()
	a := events.AttemptEvent{
		StudentID:    s.StudentID,
		AssessmentID: s.AssessmentID,
		LessonID:     lessonID,
		Topic:        topic,
		StartedAt:    s.StartedAt,
	}
	if c := s.Completion; c != nil {
		a.ID = c.AttemptID
		a.Score = c.Score
		a.Passed = c.Passed
		completed := c.CompletedAt
		a.CompletedAt = &completed
	}
	return a
}

// emit stores the completion attempt, resolving its subject from the
// lesson catalog.
func (m *Manager) emit(ctx context.Context, a *events.AttemptEvent) error {
	if m.deps.Lessons != nil && a.LessonID != "" {
		l, err := m.deps.Lessons.Lesson(ctx, a.LessonID)
		switch {
		case err != nil:
			m.log.Warn("lesson lookup failed", "lesson", a.LessonID, "error", err)
		case l != nil:
			a.SubjectID = l.SubjectID
			if a.Topic == "" {
				a.Topic = l.TopicName
			}
		}
	}
	if err := m.deps.Events.AppendAttempt(ctx, *a); err != nil {
		return apperr.Upstream("record attempt", err)
	}
	return nil
}

// updateProgress moves the lesson's progress row the same way an ingested
// attempt does. The attempt is already stored, so failures are logged only.
func (m *Manager) updateProgress(ctx context.Context, a events.AttemptEvent, timeSpent int) {
	if a.LessonID == "" {
		return
	}
	prev, err := m.deps.Events.Progress(ctx, a.StudentID, a.LessonID)
	if err != nil {
		m.log.Warn("progress lookup failed", "student", a.StudentID, "lesson", a.LessonID, "error", err)
		return
	}
	p := events.ProgressAfter(prev, a, timeSpent)
	p.UpdatedAt = m.now()
	if err := m.deps.Events.UpsertProgress(ctx, p); err != nil {
		m.log.Warn("progress update failed", "student", a.StudentID, "lesson", a.LessonID, "error", err)
	}
}

func (m *Manager) refreshCurve(ctx context.Context, a events.AttemptEvent) {
	if m.deps.Curves == nil || a.SubjectID == "" {
		return
	}
	if _, err := m.deps.Curves.Refresh(ctx, a.StudentID, a.SubjectID); err != nil {
		m.log.Warn("curve refresh failed", "student", a.StudentID, "subject", a.SubjectID, "error", err)
	}
}

// Get returns the current view of a session.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Step, error) {
	e, err := m.entry(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	bank, err := m.bank(ctx, e.assessmentID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	step := &Step{View: viewOf(e.s, bank), Completion: e.s.Completion}
	if len(e.s.Responses) > 0 {
		a := Analyze(e.s)
		step.Analytics = &a
	}
	return step, nil
}

// Active lists unfinished sessions with activity inside the idle timeout.
func (m *Manager) Active(ctx context.Context) ([]View, error) {
	recs, err := m.deps.Sessions.ListActive(ctx, m.now().Add(-m.idleTimeout))
	if err != nil {
		return nil, apperr.Upstream("list sessions", err)
	}
	views := make([]View, 0, len(recs))
	for _, rec := range recs {
		s, err := fromRecord(rec)
		if err != nil {
			m.log.Warn("skipping unreadable session", "session", rec.ID, "error", err)
			continue
		}
		if s.State.Terminal() || s.Abandoned {
			continue
		}
		views = append(views, viewOf(s, nil))
	}
	return views, nil
}

// SweepAbandoned marks sessions idle past the timeout as abandoned and
// returns how many it swept.
func (m *Manager) SweepAbandoned(ctx context.Context) (int, error) {
	now := m.now()
	cutoff := now.Add(-m.idleTimeout)
	recs, err := m.deps.Sessions.ListIdle(ctx, cutoff)
	if err != nil {
		return 0, apperr.Upstream("list idle sessions", err)
	}

	swept := 0
	for _, rec := range recs {
		e, err := m.entry(ctx, rec.ID)
		if err != nil {
			m.log.Warn("archiving unreadable session", "session", rec.ID, "error", err)
			if aerr := m.deps.Sessions.Archive(ctx, rec.ID); aerr != nil {
				return swept, apperr.Upstream("archive session", aerr)
			}
			continue
		}

		e.mu.Lock()
		s := e.s
		if s.State.Terminal() || s.Abandoned || !s.UpdatedAt.Before(cutoff) {
			e.mu.Unlock()
			continue
		}
		s.Abandoned = true
		s.Revision++
		snapshot, rerr := s.record()
		rev := s.Revision
		e.mu.Unlock()

		if rerr != nil {
			return swept, apperr.Internal("encode session", rerr)
		}
		if err := m.persist(ctx, e, snapshot, rev); err != nil {
			return swept, err
		}
		m.logEvent(ctx, s, "abandon")
		m.deps.Metrics.SessionEvent(metrics.SessionAbandoned)
		m.forget(s.ID)
		swept++
	}
	if swept > 0 {
		m.log.Info("abandoned idle sessions", "count", swept, "idle_timeout", m.idleTimeout.String())
	}
	return swept, nil
}

// RunSweeper calls SweepAbandoned every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := m.SweepAbandoned(ctx); err != nil {
				m.log.Error("session sweep failed", "error", err)
			}
		}
	}
}

func (m *Manager) bank(ctx context.Context, assessmentID string) ([]store.Question, error) {
	bank, err := m.deps.Questions.Questions(ctx, assessmentID)
	if err != nil {
		return nil, apperr.Upstream("load questions", err)
	}
	if len(bank) == 0 {
		return nil, apperr.NotFound("assessment", assessmentID)
	}
	return bank, nil
}

// entry returns the live entry, loading it from the repository on a miss.
func (m *Manager) entry(ctx context.Context, id string) (*entry, error) {
	if id == "" {
		return nil, apperr.Validation("sessionId is required")
	}
	m.mu.Lock()
	e, ok := m.live[id]
	m.mu.Unlock()
	if ok {
		return e, nil
	}

	rec, err := m.deps.Sessions.Load(ctx, id)
	if err != nil {
		return nil, apperr.Upstream("load session", err)
	}
	if rec == nil {
		return nil, apperr.NotFound("session", id)
	}
	s, err := fromRecord(*rec)
	if err != nil {
		return nil, apperr.Internal("decode session", err)
	}
	if rec.Archived && s.State != StateCompleted {
		s.Abandoned = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.live[id]; ok {
		return e, nil
	}
	e = &entry{
		id:           s.ID,
		assessmentID: s.AssessmentID,
		studentID:    s.StudentID,
		s:            s,
		savedRev:     s.Revision,
	}
	m.live[id] = e
	return e, nil
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.live, id)
	m.mu.Unlock()
}

// persist saves rec unless a newer revision was already written.
func (m *Manager) persist(ctx context.Context, e *entry, rec store.SessionRecord, rev int64) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	if rev <= e.savedRev {
		return nil
	}
	if err := m.deps.Sessions.Save(ctx, rec); err != nil {
		return apperr.Upstream("save session", err)
	}
	e.savedRev = rev
	return nil
}

// logEvent appends a lifecycle row; failures are logged only.
func (m *Manager) logEvent(ctx context.Context, s *Session, action string) {
	data := store.SessionEventData{
		SessionID:    s.ID,
		Action:       action,
		StudentID:    s.StudentID,
		AssessmentID: s.AssessmentID,
	}
	if action != "start" {
		data.QuestionsServed = len(s.Asked)
		data.CorrectAnswers = s.Correct()
		data.DurationSecs = int(s.UpdatedAt.Sub(s.StartedAt).Seconds())
	}
	if err := m.deps.Sessions.AppendSessionEvent(ctx, data); err != nil {
		m.log.Warn("failed to record session event", "session", s.ID, "action", action, "error", err)
	}
}
