package session

import (
	"github.com/basil51/ai-school-sub003/internal/apperr"
)

// State is the lifecycle state of an adaptive session.
type State string

const (
	StateInit              State = "INIT"
	StateQuestionPresented State = "QUESTION_PRESENTED"
	StateFeedback          State = "FEEDBACK"
	StateCompleted         State = "COMPLETED"

	// StateAbandoned is reported for sessions archived by the idle sweeper.
	// It is not part of the transition table; every action is rejected.
	StateAbandoned State = "ABANDONED"
)

// Action is a caller operation on a session.
type Action string

const (
	ActionStart    Action = "start"
	ActionAnswer   Action = "answer"
	ActionHint     Action = "hint"
	ActionNext     Action = "next"
	ActionExhaust  Action = "exhaust"
	ActionComplete Action = "complete"
)

// transitions is the complete table of legal moves. Hint is a side
// channel: it is legal only while a question is presented and leaves the
// state unchanged.
var transitions = map[State]map[Action]State{
	StateInit: {
		ActionStart: StateQuestionPresented,
	},
	StateQuestionPresented: {
		ActionAnswer:   StateFeedback,
		ActionHint:     StateQuestionPresented,
		ActionExhaust:  StateCompleted,
		ActionComplete: StateCompleted,
	},
	StateFeedback: {
		ActionNext:     StateQuestionPresented,
		ActionExhaust:  StateCompleted,
		ActionComplete: StateCompleted,
	},
	StateCompleted: {},
}

// Next returns the state reached by applying a in s, or an
// InvalidTransition error.
func Next(s State, a Action) (State, error) {
	if to, ok := transitions[s][a]; ok {
		return to, nil
	}
	return s, apperr.InvalidTransition(string(a), string(s))
}

// Terminal reports whether no further actions are accepted.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAbandoned
}

// NextAction is the decision taken after each answer.
type NextAction string

const (
	NextContinue    NextAction = "CONTINUE"
	NextRemediation NextAction = "REMEDIATION"
	NextComplete    NextAction = "COMPLETE"
)
