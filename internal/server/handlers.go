package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/basil51/ai-school-sub003/internal/events"
	"github.com/basil51/ai-school-sub003/internal/logger"
	"github.com/basil51/ai-school-sub003/internal/report"
	"github.com/basil51/ai-school-sub003/internal/session"
)

type handlers struct {
	reports  Reports
	sessions Sessions
	health   Pinger
	log      *logger.Logger
}

// bind decodes the request into req with gin's validator, writing a 400
// on failure.
func (h *handlers) bind(c *gin.Context, req any, query bool) bool {
	useJSONFieldNames()
	var err error
	if query {
		err = c.ShouldBindQuery(req)
	} else {
		err = c.ShouldBindJSON(req)
	}
	if err != nil {
		verr, fields := bindError(err)
		writeErrorFields(c, h.log, verr, fields)
		return false
	}
	return true
}

func (h *handlers) healthCheck(c *gin.Context) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			h.log.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type masteryQuery struct {
	StudentID string `form:"studentId"`
	LessonID  string `form:"lessonId"`
	SubjectID string `form:"subjectId"`
	Period    string `form:"period" binding:"omitempty,oneof=daily weekly monthly"`
}

func (h *handlers) getMastery(c *gin.Context) {
	var q masteryQuery
	if !h.bind(c, &q, true) {
		return
	}
	r, err := h.reports.Get(c.Request.Context(), report.Query{
		StudentID: q.StudentID,
		LessonID:  q.LessonID,
		SubjectID: q.SubjectID,
		Period:    q.Period,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type ingestRequest struct {
	StudentID    string     `json:"studentId" binding:"required"`
	AssessmentID string     `json:"assessmentId" binding:"required"`
	LessonID     string     `json:"lessonId" binding:"required"`
	Score        *float64   `json:"score" binding:"required,gte=0,lte=1"`
	Passed       bool       `json:"passed"`
	Topic        string     `json:"topic"`
	TimeSpent    int        `json:"timeSpent" binding:"gte=0"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
}

func (h *handlers) postMastery(c *gin.Context) {
	var req ingestRequest
	if !h.bind(c, &req, false) {
		return
	}
	r, err := h.reports.Ingest(c.Request.Context(), events.AttemptEvent{
		StudentID:    req.StudentID,
		AssessmentID: req.AssessmentID,
		LessonID:     req.LessonID,
		Topic:        req.Topic,
		Score:        *req.Score,
		Passed:       req.Passed,
		StartedAt:    req.StartedAt,
		CompletedAt:  req.CompletedAt,
	}, req.TimeSpent)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

type startRequest struct {
	StudentID    string `json:"studentId" binding:"required"`
	AssessmentID string `json:"assessmentId" binding:"required"`
}

func (h *handlers) startSession(c *gin.Context) {
	var req startRequest
	if !h.bind(c, &req, false) {
		return
	}
	step, err := h.sessions.Start(c.Request.Context(), req.StudentID, req.AssessmentID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, step)
}

type answerRequest struct {
	SessionID  string `json:"sessionId" binding:"required"`
	QuestionID string `json:"questionId" binding:"required"`
	Answer     string `json:"answer"`
	TimeSpent  int    `json:"timeSpent" binding:"gte=0"`
	Attempts   int    `json:"attempts" binding:"gte=0"`
}

func (h *handlers) answer(c *gin.Context) {
	var req answerRequest
	if !h.bind(c, &req, false) {
		return
	}
	step, err := h.sessions.Answer(c.Request.Context(), req.SessionID, session.AnswerInput{
		QuestionID: req.QuestionID,
		Answer:     req.Answer,
		TimeSpent:  req.TimeSpent,
		Attempts:   req.Attempts,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, step)
}

type hintRequest struct {
	SessionID  string `json:"sessionId" binding:"required"`
	QuestionID string `json:"questionId"`
}

func (h *handlers) hint(c *gin.Context) {
	var req hintRequest
	if !h.bind(c, &req, false) {
		return
	}
	step, err := h.sessions.Hint(c.Request.Context(), req.SessionID, req.QuestionID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, step)
}

type sessionRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

func (h *handlers) next(c *gin.Context) {
	var req sessionRequest
	if !h.bind(c, &req, false) {
		return
	}
	step, err := h.sessions.Next(c.Request.Context(), req.SessionID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, step)
}

func (h *handlers) complete(c *gin.Context) {
	var req sessionRequest
	if !h.bind(c, &req, false) {
		return
	}
	step, err := h.sessions.Complete(c.Request.Context(), req.SessionID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, step)
}

func (h *handlers) getSession(c *gin.Context) {
	step, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, step)
}

func (h *handlers) activeSessions(c *gin.Context) {
	views, err := h.sessions.Active(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": views})
}
