package events

import (
	"context"
	"errors"
	"time"
)

// CurveTypeMastery is the only curve type currently produced.
const CurveTypeMastery = "mastery"

// ErrStaleCurve is returned by CurveStore.UpsertCurve when the stored
// version no longer matches the version the caller read.
var ErrStaleCurve = errors.New("learning curve was updated concurrently")

// CurvePoint is one point of a learning curve.
type CurvePoint struct {
	Time         time.Time  `json:"time"`
	MasteryRatio float64    `json:"masteryRatio"`
	Difficulty   Difficulty `json:"difficulty"`
}

// LearningCurve is the analyzed mastery time series of one student in one
// subject. DataPoints are ordered by Time, non-decreasing.
type LearningCurve struct {
	StudentID         string       `json:"studentId"`
	SubjectID         string       `json:"subjectId"`
	CurveType         string       `json:"curveType"`
	DataPoints        []CurvePoint `json:"dataPoints"`
	Slope             float64      `json:"slope"`
	PlateauPoints     []CurvePoint `json:"plateauPoints"`
	AccelerationZones []CurvePoint `json:"accelerationZones"`
	DifficultySpikes  []CurvePoint `json:"difficultySpikes"`
	Confidence        float64      `json:"confidence"`
	Version           int64        `json:"version"`
	UpdatedAt         time.Time    `json:"updatedAt"`

	// SourceSequence is the highest event sequence the curve was built
	// from. A stored event above it means the curve is out of date.
	SourceSequence int64 `json:"sourceSequence"`
}

// CurveStore persists learning curves keyed by (student, subject, type).
type CurveStore interface {
	// LoadCurve returns the stored curve, or nil if none exists.
	LoadCurve(ctx context.Context, studentID, subjectID, curveType string) (*LearningCurve, error)

	// UpsertCurve writes c if the stored version equals c.Version (0 for
	// "no row yet") and bumps the version. Otherwise it returns
	// ErrStaleCurve and leaves the row untouched.
	UpsertCurve(ctx context.Context, c *LearningCurve) error
}
