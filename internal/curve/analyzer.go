// Package curve builds a student's mastery time series in a subject and
// derives its slope, plateaus, acceleration zones, difficulty spikes and a
// coarse confidence score.
package curve

import (
	"sort"
	"time"

	"github.com/basil51/ai-school-sub003/internal/events"
)

const (
	// PlateauWindow is the number of points, centered on the candidate,
	// whose variance decides a plateau. It must be odd.
	PlateauWindow = 7

	// PlateauVariance is the exclusive upper bound on window variance for
	// a plateau.
	PlateauVariance = 0.01

	// AccelerationVelocity is the exclusive lower bound, in mastery per
	// day, for an acceleration zone.
	AccelerationVelocity = 0.1

	// SpikeDrop is the exclusive lower bound on the mastery drop between
	// consecutive points for a difficulty spike.
	SpikeDrop = 0.1

	// MinDeltaDays keeps velocity finite for events at the same instant.
	MinDeltaDays = 1e-6

	// LowConfidencePoints and HighConfidencePoints bound the three
	// confidence buckets.
	LowConfidencePoints  = 5
	HighConfidencePoints = 10

	LowConfidence    = 0.3
	MediumConfidence = 0.6
	HighConfidence   = 0.9
)

// Params holds the tunables of the analysis. DefaultParams returns the
// constants above.
type Params struct {
	PlateauWindow        int
	PlateauVariance      float64
	AccelerationVelocity float64
	SpikeDrop            float64
}

// DefaultParams returns the standard analysis parameters.
func DefaultParams() Params {
	return Params{
		PlateauWindow:        PlateauWindow,
		PlateauVariance:      PlateauVariance,
		AccelerationVelocity: AccelerationVelocity,
		SpikeDrop:            SpikeDrop,
	}
}

// entry is one event placed on the timeline.
type entry struct {
	at       time.Time
	seq      int64
	mastered bool
	lessonID string
}

// Analyze builds the learning curve of studentID in subjectID from the
// given events using DefaultParams. difficulties maps lesson IDs to their
// difficulty and may be nil.
func Analyze(studentID, subjectID string, progress []events.ProgressEvent, attempts []events.AttemptEvent, difficulties map[string]events.Difficulty) *events.LearningCurve {
	return DefaultParams().Analyze(studentID, subjectID, progress, attempts, difficulties)
}

// Analyze builds the learning curve with p's thresholds. Events belonging
// to other students, or to another subject when both sides name one, are
// ignored.
func (p Params) Analyze(studentID, subjectID string, progress []events.ProgressEvent, attempts []events.AttemptEvent, difficulties map[string]events.Difficulty) *events.LearningCurve {
	timeline := merge(studentID, subjectID, progress, attempts)
	points := cumulative(timeline, difficulties)

	var source int64
	for _, e := range timeline {
		source = max(source, e.seq)
	}

	return &events.LearningCurve{
		SourceSequence:    source,
		StudentID:         studentID,
		SubjectID:         subjectID,
		CurveType:         events.CurveTypeMastery,
		DataPoints:        points,
		Slope:             Slope(points),
		PlateauPoints:     p.plateaus(points),
		AccelerationZones: p.accelerations(points),
		DifficultySpikes:  p.spikes(points),
		Confidence:        Confidence(len(points)),
	}
}

func sameSubject(want, got string) bool {
	return want == "" || got == "" || want == got
}

// merge puts progress and attempt events on one timeline ordered by
// completion time, falling back to start time. Ties keep store order.
func merge(studentID, subjectID string, progress []events.ProgressEvent, attempts []events.AttemptEvent) []entry {
	timeline := make([]entry, 0, len(progress)+len(attempts))
	for _, e := range progress {
		if e.StudentID != studentID || !sameSubject(subjectID, e.SubjectID) {
			continue
		}
		timeline = append(timeline, entry{
			at:       progressTime(e),
			seq:      e.Sequence,
			mastered: e.Mastered(),
			lessonID: e.LessonID,
		})
	}
	for _, a := range attempts {
		if a.StudentID != studentID || !sameSubject(subjectID, a.SubjectID) {
			continue
		}
		timeline = append(timeline, entry{
			at:       a.At(),
			seq:      a.Sequence,
			mastered: a.Passed,
			lessonID: a.LessonID,
		})
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		if !timeline[i].at.Equal(timeline[j].at) {
			return timeline[i].at.Before(timeline[j].at)
		}
		return timeline[i].seq < timeline[j].seq
	})
	return timeline
}

func progressTime(e events.ProgressEvent) time.Time {
	switch {
	case e.CompletedAt != nil:
		return *e.CompletedAt
	case e.StartedAt != nil:
		return *e.StartedAt
	}
	return e.UpdatedAt
}

// cumulative emits one point per event carrying the running share of
// mastered events.
func cumulative(timeline []entry, difficulties map[string]events.Difficulty) []events.CurvePoint {
	points := make([]events.CurvePoint, 0, len(timeline))
	mastered := 0
	for i, e := range timeline {
		if e.mastered {
			mastered++
		}
		d, ok := difficulties[e.lessonID]
		if !ok || d == "" {
			d = events.DifficultyIntermediate
		}
		points = append(points, events.CurvePoint{
			Time:         e.at,
			MasteryRatio: float64(mastered) / float64(i+1),
			Difficulty:   d,
		})
	}
	return points
}

// Slope is the mastery change per day between the first and last point,
// with the span floored at one day. Fewer than two points give 0.
func Slope(points []events.CurvePoint) float64 {
	if len(points) < 2 {
		return 0
	}
	first, last := points[0], points[len(points)-1]
	days := last.Time.Sub(first.Time).Hours() / 24
	if days < 1 {
		days = 1
	}
	return (last.MasteryRatio - first.MasteryRatio) / days
}

// Confidence is a coarse reliability bucket by point count.
func Confidence(n int) float64 {
	switch {
	case n < LowConfidencePoints:
		return LowConfidence
	case n < HighConfidencePoints:
		return MediumConfidence
	}
	return HighConfidence
}

func (p Params) plateaus(points []events.CurvePoint) []events.CurvePoint {
	out := []events.CurvePoint{}
	half := p.PlateauWindow / 2
	if half < 1 {
		return out
	}
	for i := half; i+half < len(points); i++ {
		if variance(points[i-half:i+half+1]) < p.PlateauVariance {
			out = append(out, points[i])
		}
	}
	return out
}

func (p Params) accelerations(points []events.CurvePoint) []events.CurvePoint {
	out := []events.CurvePoint{}
	for i := 1; i < len(points); i++ {
		days := points[i].Time.Sub(points[i-1].Time).Hours() / 24
		if days < MinDeltaDays {
			days = MinDeltaDays
		}
		velocity := (points[i].MasteryRatio - points[i-1].MasteryRatio) / days
		if velocity > p.AccelerationVelocity {
			out = append(out, points[i])
		}
	}
	return out
}

func (p Params) spikes(points []events.CurvePoint) []events.CurvePoint {
	out := []events.CurvePoint{}
	for i := 1; i < len(points); i++ {
		if points[i].MasteryRatio < points[i-1].MasteryRatio-p.SpikeDrop {
			out = append(out, points[i])
		}
	}
	return out
}

// variance is the population variance of the points' mastery ratios.
func variance(points []events.CurvePoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var mean float64
	for _, pt := range points {
		mean += pt.MasteryRatio
	}
	mean /= float64(len(points))
	var sum float64
	for _, pt := range points {
		d := pt.MasteryRatio - mean
		sum += d * d
	}
	return sum / float64(len(points))
}
