package mastery

import (
	"sort"
	"time"

	"github.com/basil51/ai-school-sub003/internal/events"
)

// Velocity describes how quickly lessons are being completed.
type Velocity struct {
	LessonsPerWeek   float64 `json:"lessonsPerWeek"`
	AvgTimePerLesson float64 `json:"averageTimePerLesson"` // seconds
	Acceleration     float64 `json:"acceleration"`
}

// completionTime places a completed lesson on the timeline.
func completionTime(p events.ProgressEvent) time.Time {
	switch {
	case p.CompletedAt != nil:
		return *p.CompletedAt
	case p.StartedAt != nil:
		return *p.StartedAt
	}
	return p.UpdatedAt
}

type velocityAcc struct {
	inPeriod  int
	timeSpent int
	times     []time.Time
}

func (v velocityAcc) velocity(period Period) Velocity {
	out := Velocity{
		LessonsPerWeek: float64(v.inPeriod) * 7 / float64(period.Days()),
	}
	if n := len(v.times); n > 0 {
		out.AvgTimePerLesson = float64(v.timeSpent) / float64(n)
	}
	out.Acceleration = acceleration(v.times)
	return out
}

// VelocityOf computes completion velocity for the period ending at now.
// For a cohort the per-student velocities are averaged.
func VelocityOf(progress []events.ProgressEvent, scope Scope, period Period, now time.Time) Velocity {
	since := period.Since(now)
	students := newArena[velocityAcc]()
	for _, p := range progress {
		if !includes(scope, p.StudentID) || !p.Mastered() {
			continue
		}
		acc := students.slot(p.StudentID)
		at := completionTime(p)
		acc.times = append(acc.times, at)
		acc.timeSpent += p.TimeSpent
		if !at.Before(since) && !at.After(now) {
			acc.inPeriod++
		}
	}

	n := students.len()
	if n == 0 {
		return Velocity{}
	}
	var sum Velocity
	for _, acc := range students.slots {
		v := acc.velocity(period)
		sum.LessonsPerWeek += v.LessonsPerWeek
		sum.AvgTimePerLesson += v.AvgTimePerLesson
		sum.Acceleration += v.Acceleration
	}
	return Velocity{
		LessonsPerWeek:   sum.LessonsPerWeek / float64(n),
		AvgTimePerLesson: sum.AvgTimePerLesson / float64(n),
		Acceleration:     sum.Acceleration / float64(n),
	}
}

// acceleration compares the latest gap between completions with the mean
// gap. Positive means completions are speeding up. Needs three completions.
func acceleration(times []time.Time) float64 {
	if len(times) < 3 {
		return 0
	}
	sorted := make([]time.Time, len(times))
	copy(sorted, times)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var total time.Duration
	for i := 1; i < len(sorted); i++ {
		total += sorted[i].Sub(sorted[i-1])
	}
	avg := float64(total) / float64(len(sorted)-1)
	if avg == 0 {
		return 0
	}
	last := float64(sorted[len(sorted)-1].Sub(sorted[len(sorted)-2]))
	return (avg - last) / avg
}
