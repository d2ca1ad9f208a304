package insights

import (
	"reflect"
	"testing"
	"time"

	"github.com/basil51/ai-school-sub003/internal/curve"
	"github.com/basil51/ai-school-sub003/internal/events"
)

var base = time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

// scored returns one attempt per score, one hour apart, oldest first.
func scored(student string, scores ...float64) []events.AttemptEvent {
	out := make([]events.AttemptEvent, len(scores))
	for i, s := range scores {
		out[i] = events.AttemptEvent{
			Sequence:  int64(i + 1),
			StudentID: student,
			LessonID:  "l1",
			Topic:     "algebra",
			Score:     s,
			Passed:    s >= 0.7,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func countType(recs []Recommendation, typ string) int {
	n := 0
	for _, r := range recs {
		if r.Type == typ {
			n++
		}
	}
	return n
}

func TestClassify(t *testing.T) {
	var attempts []events.AttemptEvent
	add := func(topic string, passed, failed int) {
		for i := 0; i < passed; i++ {
			attempts = append(attempts, events.AttemptEvent{Topic: topic, Passed: true, Score: 1})
		}
		for i := 0; i < failed; i++ {
			attempts = append(attempts, events.AttemptEvent{Topic: topic, Score: 0})
		}
	}
	add("geometry", 4, 1) // 0.8: strength
	add("algebra", 3, 2)  // 0.6: neither
	add("stats", 1, 1)    // 0.5: weakness
	add("calculus", 9, 1) // 0.9: strength
	attempts = append(attempts, events.AttemptEvent{LessonID: "l9", Score: 0.2})

	c := Classify(attempts)
	if want := []string{"calculus", "geometry"}; !reflect.DeepEqual(c.Strengths, want) {
		t.Errorf("Strengths = %v, want %v", c.Strengths, want)
	}
	if want := []string{"l9", "stats"}; !reflect.DeepEqual(c.Weaknesses, want) {
		t.Errorf("Weaknesses = %v, want %v", c.Weaknesses, want)
	}
	if len(c.Topics) != 5 {
		t.Fatalf("Topics = %d, want 5", len(c.Topics))
	}
	if c.Topics[0].Topic != "algebra" || c.Topics[0].PassRatio != 0.6 || c.Topics[0].AverageScore != 0.6 {
		t.Errorf("algebra = %+v", c.Topics[0])
	}
}

func TestClassify_Empty(t *testing.T) {
	c := Classify(nil)
	if c.Strengths == nil || c.Weaknesses == nil || len(c.Strengths)+len(c.Weaknesses)+len(c.Topics) != 0 {
		t.Errorf("Classify(nil) = %+v", c)
	}
}

func TestDetectTrend(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   Trend
	}{
		{"none", nil, TrendInsufficientData},
		{"one", []float64{0.5}, TrendInsufficientData},
		{"two improving", []float64{0.2, 0.9}, TrendImproving},
		{"two declining", []float64{0.9, 0.2}, TrendDeclining},
		{"margin is exclusive", []float64{0.5, 0.5, 0.6, 0.6}, TrendStable},
		{"stable", []float64{0.7, 0.75, 0.72, 0.7}, TrendStable},
		{"odd count newer half larger", []float64{0.9, 0.3, 0.3}, TrendDeclining},
		// Only the newest 10 count: the early zeros fall out of the window.
		{"window", []float64{0, 0, 0, 0, 0.8, 0.8, 0.8, 0.8, 0.8, 0.8, 0.8, 0.8, 0.8, 0.8}, TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectTrend(scored("s1", tt.scores...)); got != tt.want {
				t.Errorf("DetectTrend(%v) = %s, want %s", tt.scores, got, tt.want)
			}
		})
	}
}

func TestDetectTrend_UsesTimeNotInputOrder(t *testing.T) {
	attempts := scored("s1", 0.2, 0.3, 0.9, 1.0)
	reversed := []events.AttemptEvent{attempts[3], attempts[2], attempts[1], attempts[0]}
	if got := DetectTrend(reversed); got != TrendImproving {
		t.Errorf("DetectTrend = %s, want improving", got)
	}
}

func TestCohortTrend_ExcludesStudentsWithoutHistory(t *testing.T) {
	var attempts []events.AttemptEvent
	attempts = append(attempts, scored("a", 0.5, 0.62)...)
	attempts = append(attempts, scored("b", 0.5, 0.62)...)
	// c has one attempt. Counted as a 0 shift it would pull the mean below
	// the margin, which is stable.
	attempts = append(attempts, scored("c", 0.0)...)

	if got := CohortTrend(attempts); got != TrendImproving {
		t.Errorf("CohortTrend = %s, want improving", got)
	}
	if got := CohortTrend(scored("c", 0.1)); got != TrendInsufficientData {
		t.Errorf("CohortTrend(one attempt) = %s, want insufficient_data", got)
	}

	mixed := append(scored("a", 0.9, 0.2), scored("b", 0.5, 0.6)...)
	// a: -0.7, b: +0.1 -> mean -0.3
	if got := CohortTrend(mixed); got != TrendDeclining {
		t.Errorf("CohortTrend(mixed) = %s, want declining", got)
	}
}

func TestRecommend_SingleFailedLesson(t *testing.T) {
	in := Input{
		Progress: []events.ProgressEvent{
			{StudentID: "s1", LessonID: "l1", Status: events.StatusFailed, Attempts: 2},
		},
		LessonTitles: map[string]string{"l1": "Long Division"},
	}
	recs := Recommend(in)
	if len(recs) != 1 {
		t.Fatalf("recommendations = %+v, want exactly one", recs)
	}
	r := recs[0]
	if r.Type != TypeRemediation || !reflect.DeepEqual(r.RelatedLessons, []string{"Long Division"}) {
		t.Errorf("recommendation = %+v, want remediation naming Long Division", r)
	}
	if countType(recs, TypePerformance) != 0 {
		t.Error("unexpected performance recommendation")
	}
}

func TestRecommend_FailedOnceIsNotRemediation(t *testing.T) {
	in := Input{Progress: []events.ProgressEvent{
		{StudentID: "s1", LessonID: "l1", Status: events.StatusFailed, Attempts: 1},
		{StudentID: "s1", LessonID: "l2", Status: events.StatusCompleted, Attempts: 5},
	}}
	if recs := Recommend(in); len(recs) != 0 {
		t.Errorf("recommendations = %+v, want none", recs)
	}
}

func TestRecommend_AllRulesEvaluated(t *testing.T) {
	in := Input{
		Progress: []events.ProgressEvent{
			{StudentID: "s1", LessonID: "l2", Status: events.StatusFailed, Attempts: 3},
			{StudentID: "s1", LessonID: "l1", Status: events.StatusFailed, Attempts: 4},
		},
		Attempts: scored("s1", 0.9, 0.9, 0.2, 0.1),
	}
	recs := Recommend(in)
	if countType(recs, TypeRemediation) != 1 || countType(recs, TypePerformance) != 1 {
		t.Fatalf("recommendations = %+v, want remediation and performance", recs)
	}
	if !reflect.DeepEqual(recs[0].RelatedLessons, []string{"l1", "l2"}) {
		t.Errorf("RelatedLessons = %v, want [l1 l2]", recs[0].RelatedLessons)
	}
	// algebra: 2 of 4 passed
	if countType(recs, TypePractice) != 1 {
		t.Errorf("want a practice recommendation, got %+v", recs)
	}
}

func TestRecommend_ExplicitTrendWins(t *testing.T) {
	in := Input{Attempts: scored("s1", 0.8, 0.8), Trend: TrendDeclining}
	if countType(Recommend(in), TypePerformance) != 1 {
		t.Error("explicit declining trend should produce a performance recommendation")
	}
}

func TestRecommend_CurveRules(t *testing.T) {
	var attempts []events.AttemptEvent
	outcomes := []bool{true, true, true, true, true, true, true, true, false}
	for i, passed := range outcomes {
		attempts = append(attempts, events.AttemptEvent{
			Sequence: int64(i), StudentID: "s1", LessonID: "l1", Passed: passed, Score: 1,
			StartedAt: base.AddDate(0, 0, i),
		})
	}
	c := curve.Analyze("s1", "", nil, attempts, nil)

	recs := Recommend(Input{Attempts: attempts, Curve: c, Trend: TrendStable})
	if countType(recs, TypePlateau) != 1 {
		t.Errorf("want plateau recommendation for a flat tail, got %+v (plateaus %d)", recs, len(c.PlateauPoints))
	}
	// 8/8 -> 8/9 drops by 0.11: a recent spike.
	if countType(recs, TypeDifficulty) != 1 {
		t.Errorf("want difficulty recommendation, got %+v", recs)
	}

	if recs := Recommend(Input{Curve: &events.LearningCurve{}}); len(recs) != 0 {
		t.Errorf("empty curve produced %+v", recs)
	}
}
