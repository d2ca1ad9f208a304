// Package insights classifies topics into strengths and weaknesses,
// detects score trends and derives rule-based recommendations. Everything
// here is a pure function of the events passed in.
package insights

import (
	"sort"

	"github.com/basil51/ai-school-sub003/internal/events"
)

const (
	// StrengthRatio is the inclusive pass ratio at which a topic is a
	// strength.
	StrengthRatio = 0.8

	// WeaknessRatio is the exclusive pass ratio below which a topic is a
	// weakness. Topics in between are left unclassified.
	WeaknessRatio = 0.6
)

// TopicStat aggregates attempt outcomes for one topic.
type TopicStat struct {
	Topic        string  `json:"topic"`
	Passed       int     `json:"passed"`
	Total        int     `json:"total"`
	PassRatio    float64 `json:"passRatio"`
	AverageScore float64 `json:"averageScore"`
}

// Classification is the strength/weakness split of a set of attempts.
type Classification struct {
	Strengths  []string    `json:"strengths"`
	Weaknesses []string    `json:"weaknesses"`
	Topics     []TopicStat `json:"topicPerformance"`
}

// topicOf names the topic an attempt counts toward. Attempts whose lesson
// has no known topic are grouped under the lesson.
func topicOf(a events.AttemptEvent) string {
	if a.Topic != "" {
		return a.Topic
	}
	return a.LessonID
}

// Classify groups attempts by topic and labels each topic by pass ratio.
func Classify(attempts []events.AttemptEvent) Classification {
	index := make(map[string]int)
	var stats []TopicStat
	for _, a := range attempts {
		topic := topicOf(a)
		if topic == "" {
			continue
		}
		i, ok := index[topic]
		if !ok {
			i = len(stats)
			index[topic] = i
			stats = append(stats, TopicStat{Topic: topic})
		}
		stats[i].Total++
		if a.Passed {
			stats[i].Passed++
		}
		stats[i].AverageScore += a.Score
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Topic < stats[j].Topic })

	c := Classification{
		Strengths:  []string{},
		Weaknesses: []string{},
		Topics:     make([]TopicStat, 0, len(stats)),
	}
	for _, s := range stats {
		s.PassRatio = float64(s.Passed) / float64(s.Total)
		s.AverageScore /= float64(s.Total)
		switch {
		case s.PassRatio >= StrengthRatio:
			c.Strengths = append(c.Strengths, s.Topic)
		case s.PassRatio < WeaknessRatio:
			c.Weaknesses = append(c.Weaknesses, s.Topic)
		}
		c.Topics = append(c.Topics, s)
	}
	return c
}
