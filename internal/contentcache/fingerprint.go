// Package contentcache memoizes generated content (hints, explanations,
// lesson bundles) under a canonical fingerprint of the generation
// parameters.
package contentcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// Kind selects the key prefix and default TTL of a cached artifact.
type Kind string

const (
	KindAIContent   Kind = "ai_content"
	KindLesson      Kind = "lesson"
	KindHint        Kind = "hint"
	KindExplanation Kind = "explanation"
	KindAnalytics   Kind = "analytics"
)

var kindTTL = map[Kind]time.Duration{
	KindAIContent:   1800 * time.Second,
	KindLesson:      3600 * time.Second,
	KindHint:        900 * time.Second,
	KindExplanation: 3600 * time.Second,
	KindAnalytics:   300 * time.Second,
}

// TTL is the default lifetime of entries of kind k.
func (k Kind) TTL() time.Duration {
	if ttl, ok := kindTTL[k]; ok {
		return ttl
	}
	return kindTTL[KindAIContent]
}

// Params are the generation parameters that identify an artifact.
type Params struct {
	Kind               Kind              `json:"kind"`
	LessonID           string            `json:"lessonId,omitempty"`
	LessonTitle        string            `json:"lessonTitle,omitempty"`
	Subject            string            `json:"subject,omitempty"`
	Topic              string            `json:"topic,omitempty"`
	Difficulty         string            `json:"difficulty,omitempty"`
	LearningStyle      string            `json:"learningStyle,omitempty"`
	LearningObjectives []string          `json:"learningObjectives,omitempty"`
	Extra              map[string]string `json:"extra,omitempty"`
}

// Fingerprint is a cache key: the kind prefix followed by a hex SHA-256
// of the canonical parameters.
type Fingerprint string

// Of returns the fingerprint of p. List-valued fields are sorted before
// hashing, so the order objectives are given in does not matter; map keys
// are already emitted in sorted order by encoding/json.
func Of(p Params) Fingerprint {
	if p.Kind == "" {
		p.Kind = KindAIContent
	}
	if len(p.LearningObjectives) > 0 {
		objectives := make([]string, len(p.LearningObjectives))
		copy(objectives, p.LearningObjectives)
		sort.Strings(objectives)
		p.LearningObjectives = objectives
	}
	// Marshalling a struct of strings, a string slice and a string map
	// cannot fail.
	canonical, _ := json.Marshal(p)
	sum := sha256.Sum256(canonical)
	return Fingerprint(string(p.Kind) + ":" + hex.EncodeToString(sum[:]))
}

// Kind returns the prefix of f.
func (f Fingerprint) Kind() Kind {
	for i := 0; i < len(f); i++ {
		if f[i] == ':' {
			return Kind(f[:i])
		}
	}
	return ""
}
