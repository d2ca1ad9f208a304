package mastery

import "sort"

// tally accumulates the raw counts behind a Snapshot.
type tally struct {
	lessons   int
	completed int
	attempts  int
	passed    int
	scoreSum  float64
}

func (t *tally) addProgress(completed bool) {
	t.lessons++
	if completed {
		t.completed++
	}
}

func (t *tally) addAttempt(passed bool, score float64) {
	t.attempts++
	if passed {
		t.passed++
	}
	t.scoreSum += clamp(score, 0, 1)
}

func (t tally) snapshot() Snapshot {
	return Snapshot{
		LessonCompletionRate: percent(t.completed, t.lessons),
		AssessmentPassRate:   percent(t.passed, t.attempts),
		OverallScore:         ratio(t.scoreSum, t.attempts),
	}
}

// arena holds one accumulator per key, addressed by a dense index so the
// reduce pass can walk them in insertion order.
type arena[T any] struct {
	index map[string]int
	keys  []string
	slots []T
}

func newArena[T any]() *arena[T] {
	return &arena[T]{index: make(map[string]int)}
}

// slot returns the accumulator for key, allocating it on first use.
func (a *arena[T]) slot(key string) *T {
	i, ok := a.index[key]
	if !ok {
		i = len(a.slots)
		a.index[key] = i
		a.keys = append(a.keys, key)
		var zero T
		a.slots = append(a.slots, zero)
	}
	return &a.slots[i]
}

func (a *arena[T]) len() int { return len(a.slots) }

// sortedKeys returns the keys in lexical order.
func (a *arena[T]) sortedKeys() []string {
	keys := make([]string, len(a.keys))
	copy(keys, a.keys)
	sort.Strings(keys)
	return keys
}

func (a *arena[T]) get(key string) *T {
	i, ok := a.index[key]
	if !ok {
		return nil
	}
	return &a.slots[i]
}

func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return clamp(100*float64(n)/float64(d), 0, 100)
}

func ratio(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
