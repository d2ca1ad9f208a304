package contentcache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basil51/ai-school-sub003/internal/config"
)

func lessonParams(objectives ...string) Params {
	return Params{
		Kind:               KindLesson,
		LessonID:           "l1",
		LessonTitle:        "Fractions",
		Subject:            "math",
		Topic:              "numbers",
		Difficulty:         "beginner",
		LearningStyle:      "visual",
		LearningObjectives: objectives,
	}
}

func TestFingerprint_ObjectiveOrder(t *testing.T) {
	a := Of(lessonParams("add", "compare", "simplify"))
	b := Of(lessonParams("simplify", "add", "compare"))
	assert.Equal(t, a, b)

	c := Of(lessonParams("add", "compare", "simplify", "multiply"))
	assert.NotEqual(t, a, c)
}

func TestFingerprint_DoesNotMutateInput(t *testing.T) {
	objectives := []string{"b", "a"}
	Of(lessonParams(objectives...))
	assert.Equal(t, []string{"b", "a"}, objectives)
}

func TestFingerprint_PrefixAndFields(t *testing.T) {
	fp := Of(lessonParams("x"))
	assert.True(t, strings.HasPrefix(string(fp), "lesson:"))
	assert.Equal(t, KindLesson, fp.Kind())
	assert.Len(t, strings.TrimPrefix(string(fp), "lesson:"), 64)

	hint := lessonParams("x")
	hint.Kind = KindHint
	assert.NotEqual(t, fp, Of(hint))

	other := lessonParams("x")
	other.Difficulty = "advanced"
	assert.NotEqual(t, fp, Of(other))

	withExtra := lessonParams("x")
	withExtra.Extra = map[string]string{"hintNumber": "2", "questionId": "q1"}
	same := lessonParams("x")
	same.Extra = map[string]string{"questionId": "q1", "hintNumber": "2"}
	assert.Equal(t, Of(withExtra), Of(same))
}

func TestKindTTL(t *testing.T) {
	assert.Equal(t, 1800*time.Second, KindAIContent.TTL())
	assert.Equal(t, 3600*time.Second, KindLesson.TTL())
	assert.Equal(t, 900*time.Second, KindHint.TTL())
	assert.Equal(t, 3600*time.Second, KindExplanation.TTL())
	assert.Equal(t, 300*time.Second, KindAnalytics.TTL())
	assert.Equal(t, 1800*time.Second, Kind("unknown").TTL())
}

func TestMemoryStore_ExpiredIsMissButKept(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Put(ctx, "hint:a", []byte("v1"), time.Minute))
	got, ok, err := m.Get(ctx, "hint:a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", string(got))

	now = now.Add(time.Minute)
	_, ok, err = m.Get(ctx, "hint:a")
	require.NoError(t, err)
	assert.False(t, ok, "entry at expiresAt must be a miss")
	assert.Equal(t, 1, m.Len(), "expired entries are not purged")
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	require.NoError(t, m.Put(ctx, "k", []byte("old"), time.Hour))
	require.NoError(t, m.Put(ctx, "k", []byte("new"), time.Hour))
	got, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "new", string(got))
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	rs, err := NewRedisStore(ctx, RedisOptions{Addr: mr.Addr(), DialTimeout: time.Second})
	require.NoError(t, err)
	defer rs.Close()

	_, ok, err := rs.Get(ctx, "hint:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rs.Put(ctx, "hint:x", []byte("payload"), 10*time.Second))
	got, ok, err := rs.Get(ctx, "hint:x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "payload", string(got))
	assert.Equal(t, 10*time.Second, mr.TTL("hint:x"))

	mr.FastForward(11 * time.Second)
	_, ok, err = rs.Get(ctx, "hint:x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_FallsBackWhenRedisFails(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rs, err := NewRedisStore(ctx, RedisOptions{Addr: mr.Addr(), DialTimeout: time.Second})
	require.NoError(t, err)
	defer rs.Close()

	c := New(rs, nil, nil)
	p := lessonParams("a")
	c.Put(ctx, p, []byte("from redis"))
	got, ok := c.Get(ctx, p)
	require.True(t, ok)
	assert.Equal(t, "from redis", string(got))

	mr.Close()
	c.Put(ctx, p, []byte("from memory"))
	got, ok = c.Get(ctx, p)
	require.True(t, ok)
	assert.Equal(t, "from memory", string(got))
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	c, err := Open(ctx, cfg, nil, nil)
	require.NoError(t, err)
	_, isMemory := c.primary.(*MemoryStore)
	assert.True(t, isMemory, "auto without redis address should use memory")

	mr := miniredis.RunT(t)
	cfg.Redis.Addr = mr.Addr()
	c, err = Open(ctx, cfg, nil, nil)
	require.NoError(t, err)
	defer c.Close()
	_, isRedis := c.primary.(*RedisStore)
	assert.True(t, isRedis)

	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.Redis.DialTimeout = 200 * time.Millisecond
	c, err = Open(ctx, cfg, nil, nil)
	require.NoError(t, err)
	_, isMemory = c.primary.(*MemoryStore)
	assert.True(t, isMemory, "auto with unreachable redis should fall back")

	cfg.Cache.Backend = "redis"
	_, err = Open(ctx, cfg, nil, nil)
	assert.Error(t, err)
}
