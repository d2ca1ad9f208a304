package hints

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/basil51/ai-school-sub003/internal/apperr"
	"github.com/basil51/ai-school-sub003/internal/contentcache"
	"github.com/basil51/ai-school-sub003/internal/grading"
	"github.com/basil51/ai-school-sub003/internal/llm"
	"github.com/basil51/ai-school-sub003/internal/logger"
	"github.com/basil51/ai-school-sub003/internal/store"
)

// Service generates hints and explanations. Results are cached by
// fingerprint; concurrent identical misses share one generation.
type Service struct {
	provider llm.Provider
	cache    *contentcache.Cache
	cfg      Config
	log      *logger.Logger
	group    singleflight.Group
}

// NewService creates a hint service. A nil provider serves deterministic
// fallback text; a nil cache is replaced by an in-memory one.
func NewService(provider llm.Provider, cache *contentcache.Cache, cfg Config, log *logger.Logger) *Service {
	if cache == nil {
		cache = contentcache.New(nil, log, nil)
	}
	return &Service{
		provider: provider,
		cache:    cache,
		cfg:      cfg,
		log:      logger.OrNop(log),
	}
}

type hintOutput struct {
	Hint string `json:"hint"`
	Type string `json:"type"`
}

// Hint returns hint number hintNumber (1-based) for q.
func (s *Service) Hint(ctx context.Context, q store.Question, hintNumber int) (*Hint, error) {
	if q.ID == "" {
		return nil, apperr.Validation("question id is required")
	}
	if hintNumber < 1 {
		return nil, apperr.Validation("hint number must be >= 1, got %d", hintNumber)
	}

	h := &Hint{QuestionID: q.ID, Number: hintNumber, Level: LevelFor(hintNumber)}
	if s.provider == nil {
		h.Type, h.Text = fallbackHint(q, hintNumber)
		h.Source = SourceFallback
		return h, nil
	}

	params := contentcache.Params{
		Kind:       contentcache.KindHint,
		LessonID:   q.LessonID,
		Topic:      q.Topic,
		Difficulty: string(DifficultyLabel(q.Difficulty)),
		Extra: map[string]string{
			"questionId": q.ID,
			"hintNumber": strconv.Itoa(hintNumber),
		},
	}
	req := llm.Request{
		System:      hintSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildHintUserMessage(q, hintNumber)}},
		Schema:      HintSchema,
		MaxTokens:   s.cfg.HintMaxTokens,
		Temperature: s.cfg.Temperature,
	}

	var out hintOutput
	src, err := s.generate(ctx, params, llm.PurposeHint, req, &out)
	if err != nil {
		return nil, err
	}
	h.Type, h.Text, h.Source = out.Type, out.Hint, src
	return h, nil
}

type explanationOutput struct {
	Explanation string   `json:"explanation"`
	Steps       []string `json:"steps"`
	KeyConcepts []string `json:"key_concepts"`
}

// Explanation explains the correct answer to q in light of the student's
// answer.
func (s *Service) Explanation(ctx context.Context, q store.Question, answer string) (*Explanation, error) {
	if q.ID == "" {
		return nil, apperr.Validation("question id is required")
	}

	correct := grading.Match(answer, q.CorrectAnswer, q.Options)
	e := &Explanation{QuestionID: q.ID, Answer: answer, Correct: correct}
	if s.provider == nil {
		e.Text, e.Steps, e.KeyConcepts = fallbackExplanation(q, answer, correct)
		e.Source = SourceFallback
		return e, nil
	}

	params := contentcache.Params{
		Kind:       contentcache.KindExplanation,
		LessonID:   q.LessonID,
		Topic:      q.Topic,
		Difficulty: string(DifficultyLabel(q.Difficulty)),
		Extra: map[string]string{
			"questionId": q.ID,
			"answer":     grading.Normalize(answer),
		},
	}
	req := llm.Request{
		System:      explanationSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildExplanationUserMessage(q, answer, correct)}},
		Schema:      ExplanationSchema,
		MaxTokens:   s.cfg.ExplanationMaxTokens,
		Temperature: s.cfg.Temperature,
	}

	var out explanationOutput
	src, err := s.generate(ctx, params, llm.PurposeExplanation, req, &out)
	if err != nil {
		return nil, err
	}
	e.Text, e.Steps, e.KeyConcepts, e.Source = out.Explanation, out.Steps, out.KeyConcepts, src
	return e, nil
}

// generate serves params from the cache or runs req through the provider
// and decodes the result into out.
func (s *Service) generate(ctx context.Context, params contentcache.Params, purpose string, req llm.Request, out any) (Source, error) {
	fp := contentcache.Of(params)
	if payload, ok := s.cache.Lookup(ctx, fp); ok {
		if err := json.Unmarshal(payload, out); err == nil {
			return SourceCache, nil
		}
		s.log.Warn("discarding undecodable cache entry", "fingerprint", fp)
	}

	v, err, shared := s.group.Do(string(fp), func() (any, error) {
		// A flight that finished between our lookup and Do has already
		// filled the cache.
		if payload, ok := s.cache.Lookup(ctx, fp); ok {
			return payload, nil
		}
		resp, err := s.provider.Generate(llm.WithPurpose(ctx, purpose), req)
		if err != nil {
			return nil, err
		}
		if err := llm.ValidateJSON(req.Schema, resp.Content); err != nil {
			return nil, err
		}
		payload := []byte(resp.Content)
		s.cache.Store(ctx, fp, payload, 0)
		return payload, nil
	})
	if err != nil {
		s.log.Warn("text generation failed", "purpose", purpose, "error", err)
		return "", apperr.Upstream(purpose+" generation", err)
	}
	if err := json.Unmarshal(v.([]byte), out); err != nil {
		return "", apperr.Internal(fmt.Sprintf("decode %s", purpose), err)
	}
	if shared {
		s.log.Debug("shared in-flight generation", "purpose", purpose, "fingerprint", fp)
	}
	return SourceGenerated, nil
}
