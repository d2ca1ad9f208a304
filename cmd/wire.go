package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basil51/ai-school-sub003/internal/config"
	"github.com/basil51/ai-school-sub003/internal/contentcache"
	"github.com/basil51/ai-school-sub003/internal/curve"
	"github.com/basil51/ai-school-sub003/internal/hints"
	"github.com/basil51/ai-school-sub003/internal/llm"
	"github.com/basil51/ai-school-sub003/internal/logger"
	"github.com/basil51/ai-school-sub003/internal/metrics"
	"github.com/basil51/ai-school-sub003/internal/report"
	"github.com/basil51/ai-school-sub003/internal/session"
	"github.com/basil51/ai-school-sub003/internal/store"
)

// loadConfig reads configuration and applies the --db flag on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Database.Path = p
	}
	return cfg, nil
}

// resolveDBPath returns the database path: --db, then AISCHOOL_DB or the
// config file, then the default data-dir location.
func resolveDBPath(cfg *config.Config) (string, error) {
	if cfg.Database.Path != "" {
		return cfg.Database.Path, store.EnsureDir(cfg.Database.Path)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	path, err := resolveDBPath(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return st, cfg, nil
}

// services is the fully wired application graph.
type services struct {
	cfg      *config.Config
	log      *logger.Logger
	metrics  *metrics.Metrics
	store    *store.Store
	cache    *contentcache.Cache
	curves   *curve.Service
	reports  *report.Service
	sessions *session.Manager
}

// buildServices opens the store and cache and wires every service. log
// may be nil for quiet CLI commands.
func buildServices(ctx context.Context, cmd *cobra.Command, log *logger.Logger, m *metrics.Metrics) (*services, error) {
	st, cfg, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	log = logger.OrNop(log)

	cache, err := contentcache.Open(ctx, cfg, log, m)
	if err != nil {
		st.Close()
		return nil, err
	}

	provider, err := llm.NewProvider(ctx, llm.ResolveConfig(), st.LLMEventRepo(), log, m)
	if err != nil {
		log.Warn("text generation unavailable, using fallback hints", "error", err)
		provider = nil
	}

	events := st.EventRepo()
	curves := curve.NewService(events, events, st.CurveRepo(), log, m)
	s := &services{
		cfg:     cfg,
		log:     log,
		metrics: m,
		store:   st,
		cache:   cache,
		curves:  curves,
		reports: report.NewService(events, events, curves, log),
	}
	s.sessions = session.NewManager(session.Deps{
		Questions: st.QuestionRepo(),
		Sessions:  st.SessionRepo(),
		Events:    events,
		Lessons:   events,
		Hints:     hints.NewService(provider, cache, hints.DefaultConfig(), log),
		Curves:    curves,
		Log:       log,
		Metrics:   m,
	}, cfg.Session.IdleTimeout)
	return s, nil
}

func (s *services) Close() {
	if err := s.cache.Close(); err != nil {
		s.log.Warn("close content cache", "error", err)
	}
	if err := s.store.Close(); err != nil {
		s.log.Warn("close database", "error", err)
	}
}
