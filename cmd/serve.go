package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/basil51/ai-school-sub003/internal/logger"
	"github.com/basil51/ai-school-sub003/internal/metrics"
	"github.com/basil51/ai-school-sub003/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides AISCHOOL_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return err
	}
	defer log.Sync()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	svc, err := buildServices(ctx, cmd, log, m)
	if err != nil {
		return err
	}
	defer svc.Close()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		svc.cfg.Server.Addr = addr
	}

	srv := server.New(svc.cfg.Server, server.Deps{
		Reports:  svc.reports,
		Sessions: svc.sessions,
		Health:   svc.store,
		Log:      log,
		Metrics:  m,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		svc.sessions.RunSweeper(gctx, svc.cfg.Session.SweepInterval)
		return nil
	})
	g.Go(func() error {
		if err := srv.Run(gctx); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	log.Info("service started",
		"env", svc.cfg.Env,
		"addr", svc.cfg.Server.Addr,
		"session_idle_timeout", svc.cfg.Session.IdleTimeout.String(),
	)
	err = g.Wait()
	if err != nil && ctx.Err() == nil {
		return err
	}
	log.Info("service stopped")
	return nil
}
