package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/buenedata/lumidex-v2-sub002/internal/domain"
	"github.com/buenedata/lumidex-v2-sub002/internal/server"
	"github.com/buenedata/lumidex-v2-sub002/internal/server/handler"
)

// ServeMode starts the HTTP API and blocks until the context is cancelled.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(deps.Pingers),
		Variants: handler.NewVariantHandler(deps.Variants, a.logger),
		Prices: handler.NewPriceHandler(
			deps.Prices,
			domain.Currency(a.cfg.Pricing.DefaultCurrency),
			domain.PriceSource(a.cfg.Pricing.PreferredSource),
			a.logger,
		),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, handlers, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// CheckMode verifies configuration and connectivity without serving traffic:
// it loads and validates the rule tables, pings every wired backend, and
// exits. Deploy pipelines run it before rolling the serve mode.
func (a *App) CheckMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting check mode")

	for name, p := range deps.Pingers {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("check: %s: %w", name, err)
		}
		a.logger.InfoContext(ctx, "dependency reachable", slog.String("dependency", name))
	}

	tables := deps.Rules.Snapshot(ctx)
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("check: rules: %w", err)
	}
	a.logger.InfoContext(ctx, "rule tables valid")

	a.logger.InfoContext(ctx, "check passed")
	return nil
}
