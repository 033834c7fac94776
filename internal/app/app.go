package app

import (
	"context"
	"errors"

	"polybot/internal/config"
	"polybot/internal/consensus"
	"polybot/internal/gateway/database"
	"polybot/internal/learned"
	"polybot/internal/logger"
	"polybot/internal/report"
	"polybot/internal/risk"
	statushttp "polybot/internal/transport/http/status"

	"golang.org/x/sync/errgroup"
)

// App owns the assembled decision core and its background services.
type App struct {
	cfg        *config.Config
	engine     *consensus.Engine
	controller *risk.Controller
	store      *database.OutcomeStore
	registry   *learned.Registry
	server     *statushttp.Server
}

func NewApp(cfg *config.Config, opts ...BuilderOption) (*App, error) {
	return NewBuilder(cfg, opts...).Build(context.Background())
}

// Run blocks until ctx is cancelled, serving the status API and watching the
// learned-parameter file.
func (a *App) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return a.server.Run(ctx)
	})
	if a.registry != nil {
		eg.Go(func() error {
			return a.registry.Watch(ctx)
		})
	}

	err := eg.Wait()
	if closeErr := a.Close(); closeErr != nil {
		logger.Warnf("closing app failed: %v", closeErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func (a *App) Engine() *consensus.Engine     { return a.engine }
func (a *App) Controller() *risk.Controller  { return a.controller }
func (a *App) Store() *database.OutcomeStore { return a.store }
func (a *App) Registry() *learned.Registry   { return a.registry }

// RecordOutcome feeds one concluded trade into both the in-memory ledger that
// drives the adaptive parameters and the durable store that backs the
// win-rate history.
func (a *App) RecordOutcome(ctx context.Context, kind, asset string, outcome risk.TradeOutcome) error {
	a.controller.Record(outcome)
	if a.store == nil {
		return nil
	}
	if err := a.store.RecordOutcome(ctx, kind, asset, outcome); err != nil {
		return err
	}
	logger.Debugf("outcome persisted kind=%s asset=%s profit=%.2f", kind, asset, outcome.Profit)
	return nil
}

// GenerateReport renders the performance report from the persisted outcomes
// and returns the file path.
func (a *App) GenerateReport(ctx context.Context) (string, error) {
	if a.store == nil {
		return "", errors.New("no outcome store configured")
	}
	outcomes, err := a.store.RecentOutcomes(ctx, 500)
	if err != nil {
		return "", err
	}
	return report.Generate(a.cfg.Report.Dir, outcomes)
}
