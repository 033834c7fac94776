package app

import (
	"context"
	"fmt"
	"time"

	"polybot/internal/config"
	"polybot/internal/consensus"
	"polybot/internal/gateway/database"
	"polybot/internal/learned"
	"polybot/internal/logger"
	"polybot/internal/risk"
	"polybot/internal/source"
	statushttp "polybot/internal/transport/http/status"
)

// Builder assembles the decision core from configuration. The override hooks
// let tests substitute individual pieces without touching the wiring.
type Builder struct {
	cfg *config.Config

	reasoningClient source.ReasoningClient
	storeFn         func(string) (*database.OutcomeStore, error)
	clock           func() time.Time
}

type BuilderOption func(*Builder)

// WithReasoningClient supplies the external reasoning service transport. The
// reasoning vote source is only wired when both a client and a weight for its
// id exist.
func WithReasoningClient(client source.ReasoningClient) BuilderOption {
	return func(b *Builder) { b.reasoningClient = client }
}

func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.clock = now }
}

func WithStoreOpener(fn func(string) (*database.OutcomeStore, error)) BuilderOption {
	return func(b *Builder) { b.storeFn = fn }
}

func NewBuilder(cfg *config.Config, opts ...BuilderOption) *Builder {
	b := &Builder{
		cfg:     cfg,
		storeFn: database.Open,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Builder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	store, err := b.storeFn(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening outcome store failed: %w", err)
	}

	controller := risk.NewController(risk.Parameters{
		MinFractionalKelly: cfg.Risk.MinFractionalKelly,
		MaxFractionalKelly: cfg.Risk.MaxFractionalKelly,
		TransactionCostPct: cfg.Risk.TransactionCostPct,
		MinEdgeThreshold:   cfg.Risk.MinEdgeThreshold,
		MaxPositionPct:     cfg.Risk.MaxPositionPct,
		MinPositionSize:    cfg.Risk.MinPositionSize,
	}, cfg.Risk.PerformanceWindow)

	sources, err := b.buildSources(store)
	if err != nil {
		store.Close()
		return nil, err
	}

	engine, err := consensus.NewEngine(sources, cfg.Consensus.Weights, consensus.Options{
		MinConsensus:  cfg.Consensus.MinConsensus,
		MinConfidence: cfg.Consensus.MinConfidence,
		SourceTimeout: time.Duration(cfg.Consensus.SourceTimeoutSeconds) * time.Second,
		CacheEnabled:  cfg.Consensus.Cache.Enabled,
		CacheTTL:      time.Duration(cfg.Consensus.Cache.TTLSeconds) * time.Second,
		CacheEntries:  cfg.Consensus.Cache.MaxEntries,
		History:       store,
		Now:           b.clock,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	var registry *learned.Registry
	if cfg.Learned.Enabled {
		registry, err = learned.NewRegistry(cfg.Learned.Path)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("learned parameter registry failed: %w", err)
		}
		registry.OnChange(controller.ApplyLearned)
		if current, ok := registry.Current(); ok {
			controller.ApplyLearned(current)
		}
	}

	server, err := statushttp.NewServer(statushttp.ServerConfig{
		Addr:       cfg.App.HTTPAddr,
		Engine:     engine,
		Controller: controller,
		Store:      store,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	logger.Infof("decision core built sources=%d profile=%s window=%d",
		len(sources), cfg.Risk.Profile, cfg.Risk.PerformanceWindow)
	return &App{
		cfg:        cfg,
		engine:     engine,
		controller: controller,
		store:      store,
		registry:   registry,
		server:     server,
	}, nil
}

// buildSources instantiates one vote source per configured weight. Weights for
// ids with no in-tree source are a configuration error, except "reasoning"
// which is skipped with a warning when no client is wired.
func (b *Builder) buildSources(store *database.OutcomeStore) ([]consensus.VoteSource, error) {
	var sources []consensus.VoteSource
	for id := range b.cfg.Consensus.Weights {
		switch id {
		case "technical":
			sources = append(sources, source.NewTechnicalSource(id))
		case "policy":
			sources = append(sources, source.NewPolicySource(id))
		case "historical":
			sources = append(sources, source.NewHistoricalSource(id, store))
		case "reasoning":
			if b.reasoningClient == nil {
				logger.Warnf("weight configured for reasoning source but no client wired, skipping")
				continue
			}
			sources = append(sources, source.NewReasoningSource(id, b.reasoningClient))
		default:
			return nil, fmt.Errorf("no vote source available for configured weight %q", id)
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no vote sources could be built from the configured weights")
	}
	return sources, nil
}
