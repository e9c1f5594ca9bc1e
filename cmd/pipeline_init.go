package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/producer-intervals/internal/config"
	"github.com/sells-group/producer-intervals/internal/fetcher"
	"github.com/sells-group/producer-intervals/internal/ingest"
	"github.com/sells-group/producer-intervals/internal/monitoring"
	"github.com/sells-group/producer-intervals/internal/resilience"
	"github.com/sells-group/producer-intervals/internal/service"
	"github.com/sells-group/producer-intervals/internal/store"
)

// pipelineEnv holds the repository, metrics and the built query service
// needed by the serve and intervals commands.
type pipelineEnv struct {
	Repo    store.Repository
	Metrics *monitoring.Metrics
	Service *service.Service
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Repo != nil {
		_ = pe.Repo.Close()
	}
}

// sourceLocation returns --source when given, else the configured path.
func sourceLocation(c *config.Config) string {
	if sourceFlag != "" {
		return sourceFlag
	}
	return c.Source.Path
}

// newOpener builds the source opener from config.
func newOpener(c *config.Config) *fetcher.Opener {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = c.Source.FetchRetries + 1

	return fetcher.NewOpener(fetcher.Options{
		UserAgent: c.Source.UserAgent,
		Timeout:   time.Duration(c.Source.FetchTimeoutSecs) * time.Second,
		Retry:     retry,
		RateLimit: rate.Limit(c.Source.FetchRateLimit),
	})
}

// initPipeline validates config, opens the repository and builds the query
// service. Callers should defer env.Close().
func initPipeline(ctx context.Context, c *config.Config) (*pipelineEnv, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	repo, err := store.New(c.Store.Driver, c.Store.DSN)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}

	metrics := monitoring.NewMetrics()
	svc := service.Build(ctx, newOpener(c), repo, service.Options{
		Source:  sourceLocation(c),
		Parser:  ingest.Options{AllowBlankWinner: c.Source.AllowBlankWinner},
		Metrics: metrics,
	})

	return &pipelineEnv{Repo: repo, Metrics: metrics, Service: svc}, nil
}
