// Package service runs the ingestion pipeline once and holds the cached
// result that the HTTP layer serves.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/producer-intervals/internal/ingest"
	"github.com/sells-group/producer-intervals/internal/intervals"
	"github.com/sells-group/producer-intervals/internal/model"
	"github.com/sells-group/producer-intervals/internal/monitoring"
	"github.com/sells-group/producer-intervals/internal/store"
)

// Opener resolves a source location to a reader.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Options configures a Build.
type Options struct {
	Source  string
	Parser  ingest.Options
	Metrics *monitoring.Metrics // may be nil
}

// Service holds the immutable outcome of one ingestion run. All accessors are
// safe for concurrent use without locking since nothing changes after Build.
type Service struct {
	result model.ResultSet
	body   []byte
	report model.IngestReport
}

// Build runs parse, load, compute and select against the source. It never
// fails: any error is logged and the service falls back to an empty result.
func Build(ctx context.Context, opener Opener, repo store.Repository, opts Options) *Service {
	start := time.Now()
	report := model.IngestReport{
		RunID:    uuid.NewString(),
		Source:   opts.Source,
		SourceOK: true,
	}
	log := zap.L().With(zap.String("run_id", report.RunID), zap.String("source", opts.Source))

	result, err := run(ctx, opener, repo, opts, &report, log)
	if err != nil {
		if errors.Is(err, ingest.ErrSourceUnreadable) {
			report.SourceOK = false
			log.Error("service: source unreadable, serving empty result", zap.Error(err))
		} else {
			log.Error("service: prepare failed, serving empty result", zap.Error(err))
		}
		result = model.EmptyResultSet()
		report.Winners, report.Intervals = 0, 0
		report.Error = err.Error()
	}

	body, err := json.Marshal(result)
	if err != nil {
		// ResultSet holds only strings and ints, so this cannot happen in practice.
		log.Error("service: encode result", zap.Error(err))
		result = model.EmptyResultSet()
		body = []byte(`{"min":[],"max":[]}`)
	}

	report.Duration = time.Since(start)
	report.CompletedAt = time.Now().UTC()
	opts.Metrics.ObserveIngest(report, result)

	log.Info("service: ingestion complete",
		zap.Int("lines", report.Lines),
		zap.Int("skipped", report.Skipped),
		zap.Int("records", report.Records),
		zap.Int("winners", report.Winners),
		zap.Int("intervals", report.Intervals),
		zap.Int("min", len(result.Min)),
		zap.Int("max", len(result.Max)),
		zap.Duration("duration", report.Duration),
	)

	return &Service{result: result, body: body, report: report}
}

func run(ctx context.Context, opener Opener, repo store.Repository, opts Options, report *model.IngestReport, log *zap.Logger) (model.ResultSet, error) {
	if opener == nil {
		return model.ResultSet{}, ingest.Unreadable(opts.Source, eris.New("service: no source opener"))
	}
	if repo == nil {
		return model.ResultSet{}, eris.New("service: no repository")
	}

	rc, err := opener.Open(ctx, opts.Source)
	if err != nil {
		return model.ResultSet{}, ingest.Unreadable(opts.Source, err)
	}
	defer rc.Close() //nolint:errcheck

	parsed, err := ingest.NewParser(opts.Parser).ParseReader(rc)
	if err != nil {
		return model.ResultSet{}, ingest.Unreadable(opts.Source, err)
	}
	report.Lines = parsed.Lines
	report.Records = len(parsed.Records)
	report.Diagnostics = parsed.Diagnostics
	report.Skipped = parsed.Skipped()
	logDiagnostics(log, parsed.Diagnostics)

	if err := repo.Load(ctx, parsed.Records); err != nil {
		return model.ResultSet{}, eris.Wrap(err, "service: load records")
	}
	events, err := repo.Winners(ctx)
	if err != nil {
		return model.ResultSet{}, eris.Wrap(err, "service: query winners")
	}
	report.Winners = len(events)

	all := intervals.Compute(events)
	report.Intervals = len(all)
	return intervals.Select(all), nil
}

// logDiagnostics logs skipped lines at error level and warnings at warn.
func logDiagnostics(log *zap.Logger, diags []model.Diagnostic) {
	for _, d := range diags {
		fields := []zap.Field{
			zap.Int("line", d.Line),
			zap.String("reason", string(d.Reason)),
			zap.String("content", d.Content),
		}
		if d.Skipped() {
			log.Error("ingest: "+d.Message, fields...)
			continue
		}
		log.Warn("ingest: "+d.Message, fields...)
	}
}

// Result returns a copy of the cached result.
func (s *Service) Result() model.ResultSet {
	return model.ResultSet{
		Min: slices.Clone(s.result.Min),
		Max: slices.Clone(s.result.Max),
	}
}

// ResultJSON returns the pre-encoded result. Callers must not modify it.
func (s *Service) ResultJSON() []byte {
	return s.body
}

// Report returns the ingestion report of the run that built the service.
func (s *Service) Report() model.IngestReport {
	return s.report
}
