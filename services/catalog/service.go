package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"ncucourse/lib/course"
	"ncucourse/lib/timezone"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("ncucourse.services.catalog")
var meter = otel.Meter("ncucourse.services.catalog")

const (
	DefaultConcurrency = 4
	progressInterval   = 20
)

type counters struct {
	raw      metric.Int64Counter
	unique   metric.Int64Counter
	merged   metric.Int64Counter
	failures metric.Int64Counter
}

func newCounters() (counters, error) {
	raw, err := meter.Int64Counter(
		"catalog.records.raw",
		metric.WithDescription("Course rows extracted from class listings."),
	)
	if err != nil {
		return counters{}, err
	}
	unique, err := meter.Int64Counter(
		"catalog.records.unique",
		metric.WithDescription("Distinct courses after deduplication."),
	)
	if err != nil {
		return counters{}, err
	}
	merged, err := meter.Int64Counter(
		"catalog.records.merged",
		metric.WithDescription("Rows folded into an already seen course."),
	)
	if err != nil {
		return counters{}, err
	}
	failures, err := meter.Int64Counter(
		"catalog.fetch.failures",
		metric.WithDescription("Class listings that could not be fetched."),
	)
	if err != nil {
		return counters{}, err
	}
	return counters{
		raw:      raw,
		unique:   unique,
		merged:   merged,
		failures: failures,
	}, nil
}

type Options struct {
	Feed course.Feed
	// Sinks receive the canonical records of every run, sinks that are
	// also a course.RunRecorder get the run summary afterwards.
	Sinks []course.Sink
	// Concurrency bounds the number of listings fetched at once.
	Concurrency int
	// RawOut, if set, is where the raw records of a scrape are dumped.
	RawOut string
}

type Service struct {
	feed        course.Feed
	sinks       []course.Sink
	concurrency int
	rawOut      string
	counters    counters
}

func NewService(opts Options) (Service, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	c, err := newCounters()
	if err != nil {
		return Service{}, err
	}
	return Service{
		feed:        opts.Feed,
		sinks:       opts.Sinks,
		concurrency: opts.Concurrency,
		rawOut:      opts.RawOut,
		counters:    c,
	}, nil
}

type Result struct {
	Run     course.Run
	Records []course.CanonicalRecord
	// FetchErr joins the errors of every listing that failed, the run
	// itself continues without them.
	FetchErr error
}

// Collect fetches every target with bounded concurrency. Records are
// returned in target order regardless of completion order. Failed targets
// are logged and skipped, their errors are joined into the returned error.
func (s Service) Collect(ctx context.Context, targets []course.Target) ([]course.RawRecord, int, error) {
	ctx, span := tracer.Start(ctx, "Collect")
	defer span.End()
	span.SetAttributes(attribute.Int("targets", len(targets)))

	results := make([][]course.RawRecord, len(targets))
	errs := make([]error, len(targets))
	var done atomic.Int64

	group := errgroup.Group{}
	group.SetLimit(s.concurrency)
	for i, target := range targets {
		group.Go(func() error {
			records, err := s.feed.Fetch(ctx, target)
			if err != nil {
				errs[i] = fmt.Errorf("%s / %s: %w", target.Dept, target.Class, err)
				slog.WarnContext(
					ctx, "failed to fetch class listing",
					"dept", target.Dept,
					"class", target.Class,
					"url", target.URL,
					"err", err,
				)
			} else {
				results[i] = records
			}

			n := done.Add(1)
			if n%progressInterval == 0 || int(n) == len(targets) {
				slog.InfoContext(ctx, "scrape progress", "done", n, "total", len(targets))
			}
			return nil
		})
	}
	group.Wait()

	var raws []course.RawRecord
	for _, r := range results {
		raws = append(raws, r...)
	}
	failures := 0
	for _, err := range errs {
		if err != nil {
			failures++
		}
	}

	span.SetAttributes(
		attribute.Int("records", len(raws)),
		attribute.Int("failures", failures),
	)
	s.counters.raw.Add(ctx, int64(len(raws)))
	s.counters.failures.Add(ctx, int64(failures))

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
	}
	return raws, failures, err
}

func newRun() (course.Run, error) {
	id, err := random.String(8)
	if err != nil {
		return course.Run{}, err
	}
	now := timezone.Now()
	return course.Run{
		ID:        id,
		Term:      timezone.GetTerm(now).String(),
		StartedAt: now,
	}, nil
}

// Scrape runs the whole pipeline against the feed. A listing that fails to
// fetch does not fail the run, see Result.FetchErr.
func (s Service) Scrape(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	run, err := newRun()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create run id")
		return Result{}, err
	}
	span.SetAttributes(attribute.String("run_id", run.ID))

	targets, err := s.feed.Targets(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to discover class listings")
		return Result{}, fmt.Errorf("discover class listings: %w", err)
	}
	run.Targets = len(targets)

	raws, failures, fetchErr := s.Collect(ctx, targets)
	run.Failures = failures

	if s.rawOut != "" {
		err = course.WriteRawFile(s.rawOut, raws)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to dump raw records")
			return Result{}, fmt.Errorf("dump raw records: %w", err)
		}
		slog.InfoContext(ctx, "dumped raw records", "path", s.rawOut, "count", len(raws))
	}

	res, err := s.build(ctx, run, raws)
	res.FetchErr = fetchErr
	return res, err
}

// Rebuild runs the normalization and deduplication stages on records
// collected earlier and writes them to the sinks.
func (s Service) Rebuild(ctx context.Context, raws []course.RawRecord) (Result, error) {
	ctx, span := tracer.Start(ctx, "Rebuild")
	defer span.End()

	run, err := newRun()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create run id")
		return Result{}, err
	}
	return s.build(ctx, run, raws)
}

func (s Service) build(ctx context.Context, run course.Run, raws []course.RawRecord) (Result, error) {
	ctx, span := tracer.Start(ctx, "build")
	defer span.End()

	records, stats := course.Process(raws)
	run.Stats = stats
	run.FinishedAt = timezone.Now()

	s.counters.unique.Add(ctx, int64(stats.Unique))
	s.counters.merged.Add(ctx, int64(stats.Merged))
	span.SetAttributes(
		attribute.Int("inputs", stats.Inputs),
		attribute.Int("unique", stats.Unique),
		attribute.Int("merged", stats.Merged),
	)
	slog.InfoContext(
		ctx, "normalized courses",
		"run", run.ID,
		"inputs", stats.Inputs,
		"unique", stats.Unique,
		"merged", stats.Merged,
		"replaced", stats.Replaced,
	)

	res := Result{Run: run, Records: records}

	var errs []error
	for _, sink := range s.sinks {
		err := sink.Write(ctx, records)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		recorder, ok := sink.(course.RunRecorder)
		if !ok {
			continue
		}
		err = recorder.RecordRun(ctx, run)
		if err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write records")
	}
	return res, err
}
