package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"ncucourse/lib/course"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ncucourse.lib.pgstore")

const Schema = `
CREATE TABLE IF NOT EXISTS scrape_runs (
	id TEXT PRIMARY KEY,
	term TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	targets INTEGER NOT NULL,
	failures INTEGER NOT NULL,
	stats JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
	serial TEXT PRIMARY KEY,
	code TEXT NOT NULL,
	name TEXT NOT NULL,
	instructor TEXT NOT NULL,
	credits TEXT NOT NULL,
	requirement TEXT NOT NULL,
	meeting_time TEXT NOT NULL,
	criteria TEXT NOT NULL,
	dept TEXT NOT NULL,
	class TEXT NOT NULL,
	is_required BOOLEAN NOT NULL,
	time_parsed JSONB NOT NULL,
	rules_parsed JSONB NOT NULL,
	sources JSONB NOT NULL
);
`

const upsertCourse = `INSERT INTO courses (serial, code, name, instructor, credits, requirement, meeting_time, criteria, dept, class, is_required, time_parsed, rules_parsed, sources) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13::jsonb, $14::jsonb) ON CONFLICT (serial) DO UPDATE SET code=EXCLUDED.code, name=EXCLUDED.name, instructor=EXCLUDED.instructor, credits=EXCLUDED.credits, requirement=EXCLUDED.requirement, meeting_time=EXCLUDED.meeting_time, criteria=EXCLUDED.criteria, dept=EXCLUDED.dept, class=EXCLUDED.class, is_required=EXCLUDED.is_required, time_parsed=EXCLUDED.time_parsed, rules_parsed=EXCLUDED.rules_parsed, sources=EXCLUDED.sources`
const deleteStaleCourses = `DELETE FROM courses WHERE NOT (serial = ANY($1))`
const insertRun = `INSERT INTO scrape_runs (id, term, started_at, finished_at, targets, failures, stats) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)`

// Store writes the canonical record set to postgres, courses missing from
// a write are removed.
type Store struct {
	Pool *pgxpool.Pool
}

// Open connects to dsn and makes sure the tables exist.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}
	_, err = pool.Exec(ctx, Schema)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: apply schema: %w", err)
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func courseArgs(r course.CanonicalRecord) ([]any, error) {
	timeParsed, err := json.Marshal(r.TimeParsed)
	if err != nil {
		return nil, err
	}
	rulesParsed, err := json.Marshal(r.RulesParsed)
	if err != nil {
		return nil, err
	}
	sources := r.Sources
	if sources == nil {
		sources = []course.Source{}
	}
	sourcesJson, err := json.Marshal(sources)
	if err != nil {
		return nil, err
	}
	return []any{
		r.Serial, r.Code, r.Name, r.Instructor, r.Credits, r.Requirement,
		r.MeetingTime, r.Criteria, r.Dept, r.Class, r.IsRequired,
		string(timeParsed), string(rulesParsed), string(sourcesJson),
	}, nil
}

func serials(records []course.CanonicalRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Serial
	}
	return out
}

func (s *Store) Write(ctx context.Context, records []course.CanonicalRecord) error {
	ctx, span := tracer.Start(ctx, "Write")
	defer span.End()
	span.SetAttributes(attribute.Int("records", len(records)))

	err := s.write(ctx, records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write courses")
		return fmt.Errorf("pgstore: %w", err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, records []course.CanonicalRecord) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := pgx.Batch{}
	for _, r := range records {
		args, err := courseArgs(r)
		if err != nil {
			return fmt.Errorf("encode course %s: %w", r.Serial, err)
		}
		batch.Queue(upsertCourse, args...)
	}
	batch.Queue(deleteStaleCourses, serials(records))

	err = tx.SendBatch(ctx, &batch).Close()
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) RecordRun(ctx context.Context, run course.Run) error {
	ctx, span := tracer.Start(ctx, "RecordRun")
	defer span.End()

	stats, err := json.Marshal(run.Stats)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(
		ctx, insertRun,
		run.ID, run.Term, run.StartedAt, run.FinishedAt,
		run.Targets, run.Failures, string(stats),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record run")
		return fmt.Errorf("pgstore: record run: %w", err)
	}
	return nil
}

// Count returns the number of stored courses.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM courses").Scan(&n)
	return n, err
}
