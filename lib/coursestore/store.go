package coursestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ncucourse/lib/course"
	"ncucourse/lib/coursestore/db"
	"ncucourse/lib/criteria"
	"ncucourse/lib/timeblock"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ncucourse.lib.coursestore")

// Store keeps the latest canonical record set and the history of runs.
// Writing a record set replaces the previous one.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

func (s Store) Write(ctx context.Context, records []course.CanonicalRecord) error {
	ctx, span := tracer.Start(ctx, "Write")
	defer span.End()
	span.SetAttributes(attribute.Int("records", len(records)))

	err := s.write(ctx, records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write courses")
		return fmt.Errorf("coursestore: %w", err)
	}
	return nil
}

func (s Store) write(ctx context.Context, records []course.CanonicalRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteCourseSources(ctx)
	if err != nil {
		return err
	}
	err = txqry.DeleteCourses(ctx)
	if err != nil {
		return err
	}

	for _, r := range records {
		timeParsed, err := json.Marshal(r.TimeParsed)
		if err != nil {
			return err
		}
		rulesParsed, err := json.Marshal(r.RulesParsed)
		if err != nil {
			return err
		}

		err = txqry.CreateCourse(ctx, db.CreateCourseParams{
			Serial:      r.Serial,
			Code:        r.Code,
			Name:        r.Name,
			Instructor:  r.Instructor,
			Credits:     r.Credits,
			Requirement: r.Requirement,
			MeetingTime: r.MeetingTime,
			Criteria:    r.Criteria,
			Dept:        r.Dept,
			Class:       r.Class,
			IsRequired:  r.IsRequired,
			TimeParsed:  string(timeParsed),
			RulesParsed: string(rulesParsed),
		})
		if err != nil {
			return fmt.Errorf("insert course %s: %w", r.Serial, err)
		}

		for i, src := range r.Sources {
			err = txqry.CreateCourseSource(ctx, db.CreateCourseSourceParams{
				Serial:   r.Serial,
				Position: int64(i),
				Dept:     src.Dept,
				Class:    src.Class,
			})
			if err != nil {
				return fmt.Errorf("insert source of %s: %w", r.Serial, err)
			}
		}
	}

	return tx.Commit()
}

func (s Store) RecordRun(ctx context.Context, run course.Run) error {
	ctx, span := tracer.Start(ctx, "RecordRun")
	defer span.End()

	err := s.qry.CreateScrapeRun(ctx, db.CreateScrapeRunParams{
		ID:            run.ID,
		Term:          run.Term,
		StartedAt:     run.StartedAt.Unix(),
		FinishedAt:    run.FinishedAt.Unix(),
		Targets:       int64(run.Targets),
		Failures:      int64(run.Failures),
		Inputs:        int64(run.Stats.Inputs),
		UniqueCourses: int64(run.Stats.Unique),
		Merged:        int64(run.Stats.Merged),
		Replaced:      int64(run.Stats.Replaced),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record run")
		return fmt.Errorf("coursestore: record run: %w", err)
	}
	return nil
}

// Runs lists recorded runs, most recent first.
func (s Store) Runs(ctx context.Context) ([]course.Run, error) {
	rows, err := s.qry.GetScrapeRuns(ctx)
	if err != nil {
		return nil, err
	}

	runs := make([]course.Run, len(rows))
	for i, row := range rows {
		runs[i] = course.Run{
			ID:         row.ID,
			Term:       row.Term,
			StartedAt:  time.Unix(row.StartedAt, 0),
			FinishedAt: time.Unix(row.FinishedAt, 0),
			Targets:    int(row.Targets),
			Failures:   int(row.Failures),
			Stats: course.Stats{
				Inputs:   int(row.Inputs),
				Unique:   int(row.UniqueCourses),
				Merged:   int(row.Merged),
				Replaced: int(row.Replaced),
			},
		}
	}
	return runs, nil
}

// List returns every stored course, ordered by serial.
func (s Store) List(ctx context.Context) ([]course.CanonicalRecord, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	rows, err := s.qry.GetCourses(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query courses")
		return nil, err
	}
	return s.decode(ctx, rows)
}

// ListByDept returns the courses listed by dept under any of their
// sources, ordered by serial.
func (s Store) ListByDept(ctx context.Context, dept string) ([]course.CanonicalRecord, error) {
	ctx, span := tracer.Start(ctx, "ListByDept")
	defer span.End()
	span.SetAttributes(attribute.String("dept", dept))

	rows, err := s.qry.GetCoursesByDept(ctx, dept)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query courses")
		return nil, err
	}
	return s.decode(ctx, rows)
}

func (s Store) decode(ctx context.Context, rows []db.Course) ([]course.CanonicalRecord, error) {
	records := make([]course.CanonicalRecord, len(rows))
	for i, row := range rows {
		r := course.CanonicalRecord{
			NormalizedRecord: course.NormalizedRecord{
				RawRecord: course.RawRecord{
					Serial:      row.Serial,
					Code:        row.Code,
					Name:        row.Name,
					Instructor:  row.Instructor,
					Credits:     row.Credits,
					Requirement: row.Requirement,
					MeetingTime: row.MeetingTime,
					Criteria:    row.Criteria,
					Dept:        row.Dept,
					Class:       row.Class,
				},
				IsRequired: row.IsRequired,
			},
		}

		r.TimeParsed = []timeblock.TimeBlock{}
		err := json.Unmarshal([]byte(row.TimeParsed), &r.TimeParsed)
		if err != nil {
			slog.WarnContext(ctx, "failed to unmarshal stored time blocks", "serial", r.Serial, "err", err)
		}
		r.RulesParsed = []criteria.RuleGroup{}
		err = json.Unmarshal([]byte(row.RulesParsed), &r.RulesParsed)
		if err != nil {
			slog.WarnContext(ctx, "failed to unmarshal stored rules", "serial", r.Serial, "err", err)
		}

		r.Sources, err = s.Sources(ctx, r.Serial)
		if err != nil {
			return nil, err
		}
		records[i] = r
	}
	return records, nil
}

// Sources returns the listings a course was seen in, in sighting order.
func (s Store) Sources(ctx context.Context, serial string) ([]course.Source, error) {
	rows, err := s.qry.GetCourseSources(ctx, serial)
	if err != nil {
		return nil, err
	}
	sources := make([]course.Source, len(rows))
	for i, row := range rows {
		sources[i] = course.Source{Dept: row.Dept, Class: row.Class}
	}
	return sources, nil
}

// Departments lists every department that lists at least one course.
func (s Store) Departments(ctx context.Context) ([]string, error) {
	depts, err := s.qry.GetDepartments(ctx)
	if err != nil {
		return nil, err
	}
	if depts == nil {
		depts = []string{}
	}
	return depts, nil
}
