package db

import (
	"context"
)

const createCourse = `-- name: CreateCourse :exec
insert into courses (
    serial, code, name, instructor, credits, requirement, meeting_time,
    criteria, dept, class, is_required, time_parsed, rules_parsed
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateCourseParams struct {
	Serial      string
	Code        string
	Name        string
	Instructor  string
	Credits     string
	Requirement string
	MeetingTime string
	Criteria    string
	Dept        string
	Class       string
	IsRequired  bool
	TimeParsed  string
	RulesParsed string
}

func (q *Queries) CreateCourse(ctx context.Context, arg CreateCourseParams) error {
	_, err := q.db.ExecContext(ctx, createCourse,
		arg.Serial,
		arg.Code,
		arg.Name,
		arg.Instructor,
		arg.Credits,
		arg.Requirement,
		arg.MeetingTime,
		arg.Criteria,
		arg.Dept,
		arg.Class,
		arg.IsRequired,
		arg.TimeParsed,
		arg.RulesParsed,
	)
	return err
}

const createCourseSource = `-- name: CreateCourseSource :exec
insert into course_sources (serial, position, dept, class) values (?, ?, ?, ?)
`

type CreateCourseSourceParams struct {
	Serial   string
	Position int64
	Dept     string
	Class    string
}

func (q *Queries) CreateCourseSource(ctx context.Context, arg CreateCourseSourceParams) error {
	_, err := q.db.ExecContext(ctx, createCourseSource,
		arg.Serial,
		arg.Position,
		arg.Dept,
		arg.Class,
	)
	return err
}

const createScrapeRun = `-- name: CreateScrapeRun :exec
insert into scrape_runs (
    id, term, started_at, finished_at, targets, failures,
    inputs, unique_courses, merged, replaced
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateScrapeRunParams struct {
	ID            string
	Term          string
	StartedAt     int64
	FinishedAt    int64
	Targets       int64
	Failures      int64
	Inputs        int64
	UniqueCourses int64
	Merged        int64
	Replaced      int64
}

func (q *Queries) CreateScrapeRun(ctx context.Context, arg CreateScrapeRunParams) error {
	_, err := q.db.ExecContext(ctx, createScrapeRun,
		arg.ID,
		arg.Term,
		arg.StartedAt,
		arg.FinishedAt,
		arg.Targets,
		arg.Failures,
		arg.Inputs,
		arg.UniqueCourses,
		arg.Merged,
		arg.Replaced,
	)
	return err
}

const deleteCourseSources = `-- name: DeleteCourseSources :exec
delete from course_sources
`

func (q *Queries) DeleteCourseSources(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteCourseSources)
	return err
}

const deleteCourses = `-- name: DeleteCourses :exec
delete from courses
`

func (q *Queries) DeleteCourses(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteCourses)
	return err
}

const getCourseSources = `-- name: GetCourseSources :many
select dept, class from course_sources
where serial = ?
order by position
`

type GetCourseSourcesRow struct {
	Dept  string
	Class string
}

func (q *Queries) GetCourseSources(ctx context.Context, serial string) ([]GetCourseSourcesRow, error) {
	rows, err := q.db.QueryContext(ctx, getCourseSources, serial)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetCourseSourcesRow
	for rows.Next() {
		var i GetCourseSourcesRow
		if err := rows.Scan(&i.Dept, &i.Class); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCourses = `-- name: GetCourses :many
select serial, code, name, instructor, credits, requirement, meeting_time, criteria, dept, class, is_required, time_parsed, rules_parsed from courses
order by serial
`

func (q *Queries) GetCourses(ctx context.Context) ([]Course, error) {
	rows, err := q.db.QueryContext(ctx, getCourses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Course
	for rows.Next() {
		var i Course
		if err := rows.Scan(
			&i.Serial,
			&i.Code,
			&i.Name,
			&i.Instructor,
			&i.Credits,
			&i.Requirement,
			&i.MeetingTime,
			&i.Criteria,
			&i.Dept,
			&i.Class,
			&i.IsRequired,
			&i.TimeParsed,
			&i.RulesParsed,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCoursesByDept = `-- name: GetCoursesByDept :many
select serial, code, name, instructor, credits, requirement, meeting_time, criteria, dept, class, is_required, time_parsed, rules_parsed from courses
where serial in (
    select serial from course_sources where dept = ?
)
order by serial
`

func (q *Queries) GetCoursesByDept(ctx context.Context, dept string) ([]Course, error) {
	rows, err := q.db.QueryContext(ctx, getCoursesByDept, dept)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Course
	for rows.Next() {
		var i Course
		if err := rows.Scan(
			&i.Serial,
			&i.Code,
			&i.Name,
			&i.Instructor,
			&i.Credits,
			&i.Requirement,
			&i.MeetingTime,
			&i.Criteria,
			&i.Dept,
			&i.Class,
			&i.IsRequired,
			&i.TimeParsed,
			&i.RulesParsed,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getDepartments = `-- name: GetDepartments :many
select distinct dept from course_sources
order by dept
`

func (q *Queries) GetDepartments(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getDepartments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var dept string
		if err := rows.Scan(&dept); err != nil {
			return nil, err
		}
		items = append(items, dept)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getScrapeRuns = `-- name: GetScrapeRuns :many
select id, term, started_at, finished_at, targets, failures, inputs, unique_courses, merged, replaced from scrape_runs
order by started_at desc, id
`

func (q *Queries) GetScrapeRuns(ctx context.Context) ([]ScrapeRun, error) {
	rows, err := q.db.QueryContext(ctx, getScrapeRuns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ScrapeRun
	for rows.Next() {
		var i ScrapeRun
		if err := rows.Scan(
			&i.ID,
			&i.Term,
			&i.StartedAt,
			&i.FinishedAt,
			&i.Targets,
			&i.Failures,
			&i.Inputs,
			&i.UniqueCourses,
			&i.Merged,
			&i.Replaced,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
