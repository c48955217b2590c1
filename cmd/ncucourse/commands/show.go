package commands

import (
	"context"
	"fmt"
	"log/slog"

	"ncucourse/lib/course"
	"ncucourse/lib/coursestore"
	"ncucourse/lib/textutil"
	"ncucourse/lib/timeblock"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const deptMatchThreshold = 0.8

var (
	showDb   *string
	showDept *string
	showRuns *bool
)

func init() {
	showDb = showCmd.Flags().String("db", "", "The sqlite database written by scrape, overrides output.database.file.")
	showDept = showCmd.Flags().String("dept", "", "Only show courses listed by this department, matched fuzzily.")
	showRuns = showCmd.Flags().Bool("runs", false, "List recorded scrape runs instead of courses.")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [--db <courses.db>] [--dept <name>] [--runs]",
	Short: "Lists the courses stored by the last scrape.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := readConfig(*configPath)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		dbConfig := cfg.Output.Database
		if *showDb != "" {
			dbConfig = coursestore.Config{File: *showDb}
		}
		if !dbConfig.Enabled() {
			return fmt.Errorf("no database to read from, specify --db or output.database in the config")
		}

		db, err := dbConfig.OpenDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		store := coursestore.NewStore(db)

		if *showRuns {
			runs, err := store.Runs(ctx)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			renderRuns(runs)
			return nil
		}

		var records []course.CanonicalRecord
		if *showDept != "" {
			dept, err := resolveDept(ctx, store, *showDept)
			if err != nil {
				return err
			}
			records, err = store.ListByDept(ctx, dept)
			if err != nil {
				return fmt.Errorf("list courses of %s: %w", dept, err)
			}
		} else {
			records, err = store.List(ctx)
			if err != nil {
				return fmt.Errorf("list courses: %w", err)
			}
		}
		renderCourses(records)
		return nil
	},
}

func resolveDept(ctx context.Context, store coursestore.Store, name string) (string, error) {
	depts, err := store.Departments(ctx)
	if err != nil {
		return "", fmt.Errorf("list departments: %w", err)
	}
	match, ok := textutil.BestMatch(name, depts, deptMatchThreshold)
	if !ok {
		return "", fmt.Errorf("no department resembles %q", name)
	}
	if match.Candidate != name {
		slog.Info("matched department", "query", name, "dept", match.Candidate, "similarity", match.Similarity)
	}
	return match.Candidate, nil
}

func renderCourses(records []course.CanonicalRecord) {
	required := color.New(color.FgCyan).SprintFunc()

	t := newTable()
	t.AppendHeader(table.Row{"Serial", "Code", "Name", "Instructor", "Credits", "Type", "Time", "Dept", "Listings"})
	for _, r := range records {
		kind := r.Requirement
		if r.IsRequired {
			kind = required(kind)
		}
		t.AppendRow(table.Row{
			r.Serial,
			r.Code,
			r.Name,
			r.Instructor,
			r.Credits,
			kind,
			timeblock.Format(r.TimeParsed),
			r.Dept,
			len(r.Sources),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "", "Total", len(records)})
	t.Render()
}

func renderRuns(runs []course.Run) {
	t := newTable()
	t.AppendHeader(table.Row{"Id", "Term", "Started", "Duration", "Targets", "Failures", "Raw", "Courses", "Merged"})
	for _, r := range runs {
		t.AppendRow(table.Row{
			r.ID,
			r.Term,
			r.StartedAt.Format("2006-01-02 15:04"),
			r.FinishedAt.Sub(r.StartedAt).String(),
			r.Targets,
			r.Failures,
			r.Stats.Inputs,
			r.Stats.Unique,
			r.Stats.Merged,
		})
	}
	t.Render()
}
