package commands

import (
	"fmt"
	"os"
	"strings"

	"ncucourse/lib/course"
	"ncucourse/lib/criteria"
	"ncucourse/lib/timeblock"
	"ncucourse/lib/util/serviceutil"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var parseJson *bool

func init() {
	parseJson = parseCmd.PersistentFlags().Bool("json", false, "Print the result as json.")
	parseCmd.AddCommand(parseTimeCmd)
	parseCmd.AddCommand(parseCriteriaCmd)
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Runs a single parser on a string, useful for checking catalog edge cases.",
}

var parseTimeCmd = &cobra.Command{
	Use:     "time <meeting time>",
	Short:   "Parses a meeting time string into time blocks.",
	Example: `ncucourse parse time "一34/E1-101 三Z"`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		blocks := timeblock.ParseAll(joinArgs(args))
		if *parseJson {
			printJson(blocks)
			return
		}
		if len(blocks) == 0 {
			color.Yellow("no time blocks")
			return
		}

		t := newTable()
		t.AppendHeader(table.Row{"Day", "Start", "End", "Periods"})
		for _, b := range blocks {
			t.AppendRow(table.Row{
				string(b.Day.Glyph()),
				b.Start,
				b.End,
				fmt.Sprintf("%c-%c", timeblock.PeriodCode(b.Start), timeblock.PeriodCode(b.End)),
			})
		}
		t.Render()
	},
}

var parseCriteriaCmd = &cobra.Command{
	Use:     "criteria <criteria>",
	Short:   "Parses an allocation criteria string into rule groups.",
	Example: `ncucourse parse criteria "(1)系:限資訊工程學系。年:限二年級 | (2)學號:限單號"`,
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		groups := criteria.Parse(joinArgs(args))
		if *parseJson {
			printJson(groups)
			return
		}
		if len(groups) == 0 {
			color.Yellow("no rule groups")
			return
		}

		include := color.New(color.FgGreen).SprintFunc()
		exclude := color.New(color.FgRed).SprintFunc()

		t := newTable()
		t.AppendHeader(table.Row{"Group", "Priority", "Category", "Mode", "Values"})
		for i, g := range groups {
			for _, category := range g.SortedCategories() {
				rule := g.Rules[category]
				mode := include(rule.Mode)
				if rule.Mode == criteria.Exclude {
					mode = exclude(rule.Mode)
				}
				values := strings.Join(rule.Values, ", ")
				if rule.Parity != "" {
					values = string(rule.Parity)
				}
				t.AppendRow(table.Row{i + 1, g.Priority, category, mode, values})
			}
			t.AppendSeparator()
		}
		t.Render()
	},
}

func printJson(v any) {
	err := course.WriteJSON(os.Stdout, v)
	if err != nil {
		serviceutil.Fatal("failed to encode json", err)
	}
}
