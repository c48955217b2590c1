package commands

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
