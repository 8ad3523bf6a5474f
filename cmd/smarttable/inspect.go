package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kungfusheep/smarttable"
	"github.com/kungfusheep/smarttable/term"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <data>",
	Short: "Show the measured layout of a table",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().Bool("merges", false, "list every merge range")
}

func runInspect(cmd *cobra.Command, args []string) error {
	showMerges, _ := cmd.Flags().GetBool("merges")
	src, err := loadSource(cmd.Context(), cmd, args[0], smarttable.TerminalConfig())
	if err != nil {
		return err
	}
	tbl, err := newTable(cmd, src, term.Measurer{})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	writeColumns(out, tbl)
	if showMerges {
		writeMerges(out, tbl.Grid().Ranges())
	}
	info := tbl.Info()
	fmt.Fprintf(out, "%d records, %d physical rows, %d leaf columns, %d merges\n",
		len(tbl.Data().Records), info.LineSize, info.ColumnSize, len(tbl.Grid().Ranges()))
	return nil
}

func writeColumns(w io.Writer, tbl *smarttable.Table) {
	info := tbl.Info()
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"#", "Column", "Field", "Kind", "Lists", "Depth", "Width", "Fixed", "Count"})
	t.SetAutoWrapText(false)
	for _, c := range tbl.Data().Leaves() {
		i := c.Index()
		t.Append([]string{
			strconv.Itoa(i),
			c.Name,
			c.Field,
			c.Kind.String(),
			strconv.Itoa(c.ArrayLevel()),
			strconv.Itoa(c.Depth()),
			strconv.Itoa(info.Widths[i]),
			strconv.FormatBool(c.Fixed),
			c.CountText(),
		})
	}
	t.Render()
}

func writeMerges(w io.Writer, ranges []smarttable.CellRange) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Range", "Rows", "Cols"})
	for _, r := range ranges {
		t.Append([]string{r.String(), strconv.Itoa(r.Rows()), strconv.Itoa(r.Cols())})
	}
	t.Render()
}
