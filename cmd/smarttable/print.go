package main

import (
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/kungfusheep/smarttable"
	"github.com/kungfusheep/smarttable/term"
)

var printCmd = &cobra.Command{
	Use:   "print <data>",
	Short: "Print a table to the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrint,
}

func init() {
	printCmd.Flags().Int("width", 0, "output width in cells (default: terminal width)")
}

func runPrint(cmd *cobra.Command, args []string) error {
	width, _ := cmd.Flags().GetInt("width")
	if width <= 0 {
		width, _ = term.Size(int(os.Stdout.Fd()))
	}
	src, err := loadSource(cmd.Context(), cmd, args[0], smarttable.TerminalConfig())
	if err != nil {
		return err
	}
	tbl, err := newTable(cmd, src, term.Measurer{})
	if err != nil {
		return err
	}
	rect, ok := tbl.Info().TableRect()
	if !ok {
		return nil
	}
	cv := term.NewCanvas(width, int(math.Ceil(rect.Height())))
	if err := tbl.Draw(cv, cv.Bounds()); err != nil {
		return err
	}
	return term.NewRenderer().Print(cmd.OutOrStdout(), cv.Buffer())
}
