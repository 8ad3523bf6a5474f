package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kungfusheep/smarttable"
	"github.com/kungfusheep/smarttable/raster"
	"github.com/kungfusheep/smarttable/xlsx"
)

var exportCmd = &cobra.Command{
	Use:   "export <data> <out.xlsx>",
	Short: "Export a table, merges included, to an Excel workbook",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().String("out-sheet", "Sheet1", "name of the written sheet")
}

func runExport(cmd *cobra.Command, args []string) error {
	sheet, _ := cmd.Flags().GetString("out-sheet")
	fonts, err := raster.NewFonts(96)
	if err != nil {
		return err
	}
	src, err := loadSource(cmd.Context(), cmd, args[0], smarttable.DefaultConfig())
	if err != nil {
		return err
	}
	tbl, err := newTable(cmd, src, raster.Measurer{Fonts: fonts})
	if err != nil {
		return err
	}

	opts := xlsx.DefaultExportOptions()
	opts.Sheet = sheet
	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	if err := xlsx.Export(f, tbl, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
