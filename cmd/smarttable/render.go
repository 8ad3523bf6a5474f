package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kungfusheep/smarttable"
	"github.com/kungfusheep/smarttable/raster"
)

var renderCmd = &cobra.Command{
	Use:   "render <data> <out.png>",
	Short: "Render a table to a PNG image",
	Args:  cobra.ExactArgs(2),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().Int("width", 0, "image width in pixels (default: table width)")
	renderCmd.Flags().Int("height", 0, "image height in pixels (default: table height)")
	renderCmd.Flags().Float64("dpi", 72, "font resolution")
	renderCmd.Flags().String("theme", "light", "theme (light|dark)")
}

func runRender(cmd *cobra.Command, args []string) error {
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	dpi, _ := cmd.Flags().GetFloat64("dpi")
	theme, _ := cmd.Flags().GetString("theme")

	base := smarttable.DefaultConfig()
	switch theme {
	case "light":
	case "dark":
		base.Theme = smarttable.ThemeDark
	default:
		return fmt.Errorf("unknown theme %q", theme)
	}

	fonts, err := raster.NewFonts(dpi)
	if err != nil {
		return err
	}
	src, err := loadSource(cmd.Context(), cmd, args[0], base)
	if err != nil {
		return err
	}
	tbl, err := newTable(cmd, src, raster.Measurer{Fonts: fonts})
	if err != nil {
		return err
	}
	cv, err := raster.Render(tbl, fonts, width, height)
	if err != nil {
		return err
	}

	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	if err := cv.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
