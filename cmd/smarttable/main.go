// smarttable: lays out, views and converts hierarchical tables
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "smarttable"

var rootCmd = &cobra.Command{
	Use:   "smarttable",
	Short: "Lay out, view and convert hierarchical tables",
	Long: `smarttable renders row data through a column tree into a merged grid.

Data comes from JSON, YAML, msgpack or xlsx files. A table definition (TOML or
YAML) describes the column tree; without one, columns follow the keys of the
first record. Every flag can also be set from the environment, for example
SMARTTABLE_LOG_LEVEL=debug or SMARTTABLE_VIEW_FPS=30.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return bindEnv(cmd)
	},
}

func init() {
	rootCmd.AddCommand(viewCmd, printCmd, renderCmd, exportCmd, inspectCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("def", "", "table definition file (toml or yaml)")
	flags.String("config", "", "layout config file (toml or yaml)")
	flags.String("sheet", "", "sheet to read from xlsx data")
	flags.String("sort", "", "leaf column name to sort by; prefix with - to reverse")
	flags.String("log-level", "warning", "log level (debug|info|warning|error)")
	flags.String("log-format", "text", "log format (text|json)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		os.Exit(1)
	}
}

// bindEnv fills flags the user did not set from SMARTTABLE_* variables,
// command flags under SMARTTABLE_<COMMAND>_*.
func bindEnv(cmd *cobra.Command) error {
	var errs []string
	apply := func(prefix string, fs *pflag.FlagSet) {
		v := viper.New()
		v.SetEnvPrefix(prefix)
		v.AutomaticEnv()
		fs.VisitAll(func(f *pflag.Flag) {
			name := strings.ReplaceAll(f.Name, "-", "_")
			if f.Changed || !v.IsSet(name) {
				return
			}
			if err := fs.Set(f.Name, fmt.Sprintf("%v", v.Get(name))); err != nil {
				errs = append(errs, err.Error())
			}
		})
	}
	apply(envPrefix, cmd.Root().PersistentFlags())
	if cmd != cmd.Root() {
		apply(envPrefix+"_"+cmd.Name(), cmd.LocalFlags())
	}
	if len(errs) > 0 {
		return fmt.Errorf("environment: %s", strings.Join(errs, "; "))
	}
	return nil
}
