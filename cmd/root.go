package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/pretty"
	"github.com/joshyorko/depclean/xviper"
	"github.com/spf13/cobra"
)

var (
	configFile string
	silentFlag bool
	debugFlag  bool
	traceFlag  bool
	jsonFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "depclean",
	Short: "depclean cleans dependency metadata exported from Endor Labs.",
	Long: `depclean cleans dependency metadata exported from Endor Labs.

It removes test and development tooling from SPDX SBOMs while keeping the
documents structurally valid, and reports dependencies that are new to a
project since a given date.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.DefineVerbosity(silentFlag, debugFlag, traceFlag)
		explicit := len(configFile) > 0
		location := configFile
		if !explicit {
			location = common.DepcleanMode().DefaultConfigFile()
		}
		if explicit {
			_, err := os.Stat(location)
			pretty.Guard(err == nil, 1, "Configuration file %q: %v", location, err)
		}
		err := xviper.Setup(location, common.DepcleanMode().DefaultEnvFile())
		pretty.Guard(err == nil, 1, "Configuration problem: %v", err)
		common.Trace("Configuration from %v", xviper.Sources())
	},
}

// Execute runs the command line; interrupts cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	pretty.Guard(err == nil, 1, "Error: %v", err)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default is $DEPCLEAN_HOME/depclean.yaml).")
	flags.BoolVarP(&silentFlag, "silent", "", false, "Be less verbose on output.")
	flags.BoolVarP(&debugFlag, "debug", "", false, "To get debug output where available.")
	flags.BoolVarP(&traceFlag, "trace", "", false, "To get trace output where available.")
	flags.BoolVarP(&jsonFlag, "json", "j", false, "Output machine readable JSON.")
}
