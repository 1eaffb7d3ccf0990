package cmd

import (
	"github.com/spf13/cobra"
)

var dependenciesCmd = &cobra.Command{
	Use:     "dependencies",
	Aliases: []string{"deps"},
	Short:   "Group of commands for Endor Labs dependency metadata.",
}

func init() {
	rootCmd.AddCommand(dependenciesCmd)
}
