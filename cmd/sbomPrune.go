package cmd

import (
	"time"

	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/operations"
	"github.com/joshyorko/depclean/pretty"
	"github.com/joshyorko/depclean/wizard"
	"github.com/spf13/cobra"
)

var sbomPruneCmd = &cobra.Command{
	Use:   "prune <file|url>...",
	Short: "Clean local or downloadable SPDX JSON SBOMs.",
	Long: `Clean local or downloadable SPDX JSON SBOMs.

Each document is cleaned on its own, in parallel. The result of "bom.spdx.json"
is "bom-cleaned.spdx.json", written next to the input unless --output-dir is
given. A failing document does not stop the others.

Examples:
  depclean sbom prune bom.spdx.json --auto-detect
  depclean sbom prune exports/*.json --remove-list removals.txt --output-dir cleaned`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if common.DebugFlag() {
			defer common.Stopwatch("SBOM prune command lasted").Report()
		}
		config := summonSettings()
		target := ""
		if len(outputDir) > 0 {
			target = config.OutputDir
		}
		targets := make([]string, 0, len(args))
		for _, resource := range args {
			targets = append(targets, operations.PrunedTarget(resource, target))
		}
		options := pruneOptions(config)
		if !confirmOverwrite(targets...) {
			return
		}

		results, err := operations.PruneFiles(cmd.Context(), args, target, options)
		pretty.Guard(err == nil, 4, "Pruning failed: %v", err)
		failed := operations.Failed(results)

		if jsonFlag {
			printJson(results)
		} else {
			for _, result := range results {
				if len(result.Failure) > 0 {
					common.Log("%s: %s%s%s", result.Source, pretty.Red, result.Failure, pretty.Reset)
					continue
				}
				showReport(result.Source, result.Report, result.Fingerprint)
				common.Log("  written to %s in %s", result.Target, result.Elapsed.Round(time.Millisecond))
			}
		}
		pretty.Guard(failed == 0, 2, "%s of %d could not be cleaned.", plural(failed, "document"), len(results))
		if !jsonFlag {
			pretty.Ok()
		}
	},
}

func init() {
	sbomCmd.AddCommand(sbomPruneCmd)

	addRemovalFlags(sbomPruneCmd)
	addAttributionFlags(sbomPruneCmd)
	wizard.AddYesFlag(sbomPruneCmd, &forceFlag)
}
