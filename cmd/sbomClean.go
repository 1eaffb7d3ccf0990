package cmd

import (
	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/oci"
	"github.com/joshyorko/depclean/operations"
	"github.com/joshyorko/depclean/pretty"
	"github.com/joshyorko/depclean/wizard"
	"github.com/spf13/cobra"
)

var (
	projectUuid  string
	branchName   string
	sbomRegistry string
	sbomTag      string
)

var sbomCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Export a project SBOM from Endor Labs and clean it.",
	Long: `Export a project SBOM from Endor Labs and clean it.

The export is saved unchanged as <project>-original.spdx.json and the cleaned
document as <project>-cleaned.spdx.json in the output directory.

Examples:
  # Remove listed packages from the main branch SBOM
  depclean sbom clean --project 5f1c... --remove-list removals.txt

  # Also detect tooling, credit your organization, push the result
  depclean sbom clean --project 5f1c... --auto-detect --organization "Acme Inc." \
    --registry ghcr.io/acme/sboms --tag 1.4.2`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if common.DebugFlag() {
			defer common.Stopwatch("SBOM clean command lasted").Report()
		}
		config := summonSettings()
		options := operations.CleanOptions{
			Project:   projectUuid,
			Branch:    branchName,
			OutputDir: config.OutputDir,
			Prune:     pruneOptions(config),
		}
		if !confirmOverwrite(
			operations.OriginalFilename(options.OutputDir, options.Project),
			operations.CleanedFilename(options.OutputDir, options.Project)) {
			return
		}
		if len(sbomRegistry) > 0 {
			tag := sbomTag
			if len(tag) == 0 {
				tag = projectUuid
			}
			options.Pusher = oci.NewClientFromEnv(sbomRegistry, tag)
		}

		endor := connectEndor(cmd.Context(), config)
		result, err := operations.CleanProjectSbom(cmd.Context(), endor, options)
		pretty.Guard(err == nil, 2, "Cleaning SBOM failed: %v", err)

		if jsonFlag {
			printJson(result)
			return
		}
		showReport(result.Project, result.Report, result.Fingerprint)
		common.Log("Original SBOM: %s", result.Original)
		common.Log("Cleaned SBOM:  %s", result.Cleaned)
		if result.Pushed != nil {
			common.Log("Pushed to %s:%s (%s)", result.Pushed.Registry, result.Pushed.Tag, result.Pushed.Digest)
		}
		pretty.Ok()
	},
}

func init() {
	sbomCmd.AddCommand(sbomCleanCmd)

	flags := sbomCleanCmd.Flags()
	flags.StringVarP(&projectUuid, "project", "p", "", "Endor Labs project UUID.")
	flags.StringVarP(&branchName, "branch", "b", "", "Branch context instead of the main context.")
	flags.StringVar(&sbomRegistry, "registry", "", "OCI registry and repository to push the cleaned SBOM to.")
	flags.StringVar(&sbomTag, "tag", "", "Tag for the pushed SBOM (default is the project UUID).")
	sbomCleanCmd.MarkFlagRequired("project")
	addRemovalFlags(sbomCleanCmd)
	addAttributionFlags(sbomCleanCmd)
	wizard.AddYesFlag(sbomCleanCmd, &forceFlag)
}
