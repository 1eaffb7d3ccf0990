package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/operations"
	"github.com/joshyorko/depclean/pretty"
	"github.com/joshyorko/depclean/sbom"
	"github.com/joshyorko/depclean/settings"
	"github.com/spf13/cobra"
)

var (
	removeListFile string
	rulesFile      string
	autoDetect     bool
	organization   string
	person         string
	outputDir      string
	forceFlag      bool
)

var sbomCmd = &cobra.Command{
	Use:   "sbom",
	Short: "Group of commands for cleaning SPDX SBOMs.",
	Long: `Group of commands for cleaning SPDX SBOMs.

Packages are removed when their exact name is in the removal list, or, with
--auto-detect, when they look like test, lint or build tooling. Packages the
document describes are never removed, and every relationship touching a
removed package goes with it.`,
}

func addRemovalFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&removeListFile, "remove-list", "r", "", "File with package names to remove, one per line.")
	flags.BoolVarP(&autoDetect, "auto-detect", "a", false, "Also remove packages that look like test or development tooling.")
	flags.StringVar(&rulesFile, "rules", "", "YAML file extending (or replacing) the tooling detection rules.")
}

func addAttributionFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&organization, "organization", "", "Organization to credit as creator of the cleaned SBOM.")
	flags.StringVar(&person, "person", "", "Person to credit as creator of the cleaned SBOM.")
	flags.StringVarP(&outputDir, "output-dir", "o", "", "Directory for written files (default from output_dir setting).")
}

// removalSpec builds what to remove from the removal flags.
func removalSpec() (sbom.RemovalSpec, *sbom.Matcher) {
	list, err := sbom.LoadRemovalList(removeListFile)
	pretty.Guard(err == nil, 2, "Could not read removal list %q: %v", removeListFile, err)
	common.Debug("Removal list: %d names, %d comments, %d blank lines, %d skipped.",
		len(list.Names), list.Comments, list.Blanks, len(list.Skipped))

	rules, err := sbom.LoadRuleSet(rulesFile)
	pretty.Guard(err == nil, 2, "Could not read rules %q: %v", rulesFile, err)
	if len(rulesFile) > 0 && !autoDetect {
		pretty.Warning("Rules from %q are only used with --auto-detect.", rulesFile)
	}

	spec := sbom.RemovalSpec{ExplicitNames: list.Names, AutoDetect: autoDetect}
	if spec.IsEmpty() {
		pretty.Note("Nothing to remove: no removal list names and no --auto-detect.")
	}
	return spec, sbom.NewMatcher(rules)
}

func summonSettings() *settings.Settings {
	config, err := settings.Summon()
	pretty.Guard(err == nil, 1, "Invalid configuration: %v", err)
	if len(outputDir) > 0 {
		config.OutputDir = common.ExpandPath(outputDir)
	}
	return config
}

func pruneOptions(config *settings.Settings) operations.PruneOptions {
	spec, matcher := removalSpec()
	return operations.PruneOptions{
		Spec:    spec,
		Matcher: matcher,
		Override: sbom.AttributionOverride{
			Organization: organization,
			Person:       person,
		},
		Env: config.EnvAttribution(),
		Now: time.Now,
	}
}

func confirmOverwrite(filenames ...string) bool {
	ok, err := confirm(forceFlag, filenames...)
	pretty.Guard(err == nil, 1, "%v", err)
	if !ok {
		common.Log("Nothing was written.")
	}
	return ok
}

func showReport(title string, report *sbom.Report, fingerprint string) {
	if report == nil {
		return
	}
	common.Log("%s: removed %d packages and %d relationships, kept %d packages and %d relationships.",
		pretty.Bright(title), len(report.Removed), report.DroppedRelationships, report.KeptPackages, report.KeptRelationships)
	for _, decision := range report.Removed {
		common.Log("  %s %s@%s (%s)", pretty.Decision(pretty.DecisionRemove), decision.Name, decision.Version, decision.Reason)
	}
	for _, decision := range report.Exempted {
		common.Log("  %s %s@%s (document root, matched %s)", pretty.Decision(pretty.DecisionExempt), decision.Name, decision.Version, decision.Reason)
	}
	if len(fingerprint) > 0 {
		common.Log("  fingerprint %s", fingerprint)
	}
}

func printJson(value interface{}) {
	nice, err := json.MarshalIndent(value, "", "  ")
	pretty.Guard(err == nil, 4, "%v", err)
	common.Stdout("%s\n", nice)
}

func plural(count int, word string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, word)
	}
	return fmt.Sprintf("%d %ss", count, word)
}

func init() {
	rootCmd.AddCommand(sbomCmd)
}
