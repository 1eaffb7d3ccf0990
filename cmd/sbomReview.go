package cmd

import (
	"os"
	"strings"

	"github.com/joshyorko/depclean/cloud"
	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/interactive"
	"github.com/joshyorko/depclean/pretty"
	"github.com/joshyorko/depclean/sbom"
	"github.com/joshyorko/depclean/wizard"
	"github.com/spf13/cobra"
)

const defaultRemovalList = "removals.txt"

var saveFile string

var sbomReviewCmd = &cobra.Command{
	Use:   "review <file|url>",
	Short: "Review what cleaning would remove from an SBOM.",
	Long: `Review what cleaning would remove from an SBOM.

In a terminal this opens a table of all packages with their decision. Press
space to flip a package between remove and keep, / to filter, s to save the
removals as a removal list and q to quit without saving. Described root
packages cannot be removed.

Without a terminal, or with --json, the decisions are only printed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := cloud.ReadFile(cmd.Context(), args[0])
		pretty.Guard(err == nil, 2, "Could not read %q: %v", args[0], err)
		doc, err := sbom.Parse(raw)
		pretty.Guard(err == nil, 2, "%v", err)
		pretty.Guard(doc.Validate() == nil, 2, "%v", doc.Validate())

		spec, matcher := removalSpec()
		rows := interactive.BuildRows(doc, spec, matcher)
		if jsonFlag {
			printJson(rows)
			return
		}
		if !pretty.Interactive {
			listRows(rows)
			return
		}

		review, err := interactive.RunReview(rows)
		pretty.Guard(err == nil, 1, "Review failed: %v", err)
		if !review.Saved() {
			common.Log("Review ended without saving. %s", review.Summary())
			return
		}
		target := saveFile
		if len(target) == 0 {
			target = removeListFile
		}
		if len(target) == 0 {
			target = defaultRemovalList
		}
		if !confirmOverwrite(target) {
			return
		}
		saved, err := saveReview(review, target, cloud.ResourceName(args[0]))
		pretty.Guard(err == nil, 3, "Could not write %q: %v", target, err)
		common.Log("Saved %s to %s. %s", plural(saved, "name"), target, review.Summary())
		pretty.Ok()
	},
}

// saveReview merges the review into the list already at target, keeping its
// notes and every name the reviewed document does not mention.
func saveReview(review *interactive.Review, target, resource string) (int, error) {
	loaded, err := sbom.LoadRemovalList(target)
	if err != nil {
		return 0, err
	}
	for _, line := range loaded.Skipped {
		common.Log("Dropping %q from %s, it is not a package name.", line, target)
	}
	header := "removal list reviewed for " + resource
	if len(loaded.Notes) > 0 {
		header = strings.Join(loaded.Notes, "\n")
	}
	names := review.MergedRemovals(loaded.Names)
	sink, err := os.Create(target)
	if err != nil {
		return 0, err
	}
	err = sbom.WriteRemovalList(sink, header, names)
	if err != nil {
		sink.Close()
		return 0, err
	}
	return len(names), sink.Close()
}

func listRows(rows []interactive.ReviewRow) {
	width := pretty.TerminalWidth()
	for _, row := range rows {
		line := strings.TrimSpace(row.Name + "@" + row.Version + "  " + row.Reason)
		common.Stdout("%s%s %s\n", pretty.Decision(row.Decision), padding(row.Decision), pretty.Ellipsis(line, width-8))
	}
	common.Stdout("%s\n", pretty.Rule(width))
}

func padding(text string) string {
	if len(text) >= 6 {
		return ""
	}
	return strings.Repeat(" ", 6-len(text))
}

func init() {
	sbomCmd.AddCommand(sbomReviewCmd)

	addRemovalFlags(sbomReviewCmd)
	sbomReviewCmd.Flags().StringVar(&saveFile, "save", "", "Removal list file to save into (default is --remove-list, or removals.txt).")
	wizard.AddYesFlag(sbomReviewCmd, &forceFlag)
}
