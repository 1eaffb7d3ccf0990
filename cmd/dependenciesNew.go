package cmd

import (
	"bytes"

	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/dependencies"
	"github.com/joshyorko/depclean/operations"
	"github.com/joshyorko/depclean/pretty"
	"github.com/joshyorko/depclean/wizard"
	"github.com/spf13/cobra"
)

var (
	sinceDate    string
	reportFormat string
	reportOutput string
)

var dependenciesNewCmd = &cobra.Command{
	Use:   "new",
	Short: "List dependencies added to a project since a date.",
	Long: `List dependencies added to a project since a date.

Dates are read as UTC in any of these forms: 2024-03-01, 2024-03-01T10:00:00,
2024-03-01T10:00:00Z, "2024-03-01 10:00:00" or RFC 3339.

Without --output both a JSON and a CSV report are written to the output
directory as <project>_new_dependencies_<date>[_<branch>].json/.csv. With
--output - the report in --format goes to standard output.

Examples:
  depclean dependencies new --project 5f1c... --date 2024-03-01
  depclean dependencies new --project 5f1c... --date 2024-03-01 --branch develop --format lines --output -`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if common.DebugFlag() {
			defer common.Stopwatch("New dependencies command lasted").Report()
		}
		format, err := dependencies.ParseFormat(reportFormat)
		pretty.Guard(err == nil, 1, "%v", err)
		_, err = dependencies.ParseDate(sinceDate)
		pretty.Guard(err == nil, 1, "%v", err)

		config := summonSettings()
		query := operations.NewDependenciesQuery{
			Project: projectUuid,
			Date:    sinceDate,
			Branch:  branchName,
		}
		if len(reportOutput) > 0 && reportOutput != "-" && !confirmOverwrite(reportOutput) {
			return
		}

		endor := connectEndor(cmd.Context(), config)
		records, err := operations.NewDependencies(cmd.Context(), endor, query)
		pretty.Guard(err == nil, 3, "Listing dependencies failed: %v", err)

		switch reportOutput {
		case "":
			written, err := operations.DefaultReports(config.OutputDir, query, records)
			pretty.Guard(err == nil, 4, "Writing reports failed: %v", err)
			for _, filename := range written {
				common.Log("Report written to %s", filename)
			}
		case "-":
			sink := &bytes.Buffer{}
			err := operations.WriteReport(sink, reportOutput, format, records)
			pretty.Guard(err == nil, 4, "%v", err)
			common.Stdout("%s", sink.String())
			return
		default:
			err := operations.WriteReport(nil, reportOutput, format, records)
			pretty.Guard(err == nil, 4, "Writing report failed: %v", err)
			common.Log("Report written to %s", reportOutput)
		}
		common.Log("Found %d new dependencies since %s.", len(records), sinceDate)
		pretty.Ok()
	},
}

func init() {
	dependenciesCmd.AddCommand(dependenciesNewCmd)

	flags := dependenciesNewCmd.Flags()
	flags.StringVarP(&projectUuid, "project", "p", "", "Endor Labs project UUID.")
	flags.StringVarP(&sinceDate, "date", "d", "", "Only dependencies created on or after this date.")
	flags.StringVarP(&branchName, "branch", "b", "", "Branch context instead of the main context.")
	flags.StringVarP(&reportFormat, "format", "f", "json", "Report format: json, csv or lines.")
	flags.StringVarP(&reportOutput, "output", "o", "", "Report file, or - for standard output.")
	flags.StringVar(&outputDir, "output-dir", "", "Directory for default named reports (default from output_dir setting).")
	dependenciesNewCmd.MarkFlagRequired("project")
	dependenciesNewCmd.MarkFlagRequired("date")
	wizard.AddYesFlag(dependenciesNewCmd, &forceFlag)
}
