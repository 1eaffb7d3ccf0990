package wizard

import (
	"errors"
	"os"
	"strings"

	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/pretty"
	"github.com/spf13/cobra"
)

var (
	ErrConfirmationRequired = errors.New("confirmation required: use --yes flag in non-interactive mode")
)

// Confirm asks a yes/no question, defaulting to no. With force it answers
// yes without asking; without a terminal it refuses.
func Confirm(question string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	if !pretty.Interactive {
		return false, ErrConfirmationRequired
	}
	validator := memberValidation([]string{"y", "Y", "n", "N"}, "Please answer 'y' or 'n'.")
	response, err := ask(question, "n", validator)
	if err != nil {
		return false, err
	}
	confirmed := response == "y" || response == "Y"
	if !confirmed {
		common.Stdout("%sOperation cancelled.%s\n", pretty.Grey, pretty.Reset)
	}
	return confirmed, nil
}

// ConfirmOverwrite asks only when some of the target files already exist.
func ConfirmOverwrite(force bool, filenames ...string) (bool, error) {
	existing := make([]string, 0, len(filenames))
	for _, filename := range filenames {
		if stat, err := os.Stat(filename); err == nil && !stat.IsDir() {
			existing = append(existing, filename)
		}
	}
	if len(existing) == 0 {
		return true, nil
	}
	common.Debug("Would overwrite: %s", strings.Join(existing, ", "))
	return Confirm("Overwrite "+strings.Join(existing, ", ")+"?", force)
}

func AddYesFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVarP(target, "yes", "y", false, "Skip confirmation prompts, overwrite existing files.")
}
