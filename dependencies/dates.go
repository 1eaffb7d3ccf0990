package dependencies

import (
	"fmt"
	"strings"
	"time"
)

var (
	dateLayouts = []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	}
)

// ParseDate accepts the supported cutoff layouts. Values without a zone are
// taken as UTC.
func ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		when, err := time.ParseInLocation(layout, text, time.UTC)
		if err == nil {
			return when.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("Unable to parse date: %q. Supported formats: YYYY-MM-DD, YYYY-MM-DDTHH:MM:SS, YYYY-MM-DDTHH:MM:SSZ, YYYY-MM-DD HH:MM:SS.", text)
}

// OutputBasename is "<project>_new_dependencies_<date>[_<branch>]" where
// date and branch are made safe for file names.
func OutputBasename(projectUuid, date, branch string) string {
	base := fmt.Sprintf("%s_new_dependencies_%s", projectUuid, safeDate(date))
	if len(branch) > 0 {
		base = base + "_" + safeBranch(branch)
	}
	return base
}

func OutputFilename(projectUuid, date, branch string, format Format) string {
	return OutputBasename(projectUuid, date, branch) + "." + format.Extension()
}

func safeDate(date string) string {
	safe := strings.NewReplacer("-", "", "T", "_", ":", "").Replace(date)
	safe, _, _ = strings.Cut(safe, "+")
	safe, _, _ = strings.Cut(safe, "Z")
	return safe
}

func safeBranch(branch string) string {
	return strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(branch)
}
