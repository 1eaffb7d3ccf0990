package pretty

import (
	"fmt"

	"github.com/joshyorko/depclean/common"
)

func Ok() error {
	common.Log("%sOK.%s", Green, Reset)
	return nil
}

func Note(format string, rest ...interface{}) {
	niceform := fmt.Sprintf("%s%sNote: %s%s", Cyan, Bold, format, Reset)
	common.Log(niceform, rest...)
}

func Warning(format string, rest ...interface{}) {
	niceform := fmt.Sprintf("%sWarning: %s%s", Yellow, format, Reset)
	common.Log(niceform, rest...)
}

// Exit panics with an exit code; main recovers it and exits the process.
func Exit(code int, format string, rest ...interface{}) {
	var niceform string
	if code == 0 {
		niceform = fmt.Sprintf("%s%s%s", Green, format, Reset)
	} else {
		niceform = fmt.Sprintf("%s%s%s", Red, format, Reset)
	}
	panic(common.ExitCode{
		Code:    code,
		Message: fmt.Sprintf(niceform, rest...),
	})
}

func Guard(truth bool, code int, format string, rest ...interface{}) {
	if !truth {
		Exit(code, format, rest...)
	}
}

func csi(value string) string {
	return fmt.Sprintf("%c[%s", 0x1b, value)
}

func csif(form string, rest ...interface{}) string {
	return csi(fmt.Sprintf(form, rest...))
}
