package pretty

import (
	"os"

	"github.com/joshyorko/depclean/common"
	"github.com/mattn/go-isatty"
)

var (
	Colorless   bool
	Disabled    bool
	Interactive bool
	White       string
	Grey        string
	Red         string
	Green       string
	Yellow      string
	Cyan        string
	Reset       string
	Bold        string
	Faint       string
)

// Setup decides interactivity and colors from the terminal and the
// NO_COLOR/TERM environment. Prompts need all three streams on a terminal;
// colors only need stdout.
func Setup() {
	stdin := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	stdout := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	stderr := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	Colorless = len(os.Getenv("NO_COLOR")) > 0 || len(os.Getenv("TERM")) == 0 || os.Getenv("TERM") == "dumb"
	Interactive = stdin && stdout && stderr

	common.Trace("Interactive mode enabled: %v; colors enabled: %v", Interactive, stdout && !Colorless && !Disabled)
	if stdout && !Colorless && !Disabled {
		enableColors()
	} else {
		disableColors()
	}
}

func enableColors() {
	White = csi("97m")
	Grey = csi("90m")
	Red = csi("91m")
	Green = csi("92m")
	Yellow = csi("93m")
	Cyan = csi("96m")
	Reset = csi("0m")
	Bold = csi("1m")
	Faint = csi("2m")
}

func disableColors() {
	White, Grey, Red, Green, Yellow, Cyan = "", "", "", "", "", ""
	Reset, Bold, Faint = "", "", ""
}
