package wizard

import (
	"errors"
	"os"
	"strings"

	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/pretty"
	"golang.org/x/term"
)

var (
	ErrNoTerminal = errors.New("cannot ask secrets without a terminal")
)

// AskSecret reads a value from the terminal without echoing it.
func AskSecret(question string) (string, error) {
	if !pretty.Interactive {
		return "", ErrNoTerminal
	}
	common.Stdout("%s? %s%s:%s ", pretty.Green, pretty.White, question, pretty.Reset)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	common.Stdout("\n")
	if err != nil {
		return "", err
	}
	value := strings.TrimSpace(string(secret))
	common.HideSecret(value)
	return value, nil
}
