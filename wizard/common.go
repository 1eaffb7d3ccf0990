package wizard

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/pretty"
)

const (
	newline         = '\n'
	UNIX_NEWLINE    = "\n"
	WINDOWS_NEWLINE = "\r\n"
)

var (
	input io.Reader = os.Stdin
)

type Validator func(string) bool

func memberValidation(members []string, erratic string) Validator {
	return func(reply string) bool {
		for _, member := range members {
			if reply == member {
				return true
			}
		}
		common.Stdout("%s%s%s\n\n", pretty.Red, erratic, pretty.Reset)
		return false
	}
}

func ask(question, defaults string, validator Validator) (string, error) {
	source := bufio.NewReader(input)
	for {
		common.Stdout("%s? %s%s %s[%s]:%s ", pretty.Green, pretty.White, question, pretty.Grey, defaults, pretty.Reset)
		reply, err := source.ReadString(newline)
		common.Stdout("\n")
		if err != nil && len(reply) == 0 {
			return "", err
		}
		if reply == UNIX_NEWLINE || reply == WINDOWS_NEWLINE {
			reply = defaults
		}
		reply = strings.TrimSpace(reply)
		if !validator(reply) {
			if err != nil {
				return "", err
			}
			continue
		}
		return reply, nil
	}
}
