package main

import (
	"os"

	"github.com/joshyorko/depclean/cmd"
	"github.com/joshyorko/depclean/common"
	"github.com/joshyorko/depclean/pretty"
)

func ExitProtection() {
	status := recover()
	if status != nil {
		exit, ok := status.(common.ExitCode)
		if ok {
			exit.ShowMessage()
			common.WaitLogs()
			os.Exit(exit.Code)
		}
		common.WaitLogs()
		panic(status)
	}
	common.WaitLogs()
}

func main() {
	defer ExitProtection()

	pretty.Setup()
	cmd.Execute()
}
