package common

import (
	"sync"
	"time"
)

const (
	Product = `depclean`
)

type Verbosity uint8

const (
	Undefined Verbosity = 0
	Silently  Verbosity = 1
	Normal    Verbosity = 2
	Debugging Verbosity = 3
	Tracing   Verbosity = 4
)

var (
	Version        = `0.4.0`
	LogLinenumbers bool
	LogHides       []string
	When           int64
	verbosity      Verbosity
	hidesMu        sync.RWMutex
)

func init() {
	When = time.Now().Unix()
	verbosity = Normal
}

func DefineVerbosity(silent, debug, trace bool) {
	override := Normal
	switch {
	case silent:
		override = Silently
	case trace:
		override = Tracing
	case debug:
		override = Debugging
	}
	verbosity = override
}

func Silent() bool {
	return verbosity == Silently
}

func DebugFlag() bool {
	return verbosity >= Debugging
}

func TraceFlag() bool {
	return verbosity >= Tracing
}

// HideSecret keeps any log line mentioning the secret out of the output.
func HideSecret(secret string) {
	if len(secret) < 4 {
		return
	}
	hidesMu.Lock()
	LogHides = append(LogHides, secret)
	hidesMu.Unlock()
}

func UserAgent() string {
	return Product + "/" + Version
}
