package common

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// entry is one formatted line waiting for the writer goroutine.
type entry struct {
	sink *os.File
	text string
}

var (
	entries  = make(chan entry)
	inflight sync.WaitGroup
)

// writeEntries owns all log writes, so lines coming from pool workers
// never interleave.
func writeEntries(source <-chan entry) {
	counter := uint64(0)
	for next := range source {
		counter += 1
		fmt.Fprintf(next.sink, "%s%s\n", linePrefix(counter), next.text)
		next.sink.Sync()
		inflight.Done()
	}
}

func linePrefix(counter uint64) string {
	switch {
	case TraceFlag():
		return time.Now().Format("02.150405.000 ")
	case LogLinenumbers:
		return fmt.Sprintf("%3d ", counter)
	}
	return ""
}

func init() {
	go writeEntries(entries)
}

// AcceptableOutput is false for text containing a value registered with
// HideSecret, such as an Endor Labs API secret.
func AcceptableOutput(message string) bool {
	hidesMu.RLock()
	defer hidesMu.RUnlock()
	for _, fragment := range LogHides {
		if len(fragment) > 0 && strings.Contains(message, fragment) {
			return false
		}
	}
	return true
}

func enqueue(sink *os.File, text string) {
	if !AcceptableOutput(text) {
		return
	}
	inflight.Add(1)
	entries <- entry{sink: sink, text: text}
}

func leveled(enabled bool, tag, format string, details []interface{}) {
	if enabled {
		enqueue(os.Stderr, tag+fmt.Sprintf(format, details...))
	}
}

// Fatal is printed even in silent mode.
func Fatal(context string, err error) {
	if err != nil {
		enqueue(os.Stderr, fmt.Sprintf("Fatal [%s]: %v", context, err))
	}
}

func Error(context string, err error) {
	if err != nil {
		Log("Error [%s]: %v", context, err)
	}
}

// Uncritical reports an error that did not stop the current operation.
func Uncritical(context string, err error) {
	if err != nil {
		Log("Warning [%s; not critical]: %v", context, err)
	}
}

// Log writes a normal message to stderr unless --silent was given. With
// --debug or --trace it is tagged so it stands out between debug lines.
func Log(format string, details ...interface{}) {
	tag := ""
	if DebugFlag() || TraceFlag() {
		tag = "[N] "
	}
	leveled(!Silent(), tag, format, details)
}

func Debug(format string, details ...interface{}) error {
	leveled(DebugFlag(), "[D] ", format, details)
	return nil
}

func Trace(format string, details ...interface{}) error {
	leveled(TraceFlag(), "[T] ", format, details)
	return nil
}

// Stdout is for command results, like reports and JSON. It bypasses the
// writer goroutine and is never silenced, but secrets are still held back.
func Stdout(format string, details ...interface{}) {
	message := format
	if len(details) > 0 {
		message = fmt.Sprintf(format, details...)
	}
	if AcceptableOutput(message) {
		fmt.Fprint(os.Stdout, message)
		os.Stdout.Sync()
	}
}

// WaitLogs blocks until every queued line has been written.
func WaitLogs() {
	runtime.Gosched()
	inflight.Wait()
}
