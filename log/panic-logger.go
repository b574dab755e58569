package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"
)

// PanicHandler writes a stack trace to exteditor-crash-*.log in the
// temporary directory and then passes the panic on. The helper's stderr
// usually ends up in the browser console, so the trace goes there as well.
func PanicHandler() {
	r := recover()

	if r == nil {
		return
	}

	filename := filepath.Join(os.TempDir(),
		time.Now().Format("exteditor-crash-20060102-150405.log"))

	panicLog, err := os.OpenFile(filename, os.O_SYNC|os.O_APPEND|os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		// we tried, not possible. bye
		panic(r)
	}
	defer panicLog.Close()

	outputs := io.MultiWriter(panicLog, os.Stderr)

	// if any error happens here, we do not care.
	fmt.Fprintln(panicLog, strings.Repeat("#", 80))
	fmt.Fprint(panicLog, strings.Repeat(" ", 34))
	fmt.Fprintln(panicLog, "PANIC CAUGHT!")
	fmt.Fprint(panicLog, strings.Repeat(" ", 24))
	fmt.Fprintln(panicLog, time.Now().Format("2006-01-02T15:04:05.000000-0700"))
	fmt.Fprintln(panicLog, strings.Repeat("#", 80))
	fmt.Fprintf(outputs, "%s\n", panicMessage)
	fmt.Fprintf(outputs, "Error: %v\n\n", r)
	outputs.Write(debug.Stack()) //nolint:errcheck // nothing left to do
	fmt.Fprintf(os.Stderr, "\nThis error was also written to: %s\n", filename)
	panic(r)
}

const panicMessage = `
exteditor has encountered a critical error and has terminated. Please
report this log together with the steps to reproduce the crash.
`
