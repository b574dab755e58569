// Package log is a small leveled logger on top of the standard library
// one. Nothing is logged until Init is given a file.
package log

import (
	"fmt"
	"log"
	"os"
	"strings"
)

type LogLevel int

const (
	TRACE LogLevel = 5
	DEBUG LogLevel = 10
	INFO  LogLevel = 20
	WARN  LogLevel = 30
	ERROR LogLevel = 40
)

var levels = []LogLevel{TRACE, DEBUG, INFO, WARN, ERROR}

var (
	outputs  map[LogLevel]*log.Logger
	minLevel = TRACE
)

// Init sends messages of at least the given level to file. A nil file
// disables logging: the native helper has nowhere safe to write when
// stderr is a terminal, stdout carries its messages.
func Init(file *os.File, level LogLevel) {
	minLevel = level
	outputs = nil
	if file == nil {
		return
	}
	flags := log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile
	outputs = make(map[LogLevel]*log.Logger, len(levels))
	for _, l := range levels {
		outputs[l] = log.New(file, fmt.Sprintf("%-6s", strings.ToUpper(l.String())), flags)
	}
}

func ParseLevel(value string) (LogLevel, error) {
	switch strings.ToLower(value) {
	case "warning":
		return WARN, nil
	case "err":
		return ERROR, nil
	}
	for _, l := range levels {
		if strings.EqualFold(value, l.String()) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%s: invalid log level", value)
}

func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "trace"
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

type Logger interface {
	Tracef(string, ...any)
	Debugf(string, ...any)
	Infof(string, ...any)
	Warnf(string, ...any)
	Errorf(string, ...any)
}

type logger struct {
	name string
}

// frames between the caller of Tracef..Errorf and log.Logger.Output
const calldepth = 3

// NewLogger returns a logger that prefixes its messages with [name].
func NewLogger(name string) Logger {
	return &logger{name: name}
}

func (l *logger) output(level LogLevel, message string, args []any) {
	out := outputs[level]
	if out == nil || level < minLevel {
		return
	}
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	if l.name != "" {
		message = "[" + l.name + "] " + message
	}
	out.Output(calldepth, message) //nolint:errcheck // nowhere to report it
}

func (l *logger) Tracef(message string, args ...any) { l.output(TRACE, message, args) }
func (l *logger) Debugf(message string, args ...any) { l.output(DEBUG, message, args) }
func (l *logger) Infof(message string, args ...any)  { l.output(INFO, message, args) }
func (l *logger) Warnf(message string, args ...any)  { l.output(WARN, message, args) }
func (l *logger) Errorf(message string, args ...any) { l.output(ERROR, message, args) }

var root logger

func Tracef(message string, args ...any) { root.output(TRACE, message, args) }
func Debugf(message string, args ...any) { root.output(DEBUG, message, args) }
func Infof(message string, args ...any)  { root.output(INFO, message, args) }
func Warnf(message string, args ...any)  { root.output(WARN, message, args) }
func Errorf(message string, args ...any) { root.output(ERROR, message, args) }
