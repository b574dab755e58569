// Package editor prepares and runs the user's editor command.
package editor

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/riywo/loginshell"

	"git.sr.ht/~exteditor/exteditor/log"
)

// CaretPosition converts a caret offset, counted in characters, into a
// zero based line and column.
func CaretPosition(text string, caret int) (line, column int) {
	runes := []rune(text)
	if caret < 0 {
		caret = 0
	}
	if caret > len(runes) {
		caret = len(runes)
	}
	before := runes[:caret]
	last := -1
	for i, r := range before {
		if r == '\n' {
			line++
			last = i
		}
	}
	column = len(before) - last - 1
	return line, column
}

// ParseCommand accepts the editor setting either as a JSON array, which is
// what the options page stores, or as a shell command line. An empty
// setting falls back to $VISUAL or $EDITOR run through the login shell.
func ParseCommand(setting string) ([]string, error) {
	setting = strings.TrimSpace(setting)
	if strings.HasPrefix(setting, "[") {
		var args []string
		if err := json.Unmarshal([]byte(setting), &args); err != nil {
			return nil, err
		}
		if len(args) > 0 {
			return args, nil
		}
		setting = ""
	}
	if setting != "" {
		args, err := shlex.Split(setting)
		if err != nil {
			return nil, err
		}
		if len(args) > 0 {
			return args, nil
		}
	}
	return fallbackCommand()
}

func fallbackCommand() ([]string, error) {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	shell, err := loginshell.Shell()
	if err != nil {
		log.Debugf("login shell: %v", err)
		shell = "/bin/sh"
	}
	// the file name is passed as $0 so that it is never interpreted
	return []string{shell, "-c", editor + ` "$0"`, "%s"}, nil
}

// ExpandArgs substitutes the placeholders of the editor arguments:
//
//	%s  the file name
//	%l  line, starting at 1
//	%L  line, starting at 0
//	%c  column, starting at 1
//	%C  column, starting at 0
//
// The file name is appended when no argument mentions %s.
func ExpandArgs(args []string, file string, line, column int) []string {
	replacer := strings.NewReplacer(
		"%s", file,
		"%l", strconv.Itoa(line+1),
		"%L", strconv.Itoa(line),
		"%c", strconv.Itoa(column+1),
		"%C", strconv.Itoa(column),
	)
	expanded := make([]string, 0, len(args)+1)
	hasFile := false
	for _, arg := range args {
		if strings.Contains(arg, "%s") {
			hasFile = true
		}
		expanded = append(expanded, replacer.Replace(arg))
	}
	if !hasFile {
		expanded = append(expanded, file)
	}
	return expanded
}

// Command builds the editor invocation for file with the caret placed at
// the given offset of text.
func Command(setting, file, text string, caret int) ([]string, error) {
	args, err := ParseCommand(setting)
	if err != nil {
		return nil, err
	}
	line, column := CaretPosition(text, caret)
	return ExpandArgs(args, file, line, column), nil
}

// Run starts the editor and waits for it to exit. The editor must not
// inherit stdin and stdout: those carry the native messaging protocol.
func Run(ctx context.Context, args []string) error {
	log.Debugf("editor args: %q", args)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
