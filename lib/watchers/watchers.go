package watchers

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/danwakefield/fnmatch"
)

// FSWatcher is a file system watcher
type FSWatcher interface {
	Configure(string) error
	Events() chan *FSEvent
	// Adds a directory or file to the watcher
	Add(string) error
	// Removes a directory or file from the watcher
	Remove(string) error
	// Stops watching and closes the events channel
	Close() error
}

type FSOperation int

const (
	FSCreate FSOperation = iota
	FSRemove
	FSRename
	FSWrite
)

func (op FSOperation) String() string {
	switch op {
	case FSCreate:
		return "create"
	case FSRemove:
		return "remove"
	case FSRename:
		return "rename"
	case FSWrite:
		return "write"
	}
	return fmt.Sprintf("op(%d)", int(op))
}

type FSEvent struct {
	Operation FSOperation
	Path      string
}

type WatcherFactoryFunc func() (FSWatcher, error)

var watcherFactory WatcherFactoryFunc

func RegisterWatcherFactory(fn WatcherFactoryFunc) {
	watcherFactory = fn
}

func NewWatcher() (FSWatcher, error) {
	if watcherFactory == nil {
		return nil, fmt.Errorf("Unsupported OS: %s", runtime.GOOS)
	}
	return watcherFactory()
}

// Ignored reports whether the base name of path matches one of the shell
// patterns. Editors write swap and backup files next to the document;
// those must not be mistaken for the document itself.
func Ignored(path string, patterns []string) bool {
	name := filepath.Base(path)
	for _, pattern := range patterns {
		if fnmatch.Match(pattern, name, 0) {
			return true
		}
	}
	return false
}
