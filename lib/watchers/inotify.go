//go:build !darwin
// +build !darwin

package watchers

import (
	"github.com/fsnotify/fsnotify"

	"git.sr.ht/~exteditor/exteditor/log"
)

func init() {
	RegisterWatcherFactory(newInotifyWatcher)
}

type inotifyWatcher struct {
	w  *fsnotify.Watcher
	ch chan *FSEvent
}

func newInotifyWatcher() (FSWatcher, error) {
	watcher := &inotifyWatcher{
		ch: make(chan *FSEvent),
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	watcher.w = w

	go watcher.watch()
	go watcher.logErrors()
	return watcher, nil
}

func (w *inotifyWatcher) watch() {
	defer log.PanicHandler()
	defer close(w.ch)
	for ev := range w.w.Events {
		var op FSOperation
		switch {
		case ev.Has(fsnotify.Create):
			op = FSCreate
		case ev.Has(fsnotify.Write):
			op = FSWrite
		case ev.Has(fsnotify.Remove):
			op = FSRemove
		case ev.Has(fsnotify.Rename):
			op = FSRename
		default:
			// chmod
			continue
		}
		w.ch <- &FSEvent{Operation: op, Path: ev.Name}
	}
}

func (w *inotifyWatcher) logErrors() {
	defer log.PanicHandler()
	for err := range w.w.Errors {
		log.Warnf("watcher: %v", err)
	}
}

func (w *inotifyWatcher) Configure(root string) error {
	return w.w.Add(root)
}

func (w *inotifyWatcher) Events() chan *FSEvent {
	return w.ch
}

func (w *inotifyWatcher) Add(p string) error {
	return w.w.Add(p)
}

func (w *inotifyWatcher) Remove(p string) error {
	return w.w.Remove(p)
}

func (w *inotifyWatcher) Close() error {
	return w.w.Close()
}
