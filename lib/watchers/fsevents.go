//go:build darwin
// +build darwin

package watchers

import (
	"time"

	"github.com/fsnotify/fsevents"

	"git.sr.ht/~exteditor/exteditor/log"
)

func init() {
	RegisterWatcherFactory(newDarwinWatcher)
}

type darwinWatcher struct {
	ch chan *FSEvent
	w  *fsevents.EventStream
}

func newDarwinWatcher() (FSWatcher, error) {
	watcher := &darwinWatcher{
		ch: make(chan *FSEvent),
		w: &fsevents.EventStream{
			Flags:   fsevents.FileEvents | fsevents.WatchRoot,
			Latency: 100 * time.Millisecond,
		},
	}
	return watcher, nil
}

func (w *darwinWatcher) watch() {
	defer log.PanicHandler()
	defer close(w.ch)
	for events := range w.w.Events {
		for _, ev := range events {
			var op FSOperation
			switch {
			case ev.Flags&fsevents.ItemRemoved > 0:
				op = FSRemove
			case ev.Flags&fsevents.ItemRenamed > 0:
				op = FSRename
			case ev.Flags&fsevents.ItemModified > 0:
				op = FSWrite
			case ev.Flags&fsevents.ItemCreated > 0:
				op = FSCreate
			default:
				continue
			}
			w.ch <- &FSEvent{Operation: op, Path: "/" + ev.Path}
		}
	}
}

func (w *darwinWatcher) Configure(root string) error {
	dev, err := fsevents.DeviceForPath(root)
	if err != nil {
		return err
	}
	w.w.Device = dev
	w.w.Paths = []string{root}
	w.w.Start()
	go w.watch()
	return nil
}

func (w *darwinWatcher) Events() chan *FSEvent {
	return w.ch
}

func (w *darwinWatcher) Add(p string) error {
	return nil
}

func (w *darwinWatcher) Remove(p string) error {
	return nil
}

func (w *darwinWatcher) Close() error {
	if w.w.Events == nil {
		close(w.ch)
		return nil
	}
	w.w.Stop()
	close(w.w.Events)
	return nil
}
