package app

import (
	"fmt"
	"io"

	"git.sr.ht/~exteditor/exteditor/config"
	"git.sr.ht/~exteditor/exteditor/lib/registry"
)

// WriterNotifier prints notifications the way the extension titles them.
type WriterNotifier struct {
	W io.Writer
}

func (n *WriterNotifier) Notify(msg string) {
	fmt.Fprintf(n.W, "External Editor: Error: %s.\n", msg)
}

// TriggerNotifier runs the notify-cmd trigger.
type TriggerNotifier struct {
	Triggers *config.TriggersConfig
}

func (n *TriggerNotifier) Notify(msg string) {
	n.Triggers.ExecNotify(msg)
}

// Notifiers passes each notification to all of its members.
type Notifiers []registry.Notifier

func (ns Notifiers) Notify(msg string) {
	for _, n := range ns {
		n.Notify(msg)
	}
}
