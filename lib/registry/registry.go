// Package registry tracks the documents that are open in an external
// editor and owns the channel to the native helper that edits them.
//
// A Registry is not safe for concurrent use. Channel callbacks only queue
// events; the owner drains them with ProcessEvents from the same goroutine
// that calls Register and Unregister, so every operation runs to
// completion before the next one starts.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"git.sr.ht/~exteditor/exteditor/lib/codec"
	"git.sr.ht/~exteditor/exteditor/lib/ipc"
	"git.sr.ht/~exteditor/exteditor/lib/session"
	"git.sr.ht/~exteditor/exteditor/lib/store"
	"git.sr.ht/~exteditor/exteditor/log"
)

var (
	ErrAlreadyEditing = errors.New("this text is already being edited")
	ErrNotEditing     = errors.New("document is not being edited")
	ErrConnect        = errors.New("connect to native application failed")
)

// Channel is an open connection to the helper process.
type Channel interface {
	PostMessage(*ipc.Message) error
	Disconnect() error
}

// Connector opens the channel. The callbacks may be called from any
// goroutine; onDisconnect is called at most once.
type Connector func(
	ctx context.Context, onMessage func(*ipc.Message), onDisconnect func(error),
) (Channel, error)

// Host writes edited text back into a compose window.
type Host interface {
	SetDetails(target int, mode session.Mode, values codec.Values, body string) error
}

type Notifier interface {
	Notify(msg string)
}

type Preferences interface {
	Preferences() (store.Preferences, error)
}

// connection ties queued events to the channel that produced them, so
// that events of a channel we already closed are not mistaken for events
// of its successor.
type connection struct {
	channel Channel
}

type event struct {
	conn         *connection
	msg          *ipc.Message
	disconnected bool
	err          error
}

type Registry struct {
	connect  Connector
	host     Host
	notifier Notifier
	prefs    Preferences
	log      log.Logger

	conn   *connection
	active []session.ID

	mu    sync.Mutex
	queue []event
	wake  chan struct{}
}

func New(connect Connector, host Host, notifier Notifier, prefs Preferences) *Registry {
	return &Registry{
		connect:  connect,
		host:     host,
		notifier: notifier,
		prefs:    prefs,
		log:      log.NewLogger("registry"),
		wake:     make(chan struct{}, 1),
	}
}

// Active returns the documents being edited, in registration order.
func (r *Registry) Active() []session.ID {
	ids := make([]session.ID, len(r.active))
	copy(ids, r.active)
	return ids
}

func (r *Registry) Connected() bool {
	return r.conn != nil
}

func (r *Registry) index(id session.ID) int {
	for i, a := range r.active {
		if a == id {
			return i
		}
	}
	return -1
}

func (r *Registry) fail(err error) error {
	r.log.Errorf("%v", err)
	r.notifier.Notify(err.Error())
	return err
}

// Register sends a document to the helper, connecting to it first when no
// channel is open. On failure the registry is left as it was before.
func (r *Registry) Register(
	ctx context.Context, id session.ID, text string, caret int, subject string,
) error {
	if r.index(id) != -1 {
		r.log.Warnf("document id %s is already being edited", id)
		r.notifier.Notify(ErrAlreadyEditing.Error())
		return ErrAlreadyEditing
	}

	r.active = append(r.active, id)
	if r.conn == nil {
		conn := &connection{}
		ch, err := r.connect(ctx,
			func(msg *ipc.Message) {
				r.enqueue(event{conn: conn, msg: msg})
			},
			func(err error) {
				r.enqueue(event{conn: conn, disconnected: true, err: err})
			})
		if err != nil {
			r.remove(id)
			r.log.Errorf("connect: %v", err)
			r.notifier.Notify(ErrConnect.Error())
			return fmt.Errorf("%w: %v", ErrConnect, err)
		}
		conn.channel = ch
		r.conn = conn
		r.log.Debugf("connected to native application")
	}

	prefs, err := r.prefs.Preferences()
	if err != nil {
		_ = r.Unregister(id)
		return r.fail(fmt.Errorf("read preferences: %w", err))
	}
	msg := ipc.NewTextMessage(id.String(), text, caret, subject,
		prefs.Editor, prefs.Extension)
	if err := r.conn.channel.PostMessage(msg); err != nil {
		_ = r.Unregister(id)
		return r.fail(fmt.Errorf("send document %s: %w", id, err))
	}
	r.log.Debugf("document %s sent (%d bytes, caret %d)", id, len(text), caret)
	return nil
}

// Unregister forgets a document. Closing the last one closes the channel.
func (r *Registry) Unregister(id session.ID) error {
	if r.index(id) == -1 {
		r.log.Debugf("document id %s isn't being edited", id)
		return ErrNotEditing
	}
	r.remove(id)
	if len(r.active) == 0 && r.conn != nil {
		if err := r.conn.channel.Disconnect(); err != nil {
			r.log.Warnf("disconnect: %v", err)
		}
		r.conn = nil
		r.log.Debugf("no document left, channel closed")
	}
	return nil
}

func (r *Registry) remove(id session.ID) {
	if i := r.index(id); i != -1 {
		r.active = append(r.active[:i], r.active[i+1:]...)
	}
}

// HandleMessage acts on one message from the helper.
func (r *Registry) HandleMessage(msg *ipc.Message) {
	switch msg.Type {
	case ipc.TextUpdate:
		r.textUpdate(msg.Payload.Id, msg.Payload.Text)
	case ipc.DeathNotice:
		id, err := session.Parse(msg.Payload.Id)
		if err != nil {
			r.log.Debugf("death notice: %v", err)
			return
		}
		_ = r.Unregister(id)
	case ipc.Error:
		r.log.Errorf("native application: %s", msg.Payload.Error)
		r.notifier.Notify(msg.Payload.Error)
	default:
		r.log.Infof("Unknown native message type: %s", msg.Type)
	}
}

func (r *Registry) textUpdate(rawID, text string) {
	id, err := session.Parse(rawID)
	if err != nil {
		r.log.Infof("Invalid id: %s", rawID)
		return
	}
	prefs, err := r.prefs.Preferences()
	if err != nil {
		_ = r.fail(fmt.Errorf("read preferences: %w", err))
		return
	}
	values, body, err := codec.Decode(prefs.EditHeaders, prefs.Headers, text)
	if err != nil {
		_ = r.fail(err)
		return
	}
	if err := r.host.SetDetails(id.Target, id.Mode, values, body); err != nil {
		_ = r.fail(fmt.Errorf("update %s: %w", id, err))
		return
	}
	r.log.Tracef("document %s updated", id)
}

// HandleDisconnect drops every document: the helper is gone and nothing
// it had open can come back.
func (r *Registry) HandleDisconnect(err error) {
	r.log.Infof("Disconnected from helper")
	if err != nil {
		r.log.Errorf("native application: %v", err)
		r.notifier.Notify(ErrConnect.Error())
	}
	r.active = nil
	r.conn = nil
}

func (r *Registry) enqueue(ev event) {
	r.mu.Lock()
	r.queue = append(r.queue, ev)
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Wake receives a value whenever events are waiting for ProcessEvents.
func (r *Registry) Wake() <-chan struct{} {
	return r.wake
}

// ProcessEvents dispatches queued channel events in arrival order.
func (r *Registry) ProcessEvents() {
	for {
		r.mu.Lock()
		queue := r.queue
		r.queue = nil
		r.mu.Unlock()
		if len(queue) == 0 {
			return
		}
		for _, ev := range queue {
			r.dispatch(ev)
		}
	}
}

func (r *Registry) dispatch(ev event) {
	if ev.conn != r.conn {
		r.log.Tracef("dropping event from a closed channel")
		return
	}
	if ev.disconnected {
		r.HandleDisconnect(ev.err)
		return
	}
	r.HandleMessage(ev.msg)
}
