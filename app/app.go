// Package app drives external edits of the drafts given on the command
// line: it owns the registry and is the only goroutine that touches it.
package app

import (
	"context"

	"git.sr.ht/~exteditor/exteditor/lib/codec"
	"git.sr.ht/~exteditor/exteditor/lib/compose"
	"git.sr.ht/~exteditor/exteditor/lib/registry"
	"git.sr.ht/~exteditor/exteditor/lib/session"
	"git.sr.ht/~exteditor/exteditor/lib/store"
	"git.sr.ht/~exteditor/exteditor/log"
)

const untitled = "untitled"

type App struct {
	registry *registry.Registry
	drafts   *compose.Drafts
	store    *store.Store
	log      log.Logger
}

func New(
	connect registry.Connector, drafts *compose.Drafts,
	st *store.Store, notifier registry.Notifier,
) *App {
	return &App{
		registry: registry.New(connect, drafts, notifier, st),
		drafts:   drafts,
		store:    st,
		log:      log.NewLogger("app"),
	}
}

func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Edit sends the draft of target to the editor. bodyCaret is the caret
// offset inside the body; the header block shifts it.
func (a *App) Edit(ctx context.Context, target int, bodyCaret int) error {
	details, err := a.drafts.Details(target)
	if err != nil {
		return err
	}
	prefs, err := a.store.Preferences()
	if err != nil {
		return err
	}

	text := codec.Encode(prefs.EditHeaders, prefs.Headers, details.Fields, details.Body)
	caret := bodyCaret
	if prefs.EditHeaders {
		caret += len([]rune(codec.HeaderBlock(prefs.Headers, details.Fields)))
	}
	subject := details.Fields[codec.Subject]
	if subject == "" {
		subject = untitled
	}
	mode := session.Rich
	if details.IsPlainText {
		mode = session.Plain
	}

	a.log.Debugf("editing target %d (%s)", target, mode)
	return a.registry.Register(ctx, session.New(target, mode), text, caret, subject)
}

// Run processes messages from the helper until every document has been
// closed. When ctx ends first, the remaining documents are dropped, which
// closes the channel.
func (a *App) Run(ctx context.Context) error {
	for len(a.registry.Active()) > 0 {
		select {
		case <-ctx.Done():
			for _, id := range a.registry.Active() {
				_ = a.registry.Unregister(id)
			}
			return ctx.Err()
		case <-a.registry.Wake():
			a.registry.ProcessEvents()
		}
	}
	a.log.Debugf("no document left")
	return nil
}
