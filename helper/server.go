// Package helper is the native side of the channel: it receives documents
// from the extension, opens them in the user's editor and streams every
// saved version back.
package helper

import (
	"context"
	"errors"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"git.sr.ht/~exteditor/exteditor/lib/editor"
	"git.sr.ht/~exteditor/exteditor/lib/ipc"
	"git.sr.ht/~exteditor/exteditor/lib/tempfiles"
	"git.sr.ht/~exteditor/exteditor/lib/watchers"
	"git.sr.ht/~exteditor/exteditor/log"
)

type Server struct {
	in     io.Reader
	out    io.Writer
	files  *tempfiles.Manager
	ignore []string
	log    log.Logger

	outMu sync.Mutex

	// mu orders reading a document against removing it, so that no
	// update can follow the death notice of its document.
	mu   sync.Mutex
	sent map[string]string
}

// NewServer reads requests from in and writes replies to out. Documents
// are stored in files; changes to names matching one of the ignore
// patterns are not reported.
func NewServer(in io.Reader, out io.Writer, files *tempfiles.Manager, ignore []string) *Server {
	return &Server{
		in:     in,
		out:    out,
		files:  files,
		ignore: ignore,
		log:    log.NewLogger("helper"),
		sent:   make(map[string]string),
	}
}

// Serve handles requests until the input is closed and every editor has
// exited. The returned error is the first failure of any session; those
// failures have already been reported to the extension.
func (s *Server) Serve(ctx context.Context) error {
	w, err := watchers.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Configure(s.files.Dir()); err != nil {
		w.Close()
		return err
	}
	watchDone := make(chan struct{})
	go func() {
		defer log.PanicHandler()
		defer close(watchDone)
		s.watch(w.Events())
	}()

	var sessions errgroup.Group
	readErr := s.read(ctx, &sessions)
	err = sessions.Wait()

	w.Close()
	<-watchDone

	if readErr != nil {
		return readErr
	}
	return err
}

func (s *Server) read(ctx context.Context, sessions *errgroup.Group) error {
	for {
		msg, err := ipc.ReadMessage(s.in)
		if errors.Is(err, io.EOF) {
			s.log.Debugf("input closed")
			return nil
		}
		if err != nil {
			s.log.Errorf("read: %v", err)
			s.send(ipc.ErrorMessage(err))
			return err
		}
		switch msg.Type {
		case ipc.NewText:
			payload := msg.Payload
			sessions.Go(func() error {
				defer log.PanicHandler()
				return s.edit(ctx, payload)
			})
		default:
			s.log.Infof("Unknown message type: %s", msg.Type)
		}
	}
}

// edit runs one editor on one document, from its creation to its death
// notice.
func (s *Server) edit(ctx context.Context, p ipc.Payload) error {
	err := s.runEditor(ctx, p)
	if err != nil {
		s.log.Errorf("document %s: %v", p.Id, err)
		s.send(ipc.ErrorMessage(err))
	}
	s.send(ipc.DeathNoticeMessage(p.Id))
	return err
}

func (s *Server) runEditor(ctx context.Context, p ipc.Payload) error {
	s.mu.Lock()
	path, err := s.files.Create(p.Id, p.Subject, p.Extension, p.Text)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.sent[path] = p.Text
	s.mu.Unlock()
	defer s.close(path)

	args, err := editor.Command(p.Editor, path, p.Text, p.Caret)
	if err != nil {
		return err
	}
	s.log.Debugf("document %s opened in %s", p.Id, path)
	return editor.Run(ctx, args)
}

// close sends whatever the editor saved last and deletes the document.
func (s *Server) close(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.update(path)
	delete(s.sent, path)
	if err := s.files.Remove(path); err != nil {
		s.log.Warnf("%v", err)
	}
}

func (s *Server) watch(events <-chan *watchers.FSEvent) {
	for ev := range events {
		if ev.Operation != watchers.FSWrite && ev.Operation != watchers.FSCreate {
			continue
		}
		if watchers.Ignored(ev.Path, s.ignore) {
			continue
		}
		s.mu.Lock()
		s.update(ev.Path)
		s.mu.Unlock()
	}
}

// update reports the contents of path when they differ from what was
// last reported. Must be called with s.mu held.
func (s *Server) update(path string) {
	id, text, err := s.files.Read(path)
	if errors.Is(err, tempfiles.ErrUnknownFile) {
		s.log.Tracef("%v", err)
		return
	}
	if err != nil {
		s.log.Errorf("%v", err)
		s.send(ipc.ErrorMessage(err))
		return
	}
	if last, ok := s.sent[path]; ok && last == string(text) {
		return
	}
	s.sent[path] = string(text)
	s.log.Debugf("document %s changed (%d bytes)", id, len(text))
	s.send(ipc.TextUpdateMessage(id, string(text)))
}

func (s *Server) send(msg *ipc.Message) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if err := ipc.WriteMessage(s.out, msg); err != nil {
		s.log.Errorf("send %s: %v", msg.Type, err)
	}
}
