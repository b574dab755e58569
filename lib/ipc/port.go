package ipc

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"

	"git.sr.ht/~exteditor/exteditor/log"
)

var ErrDisconnected = errors.New("port is disconnected")

// Port is the extension side of a native messaging channel: the helper
// process is started with its stdin and stdout as the two directions.
type Port struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// ConnectNative starts the helper and begins reading its messages.
// onMessage is called for each message and onDisconnect exactly once when
// the stream ends, from a goroutine owned by the port. The error passed to
// onDisconnect is nil when the disconnection was requested or the helper
// exited cleanly.
func ConnectNative(
	ctx context.Context, argv []string,
	onMessage func(*Message), onDisconnect func(error),
) (*Port, error) {
	if len(argv) == 0 {
		return nil, errors.New("no native application configured")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	log.Debugf("native application started: %v (pid %d)", argv, cmd.Process.Pid)

	p := &Port{cmd: cmd, stdin: stdin, done: make(chan struct{})}
	go p.listen(stdout, onMessage, onDisconnect)
	return p, nil
}

func (p *Port) listen(stdout io.Reader, onMessage func(*Message), onDisconnect func(error)) {
	defer log.PanicHandler()
	defer close(p.done)

	var readErr error
	for {
		msg, err := ReadMessage(stdout)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
		log.Tracef("native message: %s", msg.Type)
		onMessage(msg)
	}
	// drain whatever is left so the helper does not block on a full pipe
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := p.cmd.Wait()

	p.mu.Lock()
	requested := p.closed
	p.closed = true
	p.mu.Unlock()

	switch {
	case requested:
		onDisconnect(nil)
	case readErr != nil:
		onDisconnect(readErr)
	default:
		onDisconnect(waitErr)
	}
}

// PostMessage sends one message to the helper.
func (p *Port) PostMessage(msg *Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrDisconnected
	}
	return WriteMessage(p.stdin, msg)
}

// Disconnect closes the helper's stdin. The helper finishes the documents
// it still has open and exits on its own; Done is closed once it has.
func (p *Port) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.stdin.Close()
}

func (p *Port) Done() <-chan struct{} {
	return p.done
}
