package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~exteditor/exteditor/app"
	"git.sr.ht/~exteditor/exteditor/config"
	"git.sr.ht/~exteditor/exteditor/lib/codec"
	"git.sr.ht/~exteditor/exteditor/lib/compose"
	"git.sr.ht/~exteditor/exteditor/lib/ipc"
	"git.sr.ht/~exteditor/exteditor/lib/registry"
	"git.sr.ht/~exteditor/exteditor/lib/store"
)

const draft = `To: alice@example.org
Subject: Café
Content-Type: text/plain; charset=utf-8

Hello
`

type channel struct {
	mu           sync.Mutex
	posted       []*ipc.Message
	disconnected bool
	onMessage    func(*ipc.Message)
}

func (c *channel) PostMessage(msg *ipc.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posted = append(c.posted, msg)
	return nil
}

func (c *channel) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
	return nil
}

type notifier struct {
	messages []string
}

func (n *notifier) Notify(msg string) {
	n.messages = append(n.messages, msg)
}

type fixture struct {
	app      *app.App
	store    *store.Store
	channel  *channel
	notifier *notifier
	path     string
}

func newFixture(t *testing.T, contents string) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "draft.eml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	drafts, err := compose.Open(path)
	require.NoError(t, err)

	f := &fixture{store: store.Open(""), channel: &channel{}, notifier: &notifier{}, path: path}
	t.Cleanup(func() { f.store.Close() })
	connect := func(
		ctx context.Context, onMessage func(*ipc.Message), onDisconnect func(error),
	) (registry.Channel, error) {
		f.channel.onMessage = onMessage
		return f.channel, nil
	}
	f.app = app.New(connect, drafts, f.store, f.notifier)
	return f
}

func TestEditPlain(t *testing.T) {
	f := newFixture(t, draft)
	require.NoError(t, f.app.Edit(context.Background(), 1, 3))

	require.Len(t, f.channel.posted, 1)
	msg := f.channel.posted[0]
	assert.Equal(t, ipc.NewText, msg.Type)
	assert.Equal(t, "1_1", msg.Payload.Id)
	assert.Equal(t, "Hello\n", msg.Payload.Text)
	assert.Equal(t, 3, msg.Payload.Caret)
	assert.Equal(t, "Café", msg.Payload.Subject)
	assert.Equal(t, store.DefaultEditor, msg.Payload.Editor)
	assert.Equal(t, store.DefaultExtension, msg.Payload.Extension)
}

func TestEditHeaders(t *testing.T) {
	f := newFixture(t, draft)
	require.NoError(t, f.store.Set(store.KeyEditHeaders, "true"))
	require.NoError(t, f.store.Set(store.HeaderKey(codec.Subject), "true"))
	require.NoError(t, f.store.Set(store.HeaderKey(codec.To), "true"))

	require.NoError(t, f.app.Edit(context.Background(), 1, 0))

	header := "Subject:    Café\nTo:         alice@example.org\n" + codec.Sentinel
	msg := f.channel.posted[0]
	assert.Equal(t, header+"Hello\n", msg.Payload.Text)
	assert.Equal(t, len([]rune(header)), msg.Payload.Caret)
}

func TestEditUntitled(t *testing.T) {
	f := newFixture(t, "Content-Type: text/html\n\n<p>hi</p>\n")
	require.NoError(t, f.app.Edit(context.Background(), 1, 0))

	msg := f.channel.posted[0]
	assert.Equal(t, "untitled", msg.Payload.Subject)
	assert.Equal(t, "1_0", msg.Payload.Id)
}

func TestEditTwice(t *testing.T) {
	f := newFixture(t, draft)
	require.NoError(t, f.app.Edit(context.Background(), 1, 0))
	err := f.app.Edit(context.Background(), 1, 0)
	assert.ErrorIs(t, err, registry.ErrAlreadyEditing)
	assert.Equal(t, []string{registry.ErrAlreadyEditing.Error()}, f.notifier.messages)

	assert.Error(t, f.app.Edit(context.Background(), 2, 0))
}

func TestRun(t *testing.T) {
	f := newFixture(t, draft)
	require.NoError(t, f.store.Set(store.KeyEditHeaders, "true"))
	require.NoError(t, f.store.Set(store.HeaderKey(codec.Subject), "true"))
	require.NoError(t, f.app.Edit(context.Background(), 1, 0))

	go func() {
		f.channel.onMessage(ipc.TextUpdateMessage("1_1",
			"Subject: Tea\n"+codec.Sentinel+"Hello again\n"))
		f.channel.onMessage(ipc.DeathNoticeMessage("1_1"))
	}()
	require.NoError(t, f.app.Run(context.Background()))

	assert.Empty(t, f.app.Registry().Active())
	assert.True(t, f.channel.disconnected)
	assert.Empty(t, f.notifier.messages)

	drafts, err := compose.Open(f.path)
	require.NoError(t, err)
	d, err := drafts.Details(1)
	require.NoError(t, err)
	assert.Equal(t, "Tea", d.Fields[codec.Subject])
	assert.Equal(t, "alice@example.org", d.Fields[codec.To])
	assert.Equal(t, "Hello again\n", d.Body)
}

func TestRunMalformed(t *testing.T) {
	f := newFixture(t, draft)
	require.NoError(t, f.store.Set(store.KeyEditHeaders, "true"))
	require.NoError(t, f.app.Edit(context.Background(), 1, 0))

	go func() {
		f.channel.onMessage(ipc.TextUpdateMessage("1_1", "no sentinel"))
		f.channel.onMessage(ipc.DeathNoticeMessage("1_1"))
	}()
	require.NoError(t, f.app.Run(context.Background()))
	assert.Equal(t, []string{"malformed error"}, f.notifier.messages)
}

func TestRunCanceled(t *testing.T) {
	f := newFixture(t, draft)
	require.NoError(t, f.app.Edit(context.Background(), 1, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.app.Run(ctx), context.Canceled)
	assert.True(t, f.channel.disconnected)
	assert.False(t, f.app.Registry().Connected())
}

func TestRunNothing(t *testing.T) {
	f := newFixture(t, draft)
	assert.NoError(t, f.app.Run(context.Background()))
}

func TestNotifiers(t *testing.T) {
	var buf bytes.Buffer
	var command []string
	triggers := &config.TriggersConfig{
		NotifyCmd: "notify-send %m",
		ExecuteCommand: func(c []string) error {
			command = c
			return nil
		},
	}
	n := app.Notifiers{
		&app.WriterNotifier{W: &buf},
		&app.TriggerNotifier{Triggers: triggers},
	}
	n.Notify("malformed error")

	assert.Equal(t, "External Editor: Error: malformed error.\n", buf.String())
	assert.Equal(t, []string{"notify-send", "malformed error"}, command)
}

func TestNativeConnectorFailure(t *testing.T) {
	connect := app.NativeConnector([]string{filepath.Join(t.TempDir(), "missing")})
	_, err := connect(context.Background(), func(*ipc.Message) {}, func(error) {})
	assert.Error(t, err)
}
