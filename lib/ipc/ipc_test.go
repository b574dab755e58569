package ipc_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"git.sr.ht/~exteditor/exteditor/lib/ipc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFraming(t *testing.T) {
	var buf bytes.Buffer
	msgs := []*ipc.Message{
		ipc.NewTextMessage("1_1", "hello", 3, "subject", `["vi"]`, "eml"),
		ipc.TextUpdateMessage("1_1", "hello world"),
		ipc.DeathNoticeMessage("1_1"),
		ipc.ErrorMessage(errors.New("exec: \"gedit\": not found")),
	}
	for _, msg := range msgs {
		require.NoError(t, ipc.WriteMessage(&buf, msg))
	}
	for _, expected := range msgs {
		msg, err := ipc.ReadMessage(&buf)
		require.NoError(t, err)
		assert.Equal(t, expected, msg)
	}
	_, err := ipc.ReadMessage(&buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestWireFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ipc.WriteMessage(&buf, ipc.DeathNoticeMessage("4_0")))

	raw := buf.Bytes()
	size := binary.LittleEndian.Uint32(raw[:4])
	assert.Equal(t, int(size), len(raw)-4)
	assert.JSONEq(t, `{"type":"death_notice","payload":{"id":"4_0"}}`, string(raw[4:]))
}

func TestReadTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ipc.WriteMessage(&buf, ipc.TextUpdateMessage("1_0", "abc")))
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-2])

	_, err := ipc.ReadMessage(truncated)
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF), "a short frame is not a clean end of stream")
}

func TestReadTooLarge(t *testing.T) {
	var lbuf [4]byte
	binary.LittleEndian.PutUint32(lbuf[:], ipc.MaxMessageSize+1)
	_, err := ipc.ReadMessage(bytes.NewReader(lbuf[:]))
	assert.Error(t, err)
}

func TestDecodeHelperMessage(t *testing.T) {
	msg, err := ipc.DecodeMessage([]byte(`{"type":"text_update","payload":{"id":"3_1","text":"x"}}`))
	require.NoError(t, err)
	assert.Equal(t, ipc.TextUpdate, msg.Type)
	assert.Equal(t, "3_1", msg.Payload.Id)
	assert.Equal(t, "x", msg.Payload.Text)
}
