package ipc

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// WriteMessage writes msg as a single frame: a 32 bit little endian length
// followed by the JSON encoding.
func WriteMessage(w io.Writer, msg *Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return errors.Wrap(err, "encode message")
	}
	frame := make([]byte, 4, 4+len(raw))
	binary.LittleEndian.PutUint32(frame, uint32(len(raw)))
	frame = append(frame, raw...)
	if _, err := w.Write(frame); err != nil {
		return errors.Wrap(err, "write message")
	}
	return nil
}
