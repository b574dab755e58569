package ipc

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// MaxMessageSize bounds the frames we accept. Browsers cap messages sent
// to a native application at 4GiB; nothing an editor produces comes close.
const MaxMessageSize = 64 << 20

// ReadMessage reads one length prefixed frame. io.EOF is returned as is
// when the stream ends on a frame boundary.
func ReadMessage(r io.Reader) (*Message, error) {
	var lbuf [4]byte
	if _, err := io.ReadFull(r, lbuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "read length")
	}
	size := binary.LittleEndian.Uint32(lbuf[:])
	if size > MaxMessageSize {
		return nil, fmt.Errorf("message too large: %d bytes", size)
	}
	raw := make([]byte, size)
	if _, err := io.ReadFull(r, raw); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrap(err, "read message")
	}
	msg, err := DecodeMessage(raw)
	if err != nil {
		return nil, errors.Wrap(err, "decode message")
	}
	return msg, nil
}
