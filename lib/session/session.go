// Package session names the documents that are out for editing. A compose
// target may have one document per content mode in flight.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Mode int

const (
	Rich  Mode = 0
	Plain Mode = 1
)

func (m Mode) String() string {
	switch m {
	case Rich:
		return "rich"
	case Plain:
		return "plain"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

var ErrInvalidID = errors.New("invalid document id")

// ID identifies a document by compose target and content mode. Its string
// form travels through the helper process unchanged.
type ID struct {
	Target int
	Mode   Mode
}

func New(target int, mode Mode) ID {
	return ID{Target: target, Mode: mode}
}

func (id ID) String() string {
	return fmt.Sprintf("%d_%d", id.Target, int(id.Mode))
}

// Parse is the inverse of ID.String.
func Parse(s string) (ID, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 2 {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	target, err := strconv.Atoi(parts[0])
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	mode, err := strconv.Atoi(parts[1])
	if err != nil || (Mode(mode) != Rich && Mode(mode) != Plain) {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID{Target: target, Mode: Mode(mode)}, nil
}
