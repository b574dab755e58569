package codec

import "strings"

// Name is the logical name of an editable header. The set is closed.
type Name string

const (
	Subject    Name = "subject"
	To         Name = "to"
	Cc         Name = "cc"
	Bcc        Name = "bcc"
	ReplyTo    Name = "replyTo"
	Newsgroups Name = "newsgroups"
	FollowupTo Name = "followupTo"
)

// Names lists every logical header in declared order.
var Names = []Name{Subject, To, Cc, Bcc, ReplyTo, Newsgroups, FollowupTo}

var labels = map[Name]string{
	Subject:    "Subject",
	To:         "To",
	Cc:         "Cc",
	Bcc:        "Bcc",
	ReplyTo:    "Reply-To",
	Newsgroups: "Newsgroup",
	FollowupTo: "Followup-To",
}

// Label returns the text shown in front of the header value in the editor.
func (n Name) Label() string {
	return labels[n]
}

type Header struct {
	Name    Name
	Label   string
	Include bool
}

// HeaderSet is ordered; encoding and decoding always walk it front to back.
type HeaderSet []Header

// NewHeaderSet returns all known headers with editing disabled.
func NewHeaderSet() HeaderSet {
	hs := make(HeaderSet, 0, len(Names))
	for _, n := range Names {
		hs = append(hs, Header{Name: n, Label: n.Label()})
	}
	return hs
}

// Set toggles the inclusion of a header. Unknown names are ignored.
func (hs HeaderSet) Set(name Name, include bool) {
	for i := range hs {
		if hs[i].Name == name {
			hs[i].Include = include
			return
		}
	}
}

func (hs HeaderSet) Included(name Name) bool {
	for _, h := range hs {
		if h.Name == name {
			return h.Include
		}
	}
	return false
}

// AnyIncluded reports whether at least one header is enabled.
func (hs HeaderSet) AnyIncluded() bool {
	for _, h := range hs {
		if h.Include {
			return true
		}
	}
	return false
}

// Lookup resolves a label case-insensitively.
func (hs HeaderSet) Lookup(label string) (Name, bool) {
	for _, h := range hs {
		if strings.EqualFold(h.Label, label) {
			return h.Name, true
		}
	}
	return "", false
}

// Disabled returns a copy with every header excluded.
func (hs HeaderSet) Disabled() HeaderSet {
	c := make(HeaderSet, len(hs))
	copy(c, hs)
	for i := range c {
		c[i].Include = false
	}
	return c
}

// Fields holds the current value of each header in a compose window.
type Fields map[Name]string

// Values is what came back from the editor. Only headers that were
// enabled are present; a missing key means the compose field must be left
// alone, which is not the same as setting it to "".
type Values map[Name]string

func (v Values) Lookup(name Name) (string, bool) {
	s, ok := v[name]
	return s, ok
}
