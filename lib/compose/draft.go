// Package compose stands in for the mail client's compose windows: each
// window is a single part draft stored as an .eml file.
package compose

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/miolini/datacounter"
	"github.com/pkg/errors"

	"git.sr.ht/~exteditor/exteditor/lib/codec"
	"git.sr.ht/~exteditor/exteditor/lib/session"
	"git.sr.ht/~exteditor/exteditor/log"
)

var ErrMultipart = errors.New("multipart drafts cannot be edited")

// Details is a snapshot of one compose window.
type Details struct {
	Target      int
	Fields      codec.Fields
	Body        string
	IsPlainText bool
}

var headerKeys = map[codec.Name]string{
	codec.Subject:    "Subject",
	codec.To:         "To",
	codec.Cc:         "Cc",
	codec.Bcc:        "Bcc",
	codec.ReplyTo:    "Reply-To",
	codec.Newsgroups: "Newsgroups",
	codec.FollowupTo: "Followup-To",
}

func isAddressHeader(name codec.Name) bool {
	switch name {
	case codec.To, codec.Cc, codec.Bcc, codec.ReplyTo:
		return true
	}
	return false
}

type Draft struct {
	Path   string
	header mail.Header
	body   string
	html   bool
}

// ReadDraft parses the draft at path.
func ReadDraft(path string) (*Draft, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open draft")
	}
	defer f.Close()
	return parseDraft(path, f)
}

func parseDraft(path string, r io.Reader) (*Draft, error) {
	e, err := message.Read(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, errors.Wrapf(err, "%s", filepath.Base(path))
	}
	if err != nil {
		log.Warnf("%s: %v", path, err)
	}
	if e.MultipartReader() != nil {
		return nil, errors.Wrapf(ErrMultipart, "%s", filepath.Base(path))
	}
	mediaType, _, err := e.Header.ContentType()
	if err != nil {
		log.Debugf("%s: content type: %v", path, err)
		mediaType = "text/plain"
	}
	body, err := io.ReadAll(e.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: read body", filepath.Base(path))
	}
	return &Draft{
		Path:   path,
		header: mail.Header{Header: e.Header},
		body:   strings.ReplaceAll(string(body), "\r\n", "\n"),
		html:   strings.EqualFold(mediaType, "text/html"),
	}, nil
}

// Mode is rich for HTML drafts and plain for everything else.
func (d *Draft) Mode() session.Mode {
	if d.html {
		return session.Rich
	}
	return session.Plain
}

func (d *Draft) Body() string {
	return d.body
}

// Fields returns the current value of every editable header.
func (d *Draft) Fields() codec.Fields {
	fields := make(codec.Fields, len(codec.Names))
	for _, name := range codec.Names {
		fields[name] = d.field(name)
	}
	return fields
}

func (d *Draft) field(name codec.Name) string {
	key := headerKeys[name]
	if name == codec.Subject {
		subject, err := d.header.Subject()
		if err != nil {
			return d.header.Get(key)
		}
		return subject
	}
	if isAddressHeader(name) {
		addrs, err := d.header.AddressList(key)
		if err == nil {
			return formatAddresses(addrs)
		}
	}
	// not an address list, fall back to whatever is there
	text, err := d.header.Text(key)
	if err != nil {
		return d.header.Get(key)
	}
	return text
}

func formatAddresses(addrs []*mail.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		if addr.Name == "" {
			parts = append(parts, addr.Address)
		} else {
			parts = append(parts, addr.Name+" <"+addr.Address+">")
		}
	}
	return strings.Join(parts, ", ")
}

// Update stores the edited headers present in values. The body is only
// replaced when it comes from an edit in the draft's own mode.
func (d *Draft) Update(mode session.Mode, values codec.Values, body string) {
	for _, name := range codec.Names {
		value, ok := values.Lookup(name)
		if !ok {
			continue
		}
		d.setField(name, value)
	}
	if mode == d.Mode() {
		d.body = body
	} else {
		log.Warnf("%s: %s text cannot replace a %s body",
			d.Path, mode, d.Mode())
	}
}

func (d *Draft) setField(name codec.Name, value string) {
	key := headerKeys[name]
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		d.header.Del(key)
	case name == codec.Subject:
		d.header.SetSubject(value)
	case isAddressHeader(name):
		addrs, err := mail.ParseAddressList(value)
		if err != nil {
			log.Debugf("%s: %s is not an address list: %v", d.Path, key, err)
			d.header.SetText(key, value)
			return
		}
		d.header.SetAddressList(key, addrs)
	default:
		d.header.SetText(key, value)
	}
}

// Save rewrites the draft file. The new contents are written next to it
// and renamed over it, so readers never see a partial file.
func (d *Draft) Save() error {
	var buf bytes.Buffer
	ctr := datacounter.NewWriterCounter(&buf)
	if err := d.WriteTo(ctr); err != nil {
		return err
	}
	log.Tracef("%s: %d bytes", d.Path, ctr.Count())
	dir, base := filepath.Split(d.Path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+"-*")
	if err != nil {
		return errors.Wrap(err, "save draft")
	}
	defer os.Remove(tmp.Name())
	if fi, err := os.Stat(d.Path); err == nil {
		_ = tmp.Chmod(fi.Mode().Perm())
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, "save draft")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "save draft")
	}
	if err := os.Rename(tmp.Name(), d.Path); err != nil {
		return errors.Wrap(err, "save draft")
	}
	return nil
}

// WriteTo encodes the draft as a message.
func (d *Draft) WriteTo(w io.Writer) error {
	h := mail.Header{Header: d.header.Header.Copy()}
	mediaType, params, err := h.ContentType()
	if err != nil || mediaType == "" {
		mediaType, params = "text/plain", nil
	}
	if params == nil {
		params = make(map[string]string)
	}
	params["charset"] = "utf-8"
	h.SetContentType(mediaType, params)
	if h.Get("Content-Transfer-Encoding") == "" && needsEncoding(d.body) {
		h.Set("Content-Transfer-Encoding", "quoted-printable")
	}

	mw, err := message.CreateWriter(w, h.Header)
	if err != nil {
		return errors.Wrap(err, "write draft")
	}
	if _, err := io.WriteString(mw, d.body); err != nil {
		mw.Close()
		return errors.Wrap(err, "write draft")
	}
	return errors.Wrap(mw.Close(), "write draft")
}

// needsEncoding reports whether body cannot be sent as 7bit.
func needsEncoding(body string) bool {
	for _, line := range strings.Split(body, "\n") {
		if len(line) > 998 {
			return true
		}
	}
	for i := 0; i < len(body); i++ {
		if body[i] >= utf8.RuneSelf {
			return true
		}
	}
	return false
}
