package store

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"git.sr.ht/~exteditor/exteditor/lib/codec"
)

const (
	KeyEditor      = "editor"
	KeyExtension   = "extension"
	KeyEditHeaders = "editheaders"

	DefaultEditor    = `["gedit", "+%l:%c"]`
	DefaultExtension = "eml"
)

var headerKeys = map[codec.Name]string{
	codec.Subject:    "editheaders_subject",
	codec.To:         "editheaders_to",
	codec.Cc:         "editheaders_cc",
	codec.Bcc:        "editheaders_bcc",
	codec.ReplyTo:    "editheaders_replyto",
	codec.Newsgroups: "editheaders_newsgroups",
	codec.FollowupTo: "editheaders_followupto",
}

// HeaderKey returns the setting that enables editing of a header.
func HeaderKey(name codec.Name) string {
	return headerKeys[name]
}

// Keys lists every setting in a stable order.
func Keys() []string {
	keys := []string{KeyEditor, KeyExtension, KeyEditHeaders}
	for _, n := range codec.Names {
		keys = append(keys, headerKeys[n])
	}
	return keys
}

// IsKey reports whether key names a known setting.
func IsKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Preferences is a snapshot of the settings relevant to one edit.
type Preferences struct {
	Editor      string
	Extension   string
	EditHeaders bool
	Headers     codec.HeaderSet
}

// Preferences reads the current settings. Missing keys take their
// defaults. When header editing is off, every header is reported as
// excluded regardless of its own setting.
func (s *Store) Preferences() (Preferences, error) {
	p := Preferences{Headers: codec.NewHeaderSet()}
	var err error
	if p.Editor, err = s.stringOr(KeyEditor, DefaultEditor); err != nil {
		return p, err
	}
	if p.Extension, err = s.stringOr(KeyExtension, DefaultExtension); err != nil {
		return p, err
	}
	if p.EditHeaders, err = s.boolOr(KeyEditHeaders, false); err != nil {
		return p, err
	}
	if !p.EditHeaders {
		return p, nil
	}
	for _, n := range codec.Names {
		include, err := s.boolOr(headerKeys[n], false)
		if err != nil {
			return p, err
		}
		p.Headers.Set(n, include)
	}
	return p, nil
}

// Seed stores value under key unless the key already has a value.
func (s *Store) Seed(key, value string) error {
	_, err := s.Get(key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.Set(key, value)
}

// SetOption validates and stores a user supplied option.
func (s *Store) SetOption(key, value string) error {
	if !IsKey(key) {
		if guess := Suggest(key); guess != "" {
			return fmt.Errorf("%s: unknown option, did you mean %s?", key, guess)
		}
		return fmt.Errorf("%s: unknown option", key)
	}
	if key != KeyEditor && key != KeyExtension {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		value = strconv.FormatBool(b)
	}
	return s.Set(key, value)
}

// Suggest returns the setting closest to a mistyped key, if any.
func Suggest(key string) string {
	ranks := fuzzy.RankFindFold(key, Keys())
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}

func (s *Store) stringOr(key, def string) (string, error) {
	value, err := s.Get(key)
	switch {
	case errors.Is(err, ErrNotFound):
		return def, nil
	case err != nil:
		return "", err
	case value == "":
		return def, nil
	}
	return value, nil
}

func (s *Store) boolOr(key string, def bool) (bool, error) {
	value, err := s.Get(key)
	switch {
	case errors.Is(err, ErrNotFound):
		return def, nil
	case err != nil:
		return false, err
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
