package codec_test

import (
	"strings"
	"testing"

	"git.sr.ht/~exteditor/exteditor/lib/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerSet(names ...codec.Name) codec.HeaderSet {
	hs := codec.NewHeaderSet()
	for _, n := range names {
		hs.Set(n, true)
	}
	return hs
}

func TestEncodeDisabled(t *testing.T) {
	hs := headerSet(codec.Subject, codec.To)
	fields := codec.Fields{codec.Subject: "Hi", codec.To: "a@x"}
	assert.Equal(t, "hello\nworld", codec.Encode(false, hs, fields, "hello\nworld"))
}

func TestEncode(t *testing.T) {
	hs := headerSet(codec.Subject)
	blob := codec.Encode(true, hs, codec.Fields{codec.Subject: "Hi"}, "hello")
	assert.Equal(t, "Subject:    Hi\n"+codec.Sentinel+"hello", blob)
}

func TestEncodeOrderAndPadding(t *testing.T) {
	hs := headerSet(codec.FollowupTo, codec.To, codec.ReplyTo)
	fields := codec.Fields{
		codec.To:         "a@x",
		codec.ReplyTo:    "r@x",
		codec.FollowupTo: "comp.lang.go",
		codec.Subject:    "not included",
	}
	expected := "To:         a@x\n" +
		"Reply-To:   r@x\n" +
		"Followup-To:comp.lang.go\n" +
		codec.Sentinel + "body"
	assert.Equal(t, expected, codec.Encode(true, hs, fields, "body"))
}

func TestDecode(t *testing.T) {
	hs := headerSet(codec.Subject)
	values, body, err := codec.Decode(true, hs, "Subject:    Hi\n"+codec.Sentinel+"hello")
	require.NoError(t, err)
	assert.Equal(t, codec.Values{codec.Subject: "Hi"}, values)
	assert.Equal(t, "hello", body)
}

func TestDecodeCases(t *testing.T) {
	tests := []struct {
		name     string
		headers  []codec.Name
		blob     string
		expected codec.Values
		body     string
	}{
		{
			name:     "colon in value",
			headers:  []codec.Name{codec.Subject},
			blob:     "Subject:   Re: budget\n" + codec.Sentinel + "body",
			expected: codec.Values{codec.Subject: "Re: budget"},
			body:     "body",
		},
		{
			name:     "continuation line",
			headers:  []codec.Name{codec.To},
			blob:     "To:         a@x\nb@x\n" + codec.Sentinel + "body",
			expected: codec.Values{codec.To: "a@x,b@x"},
			body:     "body",
		},
		{
			name:     "repeated header",
			headers:  []codec.Name{codec.Cc},
			blob:     "Cc: a@x\ncc: b@x\n" + codec.Sentinel + "body",
			expected: codec.Values{codec.Cc: "a@x,b@x"},
			body:     "body",
		},
		{
			name:     "label case and inner spaces",
			headers:  []codec.Name{codec.ReplyTo},
			blob:     " reply - TO :r@x\n" + codec.Sentinel + "body",
			expected: codec.Values{codec.ReplyTo: "r@x"},
			body:     "body",
		},
		{
			name:     "missing header defaults to empty",
			headers:  []codec.Name{codec.Subject, codec.Bcc},
			blob:     "Subject: s\n" + codec.Sentinel + "body",
			expected: codec.Values{codec.Subject: "s", codec.Bcc: ""},
			body:     "body",
		},
		{
			name:     "excluded header is not reported",
			headers:  []codec.Name{codec.Subject},
			blob:     "Subject: s\nTo: a@x\n" + codec.Sentinel + "body",
			expected: codec.Values{codec.Subject: "s"},
			body:     "body",
		},
		{
			name:     "unknown header and its continuation are dropped",
			headers:  []codec.Name{codec.To},
			blob:     "To: a@x\nX-Foo: bar\nbaz\n" + codec.Sentinel + "body",
			expected: codec.Values{codec.To: "a@x"},
			body:     "body",
		},
		{
			name:     "blank lines are ignored",
			headers:  []codec.Name{codec.To},
			blob:     "To: a@x\n   \n\n" + codec.Sentinel + "body",
			expected: codec.Values{codec.To: "a@x"},
			body:     "body",
		},
		{
			name:     "sentinel inside body is preserved",
			headers:  []codec.Name{codec.Subject},
			blob:     "Subject: s\n" + codec.Sentinel + "one\n" + codec.Sentinel + "two",
			expected: codec.Values{codec.Subject: "s"},
			body:     "one\n" + codec.Sentinel + "two",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			values, body, err := codec.Decode(true, headerSet(test.headers...), test.blob)
			require.NoError(t, err)
			assert.Equal(t, test.expected, values)
			assert.Equal(t, test.body, body)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	values, body, err := codec.Decode(true, headerSet(codec.Subject), "Subject: s\nbody")
	assert.ErrorIs(t, err, codec.ErrMalformed)
	assert.Nil(t, values)
	assert.Empty(t, body)
}

func TestDecodeDisabled(t *testing.T) {
	hs := headerSet(codec.Subject)

	values, body, err := codec.Decode(false, hs, "Subject: s\nbody")
	require.NoError(t, err)
	assert.Empty(t, values)
	assert.Equal(t, "Subject: s\nbody", body)

	values, body, err = codec.Decode(false, hs, "Subject: s\n"+codec.Sentinel+"body")
	require.NoError(t, err)
	_, ok := values.Lookup(codec.Subject)
	assert.False(t, ok)
	assert.Equal(t, "body", body)
}

func TestRoundTrip(t *testing.T) {
	fields := codec.Fields{
		codec.Subject:    "Re: weekly sync",
		codec.To:         "alice@example.org, bob@example.org",
		codec.Cc:         "",
		codec.Bcc:        "carol@example.org",
		codec.ReplyTo:    "list@example.org",
		codec.Newsgroups: "comp.lang.go",
		codec.FollowupTo: "poster",
	}
	bodies := []string{"", "hello", "multi\nline\n\nbody: with colon\n", "ünïcödé ✓"}

	for _, names := range [][]codec.Name{
		{codec.Subject},
		{codec.To, codec.Bcc},
		codec.Names,
	} {
		hs := headerSet(names...)
		for _, body := range bodies {
			blob := codec.Encode(true, hs, fields, body)
			values, decoded, err := codec.Decode(true, hs, blob)
			require.NoError(t, err)
			assert.Equal(t, body, decoded)
			expected := codec.Values{}
			for _, n := range names {
				expected[n] = fields[n]
			}
			assert.Equal(t, expected, values)
		}
	}
}

func TestHeaderBlock(t *testing.T) {
	block := codec.HeaderBlock(headerSet(codec.Bcc), codec.Fields{codec.Bcc: "x@y"})
	assert.True(t, strings.HasSuffix(block, codec.Sentinel))
	assert.Equal(t, "Bcc:        x@y\n", strings.TrimSuffix(block, codec.Sentinel))
}

func TestHeaderSet(t *testing.T) {
	hs := codec.NewHeaderSet()
	assert.Len(t, hs, 7)
	assert.False(t, hs.AnyIncluded())

	hs.Set(codec.Newsgroups, true)
	assert.True(t, hs.Included(codec.Newsgroups))
	assert.False(t, hs.Disabled().AnyIncluded())
	assert.True(t, hs.Included(codec.Newsgroups), "Disabled must not modify the receiver")

	name, ok := hs.Lookup("followup-to")
	assert.True(t, ok)
	assert.Equal(t, codec.FollowupTo, name)
	_, ok = hs.Lookup("X-Mailer")
	assert.False(t, ok)
}
