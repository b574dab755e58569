package store_test

import (
	"path/filepath"
	"testing"

	"git.sr.ht/~exteditor/exteditor/lib/codec"
	"git.sr.ht/~exteditor/exteditor/lib/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]*store.Store {
	t.Helper()
	db := store.Open(filepath.Join(t.TempDir(), "settings"))
	t.Cleanup(func() { db.Close() })
	return map[string]*store.Store{
		"memory":  store.Open(""),
		"leveldb": db,
	}
}

func TestGetSetDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("editor")
			assert.ErrorIs(t, err, store.ErrNotFound)

			require.NoError(t, s.Set("editor", `["vim"]`))
			require.NoError(t, s.Set("editheaders_to", "true"))
			value, err := s.Get("editor")
			require.NoError(t, err)
			assert.Equal(t, `["vim"]`, value)

			keys, err := s.Keys("edit")
			require.NoError(t, err)
			assert.Equal(t, []string{"editheaders_to", "editor"}, keys)

			require.NoError(t, s.Delete("editor"))
			_, err = s.Get("editor")
			assert.ErrorIs(t, err, store.ErrNotFound)
		})
	}
}

func TestPersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "settings")
	s := store.Open(dir)
	require.NoError(t, s.Set("extension", "txt"))
	require.NoError(t, s.Close())

	s = store.Open(dir)
	defer s.Close()
	value, err := s.Get("extension")
	require.NoError(t, err)
	assert.Equal(t, "txt", value)
}

func TestPreferencesDefaults(t *testing.T) {
	p, err := store.Open("").Preferences()
	require.NoError(t, err)
	assert.Equal(t, store.DefaultEditor, p.Editor)
	assert.Equal(t, "eml", p.Extension)
	assert.False(t, p.EditHeaders)
	assert.False(t, p.Headers.AnyIncluded())
}

func TestPreferencesHeaders(t *testing.T) {
	s := store.Open("")
	require.NoError(t, s.Set(store.HeaderKey(codec.Subject), "true"))
	require.NoError(t, s.Set(store.HeaderKey(codec.ReplyTo), "true"))

	p, err := s.Preferences()
	require.NoError(t, err)
	assert.False(t, p.Headers.AnyIncluded(), "header flags are ignored while editheaders is off")

	require.NoError(t, s.Set(store.KeyEditHeaders, "true"))
	p, err = s.Preferences()
	require.NoError(t, err)
	assert.True(t, p.EditHeaders)
	assert.True(t, p.Headers.Included(codec.Subject))
	assert.True(t, p.Headers.Included(codec.ReplyTo))
	assert.False(t, p.Headers.Included(codec.To))
}

func TestPreferencesInvalidBool(t *testing.T) {
	s := store.Open("")
	require.NoError(t, s.Set(store.KeyEditHeaders, "perhaps"))
	_, err := s.Preferences()
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	s := store.Open("")
	require.NoError(t, s.Set(store.KeyExtension, "md"))
	require.NoError(t, s.Seed(store.KeyExtension, "eml"))
	require.NoError(t, s.Seed(store.KeyEditor, `["emacs"]`))

	p, err := s.Preferences()
	require.NoError(t, err)
	assert.Equal(t, "md", p.Extension)
	assert.Equal(t, `["emacs"]`, p.Editor)
}

func TestSetOption(t *testing.T) {
	s := store.Open("")
	assert.NoError(t, s.SetOption("editheaders", "1"))
	value, err := s.Get("editheaders")
	require.NoError(t, err)
	assert.Equal(t, "true", value)

	assert.NoError(t, s.SetOption("editor", "vim +%l"))
	assert.Error(t, s.SetOption("editheaders_to", "maybe"))
	assert.Error(t, s.SetOption("shortcut", "Ctrl+E"))
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, "editheaders_subject", store.Suggest("headers_subject"))
	assert.Equal(t, "extension", store.Suggest("ext"))
	assert.Equal(t, "", store.Suggest("shortcut"))

	s := store.Open("")
	err := s.SetOption("editheader_cc", "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean editheaders_cc?")
}
