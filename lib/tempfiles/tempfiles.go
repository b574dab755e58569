// Package tempfiles manages the files the documents are edited in.
package tempfiles

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"unicode"

	"github.com/mattn/go-runewidth"
	pkgerrors "github.com/pkg/errors"

	"git.sr.ht/~exteditor/exteditor/lib/xdg"
)

// maxNameWidth bounds the part of the file name derived from the subject.
const maxNameWidth = 48

var ErrUnknownFile = errors.New("file is not a known document")

// Dir is where the per-process directories are created.
func Dir() string {
	return xdg.RuntimePath("exteditor")
}

// Manager owns one private directory and remembers which document each of
// its files holds. It is safe for concurrent use.
type Manager struct {
	dir   string
	mu    sync.RWMutex
	files map[string]string
}

// New creates a fresh directory below root.
func New(root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, pkgerrors.Wrap(err, "create temporary directory")
	}
	dir, err := os.MkdirTemp(root, "*")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create temporary directory")
	}
	return &Manager{dir: dir, files: make(map[string]string)}, nil
}

func (m *Manager) Dir() string {
	return m.dir
}

// FileName turns a subject into the fixed part of a file name.
func FileName(subject string) string {
	name := make([]rune, 0, len(subject))
	for _, r := range subject {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			r = '_'
		}
		name = append(name, r)
	}
	return runewidth.Truncate(string(name), maxNameWidth, "")
}

// Create writes text to a new file for document id and returns its path.
func (m *Manager) Create(id, subject, extension, text string) (string, error) {
	pattern := FileName(subject) + "-*"
	if extension != "" {
		pattern += "." + extension
	}
	f, err := os.CreateTemp(m.dir, pattern)
	if err != nil {
		return "", pkgerrors.Wrap(err, "create document file")
	}
	path := f.Name()
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(path)
		return "", pkgerrors.Wrap(err, "write document file")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", pkgerrors.Wrap(err, "close document file")
	}

	m.mu.Lock()
	m.files[filepath.Base(path)] = id
	m.mu.Unlock()
	return path, nil
}

// Lookup returns the document id of the file at path.
func (m *Manager) Lookup(path string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.files[filepath.Base(path)]
	return id, ok
}

// Read returns the document id and current contents of the file at path.
func (m *Manager) Read(path string) (string, []byte, error) {
	id, ok := m.Lookup(path)
	if !ok {
		return "", nil, pkgerrors.Wrap(ErrUnknownFile, filepath.Base(path))
	}
	text, err := os.ReadFile(filepath.Join(m.dir, filepath.Base(path)))
	if err != nil {
		return "", nil, pkgerrors.Wrap(err, "read document file")
	}
	return id, text, nil
}

// Remove forgets the file and deletes it.
func (m *Manager) Remove(path string) error {
	m.mu.Lock()
	delete(m.files, filepath.Base(path))
	m.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(err, "remove document file")
	}
	return nil
}

// Close deletes the directory and everything left in it.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.files = make(map[string]string)
	m.mu.Unlock()
	return os.RemoveAll(m.dir)
}
