// Package store keeps the user's editing preferences: the command line of
// the editor, the temp file extension and which headers are editable.
package store

import (
	"errors"
	"os"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"git.sr.ht/~exteditor/exteditor/log"
)

var ErrNotFound = errors.New("key not found")

// Store is a string key-value store backed by goleveldb, or by a map when
// no directory is available.
type Store struct {
	mem  map[string]string
	file *leveldb.DB
}

// Open opens (or creates) the database in dir. An empty dir, or a database
// that cannot be opened, yields an in-memory store.
func Open(dir string) *Store {
	s := new(Store)
	if dir != "" {
		var err error
		_ = os.MkdirAll(dir, 0o700)
		s.file, err = leveldb.OpenFile(dir, nil)
		if err != nil {
			log.Errorf("failed to open settings db %s: %v", dir, err)
			s.file = nil
		} else {
			log.Debugf("settings db opened: %s", dir)
		}
	}
	if s.file == nil {
		s.mem = make(map[string]string)
	}
	return s
}

func (s *Store) Get(key string) (string, error) {
	switch {
	case s.file != nil:
		value, err := s.file.Get([]byte(key), nil)
		if errors.Is(err, leveldb.ErrNotFound) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", pkgerrors.Wrapf(err, "get %s", key)
		}
		return string(value), nil
	case s.mem != nil:
		value, ok := s.mem[key]
		if !ok {
			return "", ErrNotFound
		}
		return value, nil
	}
	panic("settings store with no backend")
}

func (s *Store) Set(key, value string) error {
	switch {
	case s.file != nil:
		return pkgerrors.Wrapf(s.file.Put([]byte(key), []byte(value), nil), "set %s", key)
	case s.mem != nil:
		s.mem[key] = value
		return nil
	}
	panic("settings store with no backend")
}

func (s *Store) Delete(key string) error {
	switch {
	case s.file != nil:
		return pkgerrors.Wrapf(s.file.Delete([]byte(key), nil), "delete %s", key)
	case s.mem != nil:
		delete(s.mem, key)
		return nil
	}
	panic("settings store with no backend")
}

// Keys lists the stored keys starting with prefix, sorted.
func (s *Store) Keys(prefix string) ([]string, error) {
	var keys []string
	switch {
	case s.file != nil:
		iter := s.file.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
		for iter.Next() {
			keys = append(keys, string(iter.Key()))
		}
		iter.Release()
		if err := iter.Error(); err != nil {
			return nil, pkgerrors.Wrap(err, "iterate")
		}
	case s.mem != nil:
		for key := range s.mem {
			if strings.HasPrefix(key, prefix) {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
	default:
		panic("settings store with no backend")
	}
	return keys, nil
}

func (s *Store) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
