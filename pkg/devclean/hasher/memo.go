package hasher

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/dgraph-io/badger/v4"

	"github.com/jamesainslie/devclean/pkg/devclean/types"
)

// memoVersion is bumped whenever memoEntry changes shape.
const memoVersion = 1

// keyPrefix namespaces digest entries within the database.
const keyPrefix = "digest\x00"

// memoEntry is the stored form of a digest.
type memoEntry struct {
	Version int
	Size    int64
	Mtime   int64
	Digest  types.Digest
}

func (e *memoEntry) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *memoEntry) decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// Memo remembers digests across runs. An entry is reused only while the
// file's size and modification time are unchanged.
type Memo struct {
	db   *badger.DB
	path string
}

// DefaultMemoPath returns $XDG_CACHE_HOME/devclean/digests.
func DefaultMemoPath() string {
	return filepath.Join(xdg.CacheHome, "devclean", "digests")
}

// OpenMemo opens or creates a memo database in dir.
func OpenMemo(dir string) (*Memo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating memo directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening digest memo: %w", err)
	}
	return &Memo{db: db, path: dir}, nil
}

// Path returns the database directory.
func (m *Memo) Path() string {
	return m.path
}

// Close closes the database.
func (m *Memo) Close() error {
	return m.db.Close()
}

// Lookup returns the remembered digest for path if the stored size and
// mtime still match.
func (m *Memo) Lookup(path string, size, mtime int64) (types.Digest, bool) {
	var entry memoEntry
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + path))
		if err != nil {
			return err
		}
		return item.Value(entry.decode)
	})
	if err != nil {
		return types.Digest{}, false
	}
	if entry.Version != memoVersion || entry.Size != size || entry.Mtime != mtime {
		return types.Digest{}, false
	}
	return entry.Digest, true
}

// Store remembers digest for path at the given size and mtime.
func (m *Memo) Store(path string, size, mtime int64, digest types.Digest) error {
	entry := memoEntry{Version: memoVersion, Size: size, Mtime: mtime, Digest: digest}
	value, err := entry.encode()
	if err != nil {
		return fmt.Errorf("encoding memo entry: %w", err)
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+path), value)
	})
}

// Forget removes the entry for path, if any.
func (m *Memo) Forget(path string) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + path))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// Count returns the number of remembered digests.
func (m *Memo) Count() (int, error) {
	n := 0
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Prune drops entries whose file no longer exists and returns how many were
// removed.
func (m *Memo) Prune() (int, error) {
	var stale [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if _, err := os.Lstat(string(key[len(prefix):])); errors.Is(err, os.ErrNotExist) {
				stale = append(stale, key)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	wb := m.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return len(stale), nil
}

// Clear removes every entry.
func (m *Memo) Clear() error {
	return m.db.DropAll()
}
