package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/wajahatashraf/gcp-setup/internal/errors"
)

// Store persists the ledger record across process invocations.
type Store interface {
	// Load returns the current record. An absent ledger is a valid state
	// ("nothing to tear down") and yields an empty record, not an error.
	Load() (*Record, error)
	// Save overwrites the ledger atomically; a reader never observes a
	// half-written record.
	Save(rec *Record) error
	// Clear removes the ledger. Clearing an absent ledger is a no-op.
	Clear() error
}

// FileStore persists the record as JSON at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the ledger file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the ledger file. A missing file yields an empty record.
func (s *FileStore) Load() (*Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Record{}, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, apperrors.ErrLedgerCorrupt(s.path, err)
	}
	return &rec, nil
}

// Save writes the record to a temp file in the same directory, syncs it,
// and renames it over the ledger path so a crash mid-write cannot leave a
// torn record behind.
func (s *FileStore) Save(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return fmt.Errorf("create ledger temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close ledger temp file: %w", err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// Clear removes the ledger file; an already-absent file is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove ledger: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	rec    *Record
	exists bool
	// SaveCount tracks how many times Save ran, so tests can assert the
	// ledger is persisted after every successful resource creation.
	SaveCount int
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Load returns a copy of the stored record, or an empty record when absent.
func (s *MemStore) Load() (*Record, error) {
	if !s.exists {
		return &Record{}, nil
	}
	return s.rec.Clone(), nil
}

// Save stores a copy of the record.
func (s *MemStore) Save(rec *Record) error {
	s.rec = rec.Clone()
	s.exists = true
	s.SaveCount++
	return nil
}

// Clear drops the stored record.
func (s *MemStore) Clear() error {
	s.rec = nil
	s.exists = false
	return nil
}

// Exists reports whether a record has been saved and not cleared.
func (s *MemStore) Exists() bool {
	return s.exists
}
