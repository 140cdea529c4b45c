package viewport

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
)

// ErrNoSession is returned by Load when no session has been saved yet.
var ErrNoSession = errors.New("viewport: no saved session")

// StateStore persists the session between runs.
type StateStore interface {
	Load() (Session, error)
	Save(Session) error
}

// FileStore keeps the session in a JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

func (s *FileStore) Save(session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	// Write-then-rename so a crash mid-write cannot corrupt the session.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
