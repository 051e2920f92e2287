package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"pga/internal"
)

// MailStore keeps raw messages on disk, named by the sha256 of their
// content, so a message fetched twice is recognized.
type MailStore struct {
	dir string
}

func NewMailStore(dir string) *MailStore {
	return &MailStore{dir: dir}
}

type StoredMessage struct {
	Message internal.FetchedMailMessage
	Hash    string
	Path    string
}

// Store writes msg unless an identical message was stored before. isNew is
// false for messages already on disk.
func (s *MailStore) Store(msg internal.FetchedMailMessage) (stored StoredMessage, isNew bool, err error) {
	sum := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(sum[:])
	stored = StoredMessage{
		Message: msg,
		Hash:    hash,
		Path:    filepath.Join(s.dir, hash+".eml"),
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return StoredMessage{}, false, err
	}

	_, err = os.Stat(stored.Path)
	switch {
	case err == nil:
		return stored, false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return StoredMessage{}, false, err
	}

	if err := os.WriteFile(stored.Path, msg.Raw, 0o644); err != nil {
		return StoredMessage{}, false, err
	}
	return stored, true, nil
}
