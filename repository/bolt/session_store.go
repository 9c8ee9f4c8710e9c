package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

var currentKey = []byte("current")

// SessionStore keeps the device session in a BoltDB file so a restart resumes
// the signed-in state.
type SessionStore struct {
	db     *bbolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*SessionStore, error) {
	if bucket == "" {
		bucket = "session"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &SessionStore{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

func (s *SessionStore) Load(_ context.Context) (*domain.Session, error) {
	if s == nil || s.db == nil {
		return nil, bbolt.ErrDatabaseNotOpen
	}

	var payload []byte
	if err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get(currentKey); v != nil {
			payload = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	if session == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put(currentKey, payload)
	})
}

func (s *SessionStore) Clear(_ context.Context) error {
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(currentKey)
	})
}

// Ping reports whether the underlying file is open and readable.
func (s *SessionStore) Ping() error {
	if s == nil || s.db == nil {
		return bbolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return bbolt.ErrBucketNotFound
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *SessionStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ repository.SessionStore = (*SessionStore)(nil)
