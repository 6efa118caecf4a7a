package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/explorador/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// DefaultNamespace is the key the preference root object is stored under
const DefaultNamespace = "colombia-explorer:v4"

var bucketPreferences = []byte("preferences")

// PreferenceStore implements domain.PreferenceStore using BoltDB.
// The whole preference tree is one JSON document under a single key.
type PreferenceStore struct {
	db        *bolt.DB
	namespace []byte
	logger    *slog.Logger

	mu    sync.RWMutex // Protects memory cache
	cache []byte
}

// Open opens (or creates) the preference database at path.
// An empty path yields a memory-only store.
func Open(path, namespace string, logger *slog.Logger) (*PreferenceStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	s := &PreferenceStore{namespace: []byte(namespace), logger: logger}
	if path == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPreferences)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	s.db = db
	return s, nil
}

func (s *PreferenceStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns the stored preferences. Absent or unreadable data yields the
// default empty shape; missing top-level fields are filled in.
func (s *PreferenceStore) Load() domain.Preferences {
	data := s.read()
	if data == nil {
		return domain.DefaultPreferences()
	}

	var prefs domain.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		s.logger.Warn("discarding unreadable preferences", "namespace", string(s.namespace), "error", err)
		return domain.DefaultPreferences()
	}
	prefs.Normalize()
	return prefs
}

// Save overwrites the stored root object
func (s *PreferenceStore) Save(prefs domain.Preferences) error {
	prefs.Normalize()
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	if s.db != nil {
		err = s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketPreferences).Put(s.namespace, data)
		})
		if err != nil {
			s.logger.Error("failed to save preferences", "error", err)
			return err
		}
	}

	s.mu.Lock()
	s.cache = data
	s.mu.Unlock()
	return nil
}

// Reset removes the stored root object
func (s *PreferenceStore) Reset() error {
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketPreferences).Delete(s.namespace)
		})
		if err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
	return nil
}

func (s *PreferenceStore) read() []byte {
	s.mu.RLock()
	if s.cache != nil {
		data := s.cache
		s.mu.RUnlock()
		return data
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketPreferences).Get(s.namespace); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache = data
	s.mu.Unlock()
	return data
}
