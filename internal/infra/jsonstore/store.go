// Package jsonstore provides a JSON file-based implementation of CredentialStore.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/runoshun/tasker/internal/domain"
)

// Ensure Store implements domain.CredentialStore.
var _ domain.CredentialStore = (*Store)(nil)

// Store persists the credential as a single JSON file.
// Concurrent processes are serialized with an flock on a sibling lock file.
type Store struct {
	path     string
	lockPath string
}

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first Save.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// Path returns the credential file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored credential, or nil if none is stored.
// A file without a token is treated as empty.
func (s *Store) Load() (*domain.StoredCredential, error) {
	var cred *domain.StoredCredential
	err := s.withLock(syscall.LOCK_SH, func() error {
		c, err := s.read()
		cred = c
		return err
	})
	return cred, err
}

// Save replaces the stored credential.
func (s *Store) Save(cred domain.StoredCredential) error {
	if cred.Token == "" {
		return errors.New("save credential: empty token")
	}
	return s.withLock(syscall.LOCK_EX, func() error {
		return s.write(&cred)
	})
}

// Clear removes the stored credential. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	return s.withLock(syscall.LOCK_EX, func() error {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove credential file: %w", err)
		}
		return nil
	})
}

// withLock executes fn while holding a lock of the given type.
func (s *Store) withLock(lockType int, fn func() error) error {
	lock, err := s.acquireLock(lockType)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	return fn()
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	// Ensure lock file directory exists
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) read() (*domain.StoredCredential, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credential file: %w", err)
	}

	var cred domain.StoredCredential
	if err := json.Unmarshal(content, &cred); err != nil {
		return nil, fmt.Errorf("parse credential file: %w", err)
	}
	if cred.Token == "" {
		return nil, nil
	}

	return &cred, nil
}

func (s *Store) write(cred *domain.StoredCredential) error {
	content, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
