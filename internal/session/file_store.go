package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/timetable-console/internal/models"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

// FileStore keeps sessions in a single YAML document on disk.
type FileStore struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

type fileDocument struct {
	Sessions map[string]models.Session `yaml:"sessions"`
}

// NewFileStore returns a store backed by path. The file is created on first
// save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Load returns the live session for key.
func (s *FileStore) Load(_ context.Context, key string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	sess, ok := doc.Sessions[key]
	if !ok {
		return nil, ErrNoSession
	}
	return live(&sess, s.now())
}

// Save writes the session, replacing any previous one for its key.
func (s *FileStore) Save(_ context.Context, sess *models.Session) error {
	if sess == nil || sess.Key == "" {
		return appErrors.Clone(appErrors.ErrValidation, "session key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Sessions[sess.Key] = *sess
	return s.write(doc)
}

// Delete forgets the session for key.
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Sessions[key]; !ok {
		return nil
	}
	delete(doc.Sessions, key)
	return s.write(doc)
}

func (s *FileStore) read() (fileDocument, error) {
	doc := fileDocument{Sessions: map[string]models.Session{}}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("read session file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse session file %s: %w", s.path, err)
	}
	if doc.Sessions == nil {
		doc.Sessions = map[string]models.Session{}
	}
	return doc, nil
}

// write replaces the file through a rename so readers never see a partial
// document.
func (s *FileStore) write(doc fileDocument) error {
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("prepare session directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
