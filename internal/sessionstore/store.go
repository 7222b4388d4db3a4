// Package sessionstore persists provider sessions between CLI runs.
package sessionstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blacktop/xfeed/internal/social"
	"gopkg.in/yaml.v3"
)

// Entry is one stored session.
type Entry struct {
	ProfileID string    `yaml:"profile_id"`
	Token     string    `yaml:"token"`
	CreatedAt time.Time `yaml:"created_at"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

type document struct {
	Sessions map[social.Platform]Entry `yaml:"sessions"`
}

// Store is a YAML file readable only by its owner. At most one session is
// kept per platform.
type Store struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

func (s *Store) read() (document, error) {
	doc := document{Sessions: map[social.Platform]Entry{}}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read sessions: %w", err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode sessions %s: %w", s.path, err)
	}
	if doc.Sessions == nil {
		doc.Sessions = map[social.Platform]Entry{}
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create sessions dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sessions-*")
	if err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write sessions: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write sessions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write sessions: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load returns the stored credentials for platform when they are still
// active at now.
func (s *Store) Load(platform social.Platform, now time.Time) (social.Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return social.Credentials{}, false, err
	}
	e, ok := doc.Sessions[platform]
	if !ok || e.Token == "" || !e.ExpiresAt.After(now) {
		return social.Credentials{}, false, nil
	}
	return social.Credentials{
		ProfileID: e.ProfileID,
		Token:     e.Token,
		CreatedAt: e.CreatedAt,
		ExpiresAt: e.ExpiresAt,
	}, true, nil
}

// Save stores the current credentials of session.
func (s *Store) Save(session *social.Session) error {
	if session == nil {
		return nil
	}
	creds := session.Credentials()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc.Sessions[session.Platform()] = Entry{
		ProfileID: creds.ProfileID,
		Token:     creds.Token,
		CreatedAt: creds.CreatedAt.UTC(),
		ExpiresAt: creds.ExpiresAt.UTC(),
	}
	return s.write(doc)
}

// Delete forgets the session of platform.
func (s *Store) Delete(platform social.Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Sessions[platform]; !ok {
		return nil
	}
	delete(doc.Sessions, platform)
	return s.write(doc)
}
