// Package prefs stores the locally installed version of tracked components,
// keyed by node and key.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultVersion is reported when no local version has been recorded.
const DefaultVersion = "0.0.0"

// Store is a two-level key/value store.
type Store interface {
	Get(node, key string) (string, bool)
	Set(node, key, value string) error
}

// LocalVersion returns the recorded version for node/key, or DefaultVersion.
func LocalVersion(s Store, node, key string) string {
	if v, ok := s.Get(node, key); ok && v != "" {
		return v
	}
	return DefaultVersion
}

// FileStore keeps values in a YAML document of the form node -> key -> value.
type FileStore struct {
	path string

	mu   sync.Mutex
	data map[string]map[string]string
}

// Open loads the store at path. A missing file yields an empty store.
func Open(path string) (*FileStore, error) {
	s := &FileStore{path: path, data: map[string]map[string]string{}}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prefs: %w", err)
	}
	if err := yaml.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse prefs %s: %w", path, err)
	}
	if s.data == nil {
		s.data = map[string]map[string]string{}
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(node, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[node][key]
	return v, ok
}

// Set stores value and rewrites the file.
func (s *FileStore) Set(node, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[node] == nil {
		s.data[node] = map[string]string{}
	}
	s.data[node][key] = value
	return s.save()
}

func (s *FileStore) save() error {
	out, err := yaml.Marshal(s.data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// EnvStore reads values from environment variables named NODE_KEY.
type EnvStore struct {
	lookup func(string) (string, bool)
}

// NewEnvStore returns a store backed by the process environment.
func NewEnvStore() *EnvStore {
	return &EnvStore{lookup: os.LookupEnv}
}

var envReplacer = strings.NewReplacer(".", "_", "/", "_", "-", "_")

// EnvName returns the variable consulted for node/key.
func EnvName(node, key string) string {
	return envReplacer.Replace(strings.ToUpper(node + "_" + key))
}

func (s *EnvStore) Get(node, key string) (string, bool) {
	return s.lookup(EnvName(node, key))
}

// Set only affects the current process.
func (s *EnvStore) Set(node, key, value string) error {
	return os.Setenv(EnvName(node, key), value)
}

// Layered consults Override before Base and writes only to Base.
type Layered struct {
	Override Store
	Base     Store
}

func (l Layered) Get(node, key string) (string, bool) {
	if l.Override != nil {
		if v, ok := l.Override.Get(node, key); ok {
			return v, true
		}
	}
	if l.Base == nil {
		return "", false
	}
	return l.Base.Get(node, key)
}

func (l Layered) Set(node, key, value string) error {
	if l.Base == nil {
		return errors.New("no writable prefs store")
	}
	return l.Base.Set(node, key, value)
}
