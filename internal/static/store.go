// Package static serves a handful of files from a directory, keeping their contents
// in memory.
package static

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

var ErrOutsideRoot = errors.New("path escapes the root directory")

// Store reads files below the root directory and caches their contents. With Watch
// enabled, a cached entry is dropped as soon as the file changes on disk.
type Store struct {
	root    string
	log     zerolog.Logger
	mu      sync.RWMutex
	cache   map[string][]byte
	// gens counts invalidations per key, so a read racing with one doesn't cache
	// outdated contents.
	gens    map[string]uint64
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewStore(root string, log zerolog.Logger) *Store {
	return &Store{
		root:  root,
		log:   log,
		cache: make(map[string][]byte),
		gens:  make(map[string]uint64),
	}
}

// Root returns the directory files are read from.
func (s *Store) Root() string {
	return s.root
}

// Read returns the contents of the file. The name is relative to the root and
// slash-separated.
func (s *Store) Read(name string) ([]byte, error) {
	key, err := s.key(name)
	if err != nil {
		return nil, err
	}

	data, gen, found := s.lookup(key)
	if found {
		return data, nil
	}

	data, err = os.ReadFile(filepath.Join(s.root, key))
	if err != nil {
		return nil, err
	}

	s.fill(key, gen, data)

	return data, nil
}

func (s *Store) lookup(key string) (data []byte, gen uint64, found bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, found = s.cache[key]
	return data, s.gens[key], found
}

// fill caches the data unless the key was invalidated since gen was observed.
func (s *Store) fill(key string, gen uint64, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[key] != gen {
		return
	}

	s.cache[key] = data
}

// Invalidate drops the cached contents of the file, if any.
func (s *Store) Invalidate(name string) {
	key, err := s.key(name)
	if err != nil {
		return
	}

	s.mu.Lock()
	delete(s.cache, key)
	s.gens[key]++
	s.mu.Unlock()
}

// Cached reports whether the file's contents are currently held in memory.
func (s *Store) Cached(name string) bool {
	key, err := s.key(name)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, found := s.cache[key]
	return found
}

// Watch starts watching the root directory. Nested directories aren't watched.
func (s *Store) Watch() error {
	if s.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err = watcher.Add(s.root); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", s.root, err)
	}

	s.watcher = watcher
	s.done = make(chan struct{})
	go s.watch(watcher, s.done)

	return nil
}

func (s *Store) watch(watcher *fsnotify.Watcher, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Op == fsnotify.Chmod {
				continue
			}

			name, err := filepath.Rel(s.root, event.Name)
			if err != nil {
				continue
			}

			s.log.Debug().Str("file", name).Stringer("op", event.Op).Msg("static file changed")
			s.Invalidate(filepath.ToSlash(name))
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			s.log.Warn().Err(err).Msg("static files watcher")
		}
	}
}

// Close stops watching. The cache stays usable.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}

	err := s.watcher.Close()
	<-s.done
	s.watcher = nil

	return err
}

func (s *Store) key(name string) (string, error) {
	key := filepath.Clean(filepath.FromSlash(name))
	if !filepath.IsLocal(key) {
		return "", ErrOutsideRoot
	}

	return key, nil
}
