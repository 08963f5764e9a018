package kv

import (
	"iter"

	"github.com/indigo-web/utils/strcomp"
)

type Pair struct {
	Key, Value string
}

// Storage is an associative structure for storing (string, string) pairs. Keys are compared
// case-insensitively. It acts as a map but uses linear search instead, which is cheaper on the
// small amount of entries a single request or response normally carries.
type Storage struct {
	pairs []Pair
}

func New() *Storage {
	return new(Storage)
}

// NewPrealloc returns an instance of Storage with pre-allocated underlying storage.
func NewPrealloc(n int) *Storage {
	return &Storage{
		pairs: make([]Pair, 0, n),
	}
}

// Add adds a new pair of key and value.
func (s *Storage) Add(key, value string) *Storage {
	s.pairs = append(s.pairs, Pair{
		Key:   key,
		Value: value,
	})
	return s
}

// Set replaces all the values of the key by the single passed one. The pair keeps the position
// of the first occurrence. If there was no such key, it's appended.
func (s *Storage) Set(key, value string) *Storage {
	for i, pair := range s.pairs {
		if strcomp.EqualFold(key, pair.Key) {
			s.pairs[i] = Pair{Key: key, Value: value}
			s.pairs = append(s.pairs[:i+1], deleteKey(s.pairs[i+1:], key)...)
			return s
		}
	}

	return s.Add(key, value)
}

// Value returns the first value, corresponding to the key. Otherwise, empty string is returned
func (s *Storage) Value(key string) string {
	value, _ := s.Get(key)
	return value
}

// Get returns a value and a bool, indicating whether the value was found.
func (s *Storage) Get(key string) (value string, found bool) {
	for _, pair := range s.pairs {
		if strcomp.EqualFold(key, pair.Key) {
			return pair.Value, true
		}
	}

	return "", false
}

// Values returns an iterator over all values of the key.
func (s *Storage) Values(key string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, pair := range s.pairs {
			if strcomp.EqualFold(pair.Key, key) && !yield(pair.Value) {
				return
			}
		}
	}
}

// Pairs returns an iterator over all the stored pairs.
func (s *Storage) Pairs() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range s.pairs {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Has indicates, whether there's an entry of the key.
func (s *Storage) Has(key string) bool {
	_, found := s.Get(key)
	return found
}

// Len returns a number of stored pairs.
func (s *Storage) Len() int {
	return len(s.pairs)
}

func (s *Storage) Empty() bool {
	return s.Len() == 0
}

func deleteKey(pairs []Pair, key string) []Pair {
	n := 0
	for _, pair := range pairs {
		if !strcomp.EqualFold(pair.Key, key) {
			pairs[n] = pair
			n++
		}
	}

	return pairs[:n]
}
