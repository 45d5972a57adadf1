package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one cached value. Source names the input the value was derived
// from, so every version computed from it can be found again.
type Entry[T any] struct {
	Key       string    `json:"key"`
	Source    string    `json:"source"`
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

type Store[T any] interface {
	Get(key string) (T, bool)
	Set(key, source string, data T) error
	Evict(source, keep string) (int, error)
}

// Key hashes a source together with the values that version it.
func Key(source string, version ...any) string {
	parts := []string{source}
	for _, v := range version {
		parts = append(parts, fmt.Sprint(v))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

// FileCache keeps one JSON file per entry under dir.
type FileCache[T any] struct {
	dir string
}

func NewFileCache[T any](dir string) *FileCache[T] {
	return &FileCache[T]{dir: dir}
}

func (fc *FileCache[T]) path(key string) string {
	return filepath.Join(fc.dir, key+".json")
}

func checksum(data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func (fc *FileCache[T]) read(path string) (Entry[T], bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Entry[T]{}, false
	}
	var entry Entry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry[T]{}, false
	}
	return entry, true
}

// Get returns the value stored under key. Entries that fail to decode, carry
// another key or do not match their checksum are misses.
func (fc *FileCache[T]) Get(key string) (T, bool) {
	var zero T
	entry, ok := fc.read(fc.path(key))
	if !ok || entry.Key != key {
		return zero, false
	}
	sum, err := checksum(entry.Data)
	if err != nil || sum != entry.Checksum {
		return zero, false
	}
	return entry.Data, true
}

// Set stores data under key, replacing the file atomically.
func (fc *FileCache[T]) Set(key, source string, data T) error {
	if err := os.MkdirAll(fc.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	sum, err := checksum(data)
	if err != nil {
		return fmt.Errorf("failed to hash cache entry: %w", err)
	}

	raw, err := json.Marshal(Entry[T]{
		Key:       key,
		Source:    source,
		Data:      data,
		CreatedAt: time.Now().UTC(),
		Checksum:  sum,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	target := fc.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp cache file: %w", err)
	}
	return nil
}

// Evict removes every entry derived from source except the one stored under
// keep, and returns how many files it removed.
func (fc *FileCache[T]) Evict(source, keep string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(fc.dir, "*.json"))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range paths {
		entry, ok := fc.read(path)
		if !ok || entry.Source != source || entry.Key == keep {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to evict cache entry: %w", err)
		}
		removed++
	}
	return removed, nil
}
