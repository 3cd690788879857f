package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/halcyonv/prompt-video-generator/pkg/file"
	"github.com/halcyonv/prompt-video-generator/pkg/log"
)

// Word is one cached word timestamp.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Metadata is the sidecar record stored next to a cached audio artifact.
type Metadata struct {
	Duration       float64 `json:"duration"`
	WordTimestamps []Word  `json:"word_timestamps,omitempty"`
}

// Entry is what a cache lookup hands back. AudioPath is a fresh copy
// owned by the caller, never a path into cache storage.
type Entry struct {
	AudioPath string
	Metadata
}

// SynthesizeFunc produces the audio artifact at the given destination
// path and returns its metadata. Called on cache miss.
type SynthesizeFunc func(destPath string) (*Metadata, error)

// Store is a content-addressed synthesis cache under a single root
// directory, shared across runs.
//
// Ownership discipline: Put copies the artifact into cache-owned storage;
// Get copies it back out. Callers never hold a reference into the cache,
// so an overwrite on key collision cannot corrupt an in-flight consumer.
//
// The store gives no cross-process locking. Two processes missing on the
// same key both pay full synthesis cost; last Put wins and both artifacts
// are valid audio for that key. Within one process, GetOrSynthesize
// collapses concurrent misses to one synthesis per key.
type Store struct {
	root   string
	flight singleflight.Group
}

// NewStore creates the cache root if needed.
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("cache root is empty")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache root %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// KeyFor derives the cache key for one synthesis input tuple. Any change
// to text, voice, speed, or provider yields a different key; text is
// hashed exactly as given, with no normalization.
func KeyFor(text, voice string, speed float64, provider string) string {
	h := sha256.New()
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(voice))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(speed, 'g', -1, 64)))
	h.Write([]byte{0})
	h.Write([]byte(provider))
	return hex.EncodeToString(h.Sum(nil))
}

// Get copies the cached artifact for key to destPath and returns its
// metadata. The second return is false on a miss.
func (s *Store) Get(key, destPath string) (*Entry, bool, error) {
	audioPath := s.audioPath(key)
	metaPath := s.metaPath(key)

	if !file.Exists(audioPath) || !file.Exists(metaPath) {
		return nil, false, nil
	}

	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache metadata for %s: %w", key, err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, false, fmt.Errorf("corrupt cache metadata for %s: %w", key, err)
	}

	if err := file.Copy(audioPath, destPath); err != nil {
		return nil, false, fmt.Errorf("failed to copy cached artifact for %s: %w", key, err)
	}

	return &Entry{AudioPath: destPath, Metadata: meta}, true, nil
}

// Put copies artifactPath into cache-owned storage and persists the
// sidecar metadata. Overwrites any previous entry for key.
func (s *Store) Put(key, artifactPath string, meta Metadata) error {
	if err := file.Copy(artifactPath, s.audioPath(key)); err != nil {
		return fmt.Errorf("failed to store artifact for %s: %w", key, err)
	}

	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata for %s: %w", key, err)
	}
	if err := os.WriteFile(s.metaPath(key), raw, 0644); err != nil {
		return fmt.Errorf("failed to write metadata for %s: %w", key, err)
	}

	return nil
}

// GetOrSynthesize returns the cached entry for key, synthesizing on miss.
// Concurrent callers for the same key within this process share one
// synthesis. The result always lands at destPath as a caller-owned copy.
func (s *Store) GetOrSynthesize(key, destPath string, synthesize SynthesizeFunc) (*Entry, error) {
	v, err, _ := s.flight.Do(key, func() (any, error) {
		if entry, ok, err := s.Get(key, destPath); err != nil {
			return nil, err
		} else if ok {
			log.Debug("Cache hit for %s", key[:12])
			return entry, nil
		}

		meta, err := synthesize(destPath)
		if err != nil {
			return nil, err
		}

		if err := s.Put(key, destPath, *meta); err != nil {
			return nil, err
		}

		return &Entry{AudioPath: destPath, Metadata: *meta}, nil
	})
	if err != nil {
		return nil, err
	}

	entry := v.(*Entry)
	if entry.AudioPath != destPath {
		// A concurrent caller shared this flight with a different
		// destination. Hand out an independent copy.
		if err := file.Copy(entry.AudioPath, destPath); err != nil {
			return nil, err
		}
		shared := *entry
		shared.AudioPath = destPath
		return &shared, nil
	}
	return entry, nil
}

// Prune removes cache entries whose files are older than maxAge.
// Returns the number of files removed.
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	stale, err := file.FindOlderThan(s.root, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to scan cache root: %w", err)
	}

	removed := 0
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			log.Warn("Failed to prune cache file %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *Store) audioPath(key string) string {
	return filepath.Join(s.root, key+".mp3")
}

func (s *Store) metaPath(key string) string {
	return file.ReplaceExt(s.audioPath(key), "json")
}
