package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "synth-cache"))
	require.NoError(t, err)
	return s
}

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifact.mp3")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestKeyFor_Deterministic(t *testing.T) {
	k1 := KeyFor("hello world", "alloy", 1.0, "openai")
	k2 := KeyFor("hello world", "alloy", 1.0, "openai")
	assert.Equal(t, k1, k2)
}

func TestKeyFor_SensitiveToEveryInput(t *testing.T) {
	base := KeyFor("hello", "alloy", 1.0, "openai")

	assert.NotEqual(t, base, KeyFor("hello ", "alloy", 1.0, "openai"), "text whitespace must matter")
	assert.NotEqual(t, base, KeyFor("Hello", "alloy", 1.0, "openai"), "text case must matter")
	assert.NotEqual(t, base, KeyFor("hello", "nova", 1.0, "openai"))
	assert.NotEqual(t, base, KeyFor("hello", "alloy", 1.2, "openai"))
	assert.NotEqual(t, base, KeyFor("hello", "alloy", 1.0, "edge"))
}

func TestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	artifact := writeArtifact(t, "fake audio bytes")

	meta := Metadata{
		Duration: 4.2,
		WordTimestamps: []Word{
			{Word: "hello", Start: 0, End: 2},
			{Word: "world", Start: 2, End: 4.2},
		},
	}

	key := KeyFor("hello world", "alloy", 1.0, "openai")
	require.NoError(t, s.Put(key, artifact, meta))

	dest := filepath.Join(t.TempDir(), "out.mp3")
	entry, ok, err := s.Get(key, dest)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, dest, entry.AudioPath)
	assert.InDelta(t, 4.2, entry.Duration, 1e-9)
	assert.Equal(t, meta.WordTimestamps, entry.WordTimestamps)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "fake audio bytes", string(got))
}

func TestPut_CopiesArtifact(t *testing.T) {
	s := newTestStore(t)
	artifact := writeArtifact(t, "original")

	key := KeyFor("t", "v", 1.0, "p")
	require.NoError(t, s.Put(key, artifact, Metadata{Duration: 1}))

	// Mutating the source after Put must not change what Get returns.
	require.NoError(t, os.WriteFile(artifact, []byte("mutated"), 0644))

	dest := filepath.Join(t.TempDir(), "out.mp3")
	_, ok, err := s.Get(key, dest)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}

func TestGet_Miss(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Get(KeyFor("missing", "v", 1.0, "p"), filepath.Join(t.TempDir(), "o.mp3"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetOrSynthesize_MissThenHit(t *testing.T) {
	s := newTestStore(t)
	key := KeyFor("narration", "alloy", 1.0, "openai")

	calls := 0
	synth := func(destPath string) (*Metadata, error) {
		calls++
		if err := os.WriteFile(destPath, []byte("synthesized"), 0644); err != nil {
			return nil, err
		}
		return &Metadata{Duration: 3.0}, nil
	}

	dest1 := filepath.Join(t.TempDir(), "a.mp3")
	entry, err := s.GetOrSynthesize(key, dest1, synth)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.InDelta(t, 3.0, entry.Duration, 1e-9)

	// Second call is served from cache.
	dest2 := filepath.Join(t.TempDir(), "b.mp3")
	entry, err = s.GetOrSynthesize(key, dest2, synth)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, dest2, entry.AudioPath)

	got, err := os.ReadFile(dest2)
	require.NoError(t, err)
	assert.Equal(t, "synthesized", string(got))
}

func TestGetOrSynthesize_SynthesisError(t *testing.T) {
	s := newTestStore(t)
	key := KeyFor("boom", "v", 1.0, "p")

	_, err := s.GetOrSynthesize(key, filepath.Join(t.TempDir(), "o.mp3"), func(string) (*Metadata, error) {
		return nil, fmt.Errorf("provider quota exceeded")
	})
	require.Error(t, err)

	// A failed synthesis must not leave a cache entry behind.
	_, ok, err := s.Get(key, filepath.Join(t.TempDir(), "o2.mp3"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetOrSynthesize_ConcurrentSingleFlight(t *testing.T) {
	s := newTestStore(t)
	key := KeyFor("concurrent", "v", 1.0, "p")

	var calls int32
	synth := func(destPath string) (*Metadata, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		if err := os.WriteFile(destPath, []byte("x"), 0644); err != nil {
			return nil, err
		}
		return &Metadata{Duration: 1.0}, nil
	}

	dir := t.TempDir()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			dest := filepath.Join(dir, fmt.Sprintf("out-%d.mp3", i))
			entry, err := s.GetOrSynthesize(key, dest, synth)
			assert.NoError(t, err)
			if entry != nil {
				assert.Equal(t, dest, entry.AudioPath)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	artifact := writeArtifact(t, "bytes")

	oldKey := KeyFor("old", "v", 1.0, "p")
	require.NoError(t, s.Put(oldKey, artifact, Metadata{Duration: 1}))

	// Age the old entry's files.
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(s.audioPath(oldKey), past, past))
	require.NoError(t, os.Chtimes(s.metaPath(oldKey), past, past))

	freshKey := KeyFor("fresh", "v", 1.0, "p")
	require.NoError(t, s.Put(freshKey, artifact, Metadata{Duration: 1}))

	removed, err := s.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok, err := s.Get(oldKey, filepath.Join(t.TempDir(), "o.mp3"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Get(freshKey, filepath.Join(t.TempDir(), "f.mp3"))
	require.NoError(t, err)
	assert.True(t, ok)
}
