package world

import (
	"errors"
	"slices"
	"sync"
)

// ErrChunkExists is returned when adding a chunk at an occupied coordinate.
var ErrChunkExists = errors.New("chunk already loaded")

// ChunkStore manages the storage and retrieval of chunks.
type ChunkStore struct {
	// Map of chunks indexed by their coordinates
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove
}

// NewChunkStore creates a new chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// GetChunk returns the chunk at coord, or nil when none is loaded there.
func (cs *ChunkStore) GetChunk(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	chunk := cs.chunks[coord]
	cs.mu.RUnlock()
	return chunk
}

// HasChunk checks if a chunk exists at coord.
func (cs *ChunkStore) HasChunk(coord ChunkCoord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// AddChunk stores chunk under its own coordinate.
func (cs *ChunkStore) AddChunk(chunk *Chunk) error {
	coord := chunk.Coord()
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if _, ok := cs.chunks[coord]; ok {
		return ErrChunkExists
	}
	cs.chunks[coord] = chunk
	cs.modCount++
	return nil
}

// RemoveChunk drops the chunk at coord and returns it, or nil if none was loaded.
func (cs *ChunkStore) RemoveChunk(coord ChunkCoord) *Chunk {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	chunk, ok := cs.chunks[coord]
	if !ok {
		return nil
	}
	delete(cs.chunks, coord)
	cs.modCount++
	return chunk
}

// Chunks returns every loaded chunk ordered by coordinate.
func (cs *ChunkStore) Chunks() []*Chunk {
	cs.mu.RLock()
	out := make([]*Chunk, 0, len(cs.chunks))
	for _, chunk := range cs.chunks {
		out = append(out, chunk)
	}
	cs.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Chunk) int {
		ca, cb := a.Coord(), b.Coord()
		switch {
		case ca.Less(cb):
			return -1
		case cb.Less(ca):
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of loaded chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// GetModCount returns the current modification count of the chunk map.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}
