package grid

import (
	"sort"
	"sync"
)

// Pager persists encoded chunks outside the grid.
type Pager interface {
	Load(coord ChunkCoord) ([]byte, bool, error)
	Save(coord ChunkCoord, data []byte) error
	Delete(coord ChunkCoord) error
	ForEach(fn func(coord ChunkCoord, data []byte) bool) error
	Close() error
}

// MemoryPager keeps encoded chunks in a map. It is useful for tests and for
// evicting chunks without touching disk.
type MemoryPager struct {
	mu     sync.RWMutex
	chunks map[ChunkCoord][]byte
}

func NewMemoryPager() *MemoryPager {
	return &MemoryPager{chunks: make(map[ChunkCoord][]byte)}
}

func (m *MemoryPager) Load(coord ChunkCoord) ([]byte, bool, error) {
	m.mu.RLock()
	data, ok := m.chunks[coord]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *MemoryPager) Save(coord ChunkCoord, data []byte) error {
	dup := append([]byte(nil), data...)
	m.mu.Lock()
	m.chunks[coord] = dup
	m.mu.Unlock()
	return nil
}

func (m *MemoryPager) Delete(coord ChunkCoord) error {
	m.mu.Lock()
	delete(m.chunks, coord)
	m.mu.Unlock()
	return nil
}

func (m *MemoryPager) ForEach(fn func(coord ChunkCoord, data []byte) bool) error {
	m.mu.RLock()
	coords := make([]ChunkCoord, 0, len(m.chunks))
	for c := range m.chunks {
		coords = append(coords, c)
	}
	m.mu.RUnlock()
	sortCoords(coords)
	for _, c := range coords {
		data, ok, _ := m.Load(c)
		if !ok {
			continue
		}
		if !fn(c, data) {
			break
		}
	}
	return nil
}

func (m *MemoryPager) Close() error {
	return nil
}

func sortCoords(coords []ChunkCoord) {
	sort.Slice(coords, func(i, j int) bool {
		a, b := coords[i], coords[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
}
