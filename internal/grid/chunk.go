package grid

import "snowfall/internal/voxel"

// ChunkKind is the storage representation of a chunk.
type ChunkKind uint8

const (
	// ChunkEmpty holds no data and reads as all-empty.
	ChunkEmpty ChunkKind = iota
	// ChunkFull is a dense array of local indices.
	ChunkFull
	// ChunkSparse is a nested column map for chunks with few voxels.
	ChunkSparse
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkEmpty:
		return "empty"
	case ChunkFull:
		return "full"
	case ChunkSparse:
		return "sparse"
	default:
		return "unknown"
	}
}

// sparseLimit is the voxel count above which a sparse chunk is stored dense.
const sparseLimit = chunkVolume / 8

type localColumn struct {
	X uint8
	Y uint8
}

// Chunk is a fixed-size cuboid of the grid with its own local palette.
type Chunk struct {
	kind    ChunkKind
	palette chunkPalette
	full    []uint16
	sparse  map[localColumn]map[uint8]uint16
	count   int
}

func newEmptyChunk() *Chunk {
	return &Chunk{kind: ChunkEmpty, palette: newChunkPalette()}
}

func (c *Chunk) Kind() ChunkKind {
	return c.kind
}

// Len returns the number of non-empty voxels.
func (c *Chunk) Len() int {
	return c.count
}

// denseIndex keeps z contiguous so column scans walk adjacent memory.
func denseIndex(l LocalCoord) int {
	return l.Z + l.X*ChunkHeight + l.Y*ChunkWidth*ChunkHeight
}

func (c *Chunk) get(l LocalCoord) voxel.Index {
	switch c.kind {
	case ChunkFull:
		return c.palette.global(c.full[denseIndex(l)])
	case ChunkSparse:
		column, ok := c.sparse[localColumn{X: uint8(l.X), Y: uint8(l.Y)}]
		if !ok {
			return 0
		}
		return c.palette.global(column[uint8(l.Z)])
	default:
		return 0
	}
}

func (c *Chunk) set(l LocalCoord, global voxel.Index) {
	switch c.kind {
	case ChunkEmpty:
		if global == 0 {
			return
		}
		c.kind = ChunkFull
		c.full = make([]uint16, chunkVolume)
		c.setFull(l, global)
	case ChunkFull:
		c.setFull(l, global)
	case ChunkSparse:
		c.setSparse(l, global)
		if c.count > sparseLimit {
			c.toFull()
		}
	}
}

func (c *Chunk) setFull(l LocalCoord, global voxel.Index) {
	i := denseIndex(l)
	prev := c.full[i]
	next := c.palette.local(global)
	switch {
	case prev == 0 && next != 0:
		c.count++
	case prev != 0 && next == 0:
		c.count--
	}
	c.full[i] = next
}

func (c *Chunk) setSparse(l LocalCoord, global voxel.Index) {
	key := localColumn{X: uint8(l.X), Y: uint8(l.Y)}
	z := uint8(l.Z)
	column, ok := c.sparse[key]
	if global == 0 {
		if !ok {
			return
		}
		if _, had := column[z]; had {
			delete(column, z)
			c.count--
		}
		if len(column) == 0 {
			delete(c.sparse, key)
		}
		return
	}
	if !ok {
		column = make(map[uint8]uint16)
		c.sparse[key] = column
	}
	if _, had := column[z]; !had {
		c.count++
	}
	column[z] = c.palette.local(global)
}

func (c *Chunk) toFull() {
	full := make([]uint16, chunkVolume)
	for key, column := range c.sparse {
		for z, local := range column {
			full[denseIndex(LocalCoord{X: int(key.X), Y: int(key.Y), Z: int(z)})] = local
		}
	}
	c.kind = ChunkFull
	c.full = full
	c.sparse = nil
}

func (c *Chunk) toSparse() {
	sparse := make(map[localColumn]map[uint8]uint16)
	c.forEachLocal(func(l LocalCoord, local uint16) {
		key := localColumn{X: uint8(l.X), Y: uint8(l.Y)}
		column, ok := sparse[key]
		if !ok {
			column = make(map[uint8]uint16)
			sparse[key] = column
		}
		column[uint8(l.Z)] = local
	})
	c.kind = ChunkSparse
	c.sparse = sparse
	c.full = nil
}

// compact picks the cheapest representation for the current contents.
func (c *Chunk) compact() {
	switch {
	case c.count == 0:
		c.kind = ChunkEmpty
		c.full = nil
		c.sparse = nil
		c.palette = newChunkPalette()
	case c.kind == ChunkFull && c.count <= sparseLimit:
		c.toSparse()
	}
}

// forEachLocal visits non-empty voxels with their local palette index.
func (c *Chunk) forEachLocal(fn func(l LocalCoord, local uint16)) {
	switch c.kind {
	case ChunkFull:
		for y := 0; y < ChunkDepth; y++ {
			for x := 0; x < ChunkWidth; x++ {
				for z := 0; z < ChunkHeight; z++ {
					l := LocalCoord{X: x, Y: y, Z: z}
					if v := c.full[denseIndex(l)]; v != 0 {
						fn(l, v)
					}
				}
			}
		}
	case ChunkSparse:
		for key, column := range c.sparse {
			for z, v := range column {
				if v != 0 {
					fn(LocalCoord{X: int(key.X), Y: int(key.Y), Z: int(z)}, v)
				}
			}
		}
	}
}
