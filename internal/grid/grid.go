package grid

import (
	"errors"
	"fmt"

	"snowfall/internal/voxel"
)

// ErrCorruptChunk reports persisted chunk bytes that do not decode.
var ErrCorruptChunk = errors.New("corrupt chunk")

// Generator synthesises the block id for an absolute voxel position. An
// empty string means empty; any other id must be registered with the grid.
type Generator func(p voxel.Coord) string

// Grid is an unbounded voxel space made of lazily materialised chunks.
// Missing chunks are loaded from the pager when one is configured, then
// generated, and otherwise start empty.
type Grid struct {
	palette   *voxel.Palette
	chunks    map[ChunkCoord]*Chunk
	dirty     map[ChunkCoord]bool
	pager     Pager
	generator Generator
}

// Option configures a Grid.
type Option func(*Grid)

func WithPager(p Pager) Option {
	return func(g *Grid) { g.pager = p }
}

func WithGenerator(gen Generator) Option {
	return func(g *Grid) { g.generator = gen }
}

func WithPalette(p *voxel.Palette) Option {
	return func(g *Grid) { g.palette = p }
}

func New(opts ...Option) *Grid {
	g := &Grid{
		palette: voxel.NewPalette(),
		chunks:  make(map[ChunkCoord]*Chunk),
		dirty:   make(map[ChunkCoord]bool),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Grid) Palette() *voxel.Palette {
	return g.palette
}

// RegisterBlock registers the block by id and returns its grid index.
func (g *Grid) RegisterBlock(block voxel.Block) voxel.Index {
	g.palette.Register(block)
	idx, _ := g.palette.Lookup(block.ID)
	return idx
}

func (g *Grid) GetIndex(p voxel.Coord) voxel.Index {
	cc, l := Split(p)
	return g.mustChunk(cc).get(l)
}

func (g *Grid) Get(p voxel.Coord) voxel.Block {
	return g.palette.Get(g.GetIndex(p))
}

func (g *Grid) IsEmpty(p voxel.Coord) bool {
	return g.GetIndex(p) == 0
}

// Set stores the block registered under id. It panics with
// voxel.ErrUnknownBlock when id was never registered.
func (g *Grid) Set(p voxel.Coord, id string) {
	g.SetIndex(p, g.palette.MustLookup(id))
}

// SetBlock stores a block, reusing an equivalent palette entry if present.
func (g *Grid) SetBlock(p voxel.Coord, block voxel.Block) {
	g.SetIndex(p, g.palette.Ensure(block))
}

func (g *Grid) SetIndex(p voxel.Coord, idx voxel.Index) {
	g.palette.Get(idx)
	cc, l := Split(p)
	g.mustChunk(cc).set(l, idx)
	g.dirty[cc] = true
}

func (g *Grid) Clear(p voxel.Coord) {
	g.SetIndex(p, 0)
}

// ChunkKind reports the representation of a resident chunk.
func (g *Grid) ChunkKind(cc ChunkCoord) (ChunkKind, bool) {
	c, ok := g.chunks[cc]
	if !ok {
		return ChunkEmpty, false
	}
	return c.kind, true
}

// Resident returns the number of chunks held in memory.
func (g *Grid) Resident() int {
	return len(g.chunks)
}

// Load materialises the chunk without reading a voxel. A pager read failure
// or undecodable stored bytes are returned and leave the chunk unloaded, so
// the persisted copy is never replaced by a regenerated one.
func (g *Grid) Load(cc ChunkCoord) (ChunkKind, error) {
	c, err := g.ensureChunk(cc)
	if err != nil {
		return ChunkEmpty, err
	}
	return c.kind, nil
}

// mustChunk backs the voxel accessors, which have no error return.
func (g *Grid) mustChunk(cc ChunkCoord) *Chunk {
	c, err := g.ensureChunk(cc)
	if err != nil {
		panic(err)
	}
	return c
}

func (g *Grid) ensureChunk(cc ChunkCoord) (*Chunk, error) {
	if c, ok := g.chunks[cc]; ok {
		return c, nil
	}
	c, err := g.materialize(cc)
	if err != nil {
		return nil, err
	}
	g.chunks[cc] = c
	return c, nil
}

func (g *Grid) materialize(cc ChunkCoord) (*Chunk, error) {
	if g.pager != nil {
		data, ok, err := g.pager.Load(cc)
		if err != nil {
			return nil, fmt.Errorf("load chunk %v: %w", cc, err)
		}
		if ok {
			c, err := decodeChunk(data, g.palette)
			if err != nil {
				return nil, fmt.Errorf("chunk %v: %w: %w", cc, ErrCorruptChunk, err)
			}
			return c, nil
		}
	}
	if g.generator == nil {
		return newEmptyChunk(), nil
	}
	return g.generate(cc), nil
}

// generate asks the generator once per local voxel. A chunk that comes back
// all empty collapses to the Empty representation. An id the palette does
// not know panics with voxel.ErrUnknownBlock.
func (g *Grid) generate(cc ChunkCoord) *Chunk {
	c := newEmptyChunk()
	cache := make(map[string]voxel.Index)
	for y := 0; y < ChunkDepth; y++ {
		for x := 0; x < ChunkWidth; x++ {
			for z := 0; z < ChunkHeight; z++ {
				l := LocalCoord{X: x, Y: y, Z: z}
				id := g.generator(cc.World(l))
				if id == "" {
					continue
				}
				idx, ok := cache[id]
				if !ok {
					idx = g.palette.MustLookup(id)
					cache[id] = idx
				}
				c.set(l, idx)
			}
		}
	}
	c.compact()
	if c.kind != ChunkEmpty {
		g.dirty[cc] = true
	}
	return c
}

// Compact re-evaluates the representation of every resident chunk.
func (g *Grid) Compact() {
	for _, c := range g.chunks {
		c.compact()
	}
}

// Flush writes every dirty resident chunk to the pager and returns the
// number written.
func (g *Grid) Flush() (int, error) {
	if g.pager == nil {
		return 0, nil
	}
	coords := make([]ChunkCoord, 0, len(g.dirty))
	for cc := range g.dirty {
		coords = append(coords, cc)
	}
	sortCoords(coords)

	written := 0
	for _, cc := range coords {
		c, ok := g.chunks[cc]
		if !ok {
			delete(g.dirty, cc)
			continue
		}
		if err := g.save(cc, c); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// Unload saves the chunk if needed and drops it from memory.
func (g *Grid) Unload(cc ChunkCoord) error {
	c, ok := g.chunks[cc]
	if !ok {
		return nil
	}
	if g.dirty[cc] {
		if g.pager == nil {
			return fmt.Errorf("unload chunk %v: dirty chunk without pager", cc)
		}
		if err := g.save(cc, c); err != nil {
			return err
		}
	}
	delete(g.chunks, cc)
	return nil
}

func (g *Grid) save(cc ChunkCoord, c *Chunk) error {
	c.compact()
	data, err := encodeChunk(c, g.palette)
	if err != nil {
		return fmt.Errorf("chunk %v: %w", cc, err)
	}
	if err := g.pager.Save(cc, data); err != nil {
		return fmt.Errorf("chunk %v: %w", cc, err)
	}
	delete(g.dirty, cc)
	return nil
}
