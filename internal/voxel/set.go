package voxel

import "sort"

// Set is a bounded, in-memory sparse voxel container for individual models.
// Voxels are stored by column so height queries only touch one map entry.
// A missing column, a missing z entry and index 0 all mean "empty".
type Set struct {
	palette *Palette
	data    map[Column]map[int]Index
}

func NewSet() *Set {
	return &Set{
		palette: NewPalette(),
		data:    make(map[Column]map[int]Index),
	}
}

func (s *Set) Palette() *Palette {
	return s.palette
}

// RegisterBlock registers the block by id and returns its index.
func (s *Set) RegisterBlock(block Block) Index {
	s.palette.Register(block)
	idx, _ := s.palette.Lookup(block.ID)
	return idx
}

// SetVoxel stores the block registered under id; "empty" clears the voxel.
// It panics with ErrUnknownBlock when id was never registered.
func (s *Set) SetVoxel(p Coord, id string) {
	s.SetIndex(p, s.palette.MustLookup(id))
}

// SetBlock stores a block, reusing an equivalent palette entry if present.
func (s *Set) SetBlock(p Coord, block Block) {
	s.SetIndex(p, s.palette.Ensure(block))
}

// SetIndex stores a palette index issued by this set's palette.
func (s *Set) SetIndex(p Coord, idx Index) {
	if idx == 0 {
		s.ClearVoxel(p)
		return
	}
	// Validate the handle before storing it.
	s.palette.Get(idx)
	col := p.Column()
	column, ok := s.data[col]
	if !ok {
		column = make(map[int]Index)
		s.data[col] = column
	}
	column[p.Z] = idx
}

func (s *Set) ClearVoxel(p Coord) {
	col := p.Column()
	column, ok := s.data[col]
	if !ok {
		return
	}
	delete(column, p.Z)
	if len(column) == 0 {
		delete(s.data, col)
	}
}

// ModifyVoxel rewrites the voxel at p with fn applied to its current block.
// The result is resolved through Ensure so repeated edits reuse entries.
func (s *Set) ModifyVoxel(p Coord, fn func(Block) Block) {
	s.SetBlock(p, fn(s.Get(p)))
}

func (s *Set) IndexAt(p Coord) Index {
	column, ok := s.data[p.Column()]
	if !ok {
		return 0
	}
	return column[p.Z]
}

func (s *Set) Get(p Coord) Block {
	return s.palette.Get(s.IndexAt(p))
}

func (s *Set) IsEmpty(p Coord) bool {
	return s.IndexAt(p) == 0
}

// HeightAt returns the highest non-empty z in the column.
func (s *Set) HeightAt(x, y int) (int, bool) {
	column, ok := s.data[Column{X: x, Y: y}]
	if !ok {
		return 0, false
	}
	found := false
	height := 0
	for z, idx := range column {
		if idx == 0 {
			continue
		}
		if !found || z > height {
			height = z
			found = true
		}
	}
	return height, found
}

// TopBlockAt returns the block at HeightAt.
func (s *Set) TopBlockAt(x, y int) (Block, bool) {
	z, ok := s.HeightAt(x, y)
	if !ok {
		return Block{}, false
	}
	return s.Get(Coord{X: x, Y: y, Z: z}), true
}

// Bounds scans every voxel to compute the inclusive extent. It is meant for
// one-off use such as export.
func (s *Set) Bounds() (Box, bool) {
	var box Box
	found := false
	for col, column := range s.data {
		for z, idx := range column {
			if idx == 0 {
				continue
			}
			p := Coord{X: col.X, Y: col.Y, Z: z}
			if !found {
				box = Box{Min: p, Max: p}
				found = true
				continue
			}
			box = box.extend(p)
		}
	}
	return box, found
}

// Len returns the number of non-empty voxels.
func (s *Set) Len() int {
	n := 0
	for _, column := range s.data {
		for _, idx := range column {
			if idx != 0 {
				n++
			}
		}
	}
	return n
}

// ForEach visits every non-empty voxel ordered by x, y, then z. Returning
// false stops the walk.
func (s *Set) ForEach(fn func(p Coord, block Block) bool) {
	for _, col := range s.sortedColumns() {
		column := s.data[col]
		for _, z := range sortedZ(column) {
			idx := column[z]
			if idx == 0 {
				continue
			}
			if !fn(Coord{X: col.X, Y: col.Y, Z: z}, s.palette.Get(idx)) {
				return
			}
		}
	}
}

// Translate returns a copy of the set shifted by offset.
func (s *Set) Translate(offset Coord) *Set {
	out := &Set{palette: &Palette{blocks: s.palette.Blocks()}, data: make(map[Column]map[int]Index, len(s.data))}
	for col, column := range s.data {
		dst := make(map[int]Index, len(column))
		for z, idx := range column {
			dst[z+offset.Z] = idx
		}
		out.data[Column{X: col.X + offset.X, Y: col.Y + offset.Y}] = dst
	}
	return out
}

func (s *Set) sortedColumns() []Column {
	cols := make([]Column, 0, len(s.data))
	for col := range s.data {
		cols = append(cols, col)
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i].X != cols[j].X {
			return cols[i].X < cols[j].X
		}
		return cols[i].Y < cols[j].Y
	})
	return cols
}

func sortedZ(column map[int]Index) []int {
	zs := make([]int, 0, len(column))
	for z := range column {
		zs = append(zs, z)
	}
	sort.Ints(zs)
	return zs
}
