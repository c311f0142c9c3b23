package grid

import "snowfall/internal/voxel"

const chunkPaletteSlots = 16

// chunkPalette maps chunk-local indices to grid palette indices. The first
// 16 entries live in a fixed array; a chunk that needs more switches to a
// slice. Local 0 is always global 0.
type chunkPalette struct {
	fixed    [chunkPaletteSlots]voxel.Index
	n        int
	overflow []voxel.Index
}

func newChunkPalette() chunkPalette {
	return chunkPalette{n: 1}
}

func (p *chunkPalette) len() int {
	if p.overflow != nil {
		return len(p.overflow)
	}
	return p.n
}

func (p *chunkPalette) global(local uint16) voxel.Index {
	if p.overflow != nil {
		return p.overflow[local]
	}
	return p.fixed[local]
}

func (p *chunkPalette) find(global voxel.Index) (uint16, bool) {
	if p.overflow != nil {
		for i, g := range p.overflow {
			if g == global {
				return uint16(i), true
			}
		}
		return 0, false
	}
	for i := 0; i < p.n; i++ {
		if p.fixed[i] == global {
			return uint16(i), true
		}
	}
	return 0, false
}

// local returns the local index for global, adding it when missing.
func (p *chunkPalette) local(global voxel.Index) uint16 {
	if i, ok := p.find(global); ok {
		return i
	}
	if p.overflow == nil && p.n < chunkPaletteSlots {
		p.fixed[p.n] = global
		p.n++
		return uint16(p.n - 1)
	}
	if p.overflow == nil {
		p.overflow = make([]voxel.Index, p.n, p.n*2)
		copy(p.overflow, p.fixed[:p.n])
	}
	p.overflow = append(p.overflow, global)
	return uint16(len(p.overflow) - 1)
}

func (p *chunkPalette) promoted() bool {
	return p.overflow != nil
}

func (p *chunkPalette) entries() []voxel.Index {
	if p.overflow != nil {
		return append([]voxel.Index(nil), p.overflow...)
	}
	return append([]voxel.Index(nil), p.fixed[:p.n]...)
}
