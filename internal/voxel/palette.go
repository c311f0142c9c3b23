package voxel

import (
	"errors"
	"fmt"
)

// ErrUnknownBlock is the panic value (wrapped) when a block id was never
// registered with the palette.
var ErrUnknownBlock = errors.New("unknown block id")

// Index is a palette handle. It is only meaningful for the palette that
// issued it.
type Index uint16

// Palette is an ordered, grow-only list of blocks. Index 0 is always the
// empty block.
type Palette struct {
	blocks []Block
}

func NewPalette() *Palette {
	return &Palette{blocks: []Block{EmptyBlock()}}
}

// Register inserts the block, replacing any definition with the same id.
func (p *Palette) Register(block Block) {
	for i := range p.blocks {
		if p.blocks[i].ID == block.ID {
			if i == 0 {
				return
			}
			p.blocks[i] = block
			return
		}
	}
	p.blocks = append(p.blocks, block)
}

// Ensure returns the index of an equivalent block, appending it when none
// exists yet.
func (p *Palette) Ensure(block Block) Index {
	for i := range p.blocks {
		if p.blocks[i].Equivalent(block) {
			return Index(i)
		}
	}
	if len(p.blocks) > int(^Index(0)) {
		panic(fmt.Sprintf("palette overflow: %d blocks", len(p.blocks)))
	}
	p.blocks = append(p.blocks, block)
	return Index(len(p.blocks) - 1)
}

// Get returns the block for an index issued by this palette. Any other index
// is a programming error.
func (p *Palette) Get(index Index) Block {
	if int(index) >= len(p.blocks) {
		panic(fmt.Sprintf("palette index %d out of range (len %d)", index, len(p.blocks)))
	}
	return p.blocks[index]
}

// Lookup resolves a block id.
func (p *Palette) Lookup(id string) (Index, bool) {
	for i := range p.blocks {
		if p.blocks[i].ID == id {
			return Index(i), true
		}
	}
	return 0, false
}

// MustLookup resolves a block id that callers are required to have
// registered. An unknown id is a programming error.
func (p *Palette) MustLookup(id string) Index {
	idx, ok := p.Lookup(id)
	if !ok {
		panic(fmt.Errorf("%w %q", ErrUnknownBlock, id))
	}
	return idx
}

func (p *Palette) Len() int {
	return len(p.blocks)
}

// Blocks returns a copy of the palette entries in index order.
func (p *Palette) Blocks() []Block {
	dup := make([]Block, len(p.blocks))
	copy(dup, p.blocks)
	return dup
}
