package voxel

import (
	"fmt"
	"strconv"
	"strings"
)

// ShaderKind enumerates how a block is drawn.
type ShaderKind uint8

const (
	ShaderEmpty ShaderKind = iota
	ShaderRGB
)

// Shader describes the appearance of a block.
type Shader struct {
	Kind ShaderKind
	R    uint8
	G    uint8
	B    uint8
}

// RGB returns a solid colour shader.
func RGB(r, g, b uint8) Shader {
	return Shader{Kind: ShaderRGB, R: r, G: g, B: b}
}

// SRGB returns the colour channels scaled to [0,1].
func (s Shader) SRGB() (float32, float32, float32) {
	return float32(s.R) / 255, float32(s.G) / 255, float32(s.B) / 255
}

func (s Shader) String() string {
	if s.Kind == ShaderEmpty {
		return "empty"
	}
	return fmt.Sprintf("#%02x%02x%02x", s.R, s.G, s.B)
}

// DefaultWalkCost is the movement cost of ordinary terrain.
const DefaultWalkCost float32 = 1

// Block is the definition of a voxel type. A voxel is an instance of a block
// inside a container.
type Block struct {
	ID       string
	Shader   Shader
	Occupied bool
	WalkCost float32
}

// EmptyBlock is the canonical block stored at palette index 0.
func EmptyBlock() Block {
	return Block{ID: "empty", WalkCost: DefaultWalkCost}
}

// Color returns an unoccupied solid colour block.
func Color(id string, r, g, b uint8) Block {
	return Block{ID: id, Shader: RGB(r, g, b), WalkCost: DefaultWalkCost}
}

func (b Block) IsEmpty() bool {
	return b.Shader.Kind == ShaderEmpty
}

// Equivalent compares everything except the id.
func (b Block) Equivalent(o Block) bool {
	return b.Shader == o.Shader && b.Occupied == o.Occupied && b.WalkCost == o.WalkCost
}

// With applies fn to a copy of the block while keeping its id.
func (b Block) With(fn func(*Block)) Block {
	id := b.ID
	fn(&b)
	b.ID = id
	return b
}

// Variant applies fn to a copy of the block and derives an id from the base
// id, occupancy, shader and walk cost so distinct variants never share an id.
func (b Block) Variant(fn func(*Block)) Block {
	base := b.BaseID()
	fn(&b)
	b.ID = variantID(base, b)
	return b
}

// BaseID strips any variant suffix from the id.
func (b Block) BaseID() string {
	if i := strings.IndexByte(b.ID, '~'); i >= 0 {
		return b.ID[:i]
	}
	return b.ID
}

func variantID(base string, b Block) string {
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteByte('~')
	if b.Occupied {
		sb.WriteString("occupied")
	} else {
		sb.WriteString("open")
	}
	sb.WriteByte('~')
	sb.WriteString(b.Shader.String())
	if b.WalkCost != DefaultWalkCost {
		sb.WriteString("~w")
		sb.WriteString(strconv.FormatFloat(float64(b.WalkCost), 'g', -1, 32))
	}
	return sb.String()
}
