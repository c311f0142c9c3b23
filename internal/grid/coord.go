package grid

import "snowfall/internal/voxel"

// Chunk dimensions in voxels.
const (
	ChunkWidth  = 8
	ChunkDepth  = 8
	ChunkHeight = 16

	chunkVolume = ChunkWidth * ChunkDepth * ChunkHeight
)

// ChunkCoord identifies a chunk in chunk space.
type ChunkCoord struct {
	X int
	Y int
	Z int
}

// LocalCoord is a voxel position inside a chunk. Every component is
// non-negative and below the chunk dimension on its axis.
type LocalCoord struct {
	X int
	Y int
	Z int
}

// Split decomposes an absolute voxel position into its chunk and the
// position local to that chunk.
func Split(p voxel.Coord) (ChunkCoord, LocalCoord) {
	return ChunkCoord{
			X: floorDiv(p.X, ChunkWidth),
			Y: floorDiv(p.Y, ChunkDepth),
			Z: floorDiv(p.Z, ChunkHeight),
		}, LocalCoord{
			X: euclidMod(p.X, ChunkWidth),
			Y: euclidMod(p.Y, ChunkDepth),
			Z: euclidMod(p.Z, ChunkHeight),
		}
}

// Origin returns the absolute position of local (0,0,0).
func (c ChunkCoord) Origin() voxel.Coord {
	return voxel.Coord{X: c.X * ChunkWidth, Y: c.Y * ChunkDepth, Z: c.Z * ChunkHeight}
}

// Bounds returns the inclusive voxel extent of the chunk.
func (c ChunkCoord) Bounds() voxel.Box {
	o := c.Origin()
	return voxel.Box{
		Min: o,
		Max: voxel.Coord{X: o.X + ChunkWidth - 1, Y: o.Y + ChunkDepth - 1, Z: o.Z + ChunkHeight - 1},
	}
}

// World converts a local position in chunk c back to absolute space.
func (c ChunkCoord) World(l LocalCoord) voxel.Coord {
	o := c.Origin()
	return voxel.Coord{X: o.X + l.X, Y: o.Y + l.Y, Z: o.Z + l.Z}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func euclidMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
