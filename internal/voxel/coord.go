package voxel

import "math"

// Coord describes a voxel position in block space.
type Coord struct {
	X int
	Y int
	Z int
}

// Column identifies a vertical column of voxels.
type Column struct {
	X int
	Y int
}

func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

func (c Coord) Sub(o Coord) Coord {
	return Coord{X: c.X - o.X, Y: c.Y - o.Y, Z: c.Z - o.Z}
}

func (c Coord) Column() Column {
	return Column{X: c.X, Y: c.Y}
}

// Distance returns the Euclidean distance between two coordinates.
func (c Coord) Distance(o Coord) float64 {
	dx := float64(c.X - o.X)
	dy := float64(c.Y - o.Y)
	dz := float64(c.Z - o.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Distance2D ignores the vertical axis.
func (c Coord) Distance2D(o Coord) float64 {
	dx := float64(c.X - o.X)
	dy := float64(c.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Box is an axis-aligned bounding box with inclusive min/max corners.
type Box struct {
	Min Coord
	Max Coord
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Coord) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Size returns the number of voxels spanned along each axis.
func (b Box) Size() Coord {
	return Coord{
		X: b.Max.X - b.Min.X + 1,
		Y: b.Max.Y - b.Min.Y + 1,
		Z: b.Max.Z - b.Min.Z + 1,
	}
}

func (b Box) extend(p Coord) Box {
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Min.Z = min(b.Min.Z, p.Z)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
	b.Max.Z = max(b.Max.Z, p.Z)
	return b
}
