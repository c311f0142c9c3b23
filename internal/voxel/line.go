package voxel

// Line rasterises the segment from p to q with 3D Bresenham stepping along
// the dominant axis. Both endpoints are included.
func Line(p, q Coord) []Coord {
	dx, dy, dz := abs(q.X-p.X), abs(q.Y-p.Y), abs(q.Z-p.Z)
	sx, sy, sz := sign(q.X-p.X), sign(q.Y-p.Y), sign(q.Z-p.Z)

	n := max(dx, dy, dz)
	out := make([]Coord, 0, n+1)
	cur := p
	out = append(out, cur)

	switch {
	case dx >= dy && dx >= dz:
		e1, e2 := 2*dy-dx, 2*dz-dx
		for i := 0; i < dx; i++ {
			if e1 >= 0 {
				cur.Y += sy
				e1 -= 2 * dx
			}
			if e2 >= 0 {
				cur.Z += sz
				e2 -= 2 * dx
			}
			e1 += 2 * dy
			e2 += 2 * dz
			cur.X += sx
			out = append(out, cur)
		}
	case dy >= dx && dy >= dz:
		e1, e2 := 2*dx-dy, 2*dz-dy
		for i := 0; i < dy; i++ {
			if e1 >= 0 {
				cur.X += sx
				e1 -= 2 * dy
			}
			if e2 >= 0 {
				cur.Z += sz
				e2 -= 2 * dy
			}
			e1 += 2 * dx
			e2 += 2 * dz
			cur.Y += sy
			out = append(out, cur)
		}
	default:
		e1, e2 := 2*dy-dz, 2*dx-dz
		for i := 0; i < dz; i++ {
			if e1 >= 0 {
				cur.Y += sy
				e1 -= 2 * dz
			}
			if e2 >= 0 {
				cur.X += sx
				e2 -= 2 * dz
			}
			e1 += 2 * dy
			e2 += 2 * dx
			cur.Z += sz
			out = append(out, cur)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
