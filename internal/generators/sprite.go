package generators

import (
	"fmt"
	"image"

	"snowfall/internal/voxel"
)

// SpriteSheet turns an image into a one voxel thick sheet standing in the
// xz plane, with the bottom image row at z=0 and the image centred on x.
// Fully transparent pixels are skipped. When recolor is set every opaque
// pixel uses that block instead of its own colour.
func SpriteSheet(img image.Image, recolor *voxel.Block) *voxel.Set {
	set := voxel.NewSet()
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	cache := make(map[[3]uint8]voxel.Index)
	var recolored voxel.Index
	if recolor != nil {
		recolored = set.RegisterBlock(*recolor)
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a == 0 {
				continue
			}
			idx := recolored
			if recolor == nil {
				key := [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
				var ok bool
				if idx, ok = cache[key]; !ok {
					id := fmt.Sprintf("color_%d_%d_%d", key[0], key[1], key[2])
					idx = set.RegisterBlock(voxel.Color(id, key[0], key[1], key[2]))
					cache[key] = idx
				}
			}
			set.SetIndex(voxel.Coord{X: x - width/2 - 1, Z: height - y - 1}, idx)
		}
	}
	return set
}
