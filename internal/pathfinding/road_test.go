package pathfinding

import (
	"context"
	"testing"

	"snowfall/internal/config"
	"snowfall/internal/rng"
	"snowfall/internal/voxel"
)

func testRoadPlan(t *testing.T) RoadPlan {
	t.Helper()
	cfg := config.Default()
	plan, err := RoadPlanFromConfig(&cfg)
	if err != nil {
		t.Fatalf("RoadPlanFromConfig: %v", err)
	}
	plan.MinRadius = 8
	plan.MaxRadius = 14
	return plan
}

func TestPostsKeepsSpacingAndLastNode(t *testing.T) {
	nodes := make([]voxel.Coord, 30)
	for i := range nodes {
		nodes[i] = voxel.Coord{X: i}
	}
	posts := Posts(nodes, 12)
	want := []int{0, 12, 24, 29}
	if len(posts) != len(want) {
		t.Fatalf("posts = %v", posts)
	}
	for i, x := range want {
		if posts[i].X != x {
			t.Fatalf("post %d at x=%d, want %d", i, posts[i].X, x)
		}
	}
	if got := Posts(nodes[:25], 12); got[len(got)-1].X != 24 || len(got) != 3 {
		t.Fatalf("last node duplicated: %v", got)
	}
	if Posts(nil, 12) != nil {
		t.Fatalf("Posts(nil) not nil")
	}
}

func TestCarvePaintsClearsAndMarksHalo(t *testing.T) {
	terrain := flatTerrain(12)
	bush := voxel.Color("bush", 0, 90, 0)
	terrain.SetBlock(voxel.Coord{X: 2, Y: 0, Z: 1}, bush)
	plan := testRoadPlan(t)

	plan.Carve(terrain, []voxel.Coord{{X: -6, Y: 0, Z: 0}, {X: 6, Y: 0, Z: 0}}, rng.New(3))

	if !terrain.IsEmpty(voxel.Coord{X: 2, Y: 0, Z: 1}) {
		t.Fatalf("vegetation above the road bed was not cleared")
	}
	for x := -6; x <= 6; x++ {
		top, ok := terrain.TopBlockAt(x, 0)
		if !ok || !isRoadBlock(top) {
			t.Fatalf("column %d top = %+v, want road", x, top)
		}
		if !top.Occupied {
			t.Fatalf("road column %d not occupied", x)
		}
	}
	for _, y := range []int{-2, 2} {
		top, _ := terrain.TopBlockAt(0, y)
		if !top.Occupied || top.BaseID() != "ground" {
			t.Fatalf("halo column y=%d = %+v, want occupied ground", y, top)
		}
	}
	if top, _ := terrain.TopBlockAt(0, 4); top.Occupied {
		t.Fatalf("column outside the halo marked occupied")
	}

	// Re-carving the same road must reuse the existing variants.
	before := terrain.Palette().Len()
	plan.Carve(terrain, []voxel.Coord{{X: -6, Y: 0, Z: 0}, {X: 6, Y: 0, Z: 0}}, rng.New(3))
	if after := terrain.Palette().Len(); after != before {
		t.Fatalf("palette grew from %d to %d on a repeated carve", before, after)
	}
}

func isRoadBlock(b voxel.Block) bool {
	switch b.BaseID() {
	case "road_gravel", "road_dirt", "road_cobble":
		return true
	}
	return false
}

func TestBuildRoadOnBumpyTerrain(t *testing.T) {
	terrain := bumpyTerrain(9, 40)
	plan := testRoadPlan(t)
	if !plan.Build(context.Background(), terrain, voxel.Coord{X: 20, Y: 20}, rng.New(17)) {
		t.Fatalf("no road built on connected terrain")
	}
	roads := 0
	for x := 0; x < 40; x++ {
		for y := 0; y < 40; y++ {
			if top, ok := terrain.TopBlockAt(x, y); ok && isRoadBlock(top) {
				roads++
			}
		}
	}
	if roads < 10 {
		t.Fatalf("only %d road columns carved", roads)
	}
}

func TestBuildRoadGivesUpWithoutTerrain(t *testing.T) {
	terrain := voxel.NewSet()
	plan := testRoadPlan(t)
	if plan.Build(context.Background(), terrain, voxel.Coord{}, rng.New(1)) {
		t.Fatalf("road built on empty terrain")
	}
	if terrain.Len() != 0 {
		t.Fatalf("failed build modified terrain")
	}
}
