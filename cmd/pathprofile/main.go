package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"snowfall/internal/config"
	"snowfall/internal/generators"
	"snowfall/internal/pathfinding"
	"snowfall/internal/rng"
	"snowfall/internal/scene"
	"snowfall/internal/voxel"
)

type pathJob struct {
	start voxel.Column
	goal  voxel.Column
}

func main() {
	var (
		totalRequests = flag.Int("requests", 200, "number of road searches to issue")
		concurrency   = flag.Int("concurrency", runtime.NumCPU(), "number of concurrent workers")
		radius        = flag.Int("radius", 128, "half extent of the generated hill terrain")
		ground        = flag.String("ground", "grass", "hill ground type: grass or dirt")
		withRocks     = flag.Bool("rocks", false, "scatter occupied rock outcrops over the hill")
		timeout       = flag.Duration("timeout", 2*time.Second, "per-search timeout")
		seed          = flag.Uint64("seed", 1337, "seed for the terrain and endpoint selection")
		configPath    = flag.String("config", "", "YAML configuration supplying the road cost model")
	)
	flag.Parse()

	if *totalRequests <= 0 {
		fmt.Fprintln(os.Stderr, "requests must be positive")
		os.Exit(1)
	}
	if *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency must be positive")
		os.Exit(1)
	}
	if *radius <= 1 {
		fmt.Fprintln(os.Stderr, "radius must be greater than one")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	model := pathfinding.CostModelFromConfig(cfg.Roads)

	s := scene.NewScene()
	params := scene.Params{"ground_type": *ground, "radius": *radius}
	s.Terrain = voxelSet(generators.Generate(scene.NewContext("hill4", *seed).WithParams(params), s))
	if *withRocks {
		generators.Generate(scene.NewContext("rocks", *seed+1).WithParams(params), s)
	}

	jobs := make(chan pathJob)
	go func() {
		defer close(jobs)
		g := rng.New(*seed)
		for i := 0; i < *totalRequests; i++ {
			start := voxel.Column{X: g.IntRange(-*radius, *radius), Y: g.IntRange(-*radius, *radius)}
			goal := voxel.Column{X: g.IntRange(-*radius, *radius), Y: g.IntRange(-*radius, *radius)}
			for goal == start {
				goal = voxel.Column{X: g.IntRange(-*radius, *radius), Y: g.IntRange(-*radius, *radius)}
			}
			jobs <- pathJob{start: start, goal: goal}
		}
	}()

	var (
		wg                 sync.WaitGroup
		metrics            pathfinding.Metrics
		totalSuccessLength int64
		totalCost          atomic.Uint64
		totalRouteDuration int64
		successes          int64
		failures           int64
		timeouts           int64
		budgetExceeded     int64
	)
	ctx := pathfinding.ContextWithProfiler(context.Background(), metrics.Profiler())

	worker := func() {
		defer wg.Done()
		for job := range jobs {
			startTime := time.Now()
			res := searchRoute(ctx, s.Terrain, job, model, *timeout)
			atomic.AddInt64(&totalRouteDuration, int64(time.Since(startTime)))

			path, ok := res.path, res.ok
			switch {
			case res.overBudget:
				atomic.AddInt64(&budgetExceeded, 1)
			case res.timedOut:
				atomic.AddInt64(&timeouts, 1)
			case !ok:
				atomic.AddInt64(&failures, 1)
			default:
				atomic.AddInt64(&successes, 1)
				atomic.AddInt64(&totalSuccessLength, int64(len(path.Nodes)-1))
				totalCost.Add(uint64(path.Cost * 1000))
			}
		}
	}

	wg.Add(*concurrency)
	for i := 0; i < *concurrency; i++ {
		go worker()
	}

	startWall := time.Now()
	wg.Wait()
	wallDuration := time.Since(startWall)

	requests := int64(*totalRequests)
	snap := metrics.Snapshot()
	succ := atomic.LoadInt64(&successes)
	avgPathLength, avgCost := 0.0, 0.0
	if succ > 0 {
		avgPathLength = float64(atomic.LoadInt64(&totalSuccessLength)) / float64(succ)
		avgCost = float64(totalCost.Load()) / 1000 / float64(succ)
	}
	hitRatio := 0.0
	if snap.CacheHits+snap.CacheMisses > 0 {
		hitRatio = float64(snap.CacheHits) / float64(snap.CacheHits+snap.CacheMisses) * 100
	}

	fmt.Println("== Road Pathfinding Profile ==")
	fmt.Printf("Terrain: hill4 radius %d (%s), %d voxels\n", *radius, *ground, s.Terrain.Len())
	fmt.Printf("Requests: %d\n", *totalRequests)
	fmt.Printf("Concurrency: %d\n", *concurrency)
	fmt.Printf("Successes: %d, Failures: %d, Timeouts: %d, Over budget: %d\n",
		succ, atomic.LoadInt64(&failures), atomic.LoadInt64(&timeouts), atomic.LoadInt64(&budgetExceeded))
	fmt.Printf("Average path length (steps): %.2f\n", avgPathLength)
	fmt.Printf("Average path cost: %.2f\n", avgCost)
	fmt.Printf("Average per-search duration: %s\n", time.Duration(atomic.LoadInt64(&totalRouteDuration)/requests))
	fmt.Printf("Wall clock duration: %s\n", wallDuration)
	fmt.Printf("Average nodes expanded: %.2f\n", float64(snap.NodesExpanded)/float64(requests))
	fmt.Printf("Average heuristic evaluations: %.2f\n", float64(snap.HeuristicEvaluations)/float64(requests))
	if snap.NeighborGenerations > 0 {
		fmt.Printf("Average neighbours per expansion: %.2f\n", float64(snap.NeighborCount)/float64(snap.NeighborGenerations))
	}
	fmt.Printf("Height cache hit ratio: %.2f%% (%d hits, %d misses)\n", hitRatio, snap.CacheHits, snap.CacheMisses)
}

type searchResult struct {
	path       pathfinding.Path
	ok         bool
	timedOut   bool
	overBudget bool
}

// searchRoute runs one bounded search. A search that blows its iteration
// budget is reported rather than crashing the profile; any other panic is
// re-raised.
func searchRoute(ctx context.Context, t pathfinding.Terrain, job pathJob, model pathfinding.CostModel, timeout time.Duration) (res searchResult) {
	defer func() {
		res.overBudget = isBudgetPanic(recover())
	}()
	routeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res.path, res.ok = pathfinding.FindPath(routeCtx, t, job.start, job.goal, model)
	res.timedOut = !res.ok && errors.Is(routeCtx.Err(), context.DeadlineExceeded)
	return res
}

func isBudgetPanic(r any) bool {
	if r == nil {
		return false
	}
	if err, ok := r.(error); ok && errors.Is(err, pathfinding.ErrSearchBudget) {
		return true
	}
	panic(r)
}

func voxelSet(m scene.Model) *voxel.Set {
	if vs, ok := m.(scene.VoxelSet); ok {
		return vs.Set
	}
	return voxel.NewSet()
}
