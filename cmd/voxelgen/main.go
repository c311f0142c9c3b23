package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"snowfall/internal/config"
	"snowfall/internal/generators"
	"snowfall/internal/scene"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file; written with defaults when missing")
		genList    = flag.String("generator", "pine_tree", "comma separated generator ids")
		seedList   = flag.String("seeds", "1", "seeds to generate, e.g. 1,2,7 or 1-16")
		outDir     = flag.String("out", "", "output directory (overrides output_dir)")
		worldMode  = flag.Bool("world", false, "fill a region of the chunked world grid instead of running generators")
		chunks     = flag.Int("chunks", 2, "world mode: chunk radius around the origin")
		spritePath = flag.String("sprite", "", "convert a PNG sprite into a voxel sheet and exit")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if err := generators.Configure(cfg); err != nil {
		log.Fatalf("%v", err)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	switch {
	case *spritePath != "":
		if err := convertSprite(*spritePath, cfg.OutputDir); err != nil {
			log.Fatalf("sprite: %v", err)
		}
	case *worldMode:
		if err := fillWorld(ctx, cfg, *chunks); err != nil {
			log.Fatalf("world: %v", err)
		}
	default:
		seeds, err := parseSeeds(*seedList)
		if err != nil {
			log.Fatalf("seeds: %v", err)
		}
		ids, err := parseGenerators(*genList)
		if err != nil {
			log.Fatalf("generator: %v", err)
		}
		if err := runJobs(ctx, cfg, ids, seeds); err != nil {
			log.Fatalf("generate: %v", err)
		}
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		if err := config.WriteDefault(path); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		log.Printf("no configuration found, default configuration written to %s", path)
		cfg, err = config.Load(path)
	}
	return cfg, err
}

// parseSeeds accepts a comma separated list of seeds and inclusive ranges.
func parseSeeds(list string) ([]uint64, error) {
	var seeds []uint64
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := strconv.ParseUint(lo, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse seed %q: %w", part, err)
		}
		last := first
		if isRange {
			if last, err = strconv.ParseUint(hi, 10, 64); err != nil {
				return nil, fmt.Errorf("parse seed %q: %w", part, err)
			}
			if last < first {
				return nil, fmt.Errorf("seed range %q is reversed", part)
			}
		}
		for s := first; s <= last; s++ {
			seeds = append(seeds, s)
		}
	}
	if len(seeds) == 0 {
		return nil, errors.New("no seeds given")
	}
	return seeds, nil
}

func parseGenerators(list string) ([]string, error) {
	var ids []string
	for _, id := range strings.Split(list, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := generators.Registry().Lookup(id); !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", scene.ErrUnknownGenerator, id, strings.Join(generators.Registry().IDs(), ", "))
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("no generator given")
	}
	return ids, nil
}

// runJobs generates every (generator, seed) pair. Each job owns its scene,
// so jobs share nothing but the output directory.
func runJobs(ctx context.Context, cfg *config.Config, ids []string, seeds []uint64) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.Workers)

	for _, id := range ids {
		for _, seed := range seeds {
			group.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return runJob(cfg.OutputDir, id, seed)
			})
		}
	}
	return group.Wait()
}

func runJob(outDir, id string, seed uint64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s seed %d: %v", id, seed, r)
		}
	}()

	s := scene.NewScene()
	model := generators.Generate(scene.NewContext(id, seed), s)
	base := filepath.Join(outDir, fmt.Sprintf("%s-%d", id, seed))

	switch m := model.(type) {
	case scene.VoxelSet:
		if err := m.Set.SaveFile(base + ".bin"); err != nil {
			return err
		}
		log.Printf("%s seed %d: %d voxels -> %s.bin", id, seed, m.Set.Len(), base)
	case *scene.Group:
		layout := scene.LayoutFromGroup(m)
		if err := scene.WriteFile(base+".yaml", layout); err != nil {
			return err
		}
		log.Printf("%s seed %d: %d objects -> %s.yaml", id, seed, layout.Len(), base)
	case *scene.Layout:
		if err := scene.WriteFile(base+".yaml", m); err != nil {
			return err
		}
		log.Printf("%s seed %d: %d records -> %s.yaml", id, seed, m.Len(), base)
	default:
		log.Printf("%s seed %d: no model", id, seed)
	}

	if s.Terrain.Len() > 0 {
		if err := s.Terrain.SaveFile(base + ".terrain.bin"); err != nil {
			return err
		}
		log.Printf("%s seed %d: terrain %d voxels -> %s.terrain.bin", id, seed, s.Terrain.Len(), base)
	}
	return nil
}

func convertSprite(path, outDir string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	set := generators.SpriteSheet(img, nil)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(outDir, name+".bin")
	if err := set.SaveFile(out); err != nil {
		return err
	}
	log.Printf("sprite %s: %d voxels -> %s", path, set.Len(), out)
	return nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
