package scene

import (
	"errors"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"snowfall/internal/rng"
	"snowfall/internal/voxel"
)

// ErrInvalidParams reports a params bag that does not fit the generator.
var ErrInvalidParams = errors.New("invalid generator params")

// Params is the opaque parameter bag a generator decodes into its own
// typed struct.
type Params map[string]any

// Context identifies one generator invocation.
type Context struct {
	Generator string
	Seed      uint64
	Center    voxel.Coord
	Params    Params
}

func NewContext(generator string, seed uint64) Context {
	return Context{Generator: generator, Seed: seed}
}

// Fork derives a context for another generator with the same center and
// params.
func (c Context) Fork(generator string, seed uint64) Context {
	return Context{
		Generator: generator,
		Seed:      seed,
		Center:    c.Center,
		Params:    c.Params,
	}
}

func (c Context) WithCenter(center voxel.Coord) Context {
	c.Center = center
	return c
}

func (c Context) WithParams(params Params) Context {
	c.Params = params
	return c
}

// RNG returns a fresh stream seeded from the context seed.
func (c Context) RNG() *rng.RNG {
	return rng.New(c.Seed)
}

// DecodeParams decodes the bag over the values already in dst, which must be
// a pointer to a struct with yaml tags. An empty bag leaves dst untouched. A
// bag that does not decode leaves dst untouched and returns an error wrapping
// ErrInvalidParams that names the generator.
func (c Context) DecodeParams(dst any) error {
	if len(c.Params) == 0 {
		return nil
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%s: %w: decode target %T is not a pointer", c.Generator, ErrInvalidParams, dst)
	}
	data, err := yaml.Marshal(map[string]any(c.Params))
	if err != nil {
		return fmt.Errorf("%s: %w: %w", c.Generator, ErrInvalidParams, err)
	}
	tmp := reflect.New(rv.Elem().Type())
	tmp.Elem().Set(rv.Elem())
	if err := yaml.Unmarshal(data, tmp.Interface()); err != nil {
		return fmt.Errorf("%s: %w: %w", c.Generator, ErrInvalidParams, err)
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}
