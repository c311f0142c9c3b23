package scene

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"snowfall/internal/voxel"
)

const (
	FileIdentifier = "SNOWFALL_VOXEL_SCENE"
	FileVersion    = "0.0.1"
)

var (
	ErrSceneIdentifier = errors.New("scene file identifier mismatch")
	ErrSceneVersion    = errors.New("scene file version mismatch")
)

//go:embed scene.schema.json
var sceneSchemaJSON string

var sceneSchema = jsonschema.MustCompileString("scene.schema.json", sceneSchemaJSON)

// Layout is a standalone scene made of object records. Each record is
// regenerated on load instead of storing voxel data.
type Layout struct {
	Layers []Layer `yaml:"layers"`
}

func (*Layout) isModel() {}

type Layer struct {
	Objects []Record `yaml:"objects"`
}

type Record struct {
	ModelID  string `yaml:"model_id"`
	Seed     uint64 `yaml:"seed"`
	Position [3]int `yaml:"position,flow"`
	Params   Params `yaml:"params,omitempty"`
}

// Add appends a record to the given layer, growing the layer list.
func (l *Layout) Add(layer int, rec Record) {
	for len(l.Layers) <= layer {
		l.Layers = append(l.Layers, Layer{})
	}
	l.Layers[layer].Objects = append(l.Layers[layer].Objects, rec)
}

// Len returns the number of records across all layers.
func (l *Layout) Len() int {
	n := 0
	for _, layer := range l.Layers {
		n += len(layer.Objects)
	}
	return n
}

type file struct {
	Identifier string  `yaml:"identifier"`
	Version    string  `yaml:"version"`
	Scene      *Layout `yaml:"scene"`
}

// LayoutFromGroup records every voxel-set leaf of the tree in layer 0.
// Generators that only modify terrain leave no leaf and are not recorded.
func LayoutFromGroup(g *Group) *Layout {
	layout := &Layout{}
	g.Walk(func(o *Object) {
		if _, ok := o.Imp.(VoxelSet); !ok || o.GeneratorID == "" {
			return
		}
		layout.Add(0, Record{
			ModelID:  o.GeneratorID,
			Seed:     o.Seed,
			Position: [3]int{o.Position.X, o.Position.Y, o.Position.Z},
			Params:   o.Params,
		})
	})
	return layout
}

// Regenerate replays every record through the registry against s, layer by
// layer, and returns the placed objects.
func (r *Registry) Regenerate(l *Layout, s *Scene) *Group {
	group := NewGroup()
	for _, layer := range l.Layers {
		for _, rec := range layer.Objects {
			ctx := NewContext(rec.ModelID, rec.Seed).
				WithCenter(voxel.Coord{X: rec.Position[0], Y: rec.Position[1], Z: rec.Position[2]}).
				WithParams(rec.Params)
			group.Push(ctx, r.Generate(ctx, s))
		}
	}
	return group
}

func MarshalLayout(l *Layout) ([]byte, error) {
	data, err := yaml.Marshal(&file{Identifier: FileIdentifier, Version: FileVersion, Scene: l})
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

// UnmarshalLayout checks the identifier and version, then validates the
// document structure, then decodes the layout. A missing identifier or
// version counts as a mismatch.
func UnmarshalLayout(data []byte) (*Layout, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	header, _ := doc.(map[string]any)
	if id, _ := header["identifier"].(string); id != FileIdentifier {
		return nil, fmt.Errorf("%w: %q", ErrSceneIdentifier, id)
	}
	if version, _ := header["version"].(string); version != FileVersion {
		return nil, fmt.Errorf("%w: %q", ErrSceneVersion, version)
	}

	// The validator works on JSON-shaped values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if err := sceneSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("validate scene: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if f.Scene == nil {
		f.Scene = &Layout{}
	}
	return f.Scene, nil
}

func WriteFile(path string, l *Layout) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create scene directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

func ReadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return UnmarshalLayout(data)
}
