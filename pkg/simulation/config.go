package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/multierr"

	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/bvh"
	"github.com/lao-tseu-is-alive/go-boids-bvh/pkg/flocking"
)

//go:embed config.schema.json
var configSchema []byte

const configSchemaURL = "config.schema.json"

// ErrInvalidConfig is returned, wrapped, for any configuration that fails
// schema or semantic validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Bounds are the half extents of the simulated box.
type Bounds struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector returns the bounds as a vector.
func (b Bounds) Vector() r3.Vector {
	return r3.Vector{X: b.X, Y: b.Y, Z: b.Z}
}

type Config struct {
	// Population
	Count int    `json:"count"`
	Seed  uint64 `json:"seed"`

	// World half extents, positions live in [-bound, +bound] on each axis
	Bounds Bounds `json:"bounds"`

	// Flocking
	SeparationRange  float64 `json:"separationRange"`
	AlignmentRange   float64 `json:"alignmentRange"`
	CohesionRange    float64 `json:"cohesionRange"`
	SeparationWeight float64 `json:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight"`
	MaxSpeed         float64 `json:"maxSpeed"`

	// Spatial index and force phase
	BVH     bvh.Options `json:"bvh"`
	Workers int         `json:"workers"` // 0 means one per CPU

	// Viewer
	TickRate     int `json:"tickRate"`
	WindowWidth  int `json:"windowWidth"`
	WindowHeight int `json:"windowHeight"`
}

func DefaultConfig() *Config {
	p := flocking.DefaultParameters()
	return &Config{
		Count:            1000,
		Seed:             42,
		Bounds:           Bounds{X: p.Bounds.X, Y: p.Bounds.Y, Z: p.Bounds.Z},
		SeparationRange:  p.SeparationRange,
		AlignmentRange:   p.AlignmentRange,
		CohesionRange:    p.CohesionRange,
		SeparationWeight: p.SeparationWeight,
		AlignmentWeight:  p.AlignmentWeight,
		CohesionWeight:   p.CohesionWeight,
		MaxSpeed:         p.MaxSpeed,
		BVH:              bvh.DefaultOptions(),
		TickRate:         60,
		WindowWidth:      1000,
		WindowHeight:     800,
	}
}

// LoadConfig reads a JSON configuration, validates it against the schema and
// applies it over DefaultConfig, so a file only needs the keys it changes.
// An empty schemaFile selects the schema embedded in the binary.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := compileSchema(schemaFile)
	if err != nil {
		return nil, err
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, errors.Wrap(err, "failed to decode config json")
	}
	if err := sch.Validate(v); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "%s: %v", configFile, err)
	}

	// 4. Unmarshal into Struct
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func compileSchema(schemaFile string) (*jsonschema.Schema, error) {
	if schemaFile != "" {
		sch, err := jsonschema.Compile(schemaFile)
		if err != nil {
			return nil, errors.Wrap(err, "failed to compile schema")
		}
		return sch, nil
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(configSchemaURL, bytes.NewReader(configSchema)); err != nil {
		return nil, errors.Wrap(err, "failed to load embedded schema")
	}
	sch, err := compiler.Compile(configSchemaURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile embedded schema")
	}
	return sch, nil
}

// Validate checks the values that the schema cannot express, such as the
// flocking parameters being finite. Every problem is reported.
func (c *Config) Validate() error {
	var err error
	if c.Count < 0 {
		err = multierr.Append(err, errors.Errorf("count must be >= 0, got %d", c.Count))
	}
	if c.Workers < 0 {
		err = multierr.Append(err, errors.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if c.TickRate < 1 {
		err = multierr.Append(err, errors.Errorf("tickRate must be >= 1, got %d", c.TickRate))
	}
	if c.WindowWidth < 1 || c.WindowHeight < 1 {
		err = multierr.Append(err, errors.Errorf("window must be at least 1x1, got %dx%d", c.WindowWidth, c.WindowHeight))
	}
	err = multierr.Append(err, c.BVH.Validate())
	err = multierr.Append(err, c.Parameters().Validate())
	if err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

// Parameters returns the flocking parameters described by c.
func (c *Config) Parameters() flocking.Parameters {
	return flocking.Parameters{
		SeparationRange:  c.SeparationRange,
		AlignmentRange:   c.AlignmentRange,
		CohesionRange:    c.CohesionRange,
		SeparationWeight: c.SeparationWeight,
		AlignmentWeight:  c.AlignmentWeight,
		CohesionWeight:   c.CohesionWeight,
		MaxSpeed:         c.MaxSpeed,
		Bounds:           c.Bounds.Vector(),
	}
}

// IndexOptions returns the BVH build options described by c.
func (c *Config) IndexOptions() bvh.Options {
	return c.BVH
}

// SetParameters copies the tunable values of p into c.
func (c *Config) SetParameters(p flocking.Parameters) {
	c.SeparationRange = p.SeparationRange
	c.AlignmentRange = p.AlignmentRange
	c.CohesionRange = p.CohesionRange
	c.SeparationWeight = p.SeparationWeight
	c.AlignmentWeight = p.AlignmentWeight
	c.CohesionWeight = p.CohesionWeight
	c.MaxSpeed = p.MaxSpeed
	c.Bounds = Bounds{X: p.Bounds.X, Y: p.Bounds.Y, Z: p.Bounds.Z}
}
