// Package config defines the configuration of a simulated world and the scenarios loaded into it.
package config

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/broadphase/logging"
	"go.viam.com/broadphase/spatialmath"
)

// Defaults for WorldConfig fields left unset.
const (
	DefaultDeltaT                  = 1.0 / 60
	DefaultTerrainOptimizePasses   = 5
	DefaultTerrainOptimizeInterval = 600
)

// WorldConfig describes how a world steps and maintains its trees. DeltaT is the length of a tick in
// seconds, used to turn speeds into per-tick displacements. DebugValidate checks every invariant
// of the world after each mutation and panics on a violation. A negative TerrainOptimizeInterval disables
// the periodic terrain optimization.
type WorldConfig struct {
	DeltaT                  float64 `json:"delta_t,omitempty"`
	DebugValidate           bool    `json:"debug_validate,omitempty"`
	TerrainOptimizePasses   int     `json:"terrain_optimize_passes,omitempty"`
	TerrainOptimizeInterval int     `json:"terrain_optimize_interval,omitempty"`
	LogLevel                string  `json:"log_level,omitempty"`
}

// DefaultWorldConfig returns a config with every default applied.
func DefaultWorldConfig() WorldConfig {
	cfg := WorldConfig{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *WorldConfig) applyDefaults() {
	if cfg.DeltaT == 0 {
		cfg.DeltaT = DefaultDeltaT
	}
	if cfg.TerrainOptimizePasses == 0 {
		cfg.TerrainOptimizePasses = DefaultTerrainOptimizePasses
	}
	if cfg.TerrainOptimizeInterval == 0 {
		cfg.TerrainOptimizeInterval = DefaultTerrainOptimizeInterval
	}
}

// Validate ensures all parts of the config are valid and fills in defaults.
func (cfg *WorldConfig) Validate(path string) error {
	cfg.applyDefaults()
	if cfg.DeltaT < 0 {
		return NewConfigValidationError(path, errors.Errorf("delta_t must be positive, got %v", cfg.DeltaT))
	}
	if cfg.TerrainOptimizePasses < 0 {
		return NewConfigValidationError(path,
			errors.Errorf("terrain_optimize_passes must not be negative, got %d", cfg.TerrainOptimizePasses))
	}
	if cfg.LogLevel != "" {
		if _, err := logging.LevelFromString(cfg.LogLevel); err != nil {
			return NewConfigValidationError(path, err)
		}
	}
	return nil
}

// Level returns the configured log level, INFO when unset.
func (cfg *WorldConfig) Level() logging.Level {
	level, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}

// PartConfig describes a box-shaped part.
type PartConfig struct {
	Name     string      `json:"name"`
	Frame    FrameConfig `json:"frame"`
	HalfSize Translation `json:"half_size"`
}

// Validate ensures all parts of the config are valid.
func (cfg *PartConfig) Validate(path string) error {
	if cfg.Name == "" {
		return NewConfigValidationFieldRequiredError(path, "name")
	}
	if cfg.HalfSize.X < 0 || cfg.HalfSize.Y < 0 || cfg.HalfSize.Z < 0 {
		return NewConfigValidationError(path, errors.Errorf("half_size must not be negative, got %+v", cfg.HalfSize))
	}
	reach := cfg.reach()
	t := cfg.Frame.Translation
	for _, span := range []float64{math.Abs(t.X) + reach.X, math.Abs(t.Y) + reach.Y, math.Abs(t.Z) + reach.Z} {
		if !spatialmath.InFixRange(span) {
			return NewConfigValidationError(path, errors.Errorf(
				"part spans %v along an axis, outside the coordinate range ±%v", span, spatialmath.FixLimit))
		}
	}
	return nil
}

// reach is the largest extent of the part from its center along each axis. A rotated part can reach as
// far as its half diagonal.
func (cfg *PartConfig) reach() Translation {
	if o := cfg.Frame.Orientation; o != nil && o.TH != 0 {
		r := cfg.HalfSize.Vector().Norm()
		return Translation{r, r, r}
	}
	return cfg.HalfSize
}

// BodyConfig describes a rigid body: a main part, parts rigidly attached to it, and bodies connected to it
// that move with it.
type BodyConfig struct {
	Main      PartConfig   `json:"main"`
	Attached  []PartConfig `json:"attached,omitempty"`
	Connected []BodyConfig `json:"connected,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *BodyConfig) Validate(path string) error {
	if err := cfg.Main.Validate(fmt.Sprintf("%s.main", path)); err != nil {
		return err
	}
	for idx := range cfg.Attached {
		if err := cfg.Attached[idx].Validate(fmt.Sprintf("%s.attached.%d", path, idx)); err != nil {
			return err
		}
	}
	for idx := range cfg.Connected {
		if err := cfg.Connected[idx].Validate(fmt.Sprintf("%s.connected.%d", path, idx)); err != nil {
			return err
		}
	}
	return nil
}

func (cfg *BodyConfig) partNames(names []string) []string {
	names = append(names, cfg.Main.Name)
	for _, p := range cfg.Attached {
		names = append(names, p.Name)
	}
	for idx := range cfg.Connected {
		names = cfg.Connected[idx].partNames(names)
	}
	return names
}

// Scenario is a world config together with the bodies and terrain to load into it.
type Scenario struct {
	World   WorldConfig  `json:"world"`
	Bodies  []BodyConfig `json:"bodies,omitempty"`
	Terrain []PartConfig `json:"terrain,omitempty"`
}

// Validate ensures all parts of the scenario are valid and that part names are unique.
func (s *Scenario) Validate(path string) error {
	if err := s.World.Validate(fmt.Sprintf("%s.world", path)); err != nil {
		return err
	}
	var names []string
	for idx := range s.Bodies {
		if err := s.Bodies[idx].Validate(fmt.Sprintf("%s.bodies.%d", path, idx)); err != nil {
			return err
		}
		names = s.Bodies[idx].partNames(names)
	}
	for idx := range s.Terrain {
		if err := s.Terrain[idx].Validate(fmt.Sprintf("%s.terrain.%d", path, idx)); err != nil {
			return err
		}
		names = append(names, s.Terrain[idx].Name)
	}

	if dups := lo.FindDuplicates(names); len(dups) > 0 {
		return NewConfigValidationError(path, errors.Errorf("duplicate part names %q", dups))
	}
	return nil
}
