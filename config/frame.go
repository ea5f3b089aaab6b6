package config

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/broadphase/spatialmath"
)

// Translation is a position or size in world units.
type Translation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector returns the translation as a vector.
func (t Translation) Vector() r3.Vector {
	return r3.Vector{X: t.X, Y: t.Y, Z: t.Z}
}

// Orientation is a rotation of TH degrees around the axis (X, Y, Z).
type Orientation struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
	TH float64 `json:"th"`
}

// FrameConfig is the pose of a part in world space.
type FrameConfig struct {
	Translation Translation  `json:"translation"`
	Orientation *Orientation `json:"orientation,omitempty"`
}

// CFrame converts the config into a pose.
func (f FrameConfig) CFrame() spatialmath.CFrame {
	p := spatialmath.NewPositionFromVector(f.Translation.Vector())
	if f.Orientation == nil || f.Orientation.TH == 0 {
		return spatialmath.NewCFrame(p)
	}
	axis := r3.Vector{X: f.Orientation.X, Y: f.Orientation.Y, Z: f.Orientation.Z}
	return spatialmath.NewCFrameFromAxisAngle(p, axis, f.Orientation.TH*math.Pi/180)
}
