package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
	gr3 "gonum.org/v1/gonum/spatial/r3"
)

var identityRotation = gr3.Rotation{Real: 1}

// CFrame is the global pose of a part: a fixed-point position and a rotation. A zero Rotation is treated
// as the identity so that the zero CFrame sits unrotated at the origin.
type CFrame struct {
	Position Position
	Rotation gr3.Rotation
}

// NewCFrame returns an unrotated CFrame at p.
func NewCFrame(p Position) CFrame {
	return CFrame{Position: p, Rotation: identityRotation}
}

// NewCFrameFromAxisAngle returns a CFrame at p rotated by angle radians around axis.
func NewCFrameFromAxisAngle(p Position, axis r3.Vector, angle float64) CFrame {
	if axis.Norm2() == 0 {
		return NewCFrame(p)
	}
	return CFrame{Position: p, Rotation: gr3.NewRotation(angle, gr3.Vec{X: axis.X, Y: axis.Y, Z: axis.Z})}
}

func (c CFrame) rotation() gr3.Rotation {
	if c.Rotation == (gr3.Rotation{}) {
		return identityRotation
	}
	return c.Rotation
}

// Rotate rotates a local direction into world orientation.
func (c CFrame) Rotate(v r3.Vector) r3.Vector {
	out := c.rotation().Rotate(gr3.Vec{X: v.X, Y: v.Y, Z: v.Z})
	return r3.Vector{X: out.X, Y: out.Y, Z: out.Z}
}

// LocalToGlobal maps a point given relative to the frame into world space.
func (c CFrame) LocalToGlobal(v r3.Vector) Position {
	return c.Position.Add(c.Rotate(v))
}

// Relocate returns c moved by the rigid transform that carries from onto to. Moving every part of a body
// this way keeps the relative placement of the parts.
func Relocate(c, from, to CFrame) CFrame {
	delta := gr3.Rotation(quat.Mul(quat.Number(to.rotation()), quat.Conj(quat.Number(from.rotation()))))
	offset := c.Position.Sub(from.Position)
	moved := delta.Rotate(gr3.Vec{X: offset.X, Y: offset.Y, Z: offset.Z})
	rot := gr3.Rotation(quat.Mul(quat.Number(delta), quat.Number(c.rotation())))
	return CFrame{
		Position: to.Position.Add(r3.Vector{X: moved.X, Y: moved.Y, Z: moved.Z}),
		Rotation: rot,
	}
}

// BoxBounds returns the tight axis-aligned bounds of a box with the given half size placed at c.
func BoxBounds(c CFrame, halfSize r3.Vector) Bounds {
	ex := c.Rotate(r3.Vector{X: halfSize.X})
	ey := c.Rotate(r3.Vector{Y: halfSize.Y})
	ez := c.Rotate(r3.Vector{Z: halfSize.Z})
	extent := r3.Vector{
		X: math.Abs(ex.X) + math.Abs(ey.X) + math.Abs(ez.X),
		Y: math.Abs(ex.Y) + math.Abs(ey.Y) + math.Abs(ez.Y),
		Z: math.Abs(ex.Z) + math.Abs(ey.Z) + math.Abs(ez.Z),
	}
	return Bounds{
		Min: c.Position.Add(extent.Mul(-1)),
		Max: c.Position.Add(extent),
	}
}
