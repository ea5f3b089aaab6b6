package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Position is a point in world space with fixed-point coordinates.
type Position struct {
	X, Y, Z Fix
}

// NewPosition returns the Position closest to the given float coordinates.
func NewPosition(x, y, z float64) Position {
	return Position{NewFix(x), NewFix(y), NewFix(z)}
}

// NewPositionFromVector returns the Position closest to v.
func NewPositionFromVector(v r3.Vector) Position {
	return NewPosition(v.X, v.Y, v.Z)
}

// Vector returns p as a float vector relative to the origin. Prefer Sub for relative vectors, it keeps
// the precision of the fixed-point representation.
func (p Position) Vector() r3.Vector {
	return r3.Vector{X: p.X.Float64(), Y: p.Y.Float64(), Z: p.Z.Float64()}
}

// Sub returns the vector pointing from o to p. The difference is taken in fixed point before conversion.
func (p Position) Sub(o Position) r3.Vector {
	return r3.Vector{X: (p.X - o.X).Float64(), Y: (p.Y - o.Y).Float64(), Z: (p.Z - o.Z).Float64()}
}

// Add returns p offset by v.
func (p Position) Add(v r3.Vector) Position {
	return Position{addFix(p.X, NewFix(v.X)), addFix(p.Y, NewFix(v.Y)), addFix(p.Z, NewFix(v.Z))}
}

// Min returns the componentwise minimum of p and o.
func (p Position) Min(o Position) Position {
	return Position{minFix(p.X, o.X), minFix(p.Y, o.Y), minFix(p.Z, o.Z)}
}

// Max returns the componentwise maximum of p and o.
func (p Position) Max(o Position) Position {
	return Position{maxFix(p.X, o.X), maxFix(p.Y, o.Y), maxFix(p.Z, o.Z)}
}

// LessOrEqual reports whether p is componentwise less than or equal to o.
func (p Position) LessOrEqual(o Position) bool {
	return p.X <= o.X && p.Y <= o.Y && p.Z <= o.Z
}

// String returns a human readable string that represents the position.
func (p Position) String() string {
	return fmt.Sprintf("(%s, %s, %s)", p.X, p.Y, p.Z)
}
