package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Bounds is an axis-aligned box in world space. The zero value is the degenerate box at the origin,
// use EmptyBounds for a box that contains nothing.
type Bounds struct {
	Min Position
	Max Position
}

// NewBounds returns the box spanned by two corners. The corners may be given in any order.
func NewBounds(a, b Position) Bounds {
	return Bounds{Min: a.Min(b), Max: a.Max(b)}
}

// NewBoundsFromFloats returns the box spanned by the two float corners.
func NewBoundsFromFloats(minX, minY, minZ, maxX, maxY, maxZ float64) Bounds {
	return NewBounds(NewPosition(minX, minY, minZ), NewPosition(maxX, maxY, maxZ))
}

// EmptyBounds returns the empty sentinel. It is distinct from every valid box and is the identity of Union.
func EmptyBounds() Bounds {
	return Bounds{
		Min: Position{MaxFix, MaxFix, MaxFix},
		Max: Position{MinFix, MinFix, MinFix},
	}
}

// IsEmpty reports whether b contains no points.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Union returns the smallest box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// UnionOf returns the union of all given bounds, or the empty bounds when none are given.
func UnionOf(bounds ...Bounds) Bounds {
	result := EmptyBounds()
	for _, o := range bounds {
		result = result.Union(o)
	}
	return result
}

// Contains reports whether o lies entirely within b. Every box contains the empty bounds.
func (b Bounds) Contains(o Bounds) bool {
	if o.IsEmpty() {
		return true
	}
	return b.Min.LessOrEqual(o.Min) && o.Max.LessOrEqual(b.Max)
}

// ContainsPoint reports whether p lies within b, boundary included.
func (b Bounds) ContainsPoint(p Position) bool {
	return b.Min.LessOrEqual(p) && p.LessOrEqual(b.Max)
}

// Intersects reports whether b and o share at least one point. Touching faces count as intersecting.
func (b Bounds) Intersects(o Bounds) bool {
	if b.IsEmpty() || o.IsEmpty() {
		return false
	}
	return b.Min.LessOrEqual(o.Max) && o.Min.LessOrEqual(b.Max)
}

// Expanded returns b grown by amount on every side. The empty bounds stays empty.
func (b Bounds) Expanded(amount float64) Bounds {
	if b.IsEmpty() {
		return b
	}
	d := NewFix(amount)
	return Bounds{
		Min: Position{addFix(b.Min.X, -d), addFix(b.Min.Y, -d), addFix(b.Min.Z, -d)},
		Max: Position{addFix(b.Max.X, d), addFix(b.Max.Y, d), addFix(b.Max.Z, d)},
	}
}

// Center returns the midpoint of b.
func (b Bounds) Center() Position {
	return Position{
		b.Min.X + (b.Max.X-b.Min.X)/2,
		b.Min.Y + (b.Max.Y-b.Min.Y)/2,
		b.Min.Z + (b.Max.Z-b.Min.Z)/2,
	}
}

// Diagonal returns the vector from Min to Max. It is the zero vector for the empty bounds.
func (b Bounds) Diagonal() r3.Vector {
	if b.IsEmpty() {
		return r3.Vector{}
	}
	return b.Max.Sub(b.Min)
}

// Volume returns the volume of b.
func (b Bounds) Volume() float64 {
	d := b.Diagonal()
	return d.X * d.Y * d.Z
}

// SurfaceArea returns the total area of the six faces of b.
func (b Bounds) SurfaceArea() float64 {
	d := b.Diagonal()
	return 2 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

// String returns a human readable string that represents the bounds.
func (b Bounds) String() string {
	if b.IsEmpty() {
		return "Bounds(empty)"
	}
	return fmt.Sprintf("Bounds(%s - %s)", b.Min, b.Max)
}

// ComputeCost scores a box for tree construction. It is the half surface area plus the sum of the edge
// lengths, so that flat and zero-size boxes still order sensibly. Lower is better.
func ComputeCost(b Bounds) float64 {
	d := b.Diagonal()
	return d.X*d.Y + d.Y*d.Z + d.Z*d.X + d.X + d.Y + d.Z
}
