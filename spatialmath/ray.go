package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// Ray is a half-line starting at Origin and extending along Direction.
type Ray struct {
	Origin    Position
	Direction r3.Vector
}

// RayIntersectsBounds reports whether the ray hits b. On a hit it also returns the distance along the
// ray, in units of Direction, to the first point inside b; a ray starting inside b hits at distance 0.
func RayIntersectsBounds(b Bounds, ray Ray) (bool, float64) {
	if b.IsEmpty() {
		return false, math.Inf(1)
	}
	lo := b.Min.Sub(ray.Origin)
	hi := b.Max.Sub(ray.Origin)

	tMin := math.Inf(-1)
	tMax := math.Inf(1)
	for _, axis := range [3]struct{ lo, hi, dir float64 }{
		{lo.X, hi.X, ray.Direction.X},
		{lo.Y, hi.Y, ray.Direction.Y},
		{lo.Z, hi.Z, ray.Direction.Z},
	} {
		if axis.dir == 0 {
			if axis.lo > 0 || axis.hi < 0 {
				return false, math.Inf(1)
			}
			continue
		}
		t1 := axis.lo / axis.dir
		t2 := axis.hi / axis.dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
	}
	entry := math.Max(tMin, 0)
	if tMax < entry {
		return false, math.Inf(1)
	}
	return true, entry
}
