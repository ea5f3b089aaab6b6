package physics

import (
	"context"
	"math/rand"
	"slices"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"golang.org/x/sync/errgroup"

	"go.viam.com/broadphase/spatialmath"
)

func TestQueriesMatchBruteForce(t *testing.T) {
	w := newTestWorld(t)
	rng := rand.New(rand.NewSource(3))
	var all []PartID
	lastFree := PartID(-1)
	for i := 0; i < 60; i++ {
		id := w.NewPart("part",
			spatialmath.NewCFrame(spatialmath.NewPosition(rng.Float64()*50, rng.Float64()*50, rng.Float64()*50)),
			r3.Vector{X: rng.Float64() * 3, Y: rng.Float64() * 3, Z: rng.Float64() * 3})
		all = append(all, id)
		if i%4 == 0 {
			test.That(t, w.AddTerrainPart(id), test.ShouldBeNil)
			continue
		}
		if i%3 == 0 && lastFree >= 0 {
			test.That(t, w.AttachPart(lastFree, id), test.ShouldBeNil)
			continue
		}
		test.That(t, w.AddPart(id), test.ShouldBeNil)
		lastFree = id
	}

	err := w.View(func(v *View) error {
		for i := 0; i < 50; i++ {
			query := spatialmath.NewBounds(
				spatialmath.NewPosition(rng.Float64()*50, rng.Float64()*50, rng.Float64()*50),
				spatialmath.NewPosition(rng.Float64()*50, rng.Float64()*50, rng.Float64()*50))
			var expected []PartID
			for _, id := range all {
				if v.w.arena.parts[id].StrictBounds().Intersects(query) {
					expected = append(expected, id)
				}
			}
			test.That(t, sorted(v.PartsIntersecting(query, AllParts)), test.ShouldResemble, expected)
		}

		origin := spatialmath.NewPosition(-5, 25, 25)
		ray := spatialmath.Ray{Origin: origin, Direction: r3.Vector{X: 1, Y: 0.1, Z: -0.05}}
		hits := v.PartsIntersectingRay(ray, AllParts)
		var expected []PartID
		for _, id := range all {
			if ok, _ := spatialmath.RayIntersectsBounds(v.w.arena.parts[id].StrictBounds(), ray); ok {
				expected = append(expected, id)
			}
		}
		got := make([]PartID, 0, len(hits))
		for i, hit := range hits {
			got = append(got, hit.Part)
			if i > 0 {
				test.That(t, hit.Distance, test.ShouldBeGreaterThanOrEqualTo, hits[i-1].Distance)
			}
		}
		test.That(t, sorted(got), test.ShouldResemble, expected)
		test.That(t, slices.Collect(v.IterParts(AllParts)), test.ShouldHaveLength, len(all))
		return nil
	})
	test.That(t, err, test.ShouldBeNil)
}

func TestConcurrentViews(t *testing.T) {
	w := newTestWorld(t)
	var ids []PartID
	for i := 0; i < 20; i++ {
		id := newBox(w, "box", float64(2*i), 0, 0)
		test.That(t, w.AddPart(id), test.ShouldBeNil)
		ids = append(ids, id)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		for i := 0; i < 200; i++ {
			id := ids[i%len(ids)]
			cframe := spatialmath.NewCFrame(spatialmath.NewPosition(float64(i%7), float64(i%5), 0))
			if err := w.SetPartCFrame(id, cframe); err != nil {
				return err
			}
		}
		return nil
	})
	for r := 0; r < 4; r++ {
		g.Go(func() error {
			for i := 0; i < 100 && ctx.Err() == nil; i++ {
				err := w.View(func(v *View) error {
					count := 0
					for range v.IterParts(FreeParts) {
						count++
					}
					if count != len(ids) {
						return errors.Errorf("saw %d parts, expected %d", count, len(ids))
					}
					return v.Tree(FreeLayer).Validate()
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	test.That(t, g.Wait(), test.ShouldBeNil)
	test.That(t, w.IsValid(), test.ShouldBeNil)
}
