package boundstree

import (
	"math/rand"
	"testing"

	"go.viam.com/test"

	"go.viam.com/broadphase/spatialmath"
)

type testObject struct {
	id     int
	bounds spatialmath.Bounds
}

func (o *testObject) StrictBounds() spatialmath.Bounds {
	return o.bounds
}

func newTestObject(id int, minX, minY, minZ, maxX, maxY, maxZ float64) *testObject {
	return &testObject{id: id, bounds: spatialmath.NewBoundsFromFloats(minX, minY, minZ, maxX, maxY, maxZ)}
}

func randomTestObject(rng *rand.Rand, id int) *testObject {
	x, y, z := rng.Float64()*100-50, rng.Float64()*100-50, rng.Float64()*100-50
	sx, sy, sz := rng.Float64()*5, rng.Float64()*5, rng.Float64()*5
	return newTestObject(id, x, y, z, x+sx, y+sy, z+sz)
}

func collect[T Boundable](it *TreeIterator[T]) []T {
	var objects []T
	for ; it.Valid(); it.Next() {
		objects = append(objects, it.Object())
	}
	return objects
}

func idSet(objects []*testObject) map[int]bool {
	ids := make(map[int]bool, len(objects))
	for _, o := range objects {
		ids[o.id] = true
	}
	return ids
}

// validateTree checks the tree invariants and that the cached count matches a full traversal.
func validateTree(t *testing.T, tree *BoundsTree[*testObject]) {
	t.Helper()
	test.That(t, tree.Validate(), test.ShouldBeNil)
	test.That(t, collect(tree.Iterator()), test.ShouldHaveLength, tree.NumberOfObjects())
}

// buildRandomTree adds n random objects. Roughly a third of them join the group of an earlier object.
func buildRandomTree(t *testing.T, rng *rand.Rand, n int) (*BoundsTree[*testObject], []*testObject) {
	t.Helper()
	tree := NewBoundsTree[*testObject]()
	objects := make([]*testObject, 0, n)
	for i := 0; i < n; i++ {
		o := randomTestObject(rng, i)
		if len(objects) > 0 && rng.Intn(3) == 0 {
			member := objects[rng.Intn(len(objects))]
			test.That(t, tree.AddToExistingGroup(o, o.bounds, member, member.bounds), test.ShouldBeNil)
		} else {
			tree.Add(o, o.bounds)
		}
		objects = append(objects, o)
	}
	return tree, objects
}
