package physics

import (
	"fmt"
)

// Layer is a collision layer. Every layer is backed by one tree of the world.
type Layer int

// Enumerated layers.
const (
	FreeLayer = Layer(iota)
	TerrainLayer
	NumLayers
)

func (l Layer) String() string {
	switch l {
	case FreeLayer:
		return "free"
	case TerrainLayer:
		return "terrain"
	default:
		return fmt.Sprintf("Layer(%d)", int(l))
	}
}

// PartMask selects layers when iterating parts.
type PartMask uint8

// Part masks.
const (
	FreeParts PartMask = 1 << iota
	TerrainParts
	AllParts = FreeParts | TerrainParts
)

// Includes returns whether l is selected by the mask.
func (m PartMask) Includes(l Layer) bool {
	return m&(1<<l) != 0
}

// LayerMatrix is a symmetric relation declaring which layers are tested against each other.
type LayerMatrix struct {
	collide [NumLayers][NumLayers]bool
}

// DefaultLayerMatrix returns a matrix where free parts collide with free parts and terrain, and terrain
// does not collide with terrain.
func DefaultLayerMatrix() LayerMatrix {
	var m LayerMatrix
	m.Set(FreeLayer, FreeLayer, true)
	m.Set(FreeLayer, TerrainLayer, true)
	m.Set(TerrainLayer, TerrainLayer, false)
	return m
}

// Set declares whether layers a and b collide.
func (m *LayerMatrix) Set(a, b Layer, collide bool) {
	m.collide[a][b] = collide
	m.collide[b][a] = collide
}

// Collide returns whether layers a and b are tested against each other.
func (m LayerMatrix) Collide(a, b Layer) bool {
	return m.collide[a][b]
}

// Pairs returns every unordered pair of colliding layers, the lower layer first.
func (m LayerMatrix) Pairs() [][2]Layer {
	var pairs [][2]Layer
	for a := Layer(0); a < NumLayers; a++ {
		for b := a; b < NumLayers; b++ {
			if m.collide[a][b] {
				pairs = append(pairs, [2]Layer{a, b})
			}
		}
	}
	return pairs
}
