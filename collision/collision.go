// Package collision generates the broad-phase candidate pairs of a physics world. A candidate pair is two
// parts whose bounds intersect, on layers that collide, that do not belong to the same rigid hierarchy.
// The pairs are sound but may contain false positives; telling them apart is left to a narrow phase.
package collision

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"go.viam.com/broadphase/boundstree"
	"go.viam.com/broadphase/logging"
	"go.viam.com/broadphase/physics"
)

// Pair is an unordered pair of parts, stored with A < B.
type Pair struct {
	A, B physics.PartID
}

// NewPair returns the pair of a and b in canonical order.
func NewPair(a, b physics.PartID) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

func (p Pair) String() string {
	return fmt.Sprintf("(%d, %d)", p.A, p.B)
}

func comparePairs(a, b Pair) int {
	if c := cmp.Compare(a.A, b.A); c != 0 {
		return c
	}
	return cmp.Compare(a.B, b.B)
}

// Finder generates candidate pairs. The zero value uses one worker per CPU.
type Finder struct {
	// Workers bounds the number of concurrent queries.
	Workers int
	// ChunkSize is the number of parts one worker queries at a time.
	ChunkSize int

	logger logging.Logger
}

// NewFinder returns a Finder with default settings.
func NewFinder(logger logging.Logger) *Finder {
	return &Finder{logger: logger}
}

const defaultChunkSize = 64

// CandidatePairs returns the sorted candidate pairs of the world using a default Finder.
func CandidatePairs(ctx context.Context, w *physics.World) ([]Pair, error) {
	return (&Finder{logger: logging.Global()}).CandidatePairs(ctx, w)
}

// CandidatePairs returns the sorted candidate pairs of the world. Queries run concurrently inside one read
// scope of the world, so the world cannot change while pairs are generated.
func (f *Finder) CandidatePairs(ctx context.Context, w *physics.World) ([]Pair, error) {
	workers := f.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunkSize := f.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	var pairs []Pair
	err := w.View(func(v *physics.View) error {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)

		type job struct {
			chunk  []physics.PartID
			target physics.Layer
		}
		var jobs []job
		for _, layers := range v.LayerMatrix().Pairs() {
			sources := slices.Collect(v.IterParts(maskOf(layers[0])))
			for chunk := range slices.Chunk(sources, chunkSize) {
				jobs = append(jobs, job{chunk: chunk, target: layers[1]})
			}
		}

		results := make([][]Pair, len(jobs))
		for i, j := range jobs {
			g.Go(func() error {
				found, err := queryChunk(ctx, v, j.chunk, j.target)
				results[i] = found
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		pairs = lo.Uniq(lo.Flatten(results))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(pairs, comparePairs)
	if f.logger != nil {
		f.logger.Debugw("generated candidate pairs", "pairs", len(pairs))
	}
	return pairs, nil
}

func maskOf(l physics.Layer) physics.PartMask {
	if l == physics.TerrainLayer {
		return physics.TerrainParts
	}
	return physics.FreeParts
}

func queryChunk(ctx context.Context, v *physics.View, chunk []physics.PartID, target physics.Layer) ([]Pair, error) {
	var pairs []Pair
	for _, id := range chunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		part, err := v.Part(id)
		if err != nil {
			return nil, err
		}
		body, err := v.MainPhysicalOf(id)
		if err != nil {
			return nil, err
		}
		for other := range v.Query(boundstree.IntersectsBounds(part.StrictBounds()), maskOf(target)) {
			if other == id {
				continue
			}
			if body != physics.NoPhysical {
				otherBody, err := v.MainPhysicalOf(other)
				if err != nil {
					return nil, err
				}
				if otherBody == body {
					continue
				}
			}
			pairs = append(pairs, NewPair(id, other))
		}
	}
	return pairs, nil
}
