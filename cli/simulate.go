package cli

import (
	"fmt"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/broadphase/collision"
	"go.viam.com/broadphase/physics"
	"go.viam.com/broadphase/spatialmath"
)

type move struct {
	part   physics.PartID
	cframe spatialmath.CFrame
}

// randomMoves shifts the main part of every body by up to step along each axis.
func randomMoves(w *physics.World, rng *rand.Rand, step float64) ([]move, error) {
	var moves []move
	err := w.View(func(v *physics.View) error {
		for _, id := range v.Physicals() {
			phys, err := v.Physical(id)
			if err != nil {
				return err
			}
			part, err := v.Part(phys.MainPart())
			if err != nil {
				return err
			}
			cframe := part.CFrame()
			cframe.Position = cframe.Position.Add(r3.Vector{
				X: (2*rng.Float64() - 1) * step,
				Y: (2*rng.Float64() - 1) * step,
				Z: (2*rng.Float64() - 1) * step,
			})
			moves = append(moves, move{part: part.ID(), cframe: cframe})
		}
		return nil
	})
	return moves, err
}

// SimulateAction is the corresponding Action for 'simulate'.
func SimulateAction(c *cli.Context) error {
	w, logger, err := loadWorld(c)
	if err != nil {
		return err
	}
	ticks := c.Int(ticksFlag)
	if ticks <= 0 {
		return errors.Errorf("--%s must be positive, got %d", ticksFlag, ticks)
	}
	speed := c.Float64(speedFlag)
	if speed < 0 {
		return errors.Errorf("--%s must not be negative, got %v", speedFlag, speed)
	}
	deltaT := w.Config().DeltaT
	step := speed * deltaT
	rng := rand.New(rand.NewSource(c.Int64(seedFlag)))
	finder := collision.NewFinder(logger)
	finder.Workers = c.Int(workersFlag)

	counts := make([]float64, 0, ticks)
	for i := 0; i < ticks; i++ {
		if err := c.Context.Err(); err != nil {
			return err
		}
		moves, err := randomMoves(w, rng, step)
		if err != nil {
			return err
		}
		for _, m := range moves {
			if err := w.SetPartCFrame(m.part, m.cframe); err != nil {
				return err
			}
		}
		w.Tick()
		pairs, err := finder.CandidatePairs(c.Context, w)
		if err != nil {
			return err
		}
		logger.Debugw("tick", "tick", w.Ticks(), "pairs", len(pairs))
		counts = append(counts, float64(len(pairs)))
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Ticks", "Simulated time", "Largest step", "Pairs (mean)", "Pairs (stddev)", "Pairs (min)", "Pairs (max)"})
	mean, std := counts[0], 0.0
	if len(counts) > 1 {
		mean, std = stat.MeanStdDev(counts, nil)
	}
	t.AppendRow(table.Row{
		w.Ticks(),
		fmt.Sprintf("%.3fs", float64(ticks)*deltaT),
		fmt.Sprintf("%g", step),
		fmt.Sprintf("%.2f", mean),
		fmt.Sprintf("%.2f", std),
		floats.Min(counts),
		floats.Max(counts),
	})
	printf(c.App.Writer, "%s", t.Render())
	if err := printStats(c.App.Writer, w); err != nil {
		return err
	}
	verdict(c.App.Writer, w.IsValid())
	return nil
}
