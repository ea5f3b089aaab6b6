package cli

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/broadphase/collision"
	"go.viam.com/broadphase/physics"
	"go.viam.com/broadphase/spatialmath"
)

func parseMask(layer string) (physics.PartMask, error) {
	switch layer {
	case "all", "":
		return physics.AllParts, nil
	case "free":
		return physics.FreeParts, nil
	case "terrain":
		return physics.TerrainParts, nil
	default:
		return 0, errors.Errorf("unknown layer %q, expected all, free or terrain", layer)
	}
}

func expectValues(flag string, values []float64, n int) error {
	if len(values) != n {
		return errors.Errorf("--%s takes %d values, got %d", flag, n, len(values))
	}
	return nil
}

// QueryAction is the corresponding Action for 'query'.
func QueryAction(c *cli.Context) error {
	mask, err := parseMask(c.String(layerFlag))
	if err != nil {
		return err
	}
	set := 0
	for _, flag := range []string{pointFlag, boxFlag, rayFlag} {
		if c.IsSet(flag) {
			set++
		}
	}
	if set != 1 {
		return errors.Errorf("specify exactly one of --%s, --%s or --%s", pointFlag, boxFlag, rayFlag)
	}

	w, _, err := loadWorld(c)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	err = w.View(func(v *physics.View) error {
		switch {
		case c.IsSet(pointFlag):
			p := c.Float64Slice(pointFlag)
			if err := expectValues(pointFlag, p, 3); err != nil {
				return err
			}
			t.AppendHeader(table.Row{"#", "Part", "Layer"})
			for i, id := range v.PartsContaining(spatialmath.NewPosition(p[0], p[1], p[2]), mask) {
				t.AppendRow(table.Row{i + 1, partName(v, id), v.LayerOf(id).String()})
			}
		case c.IsSet(boxFlag):
			b := c.Float64Slice(boxFlag)
			if err := expectValues(boxFlag, b, 6); err != nil {
				return err
			}
			t.AppendHeader(table.Row{"#", "Part", "Layer"})
			for i, id := range v.PartsIntersecting(spatialmath.NewBoundsFromFloats(b[0], b[1], b[2], b[3], b[4], b[5]), mask) {
				t.AppendRow(table.Row{i + 1, partName(v, id), v.LayerOf(id).String()})
			}
		default:
			r := c.Float64Slice(rayFlag)
			if err := expectValues(rayFlag, r, 6); err != nil {
				return err
			}
			ray := spatialmath.Ray{
				Origin:    spatialmath.NewPosition(r[0], r[1], r[2]),
				Direction: r3.Vector{X: r[3], Y: r[4], Z: r[5]},
			}
			t.AppendHeader(table.Row{"#", "Part", "Layer", "Distance"})
			for i, hit := range v.PartsIntersectingRay(ray, mask) {
				t.AppendRow(table.Row{i + 1, partName(v, hit.Part), v.LayerOf(hit.Part).String(), fmt.Sprintf("%.3f", hit.Distance)})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

// PairsAction is the corresponding Action for 'pairs'.
func PairsAction(c *cli.Context) error {
	w, logger, err := loadWorld(c)
	if err != nil {
		return err
	}
	finder := collision.NewFinder(logger)
	finder.Workers = c.Int(workersFlag)
	pairs, err := finder.CandidatePairs(c.Context, w)
	if err != nil {
		return err
	}

	shown := pairs
	if limit := c.Int(limitFlag); limit > 0 && limit < len(pairs) {
		shown = pairs[:limit]
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "A", "B"})
	err = w.View(func(v *physics.View) error {
		for i, pair := range shown {
			t.AppendRow(table.Row{i + 1, partName(v, pair.A), partName(v, pair.B)})
		}
		return nil
	})
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", t.Render())
	if len(shown) < len(pairs) {
		warningf(c.App.ErrWriter, "showing %d of %d candidate pairs", len(shown), len(pairs))
	}
	infof(c.App.Writer, "%d candidate pairs", len(pairs))
	return nil
}
