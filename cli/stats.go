package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/broadphase/boundstree"
	"go.viam.com/broadphase/physics"
	"go.viam.com/broadphase/spatialmath"
)

// treeStats describes the shape of one tree of a world.
type treeStats struct {
	Layer         physics.Layer
	Objects       int
	Groups        int
	InternalNodes int
	LongestBranch int
	MeanDepth     float64
	StdDevDepth   float64
	// Cost is the summed cost of every internal node, the quantity structure improvement lowers.
	Cost float64
}

func computeTreeStats(v *physics.View, l physics.Layer) treeStats {
	tree := v.Tree(l)
	s := treeStats{
		Layer:         l,
		Objects:       tree.NumberOfObjects(),
		LongestBranch: tree.LongestBranch(),
	}
	var depths []float64
	v.Walk(l, func(n *boundstree.Node[physics.PartRef], depth int) bool {
		if n.IsGroupHead() {
			s.Groups++
		}
		if n.IsLeafNode() {
			depths = append(depths, float64(depth))
			return true
		}
		if n.NumChildren() > 0 {
			s.InternalNodes++
			s.Cost += spatialmath.ComputeCost(n.Bounds())
		}
		return true
	})
	switch len(depths) {
	case 0:
	case 1:
		s.MeanDepth = depths[0]
	default:
		s.MeanDepth, s.StdDevDepth = stat.MeanStdDev(depths, nil)
	}
	return s
}

func printStats(w io.Writer, world *physics.World) error {
	var rows []treeStats
	err := world.View(func(v *physics.View) error {
		for l := physics.Layer(0); l < physics.NumLayers; l++ {
			rows = append(rows, computeTreeStats(v, l))
		}
		return nil
	})
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Layer", "Objects", "Groups", "Internal", "Longest branch", "Leaf depth", "Cost"})
	for _, s := range rows {
		t.AppendRow(table.Row{
			s.Layer.String(),
			s.Objects,
			s.Groups,
			s.InternalNodes,
			s.LongestBranch,
			fmt.Sprintf("%.2f ± %.2f", s.MeanDepth, s.StdDevDepth),
			fmt.Sprintf("%.1f", s.Cost),
		})
	}
	printf(w, "%s", t.Render())
	return nil
}

// StatsAction is the corresponding Action for 'stats'.
func StatsAction(c *cli.Context) error {
	w, _, err := loadWorld(c)
	if err != nil {
		return err
	}
	if err := printStats(c.App.Writer, w); err != nil {
		return err
	}
	verdict(c.App.Writer, w.IsValid())
	return nil
}
