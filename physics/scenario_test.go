package physics

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/broadphase/config"
	"go.viam.com/broadphase/logging"
	"go.viam.com/broadphase/spatialmath"
)

func testScenario() *config.Scenario {
	part := func(name string, x, y, z float64) config.PartConfig {
		return config.PartConfig{
			Name:     name,
			Frame:    config.FrameConfig{Translation: config.Translation{X: x, Y: y, Z: z}},
			HalfSize: config.Translation{X: 0.5, Y: 0.5, Z: 0.5},
		}
	}
	return &config.Scenario{
		World: config.WorldConfig{DebugValidate: true},
		Bodies: []config.BodyConfig{
			{
				Main:     part("chassis", 0, 0, 1),
				Attached: []config.PartConfig{part("bumper", 1, 0, 1)},
				Connected: []config.BodyConfig{
					{Main: part("arm", 0, 0, 2), Connected: []config.BodyConfig{{Main: part("gripper", 0, 0, 3)}}},
				},
			},
			{Main: part("ball", 10, 0, 1)},
		},
		Terrain: []config.PartConfig{
			{
				Name:     "floor",
				Frame:    config.FrameConfig{Translation: config.Translation{Z: -1}},
				HalfSize: config.Translation{X: 20, Y: 20, Z: 1},
			},
		},
	}
}

func TestNewWorldFromScenario(t *testing.T) {
	logger, observed := logging.NewObservedTestLogger(t)
	w, parts, err := NewWorldFromScenario(testScenario(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, parts, test.ShouldHaveLength, 6)
	test.That(t, observed.FilterMessage("populated world").Len(), test.ShouldEqual, 1)
	test.That(t, w.Config().DeltaT, test.ShouldEqual, config.DefaultDeltaT)

	test.That(t, groupOf(t, w, parts["gripper"]), test.ShouldResemble,
		sorted([]PartID{parts["chassis"], parts["bumper"], parts["arm"], parts["gripper"]}))
	test.That(t, groupOf(t, w, parts["ball"]), test.ShouldResemble, []PartID{parts["ball"]})

	err = w.View(func(v *View) error {
		test.That(t, v.NumberOfObjects(), test.ShouldEqual, 6)
		test.That(t, v.Physicals(), test.ShouldHaveLength, 2)
		test.That(t, v.LayerOf(parts["floor"]), test.ShouldEqual, TerrainLayer)
		test.That(t, v.PartsContaining(spatialmath.NewPosition(10, 0, 1), AllParts), test.ShouldResemble, []PartID{parts["ball"]})
		return nil
	})
	test.That(t, err, test.ShouldBeNil)

	// Disconnecting the arm takes the gripper with it.
	test.That(t, w.DetachPhysical(parts["arm"]), test.ShouldBeNil)
	test.That(t, groupOf(t, w, parts["arm"]), test.ShouldResemble, sorted([]PartID{parts["arm"], parts["gripper"]}))
	test.That(t, groupOf(t, w, parts["chassis"]), test.ShouldResemble, sorted([]PartID{parts["chassis"], parts["bumper"]}))
}
