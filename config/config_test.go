package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"

	"go.viam.com/broadphase/logging"
	"go.viam.com/broadphase/spatialmath"
)

const testScenario = `{
	"world": {"delta_t": 0.01, "debug_validate": true, "log_level": "debug"},
	"bodies": [
		{
			"main": {"name": "chassis", "frame": {"translation": {"x": 0, "y": 0, "z": 1}}, "half_size": {"x": 2, "y": 1, "z": 0.5}},
			"attached": [
				{"name": "bumper", "frame": {"translation": {"x": 2.5, "y": 0, "z": 1}}, "half_size": {"x": 0.5, "y": 1, "z": 0.25}}
			],
			"connected": [
				{
					"main": {
						"name": "arm",
						"frame": {"translation": {"x": 0, "y": 0, "z": 3}, "orientation": {"x": 0, "y": 0, "z": 1, "th": 90}},
						"half_size": {"x": 1, "y": 0.1, "z": 0.1}
					}
				}
			]
		}
	],
	"terrain": [
		{"name": "floor", "frame": {"translation": {"x": 0, "y": 0, "z": -1}}, "half_size": {"x": 50, "y": 50, "z": 1}}
	]
}`

func TestReadScenario(t *testing.T) {
	scenario, err := ReadScenario(strings.NewReader(testScenario), "test")
	test.That(t, err, test.ShouldBeNil)

	test.That(t, scenario.World.DeltaT, test.ShouldEqual, 0.01)
	test.That(t, scenario.World.DebugValidate, test.ShouldBeTrue)
	test.That(t, scenario.World.Level(), test.ShouldEqual, logging.DEBUG)
	test.That(t, scenario.World.TerrainOptimizePasses, test.ShouldEqual, DefaultTerrainOptimizePasses)
	test.That(t, scenario.World.TerrainOptimizeInterval, test.ShouldEqual, DefaultTerrainOptimizeInterval)

	test.That(t, scenario.Bodies, test.ShouldHaveLength, 1)
	body := scenario.Bodies[0]
	test.That(t, body.Main.Name, test.ShouldEqual, "chassis")
	test.That(t, body.Main.HalfSize, test.ShouldResemble, Translation{2, 1, 0.5})
	test.That(t, body.Attached, test.ShouldHaveLength, 1)
	test.That(t, body.Connected, test.ShouldHaveLength, 1)
	test.That(t, body.Connected[0].Main.Frame.Orientation.TH, test.ShouldEqual, 90.)
	test.That(t, scenario.Terrain[0].Name, test.ShouldEqual, "floor")

	// The arm is rotated a quarter turn around z, so its long side lies along y.
	arm := body.Connected[0].Main
	b := spatialmath.BoxBounds(arm.Frame.CFrame(), arm.HalfSize.Vector())
	test.That(t, b.Max.X.Float64()-b.Min.X.Float64(), test.ShouldAlmostEqual, 0.2, 1e-6)
	test.That(t, b.Max.Y.Float64()-b.Min.Y.Float64(), test.ShouldAlmostEqual, 2, 1e-6)
}

func TestReadScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.json")
	test.That(t, os.WriteFile(path, []byte(testScenario), 0o600), test.ShouldBeNil)

	scenario, err := ReadScenarioFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scenario.Bodies[0].Main.Name, test.ShouldEqual, "chassis")

	_, err = ReadScenarioFile(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot read scenario file")
}

func TestReadScenarioErrors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    string
		expected string
	}{
		{"malformed json", `{"world": `, "cannot parse scenario"},
		{"unknown key", `{"world": {"delta_tt": 1}}`, "delta_tt"},
		{"wrong type", `{"world": {"delta_t": "fast"}}`, "delta_t"},
		{"missing name", `{"terrain": [{"half_size": {"x": 1}}]}`, `"name" is required`},
		{"negative size", `{"terrain": [{"name": "a", "half_size": {"x": -1}}]}`, "half_size must not be negative"},
		{
			"translation out of range",
			`{"terrain": [{"name": "a", "frame": {"translation": {"x": 3e9}}, "half_size": {"x": 1}}]}`,
			"outside the coordinate range",
		},
		{
			"extent out of range",
			`{"terrain": [{"name": "a", "frame": {"translation": {"x": 2.1e9}}, "half_size": {"x": 1e8}}]}`,
			"outside the coordinate range",
		},
		{
			"rotated extent out of range",
			`{"terrain": [{"name": "a", "frame": {"translation": {"y": 2.1e9}, "orientation": {"z": 1, "th": 45}},` +
				` "half_size": {"x": 1e8}}]}`,
			"outside the coordinate range",
		},
		{"bad log level", `{"world": {"log_level": "loud"}}`, "unknown log level"},
		{"negative delta", `{"world": {"delta_t": -1}}`, "delta_t must be positive"},
		{
			"duplicate names",
			`{"bodies": [{"main": {"name": "a"}, "attached": [{"name": "b"}]}], "terrain": [{"name": "a"}]}`,
			"duplicate part names",
		},
		{"nested path", `{"bodies": [{"main": {"name": "a"}, "connected": [{"main": {}}]}]}`, "scenario.bodies.0.connected.0.main"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadScenario(strings.NewReader(tc.input), tc.name)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.expected)
		})
	}
}

func TestWorldConfigDefaults(t *testing.T) {
	cfg := DefaultWorldConfig()
	test.That(t, cfg.DeltaT, test.ShouldEqual, DefaultDeltaT)
	test.That(t, cfg.TerrainOptimizePasses, test.ShouldEqual, DefaultTerrainOptimizePasses)
	test.That(t, cfg.Level(), test.ShouldEqual, logging.INFO)

	cfg = WorldConfig{TerrainOptimizeInterval: -1}
	test.That(t, cfg.Validate("world"), test.ShouldBeNil)
	test.That(t, cfg.TerrainOptimizeInterval, test.ShouldEqual, -1)
}

func TestPartConfigRange(t *testing.T) {
	part := PartConfig{Name: "far", Frame: FrameConfig{Translation: Translation{X: 2e9}}, HalfSize: Translation{1e8, 1, 1}}
	test.That(t, part.Validate("part"), test.ShouldBeNil)
	b := spatialmath.BoxBounds(part.Frame.CFrame(), part.HalfSize.Vector())
	test.That(t, b.IsEmpty(), test.ShouldBeFalse)
	test.That(t, b.Max.X.Float64(), test.ShouldEqual, 2.1e9)

	part.Frame.Translation.X = -2.1e9
	err := part.Validate("part")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "outside the coordinate range")

	// the same extent along y is fine until the part is rotated
	part = PartConfig{Name: "tilted", Frame: FrameConfig{Translation: Translation{Y: 2e9}}, HalfSize: Translation{X: 2e8}}
	test.That(t, part.Validate("part"), test.ShouldBeNil)
	part.Frame.Orientation = &Orientation{Z: 1, TH: 90}
	test.That(t, part.Validate("part"), test.ShouldNotBeNil)
}

func TestFrameConfig(t *testing.T) {
	frame := FrameConfig{Translation: Translation{1, 2, 3}}
	c := frame.CFrame()
	test.That(t, c.Position, test.ShouldResemble, spatialmath.NewPosition(1, 2, 3))

	frame.Orientation = &Orientation{X: 1, TH: 180}
	rotated := frame.CFrame().Rotate(Translation{Y: 1}.Vector())
	test.That(t, rotated.Y, test.ShouldAlmostEqual, -1, 1e-9)
	test.That(t, math.Abs(rotated.Z), test.ShouldBeLessThan, 1e-9)
}
