package physics

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/broadphase/config"
	"go.viam.com/broadphase/logging"
)

func TestIsValidDetectsCorruption(t *testing.T) {
	cfg := config.DefaultWorldConfig()
	w, err := NewWorld(cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	b := newBody(w, 0)
	test.That(t, w.AddPart(b.main), test.ShouldBeNil)
	test.That(t, w.IsValid(), test.ShouldBeNil)

	w.arena.parts[b.attached].physical = b.armPhys
	err = w.IsValid()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "points at physical")
	w.arena.parts[b.attached].physical = b.mainPhys

	w.objectCount++
	test.That(t, w.IsValid().Error(), test.ShouldContainSubstring, "world counts 6 parts")
	w.objectCount--

	w.arena.physicals[b.mainPhys].world = nil
	err = w.IsValid()
	test.That(t, err.Error(), test.ShouldContainSubstring, "does not point back at the world")
	test.That(t, err.Error(), test.ShouldContainSubstring, "its body is not in the world")
	w.arena.physicals[b.mainPhys].world = w

	w.arena.parts[b.hand].isTerrain = true
	test.That(t, w.IsValid().Error(), test.ShouldContainSubstring, "indexed in the wrong tree")
	w.arena.parts[b.hand].isTerrain = false
	test.That(t, w.IsValid(), test.ShouldBeNil)
}

func TestDebugValidatePanics(t *testing.T) {
	logger, observed := logging.NewObservedTestLogger(t)
	cfg := config.DefaultWorldConfig()
	cfg.DebugValidate = true
	w, err := NewWorld(cfg, logger)
	test.That(t, err, test.ShouldBeNil)

	first := newBox(w, "first", 0, 0, 0)
	test.That(t, w.AddPart(first), test.ShouldBeNil)
	w.objectCount = 7

	second := newBox(w, "second", 5, 0, 0)
	test.That(t, func() { w.AddPart(second) }, test.ShouldPanic)
	test.That(t, observed.FilterMessage("world is not valid").Len(), test.ShouldEqual, 1)
}

func TestNewWorldRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultWorldConfig()
	cfg.DeltaT = -1
	_, err := NewWorld(cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}
