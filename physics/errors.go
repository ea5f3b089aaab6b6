package physics

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnknownPart is returned for a part handle the arena never issued.
	ErrUnknownPart = errors.New("unknown part")
	// ErrUnknownPhysical is returned for a physical handle that is not live.
	ErrUnknownPhysical = errors.New("unknown physical")
	// ErrNotInWorld is returned when an operation needs a part or physical that is not in the world.
	ErrNotInWorld = errors.New("not in world")
)

func newUnknownPartError(id PartID) error {
	return errors.Wrapf(ErrUnknownPart, "part %d", id)
}

func newUnknownPhysicalError(id PhysicalID) error {
	return errors.Wrapf(ErrUnknownPhysical, "physical %d", id)
}
