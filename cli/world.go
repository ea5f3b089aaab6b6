package cli

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/broadphase/config"
	"go.viam.com/broadphase/logging"
	"go.viam.com/broadphase/physics"
)

// newLogger writes to the error writer of the app so tables on the writer stay clean.
func newLogger(c *cli.Context, scenario *config.Scenario) logging.Logger {
	logger := logging.NewBlankLogger("bvh")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	switch {
	case c.Bool(debugFlag):
		logger.SetLevel(logging.DEBUG)
	case scenario != nil && scenario.World.LogLevel != "":
		logger.SetLevel(scenario.World.Level())
	default:
		logger.SetLevel(logging.WARN)
	}
	return logger
}

func loadWorld(c *cli.Context) (*physics.World, logging.Logger, error) {
	path := c.Path(scenarioFlag)
	scenario, err := config.ReadScenarioFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot read scenario %q", path)
	}
	logger := newLogger(c, scenario)
	w, _, err := physics.NewWorldFromScenario(scenario, logger)
	if err != nil {
		return nil, nil, err
	}
	return w, logger, nil
}

func partName(v *physics.View, id physics.PartID) string {
	part, err := v.Part(id)
	if err != nil {
		return "?"
	}
	return part.Name()
}
