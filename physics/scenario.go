package physics

import (
	"go.viam.com/broadphase/config"
	"go.viam.com/broadphase/logging"
)

// NewWorldFromScenario creates a world and populates it with a scenario.
func NewWorldFromScenario(scenario *config.Scenario, logger logging.Logger) (*World, map[string]PartID, error) {
	w, err := NewWorld(scenario.World, logger)
	if err != nil {
		return nil, nil, err
	}
	parts, err := w.Populate(scenario)
	if err != nil {
		return nil, nil, err
	}
	return w, parts, nil
}

// Populate adds the bodies and terrain of a scenario to the world and returns the parts by name.
func (w *World) Populate(scenario *config.Scenario) (map[string]PartID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	parts := map[string]PartID{}
	for idx := range scenario.Bodies {
		phys := w.buildBody(&scenario.Bodies[idx], parts)
		if err := w.addPart(w.arena.physicals[phys].mainPart); err != nil {
			return nil, err
		}
	}
	for _, cfg := range scenario.Terrain {
		id := w.newPartFromConfig(cfg, parts)
		w.objectCount++
		w.terrainTree.Add(w.ref(id), w.boundsOf(id))
		w.arena.parts[id].isTerrain = true
	}
	w.logger.Infow("populated world",
		"bodies", len(scenario.Bodies),
		"terrain", len(scenario.Terrain),
		"parts", w.objectCount)
	w.assertValid()
	return parts, nil
}

func (w *World) newPartFromConfig(cfg config.PartConfig, parts map[string]PartID) PartID {
	id := w.arena.newPart(cfg.Name, cfg.Frame.CFrame(), cfg.HalfSize.Vector())
	parts[cfg.Name] = id
	return id
}

func (w *World) buildBody(cfg *config.BodyConfig, parts map[string]PartID) PhysicalID {
	phys := w.arena.newPhysical(w.newPartFromConfig(cfg.Main, parts))
	for _, attached := range cfg.Attached {
		w.arena.attachPart(phys, w.newPartFromConfig(attached, parts))
	}
	for idx := range cfg.Connected {
		w.arena.connect(phys, w.buildBody(&cfg.Connected[idx], parts))
	}
	return phys
}
