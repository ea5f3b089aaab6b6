package config

import (
	"encoding/json"
	"io"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ReadScenarioFile reads and validates a scenario from a JSON file.
func ReadScenarioFile(filePath string) (scenario *Scenario, err error) {
	//nolint:gosec
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read scenario file %q", filePath)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	return ReadScenario(f, filePath)
}

// ReadScenario reads and validates a scenario. Unknown keys are rejected so that typos do not silently
// fall back to defaults. source names the input in errors.
func ReadScenario(r io.Reader, source string) (*Scenario, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrapf(err, "cannot parse scenario %q", source)
	}

	scenario, err := DecodeScenario(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode scenario %q", source)
	}
	if err := scenario.Validate("scenario"); err != nil {
		return nil, err
	}
	return scenario, nil
}

// DecodeScenario converts a free-form attribute map into a scenario without validating it.
func DecodeScenario(attributes map[string]interface{}) (*Scenario, error) {
	var scenario Scenario
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      &scenario,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, err
	}
	return &scenario, nil
}
