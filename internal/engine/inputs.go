package engine

import (
	"fmt"

	"github.com/relaygrid/scriptengine/internal/errz"
	"github.com/relaygrid/scriptengine/internal/params"
)

// ValidateInputs checks presence against the raw (pre-defaults) input
// map, then applies schema defaults and validates every visible
// parameter's value. A visible parameter with no declared default that
// is absent from the raw input map fails with ErrMissingRequiredInput;
// checking presence against the defaults-applied map would never catch
// this, since ApplyDefaults fills every absent key with a kind-specific
// zero value before this function sees it. Invisible parameters (per
// params.Visible) are skipped entirely.
func ValidateInputs(inputs map[string]any, schema params.Schema) (map[string]any, error) {
	applied := params.ApplyDefaults(inputs, schema)

	for name, def := range schema {
		if !params.Visible(def, applied) {
			continue
		}
		if _, rawPresent := inputs[name]; !rawPresent && def.Default == nil {
			return nil, errz.Wrap(errz.ErrMissingRequiredInput, fmt.Sprintf("Missing required input: %s", name))
		}
		if err := params.Validate(applied[name], def, name); err != nil {
			return nil, err
		}
	}
	return applied, nil
}
