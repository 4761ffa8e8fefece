// Completion: 100% - Utility module complete
package engine

import "github.com/xyproto/env/v2"

// DefaultOptions builds an Options value from RCCX_* environment
// variables, for the CLI to use as defaults before applying flags. Flags
// always win over the environment; the environment always wins over the
// hard-coded defaults below.
func DefaultOptions() Options {
	return Options{
		MaxWalkEntries: env.Int("RCCX_MAX_WALK", maxWalkEntries),
		Verbose:        env.Bool("RCCX_VERBOSE"),
	}
}
