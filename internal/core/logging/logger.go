package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// Grid returns the logger for one grid controller.
func Grid(name string) zerolog.Logger {
	return log.With().Str("cmp", "grid").Str("grid", name).Logger()
}
