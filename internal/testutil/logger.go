// Package testutil provides shared test fixtures: a fake Veracode
// gateway and logging helpers.
package testutil

import (
	"log/slog"
)

// DiscardLogger returns a slog.Logger that drops all output. Handy when
// constructing a veracode.Client in tests where log noise would drown
// the failure message.
//
// log.Logger is a type alias for *slog.Logger, so this is
// interchangeable with log.NewNop(); this package re-exports the
// pattern to spare tests the extra import.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
