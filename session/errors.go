// SPDX-License-Identifier: EPL-2.0

package session

import "errors"

var (
	// ErrDecoderUnavailable is returned by Engine.Initialize when the full
	// decoding subsystem could not be loaded. The controller keeps working
	// with the reduced set of formats and disables input sources.
	ErrDecoderUnavailable = errors.New("decoding subsystem unavailable")

	// ErrNilEngine is returned by New when no engine is given.
	ErrNilEngine = errors.New("session requires an engine")
)
