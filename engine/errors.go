// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	ErrNoDecoders    = errors.New("no WAV decoder registered")
	ErrNoInputDevice = errors.New("no input device configured")
	ErrUnknownHandle = errors.New("unknown source handle")
	ErrEmptySource   = errors.New("source holds no audio frames")
	ErrClosed        = errors.New("engine is closed")

	// ErrBusy is returned when sources are added or removed while the pump
	// is running.
	ErrBusy = errors.New("engine is running")
)
