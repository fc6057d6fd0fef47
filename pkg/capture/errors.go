package capture

import "errors"

var (
	// ErrAlreadyInProgress is returned when a capture starts while another
	// one is running on the same engine.
	ErrAlreadyInProgress = errors.New("capture already in progress")
	// ErrNoContainerFound means no scrollable transcript pane was found. It
	// is logged, not returned: the engine falls back to the visible rows.
	ErrNoContainerFound = errors.New("no scrollable transcript container found")
)
