package tui

import (
	"github.com/colonyops/tally/internal/core/grid"
)

// gridLoadedMsg reports the end of a fetch for the tab at index.
type gridLoadedMsg struct {
	tab int
	err error
}

// rowSavedMsg reports the end of an inline save.
type rowSavedMsg struct {
	tab int
	id  grid.ID
	row grid.Row
	err error
}

// rowDeletedMsg reports the end of a delete.
type rowDeletedMsg struct {
	tab     int
	id      grid.ID
	deleted bool
	err     error
}

// dialogSubmittedMsg reports the end of a dialog commit.
type dialogSubmittedMsg struct {
	tab int
	row grid.Row
	err error
}

// gridInvalidatedMsg asks the model to reload the named grid.
type gridInvalidatedMsg struct {
	grid string
}

// confirmRequestMsg carries a pending confirmation from a grid controller.
type confirmRequestMsg struct {
	req confirmRequest
}

type drainNotificationsMsg struct{}
