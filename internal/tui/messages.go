package tui

import (
	"github.com/mmcdole/marquee/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// DetailsLoadedMsg signals that a detail page and its list membership loaded
type DetailsLoadedMsg struct {
	Details domain.Details
	InList  bool
}

// RowLoadedMsg signals that a catalog row has been resolved
type RowLoadedMsg struct {
	Row   domain.Row
	Items []domain.Details
}

// TrailerLaunchedMsg signals that the player was started for a trailer
type TrailerLaunchedMsg struct {
	Trailer domain.VideoCandidate
}

// ListToggledMsg signals that an item was added to or removed from the list
type ListToggledMsg struct {
	Kind   domain.MediaKind
	ID     int64
	InList bool
}

// BackMsg asks the parent view to close the current view
type BackMsg struct{}
