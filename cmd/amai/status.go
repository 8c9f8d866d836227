package main

import (
	"time"

	"github.com/pes18fan/amai/library"
	"github.com/pes18fan/amai/termimg"
)

// A status message sent from a background task to the bubbletea UI.
// Status structs, alongside acting as a notifier for changes, also provide
// information about the change.
type Status interface {
	isStatus()
}

// Status update sent when the track at Index played to its end.
type TrackFinished struct {
	Index int
}

func (TrackFinished) isStatus() {}

// Status update sent when the metadata of a track has been read.
// This is typically sent out when the playing track changes.
type AudioInfoUpdate struct {
	Path   string
	Artist string
	Title  string
	Album  string
	Art    termimg.TerminalImage

	// Length from the tags, shown when the engine cannot tell.
	Duration time.Duration
}

func (AudioInfoUpdate) isStatus() {}

// Status update sent when the music folder changed on disk.
type LibraryChanged struct{}

func (LibraryChanged) isStatus() {}

// Status update carrying a fresh scan of the music folder.
type LibraryUpdate struct {
	List library.List
	Err  error
}

func (LibraryUpdate) isStatus() {}

type ErrorUpdate struct {
	Err error
}

func (ErrorUpdate) isStatus() {}

// Sent every position interval while a track is playing.
type positionTick struct{}

// tea message type for status updates
type StatusMsg Status
