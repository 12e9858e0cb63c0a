package domain

import (
	"time"

	"github.com/google/uuid"
)

type GameID int64

type GameMode string

const (
	GameModeSingle GameMode = "single"
	GameModeDouble GameMode = "double"
)

// Game is a scheduled match with exactly one host.
// The host is implicitly a member even when absent from the
// participation rows.
type Game struct {
	ID          GameID
	HostID      uuid.UUID
	Title       string
	Location    string
	Date        string // free-form date/time text, kept as the host typed it
	TennisLevel string
	Mode        GameMode
	ImagePath   string
	CreatedAt   time.Time
}

// NewGameID derives a creation-time identifier. Later games always get
// larger identifiers, so descending id order doubles as recency order.
func NewGameID(at time.Time) GameID {
	return GameID(at.UnixNano())
}
