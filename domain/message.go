package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is an immutable chat entry, append-only within a game and
// strictly ordered by creation time. SenderName is a joined display
// name; raw rows coming off the live stream carry an empty one until
// the feed enriches them.
type Message struct {
	ID         uuid.UUID
	GameID     GameID
	SenderID   uuid.UUID
	SenderName string
	Content    string
	CreatedAt  time.Time
}
