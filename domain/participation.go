package domain

import (
	"time"

	"github.com/google/uuid"
)

type ParticipationStatus string

const ParticipationConfirmed ParticipationStatus = "confirmed"

// Participation links a user to a game they joined.
// At most one row may exist per (game, user) pair.
type Participation struct {
	ID        uuid.UUID
	GameID    GameID
	UserID    uuid.UUID
	Status    ParticipationStatus
	CreatedAt time.Time
}
