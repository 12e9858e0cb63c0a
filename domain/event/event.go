package event

import (
	"time"

	"courtside/domain"

	"github.com/google/uuid"
)

type DomainEvent interface {
	GameID() domain.GameID
}

// MessageInserted is emitted after a message row is committed.
// It carries only the written columns; the sender display name is
// resolved by consumers that need it.
type MessageInserted struct {
	ID      uuid.UUID
	Game    int64
	Sender  uuid.UUID
	Content string
	At      time.Time
}

func (m MessageInserted) GameID() domain.GameID {
	return domain.GameID(m.Game)
}

type ParticipantJoined struct {
	Game   int64
	UserID uuid.UUID
	At     time.Time
}

func (p ParticipantJoined) GameID() domain.GameID {
	return domain.GameID(p.Game)
}

type ParticipantLeft struct {
	Game   int64
	UserID uuid.UUID
	At     time.Time
}

func (p ParticipantLeft) GameID() domain.GameID {
	return domain.GameID(p.Game)
}

type GameRemoved struct {
	Game int64
}

func (g GameRemoved) GameID() domain.GameID {
	return domain.GameID(g.Game)
}
