// Package domain contains the core entities of the app:
// profiles, games, participations and messages.
// No storage, network, or transport logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the public attributes of a registered player,
// including the onboarding answers (level, hand, availability, goal).
type Profile struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	AvatarPath   string
	TennisLevel  string
	PlayHand     string
	Goal         string
	Availability map[string][]string // weekday -> periods, e.g. "mon" -> ["morning", "evening"]
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
