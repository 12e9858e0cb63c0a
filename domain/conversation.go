package domain

// Conversation is the inbox view of a game the user belongs to,
// either as a participant or as the host. Derived, never persisted.
type Conversation struct {
	Game   Game
	IsHost bool
}
