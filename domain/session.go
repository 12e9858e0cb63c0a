package domain

import "github.com/google/uuid"

// Session is the authenticated identity reported by the auth gateway.
// The full Profile is fetched separately and may be missing when the
// profile lookup fails; the identity alone is still valid.
type Session struct {
	UserID uuid.UUID
	Email  string
}
