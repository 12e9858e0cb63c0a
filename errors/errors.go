package errors

import "fmt"

var (
	ErrNotFound            = fmt.Errorf("record not found")
	ErrDuplicateMembership = fmt.Errorf("participation already exists for this game and user")
	ErrForbidden           = fmt.Errorf("operation restricted to the game host")
	ErrEmptyMessage        = fmt.Errorf("message content is empty")
	ErrFeedClosed          = fmt.Errorf("message feed is closed")
	ErrInvalidCredentials  = fmt.Errorf("invalid credentials")
	ErrInvalidPassword     = fmt.Errorf("password does not meet complexity requirements")
	ErrEmailTaken          = fmt.Errorf("email already registered")
	ErrTokenGeneration     = fmt.Errorf("token generation failed")
	ErrUnsupportedImage    = fmt.Errorf("unsupported image type")
	ErrEmptyWords          = fmt.Errorf("no words have been found")
	ErrWorkerPanic         = fmt.Errorf("worker panic")
)
