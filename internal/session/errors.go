package session

import "errors"

var (
	ErrInvalidCredentials = errors.New("email and password are required")
	ErrNotReady           = errors.New("session has not been rehydrated yet")
)
