package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotLoaded      = errors.New("handicap data not loaded")
	ErrPlayerNotFound = errors.New("player not found")
	ErrNoSource       = errors.New("no document source configured")
	ErrNoPlayers      = errors.New("no players configured")
	ErrInvalidRange   = errors.New("start date is after end date")
)
