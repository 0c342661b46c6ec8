package handlers

const (
	RequestIDHeader = "X-Request-ID"

	ErrInternalServerError = "Internal server error"
	ErrStoreUnavailable    = "Dictionary store unavailable"
	ErrRateLimited         = "Too many requests"
	ErrStartingUp          = "Server is starting up"
)
