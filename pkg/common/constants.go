package common

const (
	RequestIDHeader = "X-Request-Id"
	SessionIDHeader = "X-Session-Id"
)
