package common

// Keys stored in fiber locals.
const (
	RequestIDKey    = "request_id"
	AdminSubjectKey = "admin_subject"
	SemaphoreKey    = "ws_semaphore"
)
