package channel

type Channel string

const (
	SafetyEvents Channel = "doctourgate:safety_events"
)
