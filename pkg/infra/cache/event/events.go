package event

import "reflect"

type Event interface {
	Type() string
}

var (
	RuleSetReloadEventType = "RuleSetReloadEvent"
)

var Registry = map[string]reflect.Type{
	RuleSetReloadEventType: reflect.TypeOf(RuleSetReloadEvent{}),
}
