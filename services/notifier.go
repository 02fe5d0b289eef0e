package services

// Notifier pushes a state-change event to the given recipients, best effort.
// Delivery is not required for correctness; disconnected recipients pick the
// new state up on their next fetch.
type Notifier interface {
	Notify(userIDs []string, event string, payload interface{})
}

// NopNotifier discards events. Used in tests and by the offline repair tool.
type NopNotifier struct{}

func (NopNotifier) Notify([]string, string, interface{}) {}
