package vessel

// Signal is a non-fatal warning raised by a mutation: the clay still holds
// a valid shape, but the potter should be told.
type Signal int

const (
	SignalNone         Signal = iota
	SignalNearCollapse        // wall pulled too fast, smoothness failing
	SignalTooThin             // trimmed past the safe wall thickness
)

func (s Signal) String() string {
	switch s {
	case SignalNone:
		return "none"
	case SignalNearCollapse:
		return "near-collapse"
	case SignalTooThin:
		return "too-thin"
	default:
		return "unknown"
	}
}

// Message is the user-facing text for the signal. It is empty for SignalNone.
func (s Signal) Message() string {
	switch s {
	case SignalNearCollapse:
		return "The clay is about to collapse!"
	case SignalTooThin:
		return "The wall is getting too thin!"
	default:
		return ""
	}
}
