package domain

// State represents user's current conversation state
type State string

const (
	// StateIdle means no input is pending; commands and button
	// presses drive the conversation.
	StateIdle State = "idle"
	// StateAwaitingQuestion means the next free-text message is
	// forwarded to the completion service.
	StateAwaitingQuestion State = "awaiting_question"
)

// MemberStatus is the outcome of a channel-membership check.
type MemberStatus int

const (
	// StatusUnknown means the membership query failed; callers must
	// treat it as a denial, never as Subscribed.
	StatusUnknown MemberStatus = iota
	StatusSubscribed
	StatusNotSubscribed
)

func (s MemberStatus) String() string {
	switch s {
	case StatusSubscribed:
		return "subscribed"
	case StatusNotSubscribed:
		return "not_subscribed"
	default:
		return "unknown"
	}
}
