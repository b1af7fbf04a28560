package gate

// Outcome is the terminal result of one wait. Exactly one outcome is
// delivered per wait call and it is never revised afterwards. Timeouts and
// interruptions are outcomes, not errors.
type Outcome uint8

const (
	// OutcomeUnblocked means an unblock signal released the waiter.
	OutcomeUnblocked Outcome = iota
	// OutcomeInterrupted means an interrupt signal released the waiter.
	OutcomeInterrupted
	// OutcomeTimedOut means the wait deadline elapsed first.
	OutcomeTimedOut
	// OutcomeCancelled means the waiter was cancelled by ID.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnblocked:
		return "unblocked"
	case OutcomeInterrupted:
		return "interrupted"
	case OutcomeTimedOut:
		return "timed-out"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
