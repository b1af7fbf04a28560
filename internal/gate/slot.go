package gate

// SignalKind is the kind of signal a gate can hold pending.
type SignalKind uint8

const (
	// SignalNone means no signal is pending.
	SignalNone SignalKind = iota
	// SignalUnblock is a plain wake.
	SignalUnblock
	// SignalInterrupt is the stronger, cancellation-bearing signal.
	SignalInterrupt
)

func (k SignalKind) String() string {
	switch k {
	case SignalNone:
		return "none"
	case SignalUnblock:
		return "unblock"
	case SignalInterrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

func (k SignalKind) outcome() Outcome {
	if k == SignalInterrupt {
		return OutcomeInterrupted
	}
	return OutcomeUnblocked
}

// signalSlot holds at most one pending signal. Interrupt dominates unblock:
// an interrupt overwrites a pending unblock, an unblock never overwrites a
// pending interrupt. There is no history beyond the one cell.
type signalSlot struct {
	pending SignalKind
}

func (s *signalSlot) store(incoming SignalKind) {
	switch incoming {
	case SignalInterrupt:
		s.pending = SignalInterrupt
	case SignalUnblock:
		if s.pending != SignalInterrupt {
			s.pending = SignalUnblock
		}
	}
}

func (s *signalSlot) take() (SignalKind, bool) {
	k := s.pending
	if k == SignalNone {
		return SignalNone, false
	}
	s.pending = SignalNone
	return k, true
}

func (s *signalSlot) clear() {
	s.pending = SignalNone
}
