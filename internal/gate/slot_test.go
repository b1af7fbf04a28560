package gate

import "testing"

func TestSlotPrecedence(t *testing.T) {
	cases := []struct {
		name string
		seq  []SignalKind
		want SignalKind
	}{
		{"empty", nil, SignalNone},
		{"unblock", []SignalKind{SignalUnblock}, SignalUnblock},
		{"interrupt", []SignalKind{SignalInterrupt}, SignalInterrupt},
		{"unblock twice collapses", []SignalKind{SignalUnblock, SignalUnblock}, SignalUnblock},
		{"interrupt overwrites unblock", []SignalKind{SignalUnblock, SignalInterrupt}, SignalInterrupt},
		{"unblock does not overwrite interrupt", []SignalKind{SignalInterrupt, SignalUnblock}, SignalInterrupt},
		{"interrupt sticky across churn", []SignalKind{SignalUnblock, SignalInterrupt, SignalUnblock, SignalUnblock}, SignalInterrupt},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s signalSlot
			for _, k := range tc.seq {
				s.store(k)
			}
			if s.pending != tc.want {
				t.Fatalf("pending = %v, want %v", s.pending, tc.want)
			}
		})
	}
}

func TestSlotTakeEmpties(t *testing.T) {
	var s signalSlot
	if _, ok := s.take(); ok {
		t.Fatalf("take on empty slot reported a signal")
	}
	s.store(SignalInterrupt)
	k, ok := s.take()
	if !ok || k != SignalInterrupt {
		t.Fatalf("take = %v, %v; want interrupt, true", k, ok)
	}
	if _, ok := s.take(); ok {
		t.Fatalf("slot not empty after take")
	}
}

func TestSignalOutcomeMapping(t *testing.T) {
	if got := SignalUnblock.outcome(); got != OutcomeUnblocked {
		t.Fatalf("unblock outcome = %v", got)
	}
	if got := SignalInterrupt.outcome(); got != OutcomeInterrupted {
		t.Fatalf("interrupt outcome = %v", got)
	}
}
