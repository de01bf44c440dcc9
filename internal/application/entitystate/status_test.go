package entitystate

import "testing"

// TestStatusTracker_Transitions verifies that derived queries always agree with the single status value.
func TestStatusTracker_Transitions(t *testing.T) {
	tests := []struct {
		name          string
		apply         func(*StatusTracker)
		wantPhase     Phase
		wantPending   bool
		wantFulfilled bool
		wantErr       string
	}{
		{
			name:      "initial idle",
			apply:     func(*StatusTracker) {},
			wantPhase: PhaseIdle,
		},
		{
			name:        "pending",
			apply:       func(s *StatusTracker) { s.SetPending() },
			wantPhase:   PhasePending,
			wantPending: true,
		},
		{
			name:          "fulfilled",
			apply:         func(s *StatusTracker) { s.SetPending(); s.SetFulfilled() },
			wantPhase:     PhaseFulfilled,
			wantFulfilled: true,
		},
		{
			name:      "error",
			apply:     func(s *StatusTracker) { s.SetPending(); s.SetError("boom") },
			wantPhase: PhaseError,
			wantErr:   "boom",
		},
		{
			name:        "pending clears previous error",
			apply:       func(s *StatusTracker) { s.SetError("boom"); s.SetPending() },
			wantPhase:   PhasePending,
			wantPending: true,
		},
		{
			name:      "error overwrites fulfilled",
			apply:     func(s *StatusTracker) { s.SetFulfilled(); s.SetError("late") },
			wantPhase: PhaseError,
			wantErr:   "late",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StatusTracker
			tt.apply(&s)
			if got := s.Status().Phase; got != tt.wantPhase {
				t.Errorf("phase = %v, want %v", got, tt.wantPhase)
			}
			if s.IsPending() != tt.wantPending {
				t.Errorf("IsPending = %v, want %v", s.IsPending(), tt.wantPending)
			}
			if s.IsFulfilled() != tt.wantFulfilled {
				t.Errorf("IsFulfilled = %v, want %v", s.IsFulfilled(), tt.wantFulfilled)
			}
			if s.Err() != tt.wantErr {
				t.Errorf("Err = %q, want %q", s.Err(), tt.wantErr)
			}
		})
	}
}

// TestPhase_String verifies phase names used in JSON output.
func TestPhase_String(t *testing.T) {
	for phase, want := range map[Phase]string{
		PhaseIdle:      "idle",
		PhasePending:   "pending",
		PhaseFulfilled: "fulfilled",
		PhaseError:     "error",
	} {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
