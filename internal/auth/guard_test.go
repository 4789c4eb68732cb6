package auth

import "testing"

func TestGuard(t *testing.T) {
	tests := []struct {
		state State
		want  Decision
	}{
		{StateUninitialized, Decision{Action: Wait}},
		{StateInitializing, Decision{Action: Wait}},
		{StateAuthenticated, Decision{Action: Render}},
		{StateUnauthenticated, Decision{Action: Redirect, To: "/"}},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := Guard(tt.state); got != tt.want {
				t.Errorf("Guard(%v) = %+v, want %+v", tt.state, got, tt.want)
			}
		})
	}
}
