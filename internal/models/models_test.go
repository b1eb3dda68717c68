package models

import "testing"

func TestValidOrderTransition(t *testing.T) {
	tests := []struct {
		from  string
		to    string
		valid bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusPaid, OrderStatusCompleted, true},
		{OrderStatusPaid, OrderStatusCancelled, false},
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCompleted, OrderStatusPaid, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
		{"unknown", OrderStatusPaid, false},
	}

	for _, tt := range tests {
		if got := ValidOrderTransition(tt.from, tt.to); got != tt.valid {
			t.Errorf("ValidOrderTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}
