package order

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCanceled, true},
		{StatusPending, StatusShipping, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusShipping, true},
		{StatusConfirmed, StatusCanceled, true},
		{StatusConfirmed, StatusDelivered, false},
		{StatusConfirmed, StatusPending, false},
		{StatusShipping, StatusDelivered, true},
		{StatusShipping, StatusCanceled, true},
		{StatusShipping, StatusConfirmed, false},
		{StatusDelivered, StatusCanceled, false},
		{StatusDelivered, StatusShipping, false},
		{StatusCanceled, StatusPending, false},
		{StatusCanceled, StatusConfirmed, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatusSameStateAllowed(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusShipping, StatusDelivered, StatusCanceled} {
		if !s.CanTransitionTo(s) {
			t.Errorf("%s -> %s should be allowed as a no-op", s, s)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusDelivered, StatusCanceled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusShipping} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if _, err := ParseStatus("CONFIRMED"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseStatus("confirmed"); err == nil {
		t.Fatal("expected error for lowercase status")
	}
	if _, err := ParseStatus("REFUNDED"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
