package handlers

import (
	"strings"
	"testing"

	"drinkdrop-go/internal/db"
)

func TestSequentialTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{db.OrderStatusPaid, db.OrderStatusProcessing, true},
		{db.OrderStatusPaid, db.OrderStatusCancelled, true},
		{db.OrderStatusPaid, db.OrderStatusDelivered, false},
		{db.OrderStatusProcessing, db.OrderStatusOutForDelivery, true},
		{db.OrderStatusProcessing, db.OrderStatusCancelled, true},
		{db.OrderStatusProcessing, db.OrderStatusPaid, false},
		{db.OrderStatusOutForDelivery, db.OrderStatusDelivered, true},
		{db.OrderStatusOutForDelivery, db.OrderStatusCancelled, true},
		{db.OrderStatusOutForDelivery, db.OrderStatusProcessing, false},
		{db.OrderStatusDelivered, db.OrderStatusCancelled, false},
		{db.OrderStatusCancelled, db.OrderStatusPaid, false},
	}
	for _, tc := range cases {
		if got := sequentialTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("sequentialTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{
		db.OrderStatusPaid, db.OrderStatusProcessing, db.OrderStatusOutForDelivery,
		db.OrderStatusDelivered, db.OrderStatusCancelled,
	} {
		if !validOrderStatus(s) {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []string{"", "paid", "SHIPPED", "NEW"} {
		if validOrderStatus(s) {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestOrderRef(t *testing.T) {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ref := orderRef()
		if len(ref) != 8 {
			t.Fatalf("len(%q) = %d, want 8", ref, len(ref))
		}
		for _, c := range ref {
			if !strings.ContainsRune(charset, c) {
				t.Fatalf("ref %q contains %q outside the charset", ref, c)
			}
		}
		seen[ref] = true
	}
	if len(seen) < 45 {
		t.Fatalf("only %d distinct refs out of 50", len(seen))
	}
}
