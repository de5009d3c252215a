package testfixtures

import "testing"

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("booking")
	next := gen.NextFunc()

	if got := next(); got != "booking-1" {
		t.Fatalf("expected booking-1, got %s", got)
	}
	if got := next(); got != "booking-2" {
		t.Fatalf("expected booking-2, got %s", got)
	}
	if issued := gen.Issued(); len(issued) != 2 {
		t.Fatalf("expected two issued ids, got %v", issued)
	}
	if got := NewIDGenerator("").Next(); got != "id-1" {
		t.Fatalf("expected default prefix, got %s", got)
	}
}
