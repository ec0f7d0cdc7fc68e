package models

import "testing"

func TestURLSet(t *testing.T) {
	s := NewURLSet("b", "a")

	if !s.Contains("a") || !s.Contains("b") {
		t.Fatal("seeded URLs missing")
	}
	if s.Contains("c") {
		t.Fatal("unexpected member")
	}

	s.Add("c")
	s.Add("c")
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}

	got := s.Values()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() = %v, want sorted %v", got, want)
		}
	}
}
