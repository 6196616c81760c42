package browse

import (
	"fmt"
	"testing"
)

func TestRecentDedupeAndOrder(t *testing.T) {
	s := NewRecentStore()
	s.Touch("a.txt")
	s.Touch("b.txt")
	s.Touch("a.txt")
	got := s.List()
	if len(got) != 2 || got[0].Path != "a.txt" || got[1].Path != "b.txt" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestRecentCap(t *testing.T) {
	s := NewRecentStore()
	for i := 0; i < RecentCap+10; i++ {
		s.Touch(fmt.Sprintf("f%03d.txt", i))
	}
	got := s.List()
	if len(got) != RecentCap {
		t.Fatalf("expected %d entries, got %d", RecentCap, len(got))
	}
	if got[0].Path != fmt.Sprintf("f%03d.txt", RecentCap+9) {
		t.Fatalf("newest entry missing: %+v", got[0])
	}
}

func TestRecentForget(t *testing.T) {
	s := NewRecentStore()
	s.Touch("a.txt")
	s.Forget("a.txt")
	if len(s.List()) != 0 {
		t.Fatal("entry not forgotten")
	}
}
