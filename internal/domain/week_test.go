package domain

import (
	"testing"
	"time"
)

func TestNormalizeWeekTagAcceptsConformantMonday(t *testing.T) {
	ref := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC) // a Monday
	tag, replaced := NormalizeWeekTag("20260803", ref)
	if replaced {
		t.Fatalf("expected conformant tag to be accepted as-is")
	}
	if tag != "20260803" {
		t.Errorf("tag = %s, want 20260803", tag)
	}
}

func TestNormalizeWeekTagReplacesNonConformant(t *testing.T) {
	ref := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC) // a Wednesday
	tag, replaced := NormalizeWeekTag("not-a-tag", ref)
	if !replaced {
		t.Fatalf("expected non-conformant tag to be replaced")
	}
	if tag != "20260803" {
		t.Errorf("tag = %s, want Monday 20260803", tag)
	}
}

func TestShortlistClientIDsPreservesOrder(t *testing.T) {
	s := Shortlist{Clients: []Client{{ClientID: 3}, {ClientID: 1}, {ClientID: 2}}}
	ids := s.ClientIDs()
	want := []int{3, 1, 2}
	for i, id := range want {
		if ids[i] != id {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], id)
		}
	}
}
