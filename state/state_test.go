package state

import (
	"testing"

	"mjaibridge/meld"
)

func TestResetRoundClearsAndReloadsWall(t *testing.T) {
	s := New("ai", "0000_9")
	s.Hand = []int{0, 1, 2}
	s.InRiichi = true
	s.LiveWall = 3
	s.Wait = map[int]bool{0: true}

	s.ResetRound()

	if s.Hand != nil || s.InRiichi || s.Wait != nil {
		t.Fatalf("ResetRound left stale state: %+v", s)
	}
	if s.LiveWall != 70 {
		t.Fatalf("LiveWall = %d, want 70", s.LiveWall)
	}
	if s.Name != "ai" || s.Room != "0000_9" {
		t.Fatalf("ResetRound must not touch Name/Room")
	}
}

func TestDrawDecrementsWall(t *testing.T) {
	s := New("ai", "0000_9")
	s.ResetRound()
	s.Draw()
	if s.LiveWall != 69 {
		t.Fatalf("LiveWall = %d, want 69", s.LiveWall)
	}
}

func TestAddMeldRemovesExposedTiles(t *testing.T) {
	// pon of 1m called from kamicha, unused copy = 1 (copy index 1 stays
	// in hand); the caller's hand holds copies 2 and 3 plus an unrelated
	// 2m tile.
	kind, r, unusedPos, target := 0, 0, 1, 1
	tField := kind*3 + r
	m := uint16(tField<<9) | uint16(unusedPos<<5) | uint16(1<<3) | uint16(target)
	p := meld.Decode(m)

	s := New("ai", "0000_9")
	s.Hand = []int{2, 3, 4}

	s.AddMeld(p)

	if len(s.Melds) != 1 {
		t.Fatalf("expected 1 recorded meld")
	}
	for _, idx := range p.Exposed() {
		for _, h := range s.Hand {
			if h == idx {
				t.Fatalf("hand still contains exposed tile %d", idx)
			}
		}
	}
	if len(s.Hand) != 1 || s.Hand[0] != 4 {
		t.Fatalf("hand = %v, want [4]", s.Hand)
	}
}

func TestDiscardRemovesOneCopy(t *testing.T) {
	s := New("ai", "0000_9")
	s.Hand = []int{0, 0 + 1, 4}
	s.Discard(1)
	if len(s.Hand) != 2 {
		t.Fatalf("hand len = %d, want 2", len(s.Hand))
	}
	for _, h := range s.Hand {
		if h == 1 {
			t.Fatalf("discarded tile 1 still present")
		}
	}
}
