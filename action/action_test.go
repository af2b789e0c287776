package action

import (
	"testing"

	"mjaibridge/meld"
	"mjaibridge/state"
	"mjaibridge/win"
)

func TestCannotDahaiAfterReachStep1(t *testing.T) {
	// 14 tiles: 123m + a floating 9m, 456s, 789p, EE, 56p (ryanmen on
	// 4p/7p). Only the floating 9m is structurally spare; discarding
	// anything else breaks every suit's residue and leaves no wait.
	hand := []int{
		0, 4, 8, 32, // 1m 2m 3m 9m
		84, 88, 92, // 4s 5s 6s
		60, 64, 68, // 7p 8p 9p
		108, 109, // E E
		52, 56, // 5p 6p
	}

	forbidden := CannotDahaiAfterReachStep1(hand)
	forbiddenSet := map[int]bool{}
	for _, idx := range forbidden {
		forbiddenSet[idx] = true
	}

	for _, idx := range hand {
		isFloatingNineM := idx == 32
		if isFloatingNineM && forbiddenSet[idx] {
			t.Fatalf("discarding the floating 9m must stay ready (ryanmen on 4p/7p), but was forbidden")
		}
		if !isFloatingNineM && !forbiddenSet[idx] {
			t.Fatalf("discarding %d must break ready, but was allowed; forbidden=%v", idx, forbidden)
		}
	}
}

func TestAnkanOfferedWhenWaitUnchanged(t *testing.T) {
	// 13 tiles: 1m..9m (three complete runs) plus four 5s (kind 22,
	// indices 88..91); the drawn tile is the last 5s copy. Wait is
	// locked to whatever isrh gives on the hand with the quad removed,
	// so before/after necessarily agree and ankan must be offered.
	s := state.New("ai", "0000_9")
	s.InRiichi = true
	s.LiveWall = 10
	s.Hand = []int{0, 4, 8, 12, 16, 20, 24, 28, 32, 88, 89, 90, 91}
	s.Wait = win.Wait(tileCounts(removeKind(s.Hand, 22)))

	got := Ankan(s)
	if len(got) != 1 {
		t.Fatalf("expected ankan offered when wait is unchanged, got %v", got)
	}
}

func TestAnkanOkurikanForbiddenWhenWaitChanges(t *testing.T) {
	s := state.New("ai", "0000_9")
	s.InRiichi = true
	s.LiveWall = 10
	s.Hand = []int{0, 4, 8, 12, 16, 20, 24, 28, 32, 88, 89, 90, 91}
	s.Wait = map[int]bool{5: true} // deliberately wrong, simulating a wait that would change

	got := Ankan(s)
	if len(got) != 0 {
		t.Fatalf("expected ankan withheld when wait would change, got %v", got)
	}
}

func tileCounts(hand []int) [34]int {
	var c [34]int
	for _, h := range hand {
		c[h/4]++
	}
	return c
}

func removeKind(hand []int, kind int) []int {
	var out []int
	for _, h := range hand {
		if h/4 != kind {
			out = append(out, h)
		}
	}
	return out
}

func TestChiKuikaeLowEdgeCall(t *testing.T) {
	// run 3m4m5m, called tile 3m (the lowest, r=0) using hand 4m,5m: the
	// suji-kuikae extension forbids 6m (three above the called tile) in
	// addition to the called kind itself.
	r := 0
	m := meld.Meld{Type: meld.Chi, Tiles: []int{8, 12, 16}, R: &r} // 3m,4m,5m
	hand := []int{20, 24}                                         // 6m, 7m

	forbidden := CannotDahaiAfterNaki(m, hand)

	forbiddenSet := map[int]bool{}
	for _, idx := range forbidden {
		forbiddenSet[idx] = true
	}
	if !forbiddenSet[20] {
		t.Fatalf("6m (three above the called 3m) must be forbidden, got %v", forbidden)
	}
	if forbiddenSet[24] {
		t.Fatalf("7m must remain allowed, got %v", forbidden)
	}
}

func TestChiKuikaeHighEdgeCall(t *testing.T) {
	// run 7m8m9m, called tile 9m (the highest, r=2) using hand 7m,8m: the
	// symmetric extension forbids 6m (three below the called tile).
	r := 2
	m := meld.Meld{Type: meld.Chi, Tiles: []int{32, 24, 28}, R: &r} // 9m,7m,8m
	hand := []int{20, 16}                                          // 6m, 5m

	forbidden := CannotDahaiAfterNaki(m, hand)

	forbiddenSet := map[int]bool{}
	for _, idx := range forbidden {
		forbiddenSet[idx] = true
	}
	if !forbiddenSet[20] {
		t.Fatalf("6m (three below the called 9m) must be forbidden, got %v", forbidden)
	}
	if forbiddenSet[16] {
		t.Fatalf("5m must remain allowed, got %v", forbidden)
	}
}

func TestChiKuikaeNoExtensionWithoutRoom(t *testing.T) {
	// penchan: run 1m2m3m, called tile 3m (highest, r=2); there is no
	// kind three below 3m, so only the called kind itself is forbidden.
	r := 2
	m := meld.Meld{Type: meld.Chi, Tiles: []int{8, 0, 4}, R: &r} // 3m,1m,2m
	hand := []int{20, 24}                                       // 6m, 7m

	forbidden := CannotDahaiAfterNaki(m, hand)
	if len(forbidden) != 0 {
		t.Fatalf("forbidden = %v, want empty (no hand tile of the called kind, no room below)", forbidden)
	}
}

func TestPonUnusedCopyForbidden(t *testing.T) {
	unused := 1
	m := meld.Meld{Type: meld.Pon, Tiles: []int{0, 2, 3}, Unused: &unused}
	hand := []int{1, 20}

	forbidden := CannotDahaiAfterNaki(m, hand)
	if len(forbidden) != 1 || forbidden[0] != 1 {
		t.Fatalf("forbidden = %v, want [1] (the unused fourth copy)", forbidden)
	}
}
