// Package action enumerates the legal moves offered to the AI on each
// server event and the discards forbidden by an active call or riichi
// step, grounded on tomohxx/mjai-gateway's src/responder.py (the
// consumed_* and cannot_dahai methods of its Tsumo, Dahai, Naki, and
// ReachStep1 handlers).
package action

import (
	"mjaibridge/meld"
	"mjaibridge/state"
	"mjaibridge/tile"
	"mjaibridge/win"
)

// Ankan returns one 4-tile group (hand indices, same kind) per eligible
// ankan. Outside riichi any kind held four times qualifies; in riichi only
// the kind of the tile just drawn qualifies, and only if removing it
// leaves the wait set unchanged (no okurikan).
func Ankan(s *state.State) [][]int {
	var ret [][]int
	if s.LiveWall <= 0 {
		return ret
	}

	counts := tile.ToKindCounts(s.Hand)

	if s.InRiichi {
		if len(s.Hand) == 0 {
			return ret
		}
		i := tile.Kind(s.Hand[len(s.Hand)-1])
		if counts[i] != 4 {
			return ret
		}

		counts[i] -= 4
		after := win.Wait(counts)
		counts[i] += 4

		if sameWaitSet(s.Wait, after) {
			ret = append(ret, groupOfKind(s.Hand, i))
		}
		return ret
	}

	for i := 0; i < 34; i++ {
		if counts[i] == 4 {
			ret = append(ret, groupOfKind(s.Hand, i))
		}
	}
	return ret
}

// Kakan returns, for every concealed tile whose kind matches an existing
// pon, the group [added, pon.Tiles...] that kakan call would produce.
func Kakan(s *state.State) [][]int {
	var ret [][]int
	if s.LiveWall <= 0 {
		return ret
	}

	for _, i := range s.Hand {
		for _, m := range s.Melds {
			if m.Type == meld.Pon && tile.Kind(i) == tile.Kind(m.Tiles[0]) {
				group := append([]int{i}, m.Tiles...)
				ret = append(ret, group)
			}
		}
	}
	return ret
}

// Pon returns every unordered pair of hand tiles matching the discarded
// tile's kind.
func Pon(hand []int, discarded int) [][2]int {
	var ret [][2]int
	kind := tile.Kind(discarded)
	for a := 0; a < len(hand); a++ {
		for b := a + 1; b < len(hand); b++ {
			if tile.Kind(hand[a]) == kind && tile.Kind(hand[b]) == kind {
				ret = append(ret, [2]int{hand[a], hand[b]})
			}
		}
	}
	return ret
}

// Kan returns every hand tile of the discarded tile's kind, for a
// daiminkan. A daiminkan is only possible when exactly three are returned;
// the caller checks that.
func Kan(hand []int, discarded int) []int {
	kind := tile.Kind(discarded)
	var ret []int
	for _, i := range hand {
		if tile.Kind(i) == kind {
			ret = append(ret, i)
		}
	}
	return ret
}

// Chi returns every ordered pair of hand tiles that together with the
// discarded tile form a consecutive in-suit run, with no wraparound and
// no honors.
func Chi(hand []int, discarded int) [][2]int {
	var ret [][2]int
	discardedKind := tile.Kind(discarded)
	if discardedKind >= 27 {
		return nil
	}

	for _, i := range hand {
		for _, j := range hand {
			if i == j {
				continue
			}
			iKind, jKind := tile.Kind(i), tile.Kind(j)
			if iKind/9 != jKind/9 || jKind/9 != discardedKind/9 {
				continue
			}
			switch {
			case discardedKind == iKind-1 && discardedKind == jKind-2:
				ret = append(ret, [2]int{i, j})
			case iKind+1 == discardedKind && discardedKind == jKind-1:
				ret = append(ret, [2]int{i, j})
			case iKind+2 == jKind+1 && jKind+1 == discardedKind:
				ret = append(ret, [2]int{i, j})
			}
		}
	}
	return ret
}

// CannotDahaiAfterNaki returns the hand tiles forbidden as an immediate
// discard following m: after a pon, the unused fourth copy (to block an
// instant kakan); after a chi, every tile of the called kind plus, for a
// low- or high-edge call, the kuikae kind three away.
func CannotDahaiAfterNaki(m meld.Meld, hand []int) []int {
	switch m.Type {
	case meld.Pon:
		if m.Unused == nil {
			return nil
		}
		for _, h := range hand {
			if h == *m.Unused {
				return []int{*m.Unused}
			}
		}
		return nil
	case meld.Chi:
		calledKind := tile.Kind(m.Tiles[0])
		forbidden := groupOfKind(hand, calledKind)

		if m.R != nil {
			switch *m.R {
			case 0:
				// called tile is the run's lowest; the run is not at the
				// suit's top iff there's room for a kind three above.
				if calledKind%9 < 6 {
					forbidden = append(forbidden, groupOfKind(hand, calledKind+3)...)
				}
			case 2:
				// called tile is the run's highest; symmetric kuikae
				// three kinds below.
				if calledKind%9 > 2 {
					forbidden = append(forbidden, groupOfKind(hand, calledKind-3)...)
				}
			}
		}
		return dedupInts(forbidden)
	default:
		return nil
	}
}

// CannotDahaiAfterReachStep1 returns every hand tile whose removal would
// leave the hand not ready, computed by testing isrh after each candidate
// discard.
func CannotDahaiAfterReachStep1(hand []int) []int {
	counts := tile.ToKindCounts(hand)

	var forbidden []int
	for _, idx := range hand {
		k := tile.Kind(idx)
		if counts[k] == 0 {
			continue
		}
		counts[k]--
		if len(win.Wait(counts)) == 0 {
			forbidden = append(forbidden, idx)
		}
		counts[k]++
	}
	return dedupInts(forbidden)
}

func groupOfKind(hand []int, kind int) []int {
	var ret []int
	for _, h := range hand {
		if tile.Kind(h) == kind {
			ret = append(ret, h)
		}
	}
	return ret
}

func dedupInts(in []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func sameWaitSet(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
