// Package win evaluates a 34-kind tile-count vector for standard, seven
// pairs, and thirteen orphans winning shapes, and computes the wait set,
// grounded on tomohxx/mjai-gateway's src/utils/judwin.py and judrdy.py.
package win

// terminalsAndHonors are the kind indices kokushi musou requires at least
// one copy of: the nine terminals (1 and 9 of each suit) and the seven
// honors.
var terminalsAndHonors = [13]int{0, 8, 9, 17, 18, 26, 27, 28, 29, 30, 31, 32, 33}

// IsSevenPairs reports whether h is seven distinct pairs.
func IsSevenPairs(h [34]int) bool {
	total := 0
	for _, c := range h {
		if c != 0 && c != 2 {
			return false
		}
		total += c
	}
	return total == 14
}

// IsThirteenOrphans reports whether h is a thirteen-orphans hand: one copy
// of each terminal/honor kind (two for the pair) and nothing else.
func IsThirteenOrphans(h [34]int) bool {
	if sum(h[:]) != 14 {
		return false
	}
	for i, c := range h {
		if c > 0 && !isTerminalOrHonor(i) {
			return false
		}
	}
	for _, i := range terminalsAndHonors {
		if h[i] == 0 {
			return false
		}
	}
	return true
}

func isTerminalOrHonor(kind int) bool {
	switch kind {
	case 0, 8, 9, 17, 18, 26, 27, 28, 29, 30, 31, 32, 33:
		return true
	default:
		return false
	}
}

// IsStandard reports whether h partitions into four melds and one pair,
// each meld a triplet or an in-suit run of three consecutive kinds. h is
// restored to its input values before returning.
func IsStandard(h [34]int) bool {
	var head = -1

	for i := 0; i < 3; i++ {
		s := sum(h[9*i : 9*i+9])
		switch s % 3 {
		case 1:
			return false
		case 2:
			if head != -1 {
				return false
			}
			head = i
		}
	}

	for i := 27; i < 34; i++ {
		switch h[i] % 3 {
		case 1:
			return false
		case 2:
			if head != -1 {
				return false
			}
			head = i
		}
	}

	for i := 0; i < 3; i++ {
		suit := [9]int{}
		copy(suit[:], h[9*i:9*i+9])
		if i == head {
			if !isStandardWithPair(suit) {
				return false
			}
		} else {
			if !isStandardNoPair(suit) {
				return false
			}
		}
	}

	return true
}

// isStandardNoPair is iswh0: a single suit of 9 kinds decomposes entirely
// into runs and triplets, no pair present.
func isStandardNoPair(h [9]int) bool {
	a, b := h[0], h[1]

	for i := 0; i < 7; i++ {
		r := a % 3
		if b < r || h[i+2] < r {
			return false
		}
		a, b = b-r, h[i+2]-r
	}

	return a%3 == 0 && b%3 == 0
}

// isStandardWithPair is iswh2: a single suit of 9 kinds contains exactly
// one pair plus runs/triplets.
func isStandardWithPair(h [9]int) bool {
	s := 0
	for i, c := range h {
		s += i * c
	}

	for p := (s * 2) % 3; p < 9; p += 3 {
		if h[p] >= 2 {
			h[p] -= 2
			if isStandardNoPair(h) {
				return true
			}
			h[p] += 2
		}
	}

	return false
}

func sum(h []int) int {
	s := 0
	for _, c := range h {
		s += c
	}
	return s
}

// IsWin reports whether h (however it arose — draw or claimed discard) is
// any of the three winning shapes.
func IsWin(h [34]int) bool {
	return IsStandard(h) || IsSevenPairs(h) || IsThirteenOrphans(h)
}

// Wait returns the set of kind indices that complete h: for each kind with
// fewer than four copies, tentatively add one and test IsWin.
func Wait(h [34]int) map[int]bool {
	ret := make(map[int]bool)

	for i := 0; i < 34; i++ {
		if h[i] >= 4 {
			continue
		}
		h[i]++
		if IsWin(h) {
			ret[i] = true
		}
		h[i]--
	}

	return ret
}
