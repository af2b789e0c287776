// Package meld decodes the server's 16-bit packed meld word into a
// structured call, grounded on tomohxx/mjai-gateway's utils/decoder.py.
package meld

import "mjaibridge/tile"

type Type string

const (
	Chi       Type = "chi"
	Pon       Type = "pon"
	Kakan     Type = "kakan"
	Daiminkan Type = "daiminkan"
	Ankan     Type = "ankan"
)

// Meld is a parsed call. Target is the seat the called tile came from,
// relative to the caller (0 for ankan, which calls nothing). Tiles[0] is
// the called tile for every type except ankan; the remainder are the
// tiles the caller contributed from hand. Unused (pon only) is the fourth
// copy left in hand; R (chi only) is the position of the called tile
// within the run (0 = lowest, 1 = middle, 2 = highest).
type Meld struct {
	Target int
	Type   Type
	Tiles  []int
	Unused *int
	R      *int
}

// Decode parses the 16-bit packed meld word m per spec.md §4.2.
func Decode(m uint16) Meld {
	switch {
	case m&(1<<2) != 0:
		return decodeChi(m)
	case m&(1<<3) != 0:
		return decodePon(m)
	case m&(1<<4) != 0:
		return decodeKakan(m)
	default:
		return decodeDaiminkanAnkan(m)
	}
}

func decodeChi(m uint16) Meld {
	t := int(m >> 10)
	r := t % 3
	t /= 3
	t = t/7*9 + t%7
	t *= 4

	h := []int{
		t + 4*0 + int((m>>3)&0x3),
		t + 4*1 + int((m>>5)&0x3),
		t + 4*2 + int((m>>7)&0x3),
	}
	h[0], h[r] = h[r], h[0]

	return Meld{Target: int(m & 3), Type: Chi, Tiles: h, R: intp(r)}
}

func decodePon(m uint16) Meld {
	unusedPos := int((m >> 5) & 0x3)
	t := int(m >> 9)
	r := t % 3
	t = t / 3 * 4

	h := []int{t, t + 1, t + 2, t + 3}
	unused := h[unusedPos]
	h = append(h[:unusedPos], h[unusedPos+1:]...)
	h[0], h[r] = h[r], h[0]

	return Meld{Target: int(m & 3), Type: Pon, Tiles: h, Unused: intp(unused)}
}

func decodeKakan(m uint16) Meld {
	addedPos := int((m >> 5) & 0x3)
	t := int(m >> 9)
	r := t % 3
	t = t / 3 * 4

	h := []int{t, t + 1, t + 2, t + 3}
	added := h[addedPos]
	h = append(h[:addedPos], h[addedPos+1:]...)
	h[0], h[r] = h[r], h[0]
	h = append([]int{added}, h...)

	return Meld{Target: int(m & 3), Type: Kakan, Tiles: h}
}

func decodeDaiminkanAnkan(m uint16) Meld {
	target := int(m & 3)
	hai0 := int(m >> 8)
	t := hai0 / 4 * 4
	r := hai0 % 4

	h := []int{t, t + 1, t + 2, t + 3}
	h[0], h[r] = h[r], h[0]

	typ := Daiminkan
	if target == 0 {
		typ = Ankan
	}

	return Meld{Target: target, Type: typ, Tiles: h}
}

func intp(v int) *int { return &v }

// Pai is the mjai label of the called tile (meaningless for ankan, which
// calls nothing, but still returns the first concealed tile's label for
// consistency with the reference implementation).
func (m Meld) Pai() string {
	return tile.EncodeOne(m.Tiles[0])
}

// Consumed is the mjai labels of the tiles the caller contributed from
// hand: all of Tiles for ankan, all but the called tile otherwise.
func (m Meld) Consumed() []string {
	if m.Type == Ankan {
		return tile.Encode(m.Tiles)
	}
	return tile.Encode(m.Tiles[1:])
}

// Exposed is the server indices that must be removed from the caller's
// concealed hand.
func (m Meld) Exposed() []int {
	switch m.Type {
	case Ankan:
		return m.Tiles
	case Kakan:
		return m.Tiles[0:1]
	default:
		return m.Tiles[1:]
	}
}
