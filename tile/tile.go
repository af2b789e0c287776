// Package tile implements the bidirectional mapping between server tile
// indices (0..135) and mjai tile labels ("1m".."9s", honors, "5mr" etc.),
// grounded on tomohxx/mjai-gateway's utils/converter.py.
package tile

import (
	"fmt"
	"sort"
)

// kindLabels[i] is the label of kind index i (0..33), without the red
// suffix.
var kindLabels = [34]string{
	"1m", "2m", "3m", "4m", "5m", "6m", "7m", "8m", "9m",
	"1p", "2p", "3p", "4p", "5p", "6p", "7p", "8p", "9p",
	"1s", "2s", "3s", "4s", "5s", "6s", "7s", "8s", "9s",
	"E", "S", "W", "N", "P", "F", "C",
}

var kindByLabel = func() map[string]int {
	m := make(map[string]int, 34*2)
	for i, l := range kindLabels {
		m[l] = i
	}
	// Red-five labels map to the same kind as their plain counterpart.
	m["5mr"] = 4
	m["5pr"] = 13
	m["5sr"] = 22
	return m
}()

// redIndices are the three server indices that carry the red-five tile.
var redIndices = map[int]bool{16: true, 52: true, 88: true}

// EncodingError reports a decode that found no matching copy in hand.
type EncodingError struct {
	Label string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("tile: no copy of %q in hand", e.Label)
}

// Kind returns the 0..33 kind index of a server index 0..135.
func Kind(index int) int {
	return index / 4
}

// IsRed reports whether a server index is a red five.
func IsRed(index int) bool {
	return redIndices[index] && index%4 == 0
}

// EncodeOne converts a server index to its mjai label.
func EncodeOne(index int) string {
	label := kindLabels[Kind(index)]
	if IsRed(index) {
		return label + "r"
	}
	return label
}

// Encode converts a slice of server indices to mjai labels, in order.
func Encode(indices []int) []string {
	out := make([]string, len(indices))
	for i, idx := range indices {
		out[i] = EncodeOne(idx)
	}
	return out
}

// DecodeOne picks one concrete server index out of hand matching label.
// When several copies qualify (same kind, same redness) the highest server
// index is chosen, which keeps red fives (index%4==0) in hand whenever a
// plain copy is available, per spec.md §4.1.
func DecodeOne(label string, hand []int) (int, error) {
	decoded, err := Decode([]string{label}, hand)
	if err != nil {
		return 0, err
	}
	return decoded[0], nil
}

// Decode resolves a sequence of labels against hand, consuming a distinct
// copy for each label as it goes — matching utils/converter.py's
// mjai_to_tenhou, which sorts the hand descending so red fives (which sort
// last within their kind) are only picked when no plain copy remains.
func Decode(labels []string, hand []int) ([]int, error) {
	working := append([]int(nil), hand...)
	sort.Sort(sort.Reverse(sort.IntSlice(working)))

	out := make([]int, 0, len(labels))

	for _, label := range labels {
		isRed := len(label) > 0 && label[len(label)-1] == 'r'
		kind, ok := kindByLabel[label]
		if !ok {
			return nil, &EncodingError{Label: label}
		}

		pos := -1
		for i, idx := range working {
			if Kind(idx) != kind {
				continue
			}
			if isRed && idx%4 != 0 {
				continue
			}
			pos = i
			break
		}
		if pos == -1 {
			return nil, &EncodingError{Label: label}
		}

		out = append(out, working[pos])
		working = append(working[:pos], working[pos+1:]...)
	}

	return out, nil
}

// Tsumogiri returns the server index of the tile to discard when the AI
// says "tsumogiri" — the tile most recently drawn, which C6 always
// appends to the end of hand.
func Tsumogiri(hand []int) int {
	return hand[len(hand)-1]
}

// ToKindCounts returns the 34-element histogram of hand over kind indices.
func ToKindCounts(hand []int) [34]int {
	var counts [34]int
	for _, idx := range hand {
		counts[Kind(idx)]++
	}
	return counts
}
