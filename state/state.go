// Package state holds the single mutable record a session keeps across one
// table: hand, melds, riichi status, and the current wait set, grounded on
// tomohxx/mjai-gateway's utils/state.py.
package state

import "mjaibridge/meld"

// State is a session's passive game-state record. C5 and C6 read and write
// it directly; nothing outside a session ever touches it, so it carries no
// lock of its own.
type State struct {
	Name string
	Room string

	Hand     []int
	Melds    []meld.Meld
	InRiichi bool
	LiveWall int
	Wait     map[int]bool
}

// New returns a state with Name and Room fixed for the session's lifetime,
// as set by the AI's hello reply.
func New(name, room string) *State {
	return &State{Name: name, Room: room}
}

// ResetRound clears everything that does not survive a round boundary,
// ahead of an INIT tag's hand assignment.
func (s *State) ResetRound() {
	s.Hand = nil
	s.Melds = nil
	s.InRiichi = false
	s.LiveWall = 70
	s.Wait = nil
}

// Draw records a live draw for any seat, decrementing the shared wall
// count regardless of who drew.
func (s *State) Draw() {
	s.LiveWall--
}

// AddMeld appends a parsed call and removes the tiles it exposes from
// hand.
func (s *State) AddMeld(m meld.Meld) {
	s.Melds = append(s.Melds, m)
	s.removeFromHand(m.Exposed())
}

func (s *State) removeFromHand(indices []int) {
	for _, idx := range indices {
		for i, h := range s.Hand {
			if h == idx {
				s.Hand = append(s.Hand[:i], s.Hand[i+1:]...)
				break
			}
		}
	}
}

// Discard removes idx from hand, as the caller's own dahai.
func (s *State) Discard(idx int) {
	s.removeFromHand([]int{idx})
}
