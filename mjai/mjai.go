// Package mjai defines the wire shapes of the line-delimited JSON protocol
// spoken to the AI process, as named in spec.md §6.
package mjai

// Hello is the bridge's opening handshake line.
type Hello struct {
	Type            string `json:"type"`
	Protocol        string `json:"protocol"`
	ProtocolVersion int    `json:"protocol_version"`
}

// HelloReply is the AI's answer to Hello.
type HelloReply struct {
	Name string `json:"name"`
	Room string `json:"room"`
}

// ErrorReply is sent in place of HelloReply when the room code is invalid.
type ErrorReply struct {
	Type string `json:"type"`
}

// Action is one entry of a possible_actions list. Fields are omitted by
// the encoder when empty so each entry only carries what its type needs.
type Action struct {
	Type      string   `json:"type"`
	Actor     *int     `json:"actor,omitempty"`
	Target    *int     `json:"target,omitempty"`
	Pai       string   `json:"pai,omitempty"`
	Consumed  []string `json:"consumed,omitempty"`
	Tsumogiri *bool    `json:"tsumogiri,omitempty"`
}

// Message is the envelope for every event forwarded to the AI and every
// reply read back. Not every field applies to every type; unused fields
// are left zero and omitted on encode. Names and PossibleActions are
// pointers to a slice rather than a bare slice: the reference only ever
// sets either key on the message types that use it at all (start_game for
// names, tsumo/dahai for possible_actions), but when it does, it always
// sends the key — as `[]` when there is nothing to list, never omitted.
// A nil pointer omits the key entirely (every other message type); a
// pointer to an empty slice still encodes as `[]`. Use NamesOf/ActionsOf
// to build one from a (possibly empty, never nil) slice.
type Message struct {
	Type string `json:"type"`

	// start_game
	ID    *int      `json:"id,omitempty"`
	Names *[]string `json:"names,omitempty"`

	// start_kyoku
	Bakaze     string     `json:"bakaze,omitempty"`
	Kyoku      *int       `json:"kyoku,omitempty"`
	Honba      *int       `json:"honba,omitempty"`
	Kyotaku    *int       `json:"kyotaku,omitempty"`
	Oya        *int       `json:"oya,omitempty"`
	DoraMarker string     `json:"dora_marker,omitempty"`
	Tehais     [][]string `json:"tehais,omitempty"`

	// tsumo / dahai / naki / reach
	Actor           *int      `json:"actor,omitempty"`
	Target          *int      `json:"target,omitempty"`
	Pai             string    `json:"pai,omitempty"`
	Tsumogiri       *bool     `json:"tsumogiri,omitempty"`
	Consumed        []string  `json:"consumed,omitempty"`
	PossibleActions *[]Action `json:"possible_actions,omitempty"`
	CannotDahai     []string  `json:"cannot_dahai,omitempty"`

	// reach_accepted
	Deltas []int `json:"deltas,omitempty"`
	Scores []int `json:"scores,omitempty"`

	// end_game / agari / ryukyoku reuse Scores above; dora reuses DoraMarker above.
}

// NamesOf returns a pointer suitable for Message.Names, so that setting it
// to an empty slice still encodes as `"names":[]` rather than omitting
// the key, matching start_game's framing in the reference.
func NamesOf(v []string) *[]string { return &v }

// ActionsOf returns a pointer suitable for Message.PossibleActions, so
// that setting it to an empty slice still encodes as
// `"possible_actions":[]` rather than omitting the key, matching
// tsumo/dahai's framing in the reference.
func ActionsOf(v []Action) *[]Action { return &v }
