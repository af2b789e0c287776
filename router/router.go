// Package router dispatches each parsed remote frame to the first matching
// handler, grounded on tomohxx/mjai-gateway's src/responder.py: one Go type
// per Python Base subclass (Helo, Rejoin, Go, Taikyoku, Init, Tsumo, Dahai,
// Naki, ReachStep1, ReachStep2, Dora, Agari, Ryuukyoku, End), tried in the
// same order main.py's consumer_handler walks router.processes.
package router

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"mjaibridge/action"
	"mjaibridge/common/log"
	"mjaibridge/meld"
	"mjaibridge/mjai"
	"mjaibridge/state"
	"mjaibridge/tile"
	"mjaibridge/win"
)

// ErrMalformedMessage reports a remote frame or AI line that is not valid
// JSON; a session that observes this ends the match silently rather
// than treating it as a logic bug.
var ErrMalformedMessage = errors.New("router: malformed message")

// RemoteSender pushes one tagged frame to the remote server.
type RemoteSender func(fields map[string]any) error

// MjaiSender writes one line to the AI and blocks for its reply — the
// lock-step request/response spec.md §5 requires.
type MjaiSender func(msg mjai.Message) (mjai.Message, error)

// Handler is one responder.py Base subclass: Target decides whether this
// handler owns the frame, Process carries out its effect.
type Handler interface {
	Target(msg map[string]any) bool
	Process(s *state.State, msg map[string]any, toRemote RemoteSender, toMjai MjaiSender) error
}

// Router holds the ordered handler list and the pacing mode.
type Router struct {
	handlers []Handler
	Debug    bool // skip the 1-2s pacing sleep before AI-originated sends
}

// New returns a router with the full handler list in dispatch order.
func New(debug bool) *Router {
	return &Router{
		Debug: debug,
		handlers: []Handler{
			heloHandler{},
			rejoinHandler{},
			goHandler{},
			taikyokuHandler{},
			initHandler{},
			tsumoHandler{Debug: debug},
			dahaiHandler{Debug: debug},
			nakiHandler{Debug: debug},
			reachStep1Handler{Debug: debug},
			reachStep2Handler{},
			doraHandler{},
			agariHandler{},
			ryuukyokuHandler{},
			endHandler{},
		},
	}
}

// Dispatch tries each handler in order and runs the first whose Target
// matches, as main.py's `for process in router.processes: if ...: break`
// does. A frame matching no handler is silently dropped.
func (r *Router) Dispatch(s *state.State, msg map[string]any, toRemote RemoteSender, toMjai MjaiSender) error {
	for _, h := range r.handlers {
		if h.Target(msg) {
			return h.Process(s, msg, toRemote, toMjai)
		}
	}
	return nil
}

func pace(debug bool) {
	if debug {
		return
	}
	time.Sleep(time.Duration(1+rand.Intn(2)) * time.Second)
}

func tag(msg map[string]any) string {
	s, _ := msg["tag"].(string)
	return s
}

func strField(msg map[string]any, key string) (string, bool) {
	v, ok := msg[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func intField(msg map[string]any, key string, def int) int {
	s, ok := strField(msg, key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func intListField(msg map[string]any, key string) []int {
	s, ok := strField(msg, key)
	if !ok || s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func intp(v int) *int { return &v }

// decodeOneWithTsumogiri mirrors converter.py's mjai_to_tenhou_one: when
// tsumogiri is set the answer is always the tile just drawn, regardless of
// what label the AI echoed back.
func decodeOneWithTsumogiri(label string, hand []int, tsumogiri bool) (int, error) {
	if tsumogiri {
		return tile.Tsumogiri(hand), nil
	}
	return tile.DecodeOne(label, hand)
}

var bakaze = [4]string{"E", "S", "W", "N"}

// --- Greeting / acknowledgement handlers ---

type heloHandler struct{}

func (heloHandler) Target(msg map[string]any) bool { return tag(msg) == "HELO" }

func (heloHandler) Process(s *state.State, _ map[string]any, toRemote RemoteSender, _ MjaiSender) error {
	return toRemote(map[string]any{"tag": "JOIN", "t": s.Room})
}

type rejoinHandler struct{}

func (rejoinHandler) Target(msg map[string]any) bool { return tag(msg) == "REJOIN" }

func (rejoinHandler) Process(_ *state.State, msg map[string]any, toRemote RemoteSender, _ MjaiSender) error {
	t, _ := strField(msg, "t")
	return toRemote(map[string]any{"tag": "JOIN", "t": t})
}

type goHandler struct{}

func (goHandler) Target(msg map[string]any) bool { return tag(msg) == "GO" }

func (goHandler) Process(_ *state.State, _ map[string]any, toRemote RemoteSender, _ MjaiSender) error {
	return toRemote(map[string]any{"tag": "GOK"})
}

type taikyokuHandler struct{}

func (taikyokuHandler) Target(msg map[string]any) bool { return tag(msg) == "TAIKYOKU" }

func (taikyokuHandler) Process(s *state.State, msg map[string]any, toRemote RemoteSender, toMjai MjaiSender) error {
	if logID, ok := strField(msg, "log"); ok {
		oya := intField(msg, "oya", 0)
		seat := (4 - oya) % 4
		log.Info("past-log handle", "name", s.Name, "link", fmt.Sprintf("https://tenhou.net/3/?log=%s&tw=%d", logID, seat))
	}

	if _, err := toMjai(mjai.Message{Type: "start_game", ID: intp(0), Names: mjai.NamesOf([]string{})}); err != nil {
		return err
	}
	return toRemote(map[string]any{"tag": "NEXTREADY"})
}

// --- Round init ---

type initHandler struct{}

func (initHandler) Target(msg map[string]any) bool { return tag(msg) == "INIT" }

func (initHandler) Process(s *state.State, msg map[string]any, _ RemoteSender, toMjai MjaiSender) error {
	s.ResetRound()
	s.Hand = intListField(msg, "hai")

	oya := intField(msg, "oya", 0)
	seed := intListField(msg, "seed")
	kyokuWind := bakaze[seed[0]/4]
	kyoku := seed[0] % 4
	honba := seed[1]
	kyotaku := seed[2]
	doraMarker := tile.EncodeOne(seed[5])

	tehais := make([][]string, 4)
	for i := range tehais {
		tehais[i] = []string{"?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?", "?"}
	}
	tehais[0] = tile.Encode(s.Hand)

	_, err := toMjai(mjai.Message{
		Type:       "start_kyoku",
		Bakaze:     kyokuWind,
		Kyoku:      intp(kyoku),
		Honba:      intp(honba),
		Kyotaku:    intp(kyotaku),
		Oya:        intp(oya),
		DoraMarker: doraMarker,
		Tehais:     tehais,
	})
	return err
}

// --- Draw ---

type tsumoHandler struct{ Debug bool }

func (tsumoHandler) Target(msg map[string]any) bool {
	t := tag(msg)
	return len(t) > 0 && strings.ContainsRune("TUVW", rune(t[0])) && isDigitsOrEmpty(t[1:])
}

func (h tsumoHandler) Process(s *state.State, msg map[string]any, toRemote RemoteSender, toMjai MjaiSender) error {
	s.Draw()

	t := tag(msg)
	actor := int(t[0] - 'T')

	possible := []mjai.Action{}
	pai := "?"

	if actor == 0 {
		index, _ := strconv.Atoi(t[1:])
		pai = tile.EncodeOne(index)
		flags := intField(msg, "t", 0)

		s.Hand = append(s.Hand, index)

		if flags&16 != 0 {
			possible = append(possible, mjai.Action{Type: "hora"})
		}
		if flags&32 != 0 {
			possible = append(possible, mjai.Action{Type: "reach"})
		}
		if flags&64 != 0 {
			possible = append(possible, mjai.Action{Type: "ryukyoku"})
		}
		for _, group := range action.Ankan(s) {
			possible = append(possible, mjai.Action{Type: "ankan", Actor: intp(0), Consumed: tile.Encode(group)})
		}
		for _, group := range action.Kakan(s) {
			possible = append(possible, mjai.Action{Type: "kakan", Actor: intp(0), Pai: tile.EncodeOne(group[0]), Consumed: tile.Encode(group[1:])})
		}
	}

	sent := mjai.Message{Type: "tsumo", Actor: intp(actor), Pai: pai, PossibleActions: mjai.ActionsOf(possible)}

	reply, err := toMjai(sent)
	if err != nil || actor != 0 {
		return err
	}

	switch reply.Type {
	case "dahai":
		p, err := decodeOneWithTsumogiri(reply.Pai, s.Hand, reply.Tsumogiri != nil && *reply.Tsumogiri)
		if err != nil {
			return err
		}
		if !s.InRiichi {
			pace(h.Debug)
		}
		return toRemote(map[string]any{"tag": "D", "p": p})
	case "hora":
		pace(h.Debug)
		return toRemote(map[string]any{"tag": "N", "type": 7})
	case "reach":
		pace(h.Debug)
		return toRemote(map[string]any{"tag": "REACH"})
	case "ryukyoku":
		pace(h.Debug)
		return toRemote(map[string]any{"tag": "N", "type": 9})
	case "ankan":
		pace(h.Debug)
		idx, err := tile.DecodeOne(reply.Consumed[0], s.Hand)
		if err != nil {
			return err
		}
		hai := idx / 4 * 4
		return toRemote(map[string]any{"tag": "N", "type": 4, "hai": hai})
	case "kakan":
		pace(h.Debug)
		hai, err := tile.DecodeOne(reply.Pai, s.Hand)
		if err != nil {
			return err
		}
		return toRemote(map[string]any{"tag": "N", "type": 5, "hai": hai})
	}
	return nil
}

func isDigitsOrEmpty(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// --- Discard ---

type dahaiHandler struct{ Debug bool }

func (dahaiHandler) Target(msg map[string]any) bool {
	t := tag(msg)
	if len(t) == 0 {
		return false
	}
	return strings.ContainsRune("DEFGefg", rune(t[0])) && isDigitsOrEmpty(t[1:])
}

func (h dahaiHandler) Process(s *state.State, msg map[string]any, toRemote RemoteSender, toMjai MjaiSender) error {
	t := tag(msg)
	upper := t[0]
	if upper >= 'a' {
		upper -= 'a' - 'A'
	}
	actor := int(upper - 'D')
	index, _ := strconv.Atoi(t[1:])
	pai := tile.EncodeOne(index)

	var tsumogiri bool
	if actor != 0 {
		tsumogiri = t[0] >= 'A' && t[0] <= 'Z'
	} else {
		tsumogiri = len(s.Hand) > 0 && index == s.Hand[len(s.Hand)-1]
	}

	if actor == 0 {
		s.Discard(index)
	}

	flags := intField(msg, "t", 0)
	possible := []mjai.Action{}

	if flags&1 != 0 {
		for _, pair := range action.Pon(s.Hand, index) {
			possible = append(possible, mjai.Action{Type: "pon", Actor: intp(0), Target: intp(actor), Pai: pai, Consumed: tile.Encode(pair[:])})
		}
	}
	if flags&2 != 0 {
		if group := action.Kan(s.Hand, index); len(group) == 3 {
			possible = append(possible, mjai.Action{Type: "daiminkan", Actor: intp(0), Target: intp(actor), Pai: pai, Consumed: tile.Encode(group)})
		}
	}
	if flags&4 != 0 {
		for _, pair := range action.Chi(s.Hand, index) {
			possible = append(possible, mjai.Action{Type: "chi", Actor: intp(0), Target: intp(actor), Pai: pai, Consumed: tile.Encode(pair[:])})
		}
	}
	if flags&8 != 0 {
		possible = append(possible, mjai.Action{Type: "hora"})
	}

	sent := mjai.Message{Type: "dahai", Actor: intp(actor), Pai: pai, Tsumogiri: &tsumogiri, PossibleActions: mjai.ActionsOf(possible)}
	reply, err := toMjai(sent)
	if err != nil {
		return err
	}

	switch reply.Type {
	case "pon":
		consumed, err := tile.Decode(reply.Consumed, s.Hand)
		if err != nil {
			return err
		}
		pace(h.Debug)
		return toRemote(map[string]any{"tag": "N", "type": 1, "hai0": consumed[0], "hai1": consumed[1]})
	case "daiminkan":
		pace(h.Debug)
		return toRemote(map[string]any{"tag": "N", "type": 2})
	case "chi":
		consumed, err := tile.Decode(reply.Consumed, s.Hand)
		if err != nil {
			return err
		}
		pace(h.Debug)
		return toRemote(map[string]any{"tag": "N", "type": 3, "hai0": consumed[0], "hai1": consumed[1]})
	case "hora":
		pace(h.Debug)
		return toRemote(map[string]any{"tag": "N", "type": 6})
	default:
		if flags != 0 && reply.Type == "none" {
			return toRemote(map[string]any{"tag": "N"})
		}
	}
	return nil
}

// --- Calls ---

type nakiHandler struct{ Debug bool }

func (nakiHandler) Target(msg map[string]any) bool {
	if tag(msg) != "N" {
		return false
	}
	_, ok := msg["m"]
	return ok
}

func (h nakiHandler) Process(s *state.State, msg map[string]any, toRemote RemoteSender, toMjai MjaiSender) error {
	actor := intField(msg, "who", 0)
	mRaw, _ := strField(msg, "m")
	mInt, _ := strconv.Atoi(mRaw)
	parsed := meld.Decode(uint16(mInt))
	target := (actor + parsed.Target) % 4

	sent := mjai.Message{
		Type:     string(parsed.Type),
		Actor:    intp(actor),
		Target:   intp(target),
		Pai:      parsed.Pai(),
		Consumed: parsed.Consumed(),
	}

	if actor == 0 {
		sent.CannotDahai = tile.Encode(action.CannotDahaiAfterNaki(parsed, s.Hand))
		s.AddMeld(parsed)
	}

	reply, err := toMjai(sent)
	if err != nil {
		return err
	}
	if reply.Type != "dahai" {
		return nil
	}

	p, err := decodeOneWithTsumogiri(reply.Pai, s.Hand, reply.Tsumogiri != nil && *reply.Tsumogiri)
	if err != nil {
		return err
	}
	pace(h.Debug)
	return toRemote(map[string]any{"tag": "D", "p": p})
}

// --- Riichi ---

type reachStep1Handler struct{ Debug bool }

func (reachStep1Handler) Target(msg map[string]any) bool {
	if tag(msg) != "REACH" {
		return false
	}
	step, _ := strField(msg, "step")
	return step == "1"
}

func (h reachStep1Handler) Process(s *state.State, msg map[string]any, toRemote RemoteSender, toMjai MjaiSender) error {
	actor := intField(msg, "who", 0)
	sent := mjai.Message{Type: "reach", Actor: intp(actor)}

	if actor != 0 {
		_, err := toMjai(sent)
		return err
	}

	sent.CannotDahai = tile.Encode(action.CannotDahaiAfterReachStep1(s.Hand))
	reply, err := toMjai(sent)
	if err != nil {
		return err
	}

	p, err := decodeOneWithTsumogiri(reply.Pai, s.Hand, reply.Tsumogiri != nil && *reply.Tsumogiri)
	if err != nil {
		return err
	}
	pace(h.Debug)
	return toRemote(map[string]any{"tag": "D", "p": p})
}

type reachStep2Handler struct{}

func (reachStep2Handler) Target(msg map[string]any) bool {
	if tag(msg) != "REACH" {
		return false
	}
	step, _ := strField(msg, "step")
	return step == "2"
}

func (reachStep2Handler) Process(s *state.State, msg map[string]any, _ RemoteSender, toMjai MjaiSender) error {
	actor := intField(msg, "who", 0)

	if actor == 0 {
		s.InRiichi = true
		s.Wait = computeWait(s.Hand)
	}

	deltas := make([]int, 4)
	deltas[actor] = -1000
	scores := scoresFromCSV(msg, "ten")

	_, err := toMjai(mjai.Message{Type: "reach_accepted", Actor: intp(actor), Deltas: deltas, Scores: scores})
	return err
}

// computeWait recomputes the post-discard wait set directly (not via
// action.CannotDahaiAfterReachStep1, which tests every candidate discard —
// here the discard has already happened, only isrh on the final hand is
// needed).
func computeWait(hand []int) map[int]bool {
	return win.Wait(tile.ToKindCounts(hand))
}

// --- Dora / round end ---

type doraHandler struct{}

func (doraHandler) Target(msg map[string]any) bool { return tag(msg) == "DORA" }

func (doraHandler) Process(_ *state.State, msg map[string]any, _ RemoteSender, toMjai MjaiSender) error {
	hai := intField(msg, "hai", 0)
	_, err := toMjai(mjai.Message{Type: "dora", DoraMarker: tile.EncodeOne(hai)})
	return err
}

type agariHandler struct{}

func (agariHandler) Target(msg map[string]any) bool {
	if tag(msg) != "AGARI" {
		return false
	}
	_, hasOwari := msg["owari"]
	return !hasOwari
}

func (agariHandler) Process(_ *state.State, msg map[string]any, toRemote RemoteSender, toMjai MjaiSender) error {
	scores := scoresFromSC(msg)
	if _, err := toMjai(mjai.Message{Type: "hora", Scores: scores}); err != nil {
		return err
	}
	if _, err := toMjai(mjai.Message{Type: "end_kyoku"}); err != nil {
		return err
	}
	return toRemote(map[string]any{"tag": "NEXTREADY"})
}

type ryuukyokuHandler struct{}

func (ryuukyokuHandler) Target(msg map[string]any) bool {
	if tag(msg) != "RYUUKYOKU" {
		return false
	}
	_, hasOwari := msg["owari"]
	return !hasOwari
}

func (ryuukyokuHandler) Process(_ *state.State, msg map[string]any, toRemote RemoteSender, toMjai MjaiSender) error {
	scores := scoresFromSC(msg)
	if _, err := toMjai(mjai.Message{Type: "ryukyoku", Scores: scores}); err != nil {
		return err
	}
	if _, err := toMjai(mjai.Message{Type: "end_kyoku"}); err != nil {
		return err
	}
	return toRemote(map[string]any{"tag": "NEXTREADY"})
}

type endHandler struct{}

func (endHandler) Target(msg map[string]any) bool {
	_, ok := msg["owari"]
	return ok
}

func (endHandler) Process(_ *state.State, msg map[string]any, _ RemoteSender, toMjai MjaiSender) error {
	scores := scoresFromSC(msg)

	finalType := "ryukyoku"
	if tag(msg) == "AGARI" {
		finalType = "hora"
	}
	if _, err := toMjai(mjai.Message{Type: finalType, Scores: scores}); err != nil {
		return err
	}
	if _, err := toMjai(mjai.Message{Type: "end_kyoku"}); err != nil {
		return err
	}

	owariScores := scoresFromOwari(msg)
	_, err := toMjai(mjai.Message{Type: "end_game", Scores: owariScores})
	return err
}

// scoresFromSC implements decoder.py's parse_sc_tag: pairs of
// (before, delta), result (before+delta)*100 per seat.
func scoresFromSC(msg map[string]any) []int {
	raw := intListField(msg, "sc")
	out := make([]int, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		out = append(out, (raw[i]+raw[i+1])*100)
	}
	return out
}

// scoresFromOwari implements parse_owari_tag: every even-indexed value of
// the owari field, *100.
func scoresFromOwari(msg map[string]any) []int {
	raw := intListField(msg, "owari")
	out := make([]int, 0, len(raw)/2+1)
	for i := 0; i < len(raw); i += 2 {
		out = append(out, raw[i]*100)
	}
	return out
}

// scoresFromCSV reads a comma-separated field of hundreds-of-points and
// scales each by 100, as ReachStep2 does with the `ten` field.
func scoresFromCSV(msg map[string]any, key string) []int {
	raw := intListField(msg, key)
	out := make([]int, len(raw))
	for i, v := range raw {
		out[i] = v * 100
	}
	return out
}
