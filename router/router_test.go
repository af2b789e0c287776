package router

import (
	"testing"

	"mjaibridge/mjai"
	"mjaibridge/state"
)

func TestHeloRepliesJoinWithRoom(t *testing.T) {
	r := New(true)
	s := state.New("ai", "0001_1")

	var sentTag string
	var sentRoom string
	toRemote := func(fields map[string]any) error {
		sentTag, _ = fields["tag"].(string)
		sentRoom, _ = fields["t"].(string)
		return nil
	}
	toMjai := func(msg mjai.Message) (mjai.Message, error) {
		t.Fatalf("HELO must not talk to the AI, got %+v", msg)
		return mjai.Message{}, nil
	}

	if err := r.Dispatch(s, map[string]any{"tag": "HELO"}, toRemote, toMjai); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if sentTag != "JOIN" || sentRoom != "0001_1" {
		t.Fatalf("got tag=%q room=%q, want JOIN/0001_1", sentTag, sentRoom)
	}
}

func TestTaikyokuWithLogSendsStartGame(t *testing.T) {
	r := New(true)
	s := state.New("ai", "0001_1")

	var gotStartGame bool
	toMjai := func(msg mjai.Message) (mjai.Message, error) {
		if msg.Type == "start_game" {
			gotStartGame = true
		}
		return mjai.Message{}, nil
	}
	var sentTag string
	toRemote := func(fields map[string]any) error {
		sentTag, _ = fields["tag"].(string)
		return nil
	}

	msg := map[string]any{"tag": "TAIKYOKU", "oya": "1", "log": "2024receive-abc"}
	if err := r.Dispatch(s, msg, toRemote, toMjai); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if !gotStartGame {
		t.Fatalf("expected a start_game message even when a log handle is present")
	}
	if sentTag != "NEXTREADY" {
		t.Fatalf("sentTag = %q, want NEXTREADY", sentTag)
	}
}

func TestInitStartsKyoku(t *testing.T) {
	r := New(true)
	s := state.New("ai", "0001_1")

	var got mjai.Message
	toMjai := func(msg mjai.Message) (mjai.Message, error) {
		got = msg
		return mjai.Message{}, nil
	}
	toRemote := func(fields map[string]any) error {
		t.Fatalf("INIT must not talk to the remote, got %+v", fields)
		return nil
	}

	msg := map[string]any{
		"tag":  "INIT",
		"seed": "0,0,0,0,0,16",
		"oya":  "0",
		"hai":  "0,4,8,12,16,20,24,28,32,36,40,44,48",
	}
	if err := r.Dispatch(s, msg, toRemote, toMjai); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if got.Type != "start_kyoku" {
		t.Fatalf("got type %q, want start_kyoku", got.Type)
	}
	if got.Bakaze != "E" {
		t.Fatalf("bakaze = %q, want E", got.Bakaze)
	}
	if got.Oya == nil || *got.Oya != 0 {
		t.Fatalf("oya = %v, want 0", got.Oya)
	}
	if len(got.Tehais) != 4 || len(got.Tehais[0]) != 13 || got.Tehais[0][0] != "1m" {
		t.Fatalf("tehais[0] = %v, want 13 decoded tiles starting 1m", got.Tehais[0])
	}
	if len(got.Tehais[1]) != 13 || got.Tehais[1][0] != "?" {
		t.Fatalf("tehais[1] = %v, want 13 concealed placeholders", got.Tehais[1])
	}
	if len(s.Hand) != 13 {
		t.Fatalf("state hand not loaded from INIT, got %v", s.Hand)
	}
}

func TestTsumoDrawThenDahaiRoundTrip(t *testing.T) {
	r := New(true) // Debug=true: no pacing sleep in the test
	s := state.New("ai", "0001_1")
	s.ResetRound()
	s.Hand = []int{0, 8, 12, 16, 20, 24, 28, 32, 36, 40, 44, 48, 52} // 13 tiles

	var sawTsumo mjai.Message
	toMjai := func(msg mjai.Message) (mjai.Message, error) {
		sawTsumo = msg
		tsumogiri := false
		return mjai.Message{Type: "dahai", Pai: "2m", Tsumogiri: &tsumogiri}, nil
	}

	var sentTag string
	var sentP int
	toRemote := func(fields map[string]any) error {
		sentTag, _ = fields["tag"].(string)
		sentP, _ = fields["p"].(int)
		return nil
	}

	startWall := s.LiveWall
	if err := r.Dispatch(s, map[string]any{"tag": "T4"}, toRemote, toMjai); err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}

	if s.LiveWall != startWall-1 {
		t.Fatalf("LiveWall = %d, want %d after draw", s.LiveWall, startWall-1)
	}
	if sawTsumo.Type != "tsumo" || sawTsumo.Pai != "2m" {
		t.Fatalf("tsumo message = %+v, want type=tsumo pai=2m", sawTsumo)
	}
	if sentTag != "D" || sentP != 4 {
		t.Fatalf("remote send = tag=%q p=%d, want D/4", sentTag, sentP)
	}

	// the server echoes our own discard back as a D tag; that echo, not the
	// tsumo reply itself, is what removes the tile from the tracked hand.
	echoToMjai := func(msg mjai.Message) (mjai.Message, error) {
		return mjai.Message{Type: "none"}, nil
	}
	if err := r.Dispatch(s, map[string]any{"tag": "D4"}, toRemote, echoToMjai); err != nil {
		t.Fatalf("Dispatch error on echo: %v", err)
	}
	for _, idx := range s.Hand {
		if idx == 4 {
			t.Fatalf("discarded tile 4 still present in hand %v", s.Hand)
		}
	}
}
