// Package session drives one bridge match end to end: it handshakes with
// the AI over a freshly accepted connection, validates the requested room,
// dials the remote server, and runs the router until the match's owari,
// grounded on tomohxx/mjai-gateway's main.py (tcp_server, websocket_client,
// consumer_handler, producer_handler).
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"mjaibridge/common/log"
	"mjaibridge/mjai"
	"mjaibridge/router"
	"mjaibridge/state"
	"mjaibridge/transport"
)

// ErrRoomRejected reports a room code that failed the grammar below.
var ErrRoomRejected = errors.New("session: room rejected")

var roomPattern = regexp.MustCompile(`^(?:0|[1-7][0-9]{3})_(?:0|1|9)$`)

// Session is one bridge process's single match.
type Session struct {
	ID     string
	ai     *transport.AIConn
	debug  bool
	sex    string
	state  *state.State
	router *router.Router
}

// New wraps an already-accepted AI connection. sex is the player gender
// code sent in the HELO handshake ("M"/"F"); debug disables the pacing
// sleep before AI-originated sends to the remote server. ID is a random
// identifier used only to correlate this match's log lines.
func New(ai *transport.AIConn, sex string, debug bool) *Session {
	return &Session{ID: uuid.NewString(), ai: ai, sex: sex, debug: debug, router: router.New(debug)}
}

// Handshake reads the AI's opening {type:"hello"} line, validates the
// requested room, and returns the validated name and the room rewritten
// with commas in place of underscores (the form the remote JOIN tag
// expects). On a rejected room it replies {type:"error"} to the AI and
// returns ErrRoomRejected; the caller must close the AI connection either
// way.
func (s *Session) Handshake(ctx context.Context) (name, room string, err error) {
	var reply mjai.HelloReply
	hello := mjai.Hello{Type: "hello", Protocol: "mjsonp", ProtocolVersion: 3}

	if err := s.ai.Exchange(hello, &reply); err != nil {
		return "", "", fmt.Errorf("ai hello: %w", err)
	}

	if !roomPattern.MatchString(reply.Room) {
		_ = s.ai.Send(mjai.ErrorReply{Type: "error"})
		return "", "", ErrRoomRejected
	}

	return reply.Name, strings.ReplaceAll(reply.Room, "_", ","), nil
}

// Run dials the remote server, starts its keep-alive pinger, and services
// remote frames until one carries "owari" or either peer errors.
func (s *Session) Run(ctx context.Context, name, room string) error {
	remote, err := transport.Dial(ctx, name, s.sex)
	if err != nil {
		return fmt.Errorf("dial remote: %w", err)
	}
	defer remote.Close()

	s.state = state.New(name, room)

	go remote.RunKeepAlive()

	toRemote := func(fields map[string]any) error {
		return remote.Send(fields)
	}
	toMjai := func(msg mjai.Message) (mjai.Message, error) {
		var reply mjai.Message
		if err := s.ai.Exchange(msg, &reply); err != nil {
			return mjai.Message{}, fmt.Errorf("ai exchange: %w", err)
		}
		return reply, nil
	}

	for {
		msg, err := remote.Recv()
		if err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				log.Warn("remote sent an unparseable frame, ending match", "err", err)
				return router.ErrMalformedMessage
			}
			return fmt.Errorf("remote recv: %w", err)
		}

		if err := s.router.Dispatch(s.state, msg, toRemote, toMjai); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				log.Warn("ai sent an unparseable line, ending match", "session", s.ID, "err", err)
				return router.ErrMalformedMessage
			}
			log.Warn("dispatch failed, ending match", "session", s.ID, "err", err)
			return err
		}

		if _, ok := msg["owari"]; ok {
			log.Info("match finished", "session", s.ID)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}
