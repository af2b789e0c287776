// Command bridge is the process entrypoint: it accepts one AI connection,
// handshakes and validates its requested room, then drives that single
// match to completion before exiting, grounded on
// tomohxx/mjai-gateway's main.py and lamyinia-GoMahjong's
// connector/app/app.go signal-handling shape.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"mjaibridge/common/config"
	"mjaibridge/common/log"
	"mjaibridge/session"
	"mjaibridge/transport"
)

func main() {
	debugFlag := flag.Bool("d", false, "enable debug mode (alias for --debug)")
	debugLong := flag.Bool("debug", false, "skip AI-originated send pacing and log at debug level")
	configFile := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	debug := *debugFlag || *debugLong

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(err)
	}
	if debug {
		cfg.Debug = true
	}

	level := cfg.Log.Level
	if cfg.Debug {
		level = "debug"
	}
	if err := log.Init("mjaibridge", cfg.Log.Path, level); err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		log.Info("interrupt received, shutting down")
		cancel()
	}()

	if err := run(ctx, cfg, *configFile); err != nil {
		log.Error("bridge exited with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, configFile string) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	log.Info("listening for the AI connection", "addr", addr)

	config.Watch(configFile, func(newCfg config.Config) {
		level := newCfg.Log.Level
		if newCfg.Debug {
			level = "debug"
		}
		if err := log.Init("mjaibridge", newCfg.Log.Path, level); err != nil {
			log.Warn("config reload: failed to re-init logging", "err", err)
			return
		}
		log.Info("config reloaded", "level", level, "debug", newCfg.Debug)
	})

	conn, err := acceptOne(ctx, ln)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info("ai connected", "remote", conn.RemoteAddr())

	ai := transport.NewAIConn(conn)
	s := session.New(ai, cfg.Sex, cfg.Debug)

	name, room, err := s.Handshake(ctx)
	if err != nil {
		if err == session.ErrRoomRejected {
			log.Warn("ai requested an invalid room, closing")
			return nil
		}
		return err
	}
	log.Info("match starting", "session", s.ID, "name", name, "room", room)

	return s.Run(ctx, name, room)
}

func acceptOne(ctx context.Context, ln net.Listener) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := ln.Accept()
		ch <- result{conn, err}
	}()

	select {
	case <-ctx.Done():
		ln.Close()
		return nil, ctx.Err()
	case r := <-ch:
		return r.conn, r.err
	}
}
