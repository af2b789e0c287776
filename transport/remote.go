// Package transport carries frames between the bridge and its two peers:
// the remote tenhou-protocol server (JSON-over-websocket) and the local AI
// process (newline-delimited JSON over TCP), grounded on
// tomohxx/mjai-gateway's main.py and lamyinia-GoMahjong's
// framework/conn/connection.go read/write-pump shape.
package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mjaibridge/common/log"
)

const (
	remoteURL    = "wss://b-ww.mjv.jp"
	remoteOrigin = "https://tenhou.net"
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/99.0.4844.51 Safari/537.36"

	pongWait     = 10 * time.Second
	writeWait    = 10 * time.Second
	pingInterval = (pongWait * 9) / 10
	keepAlive    = 10 * time.Second
)

// RemoteClient is one websocket session against the tenhou server. Reads
// and writes are each safe for use from their own single goroutine; Send
// may additionally be called concurrently with the keep-alive loop because
// both serialize through writeMu.
type RemoteClient struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeChan chan struct{}
}

// Dial opens the websocket connection and performs the HELO handshake.
// EnableCompression negotiates permessage-deflate itself, which is why the
// extra headers below omit Sec-WebSocket-Extensions (present as a manual
// header in main.py's Python client, where the library doesn't negotiate
// it automatically).
func Dial(ctx context.Context, name, sex string) (*RemoteClient, error) {
	header := http.Header{}
	header.Set("Origin", remoteOrigin)
	header.Set("Accept-Encoding", "gzip, deflate, br")
	header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")
	header.Set("Cache-Control", "no-cache")
	header.Set("Pragma", "no-cache")
	header.Set("User-Agent", userAgent)

	dialer := websocket.Dialer{
		EnableCompression: true,
		HandshakeTimeout:  10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, remoteURL, header)
	if err != nil {
		return nil, fmt.Errorf("dial remote: %w", err)
	}

	c := &RemoteClient{conn: conn, closeChan: make(chan struct{})}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := c.Send(map[string]any{"tag": "HELO", "name": name, "sx": sex}); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return c, nil
}

// RunKeepAlive sends the literal text "<Z/>" (not JSON) every 10 seconds,
// as main.py's producer_handler does, until Close is called. Run this in
// its own goroutine.
func (c *RemoteClient) RunKeepAlive() {
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-c.closeChan:
			return
		case <-ticker.C:
			if err := c.writeText("<Z/>"); err != nil {
				log.Error("remote keep-alive failed", "err", err)
				return
			}
		}
	}
}

// Send JSON-encodes fields and writes it as one text frame.
func (c *RemoteClient) Send(fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode remote frame: %w", err)
	}
	return c.writeText(string(body))
}

func (c *RemoteClient) writeText(body string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(body))
}

// Recv blocks for the next text frame and decodes it as a JSON object. It
// returns an error once the connection is closed or the peer sends
// something that isn't a JSON object.
func (c *RemoteClient) Recv() (map[string]any, error) {
	_, body, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var msg map[string]any
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("decode remote frame: %w", err)
	}
	return msg, nil
}

// Close tears the connection down exactly once.
func (c *RemoteClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeChan)
		err = c.conn.Close()
	})
	return err
}

// AIConn is a lock-step newline-delimited JSON duplex to the local AI
// process, grounded on main.py's sender_to_mjai: one write, one blocking
// read, every round trip.
type AIConn struct {
	w  *bufio.Writer
	r  *bufio.Reader
	mu sync.Mutex
}

// NewAIConn wraps rw (typically a net.Conn accepted from the AI's TCP
// connection to the bridge).
func NewAIConn(rw io.ReadWriter) *AIConn {
	return &AIConn{w: bufio.NewWriter(rw), r: bufio.NewReader(rw)}
}

// Exchange writes v as one JSON line and decodes the next line from the AI
// into out.
func (a *AIConn) Exchange(v any, out any) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.writeLine(v); err != nil {
		return err
	}

	line, err := a.r.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read ai reply: %w", err)
	}
	if err := json.Unmarshal([]byte(line), out); err != nil {
		return fmt.Errorf("decode ai reply: %w", err)
	}
	return nil
}

// Send writes v as one JSON line without waiting for a reply, for the
// {type:"error"} line sent when a requested room is rejected.
func (a *AIConn) Send(v any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeLine(v)
}

func (a *AIConn) writeLine(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode ai frame: %w", err)
	}
	if _, err := a.w.Write(body); err != nil {
		return err
	}
	if _, err := a.w.WriteString("\n"); err != nil {
		return err
	}
	return a.w.Flush()
}
