// Package transport owns the one websocket connection to a watched game
// and keeps it alive across drops. Intentional teardown is distinguished
// from an engine-side drop by a manual-close flag checked when the read
// loop exits, so close never turns into a reconnect loop.
package transport

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/VCnoC/ai-werewolf/internal/protocol"
)

type Status string

const (
	StatusConnecting Status = "connecting"
	StatusConnected  Status = "connected"
	// StatusReconnecting covers the momentary unexpected-disconnect state
	// and the fixed-delay wait before the next attempt.
	StatusReconnecting Status = "reconnecting"
	StatusClosed       Status = "disconnected"
)

const (
	defaultRetryDelay = 3 * time.Second
	writeTimeout      = 3 * time.Second
)

type EventHandler func(protocol.Event)
type StatusHandler func(Status)

// Transport is one logical spectator session. Register handlers before
// Open; they are invoked from the transport's own goroutine.
type Transport struct {
	baseURL    string
	retryDelay time.Duration
	log        *zap.Logger

	onEvent  EventHandler
	onStatus StatusHandler

	mu     sync.Mutex
	conn   *websocket.Conn
	manual bool
	cancel context.CancelFunc
	opened bool

	done chan struct{}
}

func New(baseURL string, retryDelay time.Duration, log *zap.Logger) *Transport {
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Transport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		retryDelay: retryDelay,
		log:        log,
		done:       make(chan struct{}),
	}
}

func (t *Transport) OnEvent(h EventHandler)   { t.onEvent = h }
func (t *Transport) OnStatus(h StatusHandler) { t.onStatus = h }

// Open starts the connect/read/reconnect loop for the given game. One
// Transport serves one Open; close before reopening.
func (t *Transport) Open(ctx context.Context, gameID string) {
	ctx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	t.cancel = cancel
	t.opened = true
	t.mu.Unlock()
	go t.run(ctx, t.baseURL+"/api/ws/"+gameID)
}

// Send fires a command over the active connection. No-op while
// disconnected: commands are not queued.
func (t *Transport) Send(cmdType string) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return
	}
	payload, err := json.Marshal(protocol.Command{Type: cmdType})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		t.log.Debug("command write failed", zap.String("cmd", cmdType), zap.Error(err))
	}
}

// Close tears the session down cleanly and stops the reconnect loop.
func (t *Transport) Close() {
	t.mu.Lock()
	if !t.opened {
		t.mu.Unlock()
		return
	}
	t.manual = true
	cancel := t.cancel
	conn := t.conn
	t.mu.Unlock()

	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}
	cancel()
	<-t.done
}

func (t *Transport) run(ctx context.Context, url string) {
	defer close(t.done)
	for {
		t.setStatus(StatusConnecting)

		conn, _, err := websocket.Dial(ctx, url, nil)
		if err != nil {
			if t.finished(ctx) {
				return
			}
			t.log.Warn("dial failed", zap.String("url", url), zap.Error(err))
			if !t.backoff(ctx) {
				return
			}
			continue
		}

		t.setConn(conn)
		t.setStatus(StatusConnected)
		t.readLoop(ctx, conn)
		t.setConn(nil)
		_ = conn.CloseNow()

		if t.finished(ctx) {
			return
		}
		if !t.backoff(ctx) {
			return
		}
	}
}

func (t *Transport) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var ev protocol.Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Type == "" {
			// Malformed frame: drop silently, keep the stream alive.
			t.log.Debug("dropping undecodable frame", zap.Int("bytes", len(data)))
			continue
		}
		if t.onEvent != nil {
			t.onEvent(ev)
		}
	}
}

// backoff waits the fixed retry delay. Returns false when the session was
// torn down while waiting.
func (t *Transport) backoff(ctx context.Context) bool {
	t.setStatus(StatusReconnecting)
	select {
	case <-ctx.Done():
		t.setStatus(StatusClosed)
		return false
	case <-time.After(t.retryDelay):
		return true
	}
}

// finished reports whether the loop should stop, emitting the clean
// disconnect status when it should.
func (t *Transport) finished(ctx context.Context) bool {
	t.mu.Lock()
	manual := t.manual
	t.mu.Unlock()
	if manual || ctx.Err() != nil {
		t.setStatus(StatusClosed)
		return true
	}
	return false
}

func (t *Transport) setConn(conn *websocket.Conn) {
	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()
}

func (t *Transport) setStatus(s Status) {
	if t.onStatus != nil {
		t.onStatus(s)
	}
}
