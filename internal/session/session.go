// Package session binds transport, reducer, pending registry and timeline
// into one owning loop. A single goroutine holds the snapshot; everything
// else talks to it through the inbox, so event application is strictly
// ordered and never races a timer fire.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/VCnoC/ai-werewolf/internal/pending"
	"github.com/VCnoC/ai-werewolf/internal/protocol"
	"github.com/VCnoC/ai-werewolf/internal/reducer"
	"github.com/VCnoC/ai-werewolf/internal/timeline"
	"github.com/VCnoC/ai-werewolf/internal/transport"
)

// Conn is the slice of the transport the session drives. Narrowed to an
// interface so tests can watch outbound commands.
type Conn interface {
	Send(cmdType string)
	Close()
}

type Msg interface{ isSessionMsg() }

type fromTransport struct{ Event protocol.Event }

func (fromTransport) isSessionMsg() {}

type statusChanged struct{ Status transport.Status }

func (statusChanged) isSessionMsg() {}

type timerFired struct{ ActorID int }

func (timerFired) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan View
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type GetState struct{ Reply chan View }

func (GetState) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// View is what subscribers receive: a snapshot copy, the derived timeline
// and the transport status. NumClients is a test hook.
type View struct {
	Status     transport.Status
	State      reducer.Snapshot
	Timeline   []timeline.Segment
	NumClients int
}

type Session struct {
	inbox    chan Msg
	snap     *reducer.Snapshot
	status   transport.Status
	registry *pending.Registry
	conn     Conn
	clients  map[string]chan View

	segments []timeline.Segment
	segLen   int

	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New starts the session loop seeded with the given snapshot (use
// reducer.NewSnapshot() when the bootstrap fetch failed).
func New(parent context.Context, seed *reducer.Snapshot, conn Conn, indicatorTimeout time.Duration, log *zap.Logger) *Session {
	if seed == nil {
		seed = reducer.NewSnapshot()
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		inbox:   make(chan Msg, 64),
		snap:    seed,
		status:  transport.StatusConnecting,
		conn:    conn,
		clients: map[string]chan View{},
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.registry = pending.NewRegistry(indicatorTimeout, func(actorID int) {
		s.post(timerFired{ActorID: actorID})
	})
	go s.loop()
	return s
}

func (s *Session) Inbox() chan<- Msg { return s.inbox }

// HandleEvent and HandleStatus are the callbacks to register on the
// transport before opening it.
func (s *Session) HandleEvent(e protocol.Event)     { s.post(fromTransport{Event: e}) }
func (s *Session) HandleStatus(st transport.Status) { s.post(statusChanged{Status: st}) }

// Pause and Resume pass control commands straight through to the engine.
func (s *Session) Pause()  { s.conn.Send(protocol.CmdPause) }
func (s *Session) Resume() { s.conn.Send(protocol.CmdResume) }

func (s *Session) post(m Msg) {
	select {
	case s.inbox <- m:
	case <-s.ctx.Done():
		// Session is gone; late timer fires and straggler events are dropped.
	}
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case fromTransport:
				fx := reducer.Apply(s.snap, msg.Event, time.Now())
				for _, id := range fx.Disarmed {
					s.registry.Disarm(id)
				}
				for _, id := range fx.Armed {
					s.registry.Arm(id)
				}
				s.broadcast()

			case timerFired:
				// Timeout backstop: remove-if-present, identical outcome
				// to an event-driven clear that raced it.
				if s.snap.Pending[msg.ActorID] {
					delete(s.snap.Pending, msg.ActorID)
					s.log.Debug("indicator timed out", zap.Int("actor", msg.ActorID))
					s.broadcast()
				}

			case statusChanged:
				s.status = msg.Status
				s.broadcast()

			case Join:
				s.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- s.view()

			case Leave:
				delete(s.clients, msg.ClientID)

			case GetState:
				msg.Reply <- s.view()

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

func (s *Session) shutdown() {
	s.registry.Stop()
	s.conn.Close()
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) view() View {
	if len(s.snap.Log) != s.segLen {
		s.segments = timeline.Segments(s.snap.Log)
		s.segLen = len(s.snap.Log)
	}
	return View{
		Status:     s.status,
		State:      s.snap.Clone(),
		Timeline:   s.segments,
		NumClients: len(s.clients),
	}
}

func (s *Session) broadcast() {
	v := s.view()
	for id, ch := range s.clients {
		select {
		case ch <- v:
		default:
			// Slow subscriber, drop it.
			close(ch)
			delete(s.clients, id)
		}
	}
}
