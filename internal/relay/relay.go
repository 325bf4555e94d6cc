// Package relay bridges a client WebSocket connection and an agent live
// session: an inbound pump feeds user turns to the agent while an outbound
// pump forwards agent events to the client.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/dyike/FinAgentGo/internal/agent"
	"github.com/dyike/FinAgentGo/internal/metrics"
	"github.com/dyike/FinAgentGo/internal/storage"
	"github.com/dyike/FinAgentGo/models"
)

var ErrProtocolViolation = errors.New("protocol violation")

var errClientGone = errors.New("client disconnected")

const (
	OutcomeClientClosed = "client_closed"
	OutcomeCancelled    = "cancelled"
	OutcomeError        = "error"
)

const defaultWriteTimeout = 10 * time.Second

// Conn is the subset of *websocket.Conn the relay uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Recorder opens a transcript for a new session.
type Recorder interface {
	Begin(ctx context.Context, sessionID string, userID int64) (storage.Transcript, error)
}

type Relay struct {
	runtime      agent.Runtime
	registry     *Registry
	recorder     Recorder
	metrics      *metrics.Metrics
	writeTimeout time.Duration
}

type Option func(*Relay)

func WithRegistry(reg *Registry) Option {
	return func(r *Relay) { r.registry = reg }
}

func WithRecorder(rec Recorder) Option {
	return func(r *Relay) { r.recorder = rec }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Relay) { r.metrics = m }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.writeTimeout = d
		}
	}
}

func New(rt agent.Runtime, opts ...Option) *Relay {
	r := &Relay{
		runtime:      rt,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = NewRegistry()
	}
	return r
}

func (r *Relay) Registry() *Registry {
	return r.registry
}

// Serve runs one session until the client leaves, a pump fails or ctx is
// cancelled. The live session's queue is always closed before Serve returns.
// A clean client close returns nil.
func (r *Relay) Serve(ctx context.Context, conn Conn, userID int64) (err error) {
	live, err := r.runtime.StartSession(ctx, userID)
	if err != nil {
		return fmt.Errorf("start agent session: %w", err)
	}

	sessCtx, cancel := context.WithCancel(ctx)
	entry := &Session{
		ID:        live.ID(),
		UserID:    userID,
		StartedAt: time.Now(),
		cancel:    cancel,
	}
	r.registry.Insert(entry)
	transcript := r.begin(ctx, entry)
	r.sessionStarted()

	log := slog.With("session_id", entry.ID, "user_id", userID)
	log.Info("client connected")

	defer func() {
		live.Close()
		r.registry.Remove(entry.ID)
		cancel()

		outcome := OutcomeError
		switch {
		case err == nil:
			outcome = OutcomeClientClosed
			log.Info("client disconnected")
		case ctx.Err() != nil || errors.Is(err, context.Canceled):
			outcome = OutcomeCancelled
			log.Info("session cancelled", "err", err)
		default:
			log.Warn("session ended with error", "err", err)
		}
		if outcome == OutcomeError {
			transcript.Finish(err)
		} else {
			transcript.Finish(nil)
		}
		r.sessionEnded(outcome)
	}()

	g, gctx := errgroup.WithContext(sessCtx)
	g.Go(func() error { return r.outbound(gctx, conn, live, transcript) })
	g.Go(func() error { return r.inbound(gctx, conn, live, transcript) })

	err = g.Wait()
	switch {
	case errors.Is(err, errClientGone):
		return nil
	case err == nil && sessCtx.Err() != nil:
		return sessCtx.Err()
	}
	return err
}

// outbound forwards agent events in order. The runtime closing its event
// stream ends the pump without ending the session.
func (r *Relay) outbound(ctx context.Context, conn Conn, live agent.LiveSession, transcript storage.Transcript) error {
	var turn strings.Builder
	events := live.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch {
			case ev.IsControl():
				frame := models.ControlFrame{TurnComplete: ev.TurnComplete, Interrupted: ev.Interrupted}
				if err := r.writeJSON(conn, frame); err != nil {
					return err
				}
				r.frame("out", "control")
				transcript.AgentTurn(turn.String(), ev.Interrupted)
				turn.Reset()
			case ev.IsTextChunk():
				frame := models.ClientFrame{MimeType: models.MimeTextPlain, Data: ev.Text}
				if err := r.writeJSON(conn, frame); err != nil {
					return err
				}
				r.frame("out", "text")
				turn.WriteString(ev.Text)
			default:
				r.frame("out", "dropped")
			}
		}
	}
}

// inbound reads client frames until the connection closes or ctx is done.
func (r *Relay) inbound(ctx context.Context, conn Conn, live agent.LiveSession, transcript storage.Transcript) error {
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return fmt.Errorf("%w: %v", errClientGone, err)
			}
			return fmt.Errorf("read frame: %w", err)
		}
		if mt != websocket.TextMessage {
			return fmt.Errorf("%w: unexpected message type %d", ErrProtocolViolation, mt)
		}

		var frame models.ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			return fmt.Errorf("%w: decode frame: %v", ErrProtocolViolation, err)
		}
		if frame.MimeType != models.MimeTextPlain {
			slog.Warn("ignoring frame", "mime_type", frame.MimeType)
			r.frame("in", "ignored")
			continue
		}

		r.frame("in", "text")
		transcript.UserTurn(frame.Data)
		if err := live.SendContent(frame.Data); err != nil {
			return fmt.Errorf("enqueue user turn: %w", err)
		}
	}
}

func (r *Relay) writeJSON(conn Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(r.writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (r *Relay) begin(ctx context.Context, s *Session) storage.Transcript {
	if r.recorder == nil {
		return nopTranscript{}
	}
	t, err := r.recorder.Begin(ctx, s.ID, s.UserID)
	if err != nil {
		slog.Error("open transcript", "session_id", s.ID, "err", err)
		return nopTranscript{}
	}
	return t
}

func (r *Relay) sessionStarted() {
	if r.metrics != nil {
		r.metrics.SessionStarted()
	}
}

func (r *Relay) sessionEnded(outcome string) {
	if r.metrics != nil {
		r.metrics.SessionEnded(outcome)
	}
}

func (r *Relay) frame(direction, kind string) {
	if r.metrics != nil {
		r.metrics.Frame(direction, kind)
	}
}

type nopTranscript struct{}

func (nopTranscript) UserTurn(string) {}

func (nopTranscript) AgentTurn(string, bool) {}

func (nopTranscript) Finish(error) {}
