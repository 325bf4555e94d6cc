package storage

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dyike/FinAgentGo/models"
)

// Transcript receives the turns of one relay session. Writes happen
// asynchronously; Finish flushes them.
type Transcript interface {
	UserTurn(text string)
	AgentTurn(text string, interrupted bool)
	Finish(err error)
}

type recordKind int

const (
	recordUser recordKind = iota + 1
	recordAgent
	recordFinish
)

type recordEvent struct {
	kind        recordKind
	text        string
	interrupted bool
	err         error
}

// StreamRecorder writes transcript events to the store from a single
// goroutine so message sequence numbers follow arrival order.
type StreamRecorder struct {
	store   *Store
	session models.SessionRecord

	mu     sync.Mutex
	closed bool
	events chan recordEvent
	wg     sync.WaitGroup

	seq      int
	hasError bool
}

// Begin creates the session row and starts a recorder for it.
func (s *Store) Begin(ctx context.Context, sessionID string, userID int64) (Transcript, error) {
	return NewStreamRecorder(ctx, s, models.SessionRecord{ID: sessionID, UserID: userID})
}

func NewStreamRecorder(ctx context.Context, store *Store, session models.SessionRecord) (*StreamRecorder, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if session.Status == "" {
		session.Status = StatusStreaming
	}
	if err := store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	r := &StreamRecorder{
		store:   store,
		session: session,
		events:  make(chan recordEvent, 256),
	}
	r.wg.Add(1)
	go r.loop()
	return r, nil
}

func (r *StreamRecorder) loop() {
	defer r.wg.Done()
	ctx := context.Background()
	for ev := range r.events {
		switch ev.kind {
		case recordUser:
			r.insert(ctx, RoleUser, ev.text, StatusDone)
		case recordAgent:
			status := StatusDone
			if ev.interrupted {
				status = StatusInterrupted
			}
			r.insert(ctx, RoleAssistant, ev.text, status)
		case recordFinish:
			r.handleFinish(ctx, ev.err)
		}
	}
}

func (r *StreamRecorder) enqueue(ev recordEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.events <- ev
}

func (r *StreamRecorder) UserTurn(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	r.enqueue(recordEvent{kind: recordUser, text: text})
}

// AgentTurn records an aggregated agent reply. Interrupted turns with no
// text are not recorded.
func (r *StreamRecorder) AgentTurn(text string, interrupted bool) {
	if text == "" {
		return
	}
	r.enqueue(recordEvent{kind: recordAgent, text: text, interrupted: interrupted})
}

// Finish marks the session done, or errored when err is non-nil, and waits
// for pending writes. Later calls are ignored.
func (r *StreamRecorder) Finish(err error) {
	r.enqueue(recordEvent{kind: recordFinish, err: err})
	r.Close()
}

func (r *StreamRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *StreamRecorder) insert(ctx context.Context, role, content, status string) {
	r.seq++
	msg := models.MessageRecord{
		ID:        uuid.NewString(),
		SessionID: r.session.ID,
		Role:      role,
		Content:   content,
		Status:    status,
		Seq:       r.seq,
	}
	if err := r.store.InsertMessage(ctx, msg); err != nil {
		r.hasError = true
		slog.Error("record message", "session_id", r.session.ID, "role", role, "err", err)
	}
}

func (r *StreamRecorder) handleFinish(ctx context.Context, err error) {
	status := StatusDone
	if err != nil {
		status = StatusError
		r.insert(ctx, RoleSystem, err.Error(), StatusError)
	}
	if ferr := r.store.FinalizeOpenMessages(ctx, r.session.ID, status); ferr != nil {
		slog.Error("finalize messages", "session_id", r.session.ID, "err", ferr)
	}
	if uerr := r.store.UpdateSessionStatus(ctx, r.session.ID, status); uerr != nil {
		slog.Error("update session status", "session_id", r.session.ID, "err", uerr)
	}
	if r.hasError {
		slog.Warn("transcript incomplete", "session_id", r.session.ID)
	}
}
