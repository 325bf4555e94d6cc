// Package agent is the boundary to the conversational runtime: sessions are
// started per client, fed user turns and drained of events.
package agent

import (
	"context"

	"github.com/dyike/FinAgentGo/models"
)

type Runtime interface {
	StartSession(ctx context.Context, userID int64) (LiveSession, error)
}

// LiveSession is one running conversation. Events is closed once the session
// has stopped producing. Close is idempotent and closes the input queue;
// SendContent after Close returns ErrQueueClosed.
type LiveSession interface {
	ID() string
	Events() <-chan models.AgentMessage
	SendContent(text string) error
	Close()
}
