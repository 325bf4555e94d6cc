package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/dyike/FinAgentGo/models"
)

const defaultSystemPrompt = `You prepare a concise morning financial brief for a portfolio manager.
Use the available tools to look up stock prices, world indices, commodities,
market movers, sector performance and treasury yields. Call only the tools the
question needs. If a tool returns an error, tell the user what failed in plain
words instead of guessing the numbers. Today is %s.`

// Streamer is the part of a react agent the runtime drives.
type Streamer interface {
	Stream(ctx context.Context, input []*schema.Message, opts ...agent.AgentOption) (*schema.StreamReader[*schema.Message], error)
}

// EinoRuntime runs one shared react agent for every session. Each session
// keeps its own history.
type EinoRuntime struct {
	agent        Streamer
	systemPrompt string
	maxHistory   int
	eventBuffer  int
}

type EinoOption func(*EinoRuntime)

func WithSystemPrompt(p string) EinoOption {
	return func(r *EinoRuntime) {
		if strings.TrimSpace(p) != "" {
			r.systemPrompt = p
		}
	}
}

func WithMaxHistory(n int) EinoOption {
	return func(r *EinoRuntime) {
		if n > 0 {
			r.maxHistory = n
		}
	}
}

// NewReactAgent wires the chat model and tools into an eino react agent.
func NewReactAgent(ctx context.Context, chatModel model.ToolCallingChatModel, tools []tool.BaseTool, maxStep int) (*react.Agent, error) {
	if maxStep <= 0 {
		maxStep = 20
	}
	return react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: chatModel,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: tools,
		},
		MaxStep:               maxStep,
		StreamToolCallChecker: toolCallChecker,
	})
}

func NewEinoRuntime(streamer Streamer, opts ...EinoOption) *EinoRuntime {
	r := &EinoRuntime{
		agent:        streamer,
		systemPrompt: defaultSystemPrompt,
		maxHistory:   40,
		eventBuffer:  64,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *EinoRuntime) StartSession(ctx context.Context, userID int64) (LiveSession, error) {
	if r.agent == nil {
		return nil, errors.New("agent runtime is not configured")
	}
	sctx, cancel := context.WithCancel(ctx)
	s := &einoSession{
		id:     uuid.NewString(),
		userID: userID,
		rt:     r,
		queue:  NewRequestQueue(),
		events: make(chan models.AgentMessage, r.eventBuffer),
		ctx:    sctx,
		cancel: cancel,
	}
	go s.run()
	return s, nil
}

type einoSession struct {
	id     string
	userID int64
	rt     *EinoRuntime
	queue  *RequestQueue
	events chan models.AgentMessage

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	history []*schema.Message
}

func (s *einoSession) ID() string { return s.id }

func (s *einoSession) Events() <-chan models.AgentMessage { return s.events }

func (s *einoSession) SendContent(text string) error {
	return s.queue.Put(text)
}

func (s *einoSession) Close() {
	s.closeOnce.Do(func() {
		s.queue.Close()
		s.cancel()
	})
}

func (s *einoSession) run() {
	defer close(s.events)
	for {
		text, err := s.queue.Get(s.ctx)
		if err != nil {
			return
		}
		s.runTurn(text)
	}
}

type streamItem struct {
	msg *schema.Message
	err error
}

func (s *einoSession) runTurn(text string) {
	s.history = append(s.history, schema.UserMessage(text))

	turnCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	sr, err := s.rt.agent.Stream(turnCtx, s.input())
	if err != nil {
		slog.Error("agent stream failed", "session_id", s.id, "err", err)
		s.fail(err)
		return
	}

	chunks := make(chan streamItem)
	go func() {
		defer close(chunks)
		defer sr.Close()
		for {
			msg, err := sr.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			select {
			case chunks <- streamItem{msg: msg, err: err}:
			case <-turnCtx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var reply strings.Builder
	for {
		select {
		case item, ok := <-chunks:
			if !ok {
				s.history = append(s.history, schema.AssistantMessage(reply.String(), nil))
				s.emit(models.TurnCompleted())
				return
			}
			if item.err != nil {
				slog.Error("agent stream broke", "session_id", s.id, "err", item.err)
				s.fail(item.err)
				return
			}
			if item.msg == nil || item.msg.Content == "" {
				continue
			}
			reply.WriteString(item.msg.Content)
			s.emit(models.TextChunk(item.msg.Content))
		case <-s.queue.Pending():
			if s.queue.Len() == 0 {
				continue
			}
			// A newer user turn supersedes the one in flight.
			cancel()
			if reply.Len() > 0 {
				s.history = append(s.history, schema.AssistantMessage(reply.String(), nil))
			}
			s.emit(models.TurnInterrupted())
			return
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *einoSession) fail(err error) {
	s.history = s.history[:len(s.history)-1]
	s.emit(models.TextChunk(fmt.Sprintf("Error: %v", err)))
	s.emit(models.TurnCompleted())
}

func (s *einoSession) emit(m models.AgentMessage) {
	select {
	case s.events <- m:
	case <-s.ctx.Done():
	}
}

func (s *einoSession) input() []*schema.Message {
	history := s.history
	if len(history) > s.rt.maxHistory {
		history = history[len(history)-s.rt.maxHistory:]
	}
	msgs := make([]*schema.Message, 0, len(history)+1)
	prompt := s.rt.systemPrompt
	if strings.Contains(prompt, "%s") {
		prompt = fmt.Sprintf(prompt, time.Now().Format("2006-01-02"))
	}
	msgs = append(msgs, schema.SystemMessage(prompt))
	return append(msgs, history...)
}

// toolCallChecker reports whether a streamed model reply is a tool call.
func toolCallChecker(ctx context.Context, sr *schema.StreamReader[*schema.Message]) (bool, error) {
	defer sr.Close()
	for {
		msg, err := sr.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		if len(msg.ToolCalls) > 0 {
			return true, nil
		}
	}
}
