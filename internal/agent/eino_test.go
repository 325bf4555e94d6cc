package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/flow/agent"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinAgentGo/models"
)

type scriptedTurn struct {
	chunks []string
	err    error
	reader *schema.StreamReader[*schema.Message]
}

type fakeStreamer struct {
	mu     sync.Mutex
	turns  []scriptedTurn
	inputs [][]*schema.Message
}

func (f *fakeStreamer) Stream(_ context.Context, input []*schema.Message, _ ...agent.AgentOption) (*schema.StreamReader[*schema.Message], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, input)
	if len(f.turns) == 0 {
		return schema.StreamReaderFromArray([]*schema.Message{}), nil
	}
	turn := f.turns[0]
	f.turns = f.turns[1:]
	if turn.err != nil {
		return nil, turn.err
	}
	if turn.reader != nil {
		return turn.reader, nil
	}
	msgs := make([]*schema.Message, 0, len(turn.chunks))
	for _, c := range turn.chunks {
		msgs = append(msgs, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}

func (f *fakeStreamer) calls() [][]*schema.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]*schema.Message(nil), f.inputs...)
}

func nextEvent(t *testing.T, s LiveSession) models.AgentMessage {
	t.Helper()
	select {
	case ev, ok := <-s.Events():
		require.True(t, ok, "events closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return models.AgentMessage{}
}

func TestSessionStreamsChunksThenTurnComplete(t *testing.T) {
	fs := &fakeStreamer{turns: []scriptedTurn{{chunks: []string{"Gold is ", "", "up 1%"}}}}
	rt := NewEinoRuntime(fs)

	s, err := rt.StartSession(context.Background(), 7)
	require.NoError(t, err)
	defer s.Close()
	require.NotEmpty(t, s.ID())

	require.NoError(t, s.SendContent("how is gold?"))

	assert.Equal(t, models.TextChunk("Gold is "), nextEvent(t, s))
	assert.Equal(t, models.TextChunk("up 1%"), nextEvent(t, s))
	assert.Equal(t, models.TurnCompleted(), nextEvent(t, s))
}

func TestSessionKeepsHistoryAcrossTurns(t *testing.T) {
	fs := &fakeStreamer{turns: []scriptedTurn{
		{chunks: []string{"first answer"}},
		{chunks: []string{"second answer"}},
	}}
	s, err := NewEinoRuntime(fs, WithSystemPrompt("brief")).StartSession(context.Background(), 1)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SendContent("one"))
	nextEvent(t, s)
	nextEvent(t, s)
	require.NoError(t, s.SendContent("two"))
	nextEvent(t, s)
	nextEvent(t, s)

	calls := fs.calls()
	require.Len(t, calls, 2)
	second := calls[1]
	require.Len(t, second, 4)
	assert.Equal(t, schema.System, second[0].Role)
	assert.Equal(t, "brief", second[0].Content)
	assert.Equal(t, "one", second[1].Content)
	assert.Equal(t, "first answer", second[2].Content)
	assert.Equal(t, "two", second[3].Content)
}

func TestSessionReportsStreamErrorAsText(t *testing.T) {
	fs := &fakeStreamer{turns: []scriptedTurn{{err: errors.New("model unavailable")}}}
	s, err := NewEinoRuntime(fs).StartSession(context.Background(), 1)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SendContent("hi"))
	ev := nextEvent(t, s)
	assert.True(t, ev.IsTextChunk())
	assert.Contains(t, ev.Text, "Error: model unavailable")
	assert.Equal(t, models.TurnCompleted(), nextEvent(t, s))
}

func TestNewTurnInterruptsStreamingTurn(t *testing.T) {
	sr, sw := schema.Pipe[*schema.Message](1)
	defer sw.Close()
	fs := &fakeStreamer{turns: []scriptedTurn{
		{reader: sr},
		{chunks: []string{"fresh"}},
	}}
	s, err := NewEinoRuntime(fs).StartSession(context.Background(), 1)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SendContent("slow question"))
	sw.Send(schema.AssistantMessage("partial", nil), nil)
	assert.Equal(t, models.TextChunk("partial"), nextEvent(t, s))

	require.NoError(t, s.SendContent("never mind"))
	assert.Equal(t, models.TurnInterrupted(), nextEvent(t, s))
	assert.Equal(t, models.TextChunk("fresh"), nextEvent(t, s))
	assert.Equal(t, models.TurnCompleted(), nextEvent(t, s))
}

func TestCloseEndsEventStream(t *testing.T) {
	s, err := NewEinoRuntime(&fakeStreamer{}).StartSession(context.Background(), 1)
	require.NoError(t, err)

	s.Close()
	s.Close()

	select {
	case _, ok := <-s.Events():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("events not closed after Close")
	}
	assert.ErrorIs(t, s.SendContent("late"), ErrQueueClosed)
}

func TestStartSessionWithoutAgent(t *testing.T) {
	_, err := NewEinoRuntime(nil).StartSession(context.Background(), 1)
	assert.Error(t, err)
}

func TestToolCallChecker(t *testing.T) {
	plain := schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage("text", nil)})
	ok, err := toolCallChecker(context.Background(), plain)
	require.NoError(t, err)
	assert.False(t, ok)

	call := schema.StreamReaderFromArray([]*schema.Message{
		schema.AssistantMessage("", nil),
		schema.AssistantMessage("", []schema.ToolCall{{ID: "1", Function: schema.FunctionCall{Name: "get_stock_price"}}}),
	})
	ok, err = toolCallChecker(context.Background(), call)
	require.NoError(t, err)
	assert.True(t, ok)
}
