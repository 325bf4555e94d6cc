package models

const MimeTextPlain = "text/plain"

// AgentMessage is one event produced by the agent runtime for a live session.
// Exactly one of the following shapes is meaningful:
//   - a text chunk: Partial is true and Text carries the delta
//   - a control event: TurnComplete or Interrupted is true
type AgentMessage struct {
	Text         string `json:"text,omitempty"`
	Partial      bool   `json:"partial,omitempty"`
	TurnComplete bool   `json:"turn_complete,omitempty"`
	Interrupted  bool   `json:"interrupted,omitempty"`
}

func (m AgentMessage) IsControl() bool {
	return m.TurnComplete || m.Interrupted
}

func (m AgentMessage) IsTextChunk() bool {
	return m.Partial && m.Text != ""
}

func TextChunk(text string) AgentMessage {
	return AgentMessage{Text: text, Partial: true}
}

func TurnCompleted() AgentMessage {
	return AgentMessage{TurnComplete: true}
}

func TurnInterrupted() AgentMessage {
	return AgentMessage{Interrupted: true}
}

// ClientFrame is the JSON frame exchanged for content in both directions.
type ClientFrame struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// ControlFrame is sent to the client when a turn ends.
type ControlFrame struct {
	TurnComplete bool `json:"turn_complete"`
	Interrupted  bool `json:"interrupted"`
}
