package streaming

import (
	"encoding/json"
	"errors"

	"batchsend/internal/domain"
)

type MessageType string

const (
	MessageTypeRunStarted MessageType = "run_started"
	MessageTypeSubmission MessageType = "submission"
	MessageTypeSummary    MessageType = "summary"
)

// Message is the envelope published for every run event.
type Message struct {
	Type      MessageType              `json:"type"`
	RunID     string                   `json:"run_id"`
	TraceID   string                   `json:"trace_id,omitempty"`
	Source    string                   `json:"source,omitempty"`
	Total     int                      `json:"total,omitempty"`
	Seq       int                      `json:"seq,omitempty"`
	Timestamp string                   `json:"timestamp,omitempty"`
	Result    *domain.SubmissionResult `json:"result,omitempty"`
	Summary   *domain.BatchSummary     `json:"summary,omitempty"`
}

func Encode(msg Message) ([]byte, error) {
	if err := validate(msg); err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}

func Decode(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	if err := validate(msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func validate(msg Message) error {
	switch msg.Type {
	case "":
		return errors.New("message type is required")
	case MessageTypeRunStarted:
	case MessageTypeSubmission:
		if msg.Result == nil {
			return errors.New("submission message requires a result")
		}
	case MessageTypeSummary:
		if msg.Summary == nil {
			return errors.New("summary message requires a summary")
		}
	default:
		return errors.New("unknown message type " + string(msg.Type))
	}
	if msg.RunID == "" {
		return errors.New("run_id is required")
	}
	return nil
}
