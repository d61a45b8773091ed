package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// ChangeMessage announces that a process wrote to the shared record store.
// It carries no data; receivers reload.
type ChangeMessage struct {
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

var errMissingOrigin = errors.New("change message without origin")

func NewChangeMessage(origin string) *ChangeMessage {
	return &ChangeMessage{Origin: origin, Timestamp: time.Now().UTC()}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message. A message without an origin is
// rejected.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Origin == "" {
		return nil, errMissingOrigin
	}
	return &msg, nil
}
