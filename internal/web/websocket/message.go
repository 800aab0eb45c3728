package websocket

import (
	"encoding/json"
	"fmt"
)

// Message types sent to stream clients
const (
	TypeSnapshot = "snapshot"
	TypeState    = "state"
)

// Message is the envelope of every frame sent to a client
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a message with payload encoded as its data
func NewMessage(messageType string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return &Message{Type: messageType, Data: data}, nil
}
