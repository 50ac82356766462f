package network

import "encoding/json"

// Message type tags shared by both directions of the wire protocol.
const (
	MsgTypeStateUpdate  = "STATE_UPDATE"
	MsgTypeError        = "ERROR"
	MsgTypeStartGame    = "START_GAME"
	MsgTypeGameStart    = "GAME_START"
	MsgTypeSpinStart    = "SPIN_START"
	MsgTypeSpinEnd      = "SPIN_END"
	MsgTypeGuess        = "GUESS"
	MsgTypeSolve        = "SOLVE"
	MsgTypeSubmitScore  = "SUBMIT_SCORE"
	MsgTypeNextQuestion = "NEXT_QUESTION"
)

// Envelope is the wire format for every message: a type tag plus an
// opaque payload.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// NewEnvelope builds an outbound envelope.
func NewEnvelope(msgType string, payload any) *Envelope {
	return &Envelope{Type: msgType, Payload: payload}
}

// PayloadString extracts the payload as a plain string. It accepts both a
// JSON string and any other scalar (numbers arrive as json.Number-free
// float64 from Decode, so they are re-marshalled).
func (e *Envelope) PayloadString() string {
	switch v := e.Payload.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
