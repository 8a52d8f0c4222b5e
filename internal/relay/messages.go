package relay

import (
	"encoding/json"
	"fmt"
)

// Message types exchanged with the bot process over the duplex channel.
// Outbound: start_interview. Inbound: client_connected, client_disconnected.
const (
	TypeStartInterview     = "start_interview"
	TypeClientConnected    = "client_connected"
	TypeClientDisconnected = "client_disconnected"
)

// BotConfig describes the interview customization sent with a start message
type BotConfig struct {
	JobPosition    string   `json:"job_position"`
	RequiredSkills []string `json:"required_skills"`
	Language       string   `json:"language"`
}

// StartInterview is the outbound start notification frame
type StartInterview struct {
	Type        string    `json:"type"`
	InterviewID int64     `json:"interview_id"`
	CandidateID int64     `json:"candidate_id"`
	Config      BotConfig `json:"config"`
}

// Envelope pairs a frame's routing header with the exact bytes it was
// encoded from. Buffered frames are transmitted verbatim on flush, so a
// message that waited in the pending table goes out byte-for-byte identical
// to the one originally handed to Forward.
type Envelope struct {
	Type        string
	InterviewID int64
	Frame       []byte
}

// NewStartEnvelope encodes a start message into a forwardable envelope
func NewStartEnvelope(msg StartInterview) (Envelope, error) {
	msg.Type = TypeStartInterview
	frame, err := json.Marshal(msg)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to encode start message: %w", err)
	}
	return Envelope{
		Type:        msg.Type,
		InterviewID: msg.InterviewID,
		Frame:       frame,
	}, nil
}

// Inbound is the decoded header of a frame received from the bot process
type Inbound struct {
	Type        string `json:"type"`
	InterviewID int64  `json:"interview_id"`
}

// DecodeInbound parses an inbound frame. Frames that are not JSON objects or
// carry no type tag are rejected; unknown tags are left to the caller.
func DecodeInbound(frame []byte) (Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(frame, &msg); err != nil {
		return Inbound{}, fmt.Errorf("failed to parse inbound frame: %w", err)
	}
	if msg.Type == "" {
		return Inbound{}, fmt.Errorf("inbound frame has no type field")
	}
	return msg, nil
}
