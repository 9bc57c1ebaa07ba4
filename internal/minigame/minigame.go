// Package minigame defines the message contract between an embedded game
// engine and its host page. It has no external dependencies.
//
// Every message is a {type, payload} envelope. The host sends INIT_GAME once
// and relays the player's UI actions; the engine answers with LIVE_ANSWER per
// question and LIVE_FINISH followed by GAME_COMPLETE at the end. Delivery is
// fire-and-forget in both directions.
package minigame

import (
	"encoding/json"
	"fmt"
)

// Protocol message types.
const (
	TypeInitGame     = "INIT_GAME"
	TypeLiveAnswer   = "LIVE_ANSWER"
	TypeLiveFinish   = "LIVE_FINISH"
	TypeGameComplete = "GAME_COMPLETE"
)

// UI-layer message types carried on the same channel.
const (
	TypeEngineReady    = "ENGINE_READY"
	TypeViewState      = "VIEW_STATE"
	TypeActionRejected = "ACTION_REJECTED"

	TypeUserEnter   = "USER_ENTER"
	TypeUserSelect  = "USER_SELECT"
	TypeUserPick    = "USER_PICK"
	TypeUserUnpick  = "USER_UNPICK"
	TypeUserSubmit  = "USER_SUBMIT"
	TypeUserRestart = "USER_RESTART"
)

// Message is the wire envelope.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage builds an envelope with v marshaled as its payload.
func NewMessage(typ string, v any) (Message, error) {
	if v == nil {
		return Message{Type: typ, Payload: json.RawMessage("{}")}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Message{}, fmt.Errorf("encoding %s payload: %w", typ, err)
	}
	return Message{Type: typ, Payload: data}, nil
}

// MustMessage is NewMessage for payload types that always marshal.
func MustMessage(typ string, v any) Message {
	m, err := NewMessage(typ, v)
	if err != nil {
		panic(err)
	}
	return m
}

// Decode unmarshals the payload into v. A missing payload decodes as {}.
func (m Message) Decode(v any) error {
	data := m.Payload
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", m.Type, err)
	}
	return nil
}

// AnswerRecord is one resolved question. Index, Correct and DeltaMs are
// shared by every engine family; the selection fields are family-specific.
type AnswerRecord struct {
	Index         int      `json:"index"`
	SelectedIndex *int     `json:"selectedIndex,omitempty"`
	Selected      []string `json:"selected,omitempty"`
	Correct       bool     `json:"correct"`
	DeltaMs       int64    `json:"deltaMs"`
}

type LiveAnswer struct {
	Correct      bool  `json:"correct"`
	DeltaMs      int64 `json:"deltaMs"`
	ScoreDelta   int   `json:"scoreDelta"`
	CurrentScore int   `json:"currentScore"`
}

// LiveFinish locks the elapsed time for live leaderboards.
type LiveFinish struct {
	TotalTimeMs int64 `json:"totalTimeMs"`
}

// GameComplete is the authoritative result of a session.
type GameComplete struct {
	GameCreationID     string         `json:"gameCreationId"`
	Score              int            `json:"score"`
	TotalPossibleScore int            `json:"totalPossibleScore"`
	Answers            []AnswerRecord `json:"answers"`
}

type EngineReady struct {
	Engine string `json:"engine"`
}

// ViewState is the render snapshot a thin UI layer draws from.
type ViewState struct {
	Phase     string `json:"phase"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Score     int    `json:"score"`
	Countdown int    `json:"countdown,omitempty"`
	Round     any    `json:"round,omitempty"`
}

type ActionRejected struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// UserAction is the payload of USER_SELECT, USER_PICK and USER_UNPICK.
type UserAction struct {
	Index int `json:"index"`
}
