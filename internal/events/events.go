package events

import "encoding/json"

// EventsChannel is the Redis Pub/Sub channel carrying match lifecycle events.
const EventsChannel = "channel:events"

// Event types.
const (
	TypeMatchStarted       = "match_started"
	TypeMatchFinished      = "match_finished"
	TypePlayerDisconnected = "player_disconnected"
	TypePlayerReconnected  = "player_reconnected"
)

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// MatchStartedPayload is the payload for the "match_started" event, published
// when both marks of a match are bound.
type MatchStartedPayload struct {
	MatchID   int64   `json:"match_id"`
	PlayerIDs []int64 `json:"player_ids"`
}

// MatchFinishedPayload is the payload for the "match_finished" event.
type MatchFinishedPayload struct {
	MatchID int64  `json:"match_id"`
	Winner  string `json:"winner,omitempty"`
	Draw    bool   `json:"draw,omitempty"`
}

// PlayerDisconnectedPayload is the payload for the "player_disconnected" event.
type PlayerDisconnectedPayload struct {
	MatchID  int64 `json:"match_id"`
	PlayerID int64 `json:"player_id"`
}

// PlayerReconnectedPayload is the payload for the "player_reconnected" event.
type PlayerReconnectedPayload struct {
	MatchID  int64 `json:"match_id"`
	PlayerID int64 `json:"player_id"`
}
