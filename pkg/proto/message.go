package proto

import "github.com/wchen310/tictactoe-arena/internal/game"

// Client-to-server message types.
const (
	TypeMove = "move"
)

// Server-to-client message types.
const (
	TypeAssignment           = "assignment"
	TypeReady                = "ready"
	TypeUpdate               = "update"
	TypeMoveRejected         = "move_rejected"
	TypeFinished             = "finished"
	TypeOpponentDisconnected = "opponent_disconnected"
	TypeOpponentReconnected  = "opponent_reconnected"
	TypeError                = "error"
)

// Rejection and error reasons carried by move_rejected and error messages.
const (
	ReasonNotYourTurn      = "not_your_turn"
	ReasonCellOccupied     = "cell_occupied"
	ReasonOutOfRange       = "out_of_range"
	ReasonMatchNotReady    = "match_not_ready"
	ReasonMatchOver        = "match_over"
	ReasonMatchFull        = "match_full"
	ReasonMatchGone        = "match_gone"
	ReasonMatchNotFound    = "match_not_found"
	ReasonIdentityNotFound = "identity_not_found"
	ReasonMalformedRequest = "malformed_request"
)

// ClientToServerMessage represents a message from the client to the server.
// Row and Col are pointers so a missing index can be told apart from zero.
type ClientToServerMessage struct {
	Type string `json:"type" validate:"required"`
	Row  *int   `json:"row,omitempty"`
	Col  *int   `json:"col,omitempty"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type   string      `json:"type" validate:"required"`
	Reason string      `json:"reason,omitempty"`
	Mark   game.Mark   `json:"mark,omitempty"`
	Board  *game.Board `json:"board,omitempty"`
	Next   game.Mark   `json:"next,omitempty"`
	Winner game.Mark   `json:"winner,omitempty"`
	Draw   bool        `json:"draw,omitempty"`
}
