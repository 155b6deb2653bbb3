package models

import (
	"database/sql"
	"time"
)

// Match statuses as stored in the matches table.
const (
	MatchWaiting  = "waiting"
	MatchPlaying  = "playing"
	MatchFinished = "finished"
)

// Match represents a persistent match record. Winner holds the winning mark
// for decided matches and is NULL for draws and unfinished rows.
type Match struct {
	ID        int64          `db:"id" json:"id"`
	Player1ID int64          `db:"player1_id" json:"player1_id"`
	Player2ID sql.NullInt64  `db:"player2_id" json:"player2_id,omitempty"`
	Status    string         `db:"status" json:"status"`
	Winner    sql.NullString `db:"winner" json:"winner,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// CreateMatchRequest defines the structure for a match creation request.
type CreateMatchRequest struct {
	PlayerID int64 `json:"player_id" binding:"required"`
}

// JoinMatchRequest defines the structure for a match join request.
type JoinMatchRequest struct {
	PlayerID int64 `json:"player_id" binding:"required"`
}
