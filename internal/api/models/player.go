package models

import "time"

// Player represents a persistent player record.
type Player struct {
	ID           int64     `db:"id" json:"id"`
	Nickname     string    `db:"nickname" json:"nickname"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Wins         int       `db:"wins" json:"wins"`
	Losses       int       `db:"losses" json:"losses"`
	Draws        int       `db:"draws" json:"draws"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RegisterRequest defines the structure for a player registration request.
type RegisterRequest struct {
	Nickname string `json:"nickname" binding:"required,min=3,max=20"`
	Password string `json:"password" binding:"required,min=6,max=50"`
}

// LoginRequest defines the structure for a player login request.
type LoginRequest struct {
	Nickname string `json:"nickname" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse defines the structure for a successful login response.
type LoginResponse struct {
	Token    string `json:"token"`
	PlayerID int64  `json:"player_id"`
}
