package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/wchen310/tictactoe-arena/internal/api/models"
)

// MatchRepository defines the interface for match data operations.
type MatchRepository interface {
	CreateMatch(ctx context.Context, player1ID int64) (*models.Match, error)
	FindByID(ctx context.Context, id int64) (*models.Match, error)
	JoinMatch(ctx context.Context, id, player2ID int64) (*models.Match, error)
	FinishMatch(ctx context.Context, id int64, winnerMark string, winnerID, loserID int64, draw bool) error
}

type sqliteMatchRepository struct {
	db *sqlx.DB
}

// NewMatchRepository creates a new SQLite-based MatchRepository.
func NewMatchRepository(db *sqlx.DB) MatchRepository {
	return &sqliteMatchRepository{db: db}
}

// CreateMatch inserts a new match row in the waiting state. The row's primary
// key is the match identifier used by the websocket handshake.
func (r *sqliteMatchRepository) CreateMatch(ctx context.Context, player1ID int64) (*models.Match, error) {
	ctx, span := tracer.Start(ctx, "MatchRepository.CreateMatch")
	defer span.End()

	query := `INSERT INTO matches (player1_id, status) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, query, player1ID, models.MatchWaiting)
	if err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new match id: %w", err)
	}
	return r.FindByID(ctx, id)
}

// FindByID retrieves a match by primary key, (nil, nil) when absent.
func (r *sqliteMatchRepository) FindByID(ctx context.Context, id int64) (*models.Match, error) {
	ctx, span := tracer.Start(ctx, "MatchRepository.FindByID")
	defer span.End()

	var m models.Match
	query := `SELECT id, player1_id, player2_id, status, winner, created_at FROM matches WHERE id = ?`
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match by id: %w", err)
	}
	return &m, nil
}

// JoinMatch fills the second player slot and moves the row to playing. Only a
// waiting match can be joined.
func (r *sqliteMatchRepository) JoinMatch(ctx context.Context, id, player2ID int64) (*models.Match, error) {
	ctx, span := tracer.Start(ctx, "MatchRepository.JoinMatch")
	defer span.End()

	query := `UPDATE matches SET player2_id = ?, status = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, query, player2ID, models.MatchPlaying, id, models.MatchWaiting)
	if err != nil {
		return nil, fmt.Errorf("failed to join match: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read join result: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// FinishMatch closes the match row and bumps the players' tallies in one
// transaction. For a draw both players get a draw; otherwise winnerID gets a
// win and loserID a loss.
func (r *sqliteMatchRepository) FinishMatch(ctx context.Context, id int64, winnerMark string, winnerID, loserID int64, draw bool) error {
	ctx, span := tracer.Start(ctx, "MatchRepository.FinishMatch")
	defer span.End()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var winner any
	if !draw {
		winner = winnerMark
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE matches SET status = ?, winner = ? WHERE id = ?`,
		models.MatchFinished, winner, id); err != nil {
		return fmt.Errorf("failed to finish match row: %w", err)
	}

	if draw {
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET draws = draws + 1 WHERE id IN (?, ?)`,
			winnerID, loserID); err != nil {
			return fmt.Errorf("failed to update draw tallies: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET wins = wins + 1 WHERE id = ?`, winnerID); err != nil {
			return fmt.Errorf("failed to update winner tally: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET losses = losses + 1 WHERE id = ?`, loserID); err != nil {
			return fmt.Errorf("failed to update loser tally: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit outcome: %w", err)
	}
	return nil
}
