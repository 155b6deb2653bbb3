package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"

	"github.com/wchen310/tictactoe-arena/internal/api/models"
)

var tracer = otel.Tracer("repository")

// PlayerRepository defines the interface for player data operations.
type PlayerRepository interface {
	CreatePlayer(ctx context.Context, nickname, passwordHash string) (*models.Player, error)
	FindByID(ctx context.Context, id int64) (*models.Player, error)
	FindByNickname(ctx context.Context, nickname string) (*models.Player, error)
	Leaderboard(ctx context.Context, limit int) ([]models.Player, error)
}

type sqlitePlayerRepository struct {
	db *sqlx.DB
}

// NewPlayerRepository creates a new SQLite-based PlayerRepository.
func NewPlayerRepository(db *sqlx.DB) PlayerRepository {
	return &sqlitePlayerRepository{db: db}
}

// CreatePlayer inserts a new player row and returns it.
func (r *sqlitePlayerRepository) CreatePlayer(ctx context.Context, nickname, passwordHash string) (*models.Player, error) {
	ctx, span := tracer.Start(ctx, "PlayerRepository.CreatePlayer")
	defer span.End()

	query := `INSERT INTO players (nickname, password_hash) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, query, nickname, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new player id: %w", err)
	}
	return r.FindByID(ctx, id)
}

// FindByID retrieves a player by primary key. A missing player is reported as
// (nil, nil), not an error.
func (r *sqlitePlayerRepository) FindByID(ctx context.Context, id int64) (*models.Player, error) {
	ctx, span := tracer.Start(ctx, "PlayerRepository.FindByID")
	defer span.End()

	var p models.Player
	query := `SELECT id, nickname, password_hash, wins, losses, draws, created_at FROM players WHERE id = ?`
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}
	return &p, nil
}

// FindByNickname retrieves a player by nickname, (nil, nil) when absent.
func (r *sqlitePlayerRepository) FindByNickname(ctx context.Context, nickname string) (*models.Player, error) {
	ctx, span := tracer.Start(ctx, "PlayerRepository.FindByNickname")
	defer span.End()

	var p models.Player
	query := `SELECT id, nickname, password_hash, wins, losses, draws, created_at FROM players WHERE nickname = ?`
	if err := r.db.GetContext(ctx, &p, query, nickname); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player by nickname: %w", err)
	}
	return &p, nil
}

// Leaderboard returns players ordered by wins.
func (r *sqlitePlayerRepository) Leaderboard(ctx context.Context, limit int) ([]models.Player, error) {
	ctx, span := tracer.Start(ctx, "PlayerRepository.Leaderboard")
	defer span.End()

	players := []models.Player{}
	query := `SELECT id, nickname, password_hash, wins, losses, draws, created_at FROM players ORDER BY wins DESC, id ASC LIMIT ?`
	if err := r.db.SelectContext(ctx, &players, query, limit); err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return players, nil
}
