package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"github.com/wchen310/tictactoe-arena/internal/api/models"
	"github.com/wchen310/tictactoe-arena/internal/api/repository"
	"github.com/wchen310/tictactoe-arena/internal/game"
	"github.com/wchen310/tictactoe-arena/internal/session"
)

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchNotJoinable = errors.New("match already full or started")
)

// MatchService defines the interface for match-record business logic. It also
// serves as the session registry's outcome recorder.
type MatchService interface {
	Create(ctx context.Context, playerID int64) (*models.Match, error)
	Join(ctx context.Context, matchID, playerID int64) (*models.Match, error)
	RecordOutcome(ctx context.Context, matchID int64, outcome session.Outcome) error
}

type matchService struct {
	matches repository.MatchRepository
	players repository.PlayerRepository
	cache   *leaderboardCache
}

// NewMatchService creates a new MatchService. rdb may be nil; it is only used
// to invalidate the leaderboard cache after an outcome is recorded.
func NewMatchService(matches repository.MatchRepository, players repository.PlayerRepository, rdb *redis.Client) MatchService {
	return &matchService{
		matches: matches,
		players: players,
		cache:   newLeaderboardCache(rdb, leaderboardCacheTTL),
	}
}

// Create opens a new match with the given player as its creator.
func (s *matchService) Create(ctx context.Context, playerID int64) (*models.Match, error) {
	p, err := s.players.FindByID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	return s.matches.CreateMatch(ctx, playerID)
}

// Join fills the second slot of a waiting match.
func (s *matchService) Join(ctx context.Context, matchID, playerID int64) (*models.Match, error) {
	p, err := s.players.FindByID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}

	m, err := s.matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if m.Status != models.MatchWaiting {
		return nil, ErrMatchNotJoinable
	}

	joined, err := s.matches.JoinMatch(ctx, matchID, playerID)
	if err != nil {
		return nil, err
	}
	if joined == nil {
		// Lost a race against another joiner.
		return nil, ErrMatchNotJoinable
	}
	return joined, nil
}

// RecordOutcome persists a terminal match result: the match row is finished
// and both players' tallies are updated. Implements session.Recorder.
func (s *matchService) RecordOutcome(ctx context.Context, matchID int64, outcome session.Outcome) error {
	winnerID, loserID := outcome.X, outcome.O
	if outcome.Winner == game.MarkO {
		winnerID, loserID = outcome.O, outcome.X
	}

	if err := s.matches.FinishMatch(ctx, matchID, string(outcome.Winner), winnerID, loserID, outcome.Draw); err != nil {
		return err
	}

	slog.InfoContext(ctx, "match outcome recorded",
		"match.id", matchID, "winner", outcome.Winner, "draw", outcome.Draw)
	s.cache.invalidate(ctx)
	return nil
}
