package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wchen310/tictactoe-arena/internal/api/models"
	"github.com/wchen310/tictactoe-arena/internal/api/repository"
)

const (
	leaderboardLimit    = 100
	leaderboardCacheTTL = 30 * time.Second
	tokenLifetime       = 72 * time.Hour
)

var (
	ErrNicknameTaken      = errors.New("nickname already taken")
	ErrInvalidCredentials = errors.New("invalid nickname or password")
)

// PlayerService defines the interface for player-related business logic.
type PlayerService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.Player, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GuestLogin(ctx context.Context) (*models.Player, error)
	Leaderboard(ctx context.Context) ([]models.Player, error)
}

type playerService struct {
	repo      repository.PlayerRepository
	cache     *leaderboardCache
	jwtSecret []byte
}

// NewPlayerService creates a new PlayerService. rdb may be nil, in which case
// the leaderboard is served straight from the repository.
func NewPlayerService(repo repository.PlayerRepository, rdb *redis.Client, jwtSecret []byte) PlayerService {
	return &playerService{
		repo:      repo,
		cache:     newLeaderboardCache(rdb, leaderboardCacheTTL),
		jwtSecret: jwtSecret,
	}
}

// Register handles player registration.
func (s *playerService) Register(ctx context.Context, req *models.RegisterRequest) (*models.Player, error) {
	existing, err := s.repo.FindByNickname(ctx, req.Nickname)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrNicknameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreatePlayer(ctx, req.Nickname, string(hash))
}

// Login handles player login and returns a JWT on success.
func (s *playerService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	p, err := s.repo.FindByNickname(ctx, req.Nickname)
	if err != nil {
		return nil, err
	}
	if p == nil || p.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": p.ID,
		"nn":  p.Nickname,
		"exp": time.Now().Add(tokenLifetime).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{Token: signed, PlayerID: p.ID}, nil
}

// GuestLogin persists a throwaway guest identity so the websocket handshake
// validation can find it. Guests have no password and cannot log back in.
func (s *playerService) GuestLogin(ctx context.Context) (*models.Player, error) {
	nickname := "guest-" + uuid.New().String()[:8]
	return s.repo.CreatePlayer(ctx, nickname, "")
}

// Leaderboard returns players ordered by wins, served from the Redis cache
// when fresh.
func (s *playerService) Leaderboard(ctx context.Context) ([]models.Player, error) {
	if players, ok := s.cache.get(ctx); ok {
		return players, nil
	}

	players, err := s.repo.Leaderboard(ctx, leaderboardLimit)
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, players)
	return players, nil
}
