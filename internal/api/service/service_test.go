package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wchen310/tictactoe-arena/internal/api/models"
	"github.com/wchen310/tictactoe-arena/internal/game"
	"github.com/wchen310/tictactoe-arena/internal/session"
)

type fakePlayerRepo struct {
	nextID  int64
	players map[int64]*models.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[int64]*models.Player)}
}

func (r *fakePlayerRepo) CreatePlayer(_ context.Context, nickname, passwordHash string) (*models.Player, error) {
	r.nextID++
	p := &models.Player{ID: r.nextID, Nickname: nickname, PasswordHash: passwordHash}
	r.players[p.ID] = p
	return p, nil
}

func (r *fakePlayerRepo) FindByID(_ context.Context, id int64) (*models.Player, error) {
	return r.players[id], nil
}

func (r *fakePlayerRepo) FindByNickname(_ context.Context, nickname string) (*models.Player, error) {
	for _, p := range r.players {
		if p.Nickname == nickname {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePlayerRepo) Leaderboard(_ context.Context, limit int) ([]models.Player, error) {
	out := make([]models.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, *p)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type finishCall struct {
	winnerMark string
	winnerID   int64
	loserID    int64
	draw       bool
}

type fakeMatchRepo struct {
	nextID   int64
	matches  map[int64]*models.Match
	finished []finishCall
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int64]*models.Match)}
}

func (r *fakeMatchRepo) CreateMatch(_ context.Context, player1ID int64) (*models.Match, error) {
	r.nextID++
	m := &models.Match{ID: r.nextID, Player1ID: player1ID, Status: models.MatchWaiting}
	r.matches[m.ID] = m
	return m, nil
}

func (r *fakeMatchRepo) FindByID(_ context.Context, id int64) (*models.Match, error) {
	return r.matches[id], nil
}

func (r *fakeMatchRepo) JoinMatch(_ context.Context, id, player2ID int64) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok || m.Status != models.MatchWaiting {
		return nil, nil
	}
	m.Player2ID = sql.NullInt64{Int64: player2ID, Valid: true}
	m.Status = models.MatchPlaying
	return m, nil
}

func (r *fakeMatchRepo) FinishMatch(_ context.Context, id int64, winnerMark string, winnerID, loserID int64, draw bool) error {
	if m, ok := r.matches[id]; ok {
		m.Status = models.MatchFinished
	}
	r.finished = append(r.finished, finishCall{winnerMark: winnerMark, winnerID: winnerID, loserID: loserID, draw: draw})
	return nil
}

func TestRegisterRejectsDuplicateNickname(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := NewPlayerService(repo, nil, []byte("test-secret"))

	_, err := svc.Register(context.Background(), &models.RegisterRequest{Nickname: "alice", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), &models.RegisterRequest{Nickname: "alice", Password: "other-pass"})
	assert.ErrorIs(t, err, ErrNicknameTaken)
}

func TestRegisterStoresBcryptHash(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := NewPlayerService(repo, nil, []byte("test-secret"))

	p, err := svc.Register(context.Background(), &models.RegisterRequest{Nickname: "alice", Password: "hunter22"})
	require.NoError(t, err)

	assert.NotEqual(t, "hunter22", p.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("hunter22")))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := NewPlayerService(repo, nil, []byte("test-secret"))

	_, err := svc.Register(context.Background(), &models.RegisterRequest{Nickname: "alice", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &models.LoginRequest{Nickname: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &models.LoginRequest{Nickname: "nobody", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginReturnsToken(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := NewPlayerService(repo, nil, []byte("test-secret"))

	p, err := svc.Register(context.Background(), &models.RegisterRequest{Nickname: "alice", Password: "hunter22"})
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), &models.LoginRequest{Nickname: "alice", Password: "hunter22"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, p.ID, res.PlayerID)
}

func TestGuestLoginCannotLogBackIn(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := NewPlayerService(repo, nil, []byte("test-secret"))

	guest, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)
	assert.Empty(t, guest.PasswordHash)

	_, err = svc.Login(context.Background(), &models.LoginRequest{Nickname: guest.Nickname, Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestJoinRequiresWaitingMatch(t *testing.T) {
	players := newFakePlayerRepo()
	matches := newFakeMatchRepo()
	svc := NewMatchService(matches, players, nil)

	p1, _ := players.CreatePlayer(context.Background(), "alice", "")
	p2, _ := players.CreatePlayer(context.Background(), "bob", "")
	p3, _ := players.CreatePlayer(context.Background(), "carol", "")

	m, err := svc.Create(context.Background(), p1.ID)
	require.NoError(t, err)

	joined, err := svc.Join(context.Background(), m.ID, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchPlaying, joined.Status)

	_, err = svc.Join(context.Background(), m.ID, p3.ID)
	assert.ErrorIs(t, err, ErrMatchNotJoinable)

	_, err = svc.Join(context.Background(), 999, p3.ID)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestCreateRejectsUnknownPlayer(t *testing.T) {
	svc := NewMatchService(newFakeMatchRepo(), newFakePlayerRepo(), nil)

	_, err := svc.Create(context.Background(), 42)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestRecordOutcomeMapsWinnerAndLoser(t *testing.T) {
	players := newFakePlayerRepo()
	matches := newFakeMatchRepo()
	svc := NewMatchService(matches, players, nil)

	m, _ := matches.CreateMatch(context.Background(), 1)

	err := svc.RecordOutcome(context.Background(), m.ID, session.Outcome{Winner: game.MarkO, X: 1, O: 2})
	require.NoError(t, err)

	require.Len(t, matches.finished, 1)
	call := matches.finished[0]
	assert.Equal(t, string(game.MarkO), call.winnerMark)
	assert.Equal(t, int64(2), call.winnerID)
	assert.Equal(t, int64(1), call.loserID)
	assert.False(t, call.draw)
	assert.Equal(t, models.MatchFinished, matches.matches[m.ID].Status)
}

func TestRecordOutcomeDraw(t *testing.T) {
	players := newFakePlayerRepo()
	matches := newFakeMatchRepo()
	svc := NewMatchService(matches, players, nil)

	m, _ := matches.CreateMatch(context.Background(), 1)

	err := svc.RecordOutcome(context.Background(), m.ID, session.Outcome{Winner: game.None, Draw: true, X: 1, O: 2})
	require.NoError(t, err)

	require.Len(t, matches.finished, 1)
	assert.True(t, matches.finished[0].draw)
}
