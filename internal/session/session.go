package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/wchen310/tictactoe-arena/internal/events"
	"github.com/wchen310/tictactoe-arena/internal/game"
	"github.com/wchen310/tictactoe-arena/internal/player"
	"github.com/wchen310/tictactoe-arena/pkg/proto"
)

var tracer = otel.Tracer("session")

var (
	ErrMatchFull     = errors.New("match already has two players")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrMatchNotReady = errors.New("match is waiting for a second player")
	ErrMatchOver     = errors.New("match is already over")
	ErrMatchGone     = errors.New("match no longer exists")
)

// Phase is the lifecycle phase of a match session.
type Phase int

const (
	// Forming: fewer than two marks assigned, moves rejected.
	Forming Phase = iota
	// Active: both marks assigned, board mutable.
	Active
	// Terminal: a win or draw was evaluated, final broadcast sent.
	Terminal
	// Abandoned: an Active match lost all bound connections.
	Abandoned
	// Closed: removed from the registry, no further operations valid.
	Closed
)

func (p Phase) String() string {
	switch p {
	case Forming:
		return "forming"
	case Active:
		return "active"
	case Terminal:
		return "terminal"
	case Abandoned:
		return "abandoned"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Outcome describes a finished match for the outcome recorder.
type Outcome struct {
	Winner game.Mark // None on draw
	Draw   bool
	X      int64 // player ID bound to X
	O      int64 // player ID bound to O
}

// Recorder persists a terminal match result. It is invoked at most once per
// session, outside the session lock; failures are logged and never undo the
// in-memory result.
type Recorder interface {
	RecordOutcome(ctx context.Context, matchID int64, outcome Outcome) error
}

// BindResult is what a successful Bind reports back to the binding connection.
type BindResult struct {
	Mark  game.Mark
	Turn  game.Mark
	Board game.Board
	Ready bool
}

// Session owns one match: its board, turn pointer, mark assignments and the
// set of live connections. Every mutating operation holds s.mu, so moves from
// the two connections are serialized and broadcasts for an applied move reach
// both players before the next move can be processed.
type Session struct {
	ID int64

	mu    sync.Mutex
	board game.Board
	turn  game.Mark
	marks map[int64]game.Mark       // player ID -> assigned mark, immutable once set
	conns map[game.Mark]*player.Player
	phase Phase

	recorder   Recorder
	pub        *events.Publisher
	grace      time.Duration
	graceTimer *time.Timer
	onClose    func(matchID int64)
}

func newSession(id int64, recorder Recorder, pub *events.Publisher, grace time.Duration, onClose func(int64)) *Session {
	return &Session{
		ID:       id,
		turn:     game.MarkX,
		marks:    make(map[int64]game.Mark, 2),
		conns:    make(map[game.Mark]*player.Player, 2),
		phase:    Forming,
		recorder: recorder,
		pub:      pub,
		grace:    grace,
		onClose:  onClose,
	}
}

// Phase returns the session's current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Bind associates a connection with a mark. The first identity gets X, the
// second gets O, and an identity that already holds a mark gets it back with
// the new connection attached (reconnection). A third distinct identity is
// rejected with ErrMatchFull.
func (s *Session) Bind(ctx context.Context, p *player.Player) (BindResult, error) {
	ctx, span := tracer.Start(ctx, "session.Bind", trace.WithAttributes(
		attribute.Int64("match.id", s.ID),
		attribute.Int64("player.id", p.ID),
	))
	defer span.End()

	s.mu.Lock()

	switch s.phase {
	case Terminal, Closed:
		s.mu.Unlock()
		span.SetStatus(codes.Error, "bind to finished match")
		return BindResult{}, ErrMatchOver
	case Abandoned:
		s.mu.Unlock()
		span.SetStatus(codes.Error, "bind to abandoned match")
		return BindResult{}, ErrMatchGone
	}

	if mark, ok := s.marks[p.ID]; ok {
		res := s.rebindLocked(p, mark)
		s.mu.Unlock()
		span.SetAttributes(attribute.String("player.mark", string(mark)), attribute.Bool("player.reconnected", true))
		slog.InfoContext(ctx, "player reconnected to match", "match.id", s.ID, "player.id", p.ID, "player.mark", mark)
		s.pub.Publish(ctx, events.TypePlayerReconnected, events.PlayerReconnectedPayload{MatchID: s.ID, PlayerID: p.ID})
		return res, nil
	}

	if len(s.marks) >= 2 {
		s.mu.Unlock()
		span.SetStatus(codes.Error, "match full")
		return BindResult{}, ErrMatchFull
	}

	mark := game.MarkX
	if len(s.marks) == 1 {
		mark = game.MarkO
	}
	s.marks[p.ID] = mark
	s.conns[mark] = p

	res := BindResult{Mark: mark, Turn: s.turn, Board: s.board}
	var started *events.MatchStartedPayload
	if len(s.marks) == 2 {
		s.phase = Active
		res.Ready = true
		s.broadcastLocked(ctx, &proto.ServerToClientMessage{Type: proto.TypeReady, Next: s.turn})

		started = &events.MatchStartedPayload{MatchID: s.ID}
		for id := range s.marks {
			started.PlayerIDs = append(started.PlayerIDs, id)
		}
	}
	s.mu.Unlock()

	span.SetAttributes(attribute.String("player.mark", string(mark)))
	slog.InfoContext(ctx, "player bound to match", "match.id", s.ID, "player.id", p.ID, "player.mark", mark)

	if started != nil {
		matchesStarted.Add(ctx, 1)
		s.pub.Publish(ctx, events.TypeMatchStarted, *started)
	}
	return res, nil
}

// rebindLocked swaps the live connection for an already-assigned mark and
// tells the peer the opponent is back.
func (s *Session) rebindLocked(p *player.Player, mark game.Mark) BindResult {
	if old, ok := s.conns[mark]; ok && old != p {
		old.Conn.Close()
	}
	s.conns[mark] = p

	msg := &proto.ServerToClientMessage{Type: proto.TypeOpponentReconnected}
	if data, err := json.Marshal(msg); err == nil {
		for m, peer := range s.conns {
			if m == mark {
				continue
			}
			if err := peer.Send(data); err != nil {
				slog.Warn("error notifying peer of reconnection", "match.id", s.ID, "player.id", peer.ID, "error", err)
			}
		}
	}

	return BindResult{Mark: mark, Turn: s.turn, Board: s.board, Ready: s.phase == Active}
}

// ApplyMove validates and applies a move from the given connection. On a
// non-terminal move it advances the turn and broadcasts the new state; on a
// terminal move it broadcasts the result, records the outcome exactly once
// and closes the session.
func (s *Session) ApplyMove(ctx context.Context, p *player.Player, row, col int) error {
	ctx, span := tracer.Start(ctx, "session.ApplyMove", trace.WithAttributes(
		attribute.Int64("match.id", s.ID),
		attribute.Int64("player.id", p.ID),
		attribute.Int("move.row", row),
		attribute.Int("move.col", col),
	))
	defer span.End()

	s.mu.Lock()

	switch s.phase {
	case Forming:
		s.mu.Unlock()
		return ErrMatchNotReady
	case Terminal, Abandoned, Closed:
		s.mu.Unlock()
		return ErrMatchOver
	}

	mark, ok := s.marks[p.ID]
	if !ok || mark != s.turn {
		s.mu.Unlock()
		return ErrNotYourTurn
	}

	board, err := s.board.Apply(row, col, mark)
	if err != nil {
		s.mu.Unlock()
		span.SetAttributes(attribute.Bool("move.valid", false))
		return err
	}
	s.board = board
	span.SetAttributes(attribute.Bool("move.valid", true))
	movesApplied.Add(ctx, 1)

	winner, terminal := game.Evaluate(board)
	if !terminal {
		s.turn = s.turn.Other()
		s.broadcastLocked(ctx, &proto.ServerToClientMessage{
			Type:  proto.TypeUpdate,
			Board: &board,
			Next:  s.turn,
		})
		s.mu.Unlock()
		return nil
	}

	s.phase = Terminal
	outcome := Outcome{Winner: winner, Draw: winner == game.None}
	for id, m := range s.marks {
		if m == game.MarkX {
			outcome.X = id
		} else {
			outcome.O = id
		}
	}
	s.broadcastLocked(ctx, &proto.ServerToClientMessage{
		Type:   proto.TypeFinished,
		Board:  &board,
		Winner: winner,
		Draw:   outcome.Draw,
	})
	s.phase = Closed
	s.stopGraceTimerLocked()
	s.mu.Unlock()

	slog.InfoContext(ctx, "match finished", "match.id", s.ID, "winner", winner, "draw", outcome.Draw)
	matchesFinished.Add(ctx, 1, metric.WithAttributes(attribute.Bool("match.draw", outcome.Draw)))

	// Recording and event publishing stay off the critical section; a slow
	// or failing store must not stall move processing or block cleanup.
	if s.recorder != nil {
		if err := s.recorder.RecordOutcome(ctx, s.ID, outcome); err != nil {
			slog.ErrorContext(ctx, "failed to record match outcome", "match.id", s.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to record match outcome")
		}
	}
	s.pub.Publish(ctx, events.TypeMatchFinished, events.MatchFinishedPayload{
		MatchID: s.ID,
		Winner:  string(winner),
		Draw:    outcome.Draw,
	})
	if s.onClose != nil {
		s.onClose(s.ID)
	}
	return nil
}

// Detach removes a connection from the bound set without clearing its mark,
// so the player can reconnect and resume. If this empties an Active match the
// session becomes Abandoned.
func (s *Session) Detach(ctx context.Context, p *player.Player) {
	ctx, span := tracer.Start(ctx, "session.Detach", trace.WithAttributes(
		attribute.Int64("match.id", s.ID),
		attribute.Int64("player.id", p.ID),
	))
	defer span.End()

	s.mu.Lock()

	mark, ok := s.marks[p.ID]
	if !ok || s.conns[mark] != p {
		// Unknown player or a stale connection already replaced by a
		// reconnect; nothing to detach.
		s.mu.Unlock()
		return
	}

	delete(s.conns, mark)
	p.MarkDisconnected()

	if s.phase == Active && len(s.conns) > 0 {
		s.broadcastLocked(ctx, &proto.ServerToClientMessage{Type: proto.TypeOpponentDisconnected})
	}
	if len(s.conns) == 0 && (s.phase == Forming || s.phase == Active) {
		s.abandonLocked(ctx)
	}
	phase := s.phase
	s.mu.Unlock()

	slog.InfoContext(ctx, "player detached from match", "match.id", s.ID, "player.id", p.ID, "session.phase", phase.String())
	s.pub.Publish(ctx, events.TypePlayerDisconnected, events.PlayerDisconnectedPayload{MatchID: s.ID, PlayerID: p.ID})
}

// abandonLocked handles the bound set dropping to zero. A Forming session had
// no activity yet and is closed on the spot; an Active one turns Abandoned and
// lingers for a grace period so a late arrival is told the match is gone
// instead of silently starting over.
func (s *Session) abandonLocked(ctx context.Context) {
	if s.phase == Forming {
		s.closeLocked()
		return
	}

	s.phase = Abandoned
	slog.InfoContext(ctx, "match abandoned, all players gone", "match.id", s.ID)
	matchesDropped.Add(ctx, 1)
	s.graceTimer = time.AfterFunc(s.grace, s.expire)
}

// expire finalizes Abandoned -> Closed once the grace period elapses.
func (s *Session) expire() {
	s.mu.Lock()
	if s.phase != Abandoned {
		s.mu.Unlock()
		return
	}
	s.closeLocked()
	s.mu.Unlock()
}

func (s *Session) closeLocked() {
	s.phase = Closed
	s.stopGraceTimerLocked()
	if s.onClose != nil {
		s.onClose(s.ID)
	}
}

func (s *Session) stopGraceTimerLocked() {
	if s.graceTimer != nil {
		s.graceTimer.Stop()
		s.graceTimer = nil
	}
}

// broadcastLocked sends a message to every bound connection. A failed send is
// treated as that connection disconnecting: it is dropped from the bound set
// and delivery to the other connection continues.
func (s *Session) broadcastLocked(ctx context.Context, msg *proto.ServerToClientMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "match.id", s.ID, "error", err)
		return
	}

	for mark, p := range s.conns {
		if err := p.Send(data); err != nil {
			slog.WarnContext(ctx, "error writing to player, dropping connection",
				"match.id", s.ID, "player.id", p.ID, "error", err)
			delete(s.conns, mark)
			p.MarkDisconnected()
			p.Conn.Close()
		}
	}

	if len(s.conns) == 0 && (s.phase == Forming || s.phase == Active) {
		s.abandonLocked(ctx)
	}
}
