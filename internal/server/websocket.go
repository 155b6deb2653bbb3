package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wchen310/tictactoe-arena/internal/api/models"
	"github.com/wchen310/tictactoe-arena/internal/api/response"
	"github.com/wchen310/tictactoe-arena/internal/game"
	"github.com/wchen310/tictactoe-arena/internal/player"
	"github.com/wchen310/tictactoe-arena/internal/session"
	"github.com/wchen310/tictactoe-arena/internal/validator"
	"github.com/wchen310/tictactoe-arena/pkg/proto"
)

const heartbeatInterval = 10 * time.Second

// handleWebSocket runs the full lifetime of one game connection: handshake
// validation against the durable store, bind into the session registry, then
// the inbound message loop until the transport closes.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
	))
	defer span.End()

	matchID, err := strconv.ParseInt(c.Param("matchID"), 10, 64)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "invalid match id")
		return
	}
	playerID, err := strconv.ParseInt(c.Param("playerID"), 10, 64)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "invalid player id")
		return
	}
	span.SetAttributes(attribute.Int64("match.id", matchID), attribute.Int64("player.id", playerID))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upgrade connection")
		return
	}

	record, err := s.players.FindByID(ctx, playerID)
	if err != nil {
		slog.ErrorContext(ctx, "player lookup failed", "player.id", playerID, "error", err)
		span.RecordError(err)
		s.refuse(conn, proto.ReasonIdentityNotFound)
		return
	}
	if record == nil {
		s.refuse(conn, proto.ReasonIdentityNotFound)
		return
	}

	sess, reason := s.acquireSession(ctx, matchID)
	if sess == nil {
		s.refuse(conn, reason)
		return
	}

	p := player.New(record.ID, record.Nickname, conn)
	res, err := sess.Bind(ctx, p)
	if err != nil {
		span.RecordError(err)
		s.refuse(conn, bindReason(err))
		return
	}

	board := res.Board
	assignment := proto.ServerToClientMessage{
		Type:  proto.TypeAssignment,
		Mark:  res.Mark,
		Board: &board,
		Next:  res.Turn,
	}
	if data, err := json.Marshal(assignment); err == nil {
		if err := p.Send(data); err != nil {
			slog.WarnContext(ctx, "failed to send assignment", "player.id", p.ID, "error", err)
		}
	}

	s.readPump(ctx, sess, p)
}

// acquireSession resolves the live session for matchID, consulting the
// durable store before creating one so a finished match identifier cannot be
// silently reused.
func (s *Server) acquireSession(ctx context.Context, matchID int64) (*session.Session, string) {
	if sess, ok := s.registry.Get(matchID); ok {
		return sess, ""
	}

	m, err := s.matches.FindByID(ctx, matchID)
	if err != nil {
		slog.ErrorContext(ctx, "match lookup failed", "match.id", matchID, "error", err)
		return nil, proto.ReasonMatchNotFound
	}
	if m == nil {
		return nil, proto.ReasonMatchNotFound
	}
	if m.Status == models.MatchFinished {
		return nil, proto.ReasonMatchOver
	}
	return s.registry.GetOrCreate(matchID), ""
}

// readPump pumps inbound messages from the websocket into the session until
// the transport closes, then detaches.
func (s *Server) readPump(ctx context.Context, sess *session.Session, p *player.Player) {
	done := make(chan struct{})
	go s.pingLoop(p, done)

	defer func() {
		close(done)
		p.Conn.Close()
		sess.Detach(ctx, p)
	}()

	for {
		_, raw, err := p.Conn.ReadMessage()
		if err != nil {
			slog.InfoContext(ctx, "player connection closed", "match.id", sess.ID, "player.id", p.ID, "error", err)
			return
		}
		s.handleMessage(ctx, sess, p, raw)
	}
}

// pingLoop keeps the connection fresh; a failed ping closes the transport,
// which unblocks the read loop and drives detach.
func (s *Server) pingLoop(p *player.Player, done <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := p.Ping(); err != nil {
				p.Conn.Close()
				return
			}
		}
	}
}

// handleMessage decodes and dispatches one inbound frame. Protocol errors are
// answered in-band, never by dropping the connection.
func (s *Server) handleMessage(ctx context.Context, sess *session.Session, p *player.Player, raw []byte) {
	ctx, span := tracer.Start(ctx, "server.handleMessage", trace.WithAttributes(
		attribute.Int64("match.id", sess.ID),
		attribute.Int64("player.id", p.ID),
	))
	defer span.End()

	var msg proto.ClientToServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		span.RecordError(err)
		s.reject(p, proto.ReasonMalformedRequest)
		return
	}
	if err := validator.GetValidator().Struct(msg); err != nil {
		span.RecordError(err)
		s.reject(p, proto.ReasonMalformedRequest)
		return
	}
	span.SetAttributes(attribute.String("message.type", msg.Type))

	switch msg.Type {
	case proto.TypeMove:
		if msg.Row == nil || msg.Col == nil {
			s.reject(p, proto.ReasonMalformedRequest)
			return
		}
		if err := sess.ApplyMove(ctx, p, *msg.Row, *msg.Col); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "move rejected")
			s.reject(p, moveReason(err))
		}
	default:
		s.reject(p, proto.ReasonMalformedRequest)
	}
}

// reject answers a bad request on an established connection.
func (s *Server) reject(p *player.Player, reason string) {
	data, err := json.Marshal(proto.ServerToClientMessage{Type: proto.TypeMoveRejected, Reason: reason})
	if err != nil {
		return
	}
	if err := p.Send(data); err != nil {
		slog.Warn("failed to send rejection", "player.id", p.ID, "error", err)
	}
}

// refuse answers a failed handshake and closes the connection.
func (s *Server) refuse(conn player.Conn, reason string) {
	data, err := json.Marshal(proto.ServerToClientMessage{Type: proto.TypeError, Reason: reason})
	if err == nil {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Warn("failed to send handshake refusal", "error", err)
		}
	}
	conn.Close()
}

func bindReason(err error) string {
	switch {
	case errors.Is(err, session.ErrMatchFull):
		return proto.ReasonMatchFull
	case errors.Is(err, session.ErrMatchGone):
		return proto.ReasonMatchGone
	case errors.Is(err, session.ErrMatchOver):
		return proto.ReasonMatchOver
	}
	return proto.ReasonMatchGone
}

func moveReason(err error) string {
	switch {
	case errors.Is(err, session.ErrNotYourTurn):
		return proto.ReasonNotYourTurn
	case errors.Is(err, game.ErrCellOccupied):
		return proto.ReasonCellOccupied
	case errors.Is(err, game.ErrOutOfRange):
		return proto.ReasonOutOfRange
	case errors.Is(err, session.ErrMatchNotReady):
		return proto.ReasonMatchNotReady
	case errors.Is(err, session.ErrMatchOver):
		return proto.ReasonMatchOver
	}
	return proto.ReasonMalformedRequest
}
