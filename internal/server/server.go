package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"github.com/wchen310/tictactoe-arena/internal/api/controller"
	"github.com/wchen310/tictactoe-arena/internal/api/repository"
	"github.com/wchen310/tictactoe-arena/internal/session"
)

var tracer = otel.Tracer("server")

// Server ties the REST controllers and the websocket game endpoint to one
// gin engine.
type Server struct {
	registry *session.Registry
	players  repository.PlayerRepository
	matches  repository.MatchRepository
	upgrader websocket.Upgrader
	engine   *gin.Engine
}

// NewServer creates the gin engine and registers all routes.
func NewServer(
	registry *session.Registry,
	players repository.PlayerRepository,
	matches repository.MatchRepository,
	playerController *controller.PlayerController,
	matchController *controller.MatchController,
) *Server {
	s := &Server{
		registry: registry,
		players:  players,
		matches:  matches,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	api := engine.Group("/api")
	api.POST("/register", playerController.Register)
	api.POST("/login", playerController.Login)
	api.POST("/guest", playerController.GuestLogin)
	api.GET("/leaderboard", playerController.Leaderboard)
	api.POST("/matches", matchController.Create)
	api.POST("/matches/:matchID/join", matchController.Join)

	engine.GET("/ws/:matchID/:playerID", s.handleWebSocket)

	s.engine = engine
	return s
}

// Engine returns the configured gin engine for the HTTP server.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
