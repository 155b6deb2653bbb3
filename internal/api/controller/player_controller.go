package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wchen310/tictactoe-arena/internal/api/models"
	"github.com/wchen310/tictactoe-arena/internal/api/response"
	"github.com/wchen310/tictactoe-arena/internal/api/service"
)

// PlayerController handles player-related HTTP requests.
type PlayerController struct {
	playerService service.PlayerService
}

// NewPlayerController creates a new PlayerController.
func NewPlayerController(playerService service.PlayerService) *PlayerController {
	return &PlayerController{
		playerService: playerService,
	}
}

// Register handles the player registration endpoint.
func (pc *PlayerController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := pc.playerService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNicknameTaken) {
			response.ErrorResponse(c, http.StatusConflict, err.Error())
			return
		}
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.SuccessResponse(c, p)
}

// Login handles the player login endpoint.
func (pc *PlayerController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := pc.playerService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.SuccessResponse(c, res)
}

// GuestLogin handles guest login, returning a generated player identity.
func (pc *PlayerController) GuestLogin(c *gin.Context) {
	p, err := pc.playerService.GuestLogin(c.Request.Context())
	if err != nil {
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.SuccessResponse(c, gin.H{"player_id": p.ID, "nickname": p.Nickname})
}

// Leaderboard handles the leaderboard endpoint.
func (pc *PlayerController) Leaderboard(c *gin.Context) {
	players, err := pc.playerService.Leaderboard(c.Request.Context())
	if err != nil {
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.SuccessResponse(c, players)
}
