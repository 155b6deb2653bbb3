package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wchen310/tictactoe-arena/internal/api/models"
	"github.com/wchen310/tictactoe-arena/internal/api/response"
	"github.com/wchen310/tictactoe-arena/internal/api/service"
)

// MatchController handles match-record HTTP requests.
type MatchController struct {
	matchService service.MatchService
}

// NewMatchController creates a new MatchController.
func NewMatchController(matchService service.MatchService) *MatchController {
	return &MatchController{
		matchService: matchService,
	}
}

// Create handles match creation. The returned match id is the identifier the
// websocket handshake expects.
func (mc *MatchController) Create(c *gin.Context) {
	var req models.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	m, err := mc.matchService.Create(c.Request.Context(), req.PlayerID)
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			response.ErrorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	response.SuccessResponse(c, m)
}

// Join handles the second player joining a waiting match.
func (mc *MatchController) Join(c *gin.Context) {
	matchID, err := strconv.ParseInt(c.Param("matchID"), 10, 64)
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "invalid match id")
		return
	}

	var req models.JoinMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	m, err := mc.matchService.Join(c.Request.Context(), matchID, req.PlayerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlayerNotFound), errors.Is(err, service.ErrMatchNotFound):
			response.ErrorResponse(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrMatchNotJoinable):
			response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		default:
			response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	response.SuccessResponse(c, m)
}
