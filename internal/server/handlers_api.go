package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"anisong-quiz/internal/quiz"

	"github.com/gin-gonic/gin"
)

type roomURI struct {
	Code string `uri:"code" binding:"required"`
}

type roundURI struct {
	Code    string `uri:"code" binding:"required"`
	RoundID uint   `uri:"round_id" binding:"required"`
}

type createRoomRequest struct {
	HostName             string `json:"host_name" binding:"required,name"`
	Code                 string `json:"code" binding:"omitempty,min=3,max=12"`
	TargetScore          int    `json:"target_score" binding:"omitempty,min=1"`
	MaxPlayers           int    `json:"max_players" binding:"omitempty,min=1"`
	RoundDurationSeconds int    `json:"round_duration_seconds" binding:"omitempty,min=10"`
}

type joinRequest struct {
	Nickname string `json:"nickname" binding:"required,name"`
}

type startRoundRequest struct {
	SongID          *uint `json:"song_id"`
	DurationSeconds int   `json:"duration_seconds" binding:"omitempty,min=10"`
	RevealAnswer    bool  `json:"reveal_answer"`
}

type guessRequest struct {
	PlayerID  uint   `json:"player_id" binding:"required"`
	GuessText string `json:"guess_text" binding:"required,guess"`
}

type skipRequest struct {
	PlayerID uint `json:"player_id" binding:"required"`
}

type revealQuery struct {
	RevealAnswer bool `form:"reveal_answer"`
}

type songsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=approved pending rejected"`
}

var (
	createRoomMessages = bindMessages{
		"HostName": {
			"required": "host_name is required",
			"name":     "host_name must be 1-32 characters",
		},
		"Code": {
			"min": "code must be 3-12 characters",
			"max": "code must be 3-12 characters",
		},
		"TargetScore":          {"min": "target_score must be at least 1"},
		"MaxPlayers":           {"min": "max_players must be at least 1"},
		"RoundDurationSeconds": {"min": "round_duration_seconds must be at least 10"},
	}
	joinMessages = bindMessages{
		"Nickname": {
			"required": "nickname is required",
			"name":     "nickname must be 1-32 characters",
		},
	}
	startRoundMessages = bindMessages{
		"DurationSeconds": {"min": "duration_seconds must be at least 10"},
	}
	guessMessages = bindMessages{
		"PlayerID": {"required": "player_id is required"},
		"GuessText": {
			"required": "guess_text is required",
			"guess":    "guess_text must be 200 characters or fewer",
		},
	}
	skipMessages = bindMessages{
		"PlayerID": {"required": "player_id is required"},
	}
	songsMessages = bindMessages{
		"Status": {"oneof": "status must be one of approved, pending, rejected"},
	}
)

func (s *Server) handleCreateRoom(c *gin.Context) {
	var req createRoomRequest
	if !bindJSON(c, &req, createRoomMessages, "invalid room request") {
		return
	}
	result, err := s.svc.CreateRoom(c.Request.Context(), quiz.CreateRoomParams{
		HostName:             req.HostName,
		Code:                 req.Code,
		TargetScore:          req.TargetScore,
		MaxPlayers:           req.MaxPlayers,
		RoundDurationSeconds: req.RoundDurationSeconds,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.metrics.roomsCreated.Inc()
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleGetRoom(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	state, err := s.svc.RoomState(c.Request.Context(), uri.Code)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) handleJoinRoom(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req joinRequest
	if !bindJSON(c, &req, joinMessages, "invalid join request") {
		return
	}
	result, err := s.svc.JoinRoom(c.Request.Context(), uri.Code, req.Nickname)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleStartRound(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req startRoundRequest
	if !bindOptionalJSON(c, &req, startRoundMessages, "invalid round request") {
		return
	}
	round, err := s.svc.StartRound(c.Request.Context(), uri.Code, quiz.StartRoundParams{
		SongID:          req.SongID,
		DurationSeconds: req.DurationSeconds,
		RevealAnswer:    req.RevealAnswer,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.metrics.roundsStarted.Inc()
	c.JSON(http.StatusOK, round)
}

func (s *Server) handleCurrentRound(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var query revealQuery
	if !bindQuery(c, &query, nil, "reveal_answer must be true or false") {
		return
	}
	round, err := s.svc.CurrentRound(c.Request.Context(), uri.Code, query.RevealAnswer)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, round)
}

func (s *Server) handleGetRound(c *gin.Context) {
	var uri roundURI
	if !bindURI(c, &uri) {
		return
	}
	var query revealQuery
	if !bindQuery(c, &query, nil, "reveal_answer must be true or false") {
		return
	}
	round, err := s.svc.RoundState(c.Request.Context(), uri.Code, uri.RoundID, query.RevealAnswer)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, round)
}

func (s *Server) handleGuess(c *gin.Context) {
	var uri roundURI
	if !bindURI(c, &uri) {
		return
	}
	var req guessRequest
	if !bindJSON(c, &req, guessMessages, "invalid guess request") {
		return
	}
	result, err := s.svc.SubmitGuess(c.Request.Context(), uri.Code, uri.RoundID, req.PlayerID, req.GuessText)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.metrics.guesses.WithLabelValues(strconv.FormatBool(result.IsCorrect)).Inc()
	if result.WinningPlayerID != nil && *result.WinningPlayerID == req.PlayerID && result.RoundStatus == quiz.RoundCompleted {
		s.metrics.roundsEnded.WithLabelValues(string(quiz.RoundCompleted)).Inc()
		if result.RoomStatus == quiz.RoomFinished {
			s.metrics.roomsFinished.Inc()
		}
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleSkip(c *gin.Context) {
	var uri roundURI
	if !bindURI(c, &uri) {
		return
	}
	var req skipRequest
	if !bindJSON(c, &req, skipMessages, "invalid skip request") {
		return
	}
	result, err := s.svc.CastSkipVote(c.Request.Context(), uri.Code, uri.RoundID, req.PlayerID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if result.Skipped {
		s.metrics.roundsEnded.WithLabelValues(string(quiz.RoundSkipped)).Inc()
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	board, err := s.svc.Leaderboard(c.Request.Context(), uri.Code)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (s *Server) handleEvents(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	events, err := s.svc.Events(c.Request.Context(), uri.Code)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// handleListSongs serves the approved catalog unless another status is asked for.
func (s *Server) handleListSongs(c *gin.Context) {
	var query songsQuery
	if !bindQuery(c, &query, songsMessages, "invalid songs query") {
		return
	}
	status := quiz.SongApproved
	if query.Status != "" {
		status = quiz.SongStatus(query.Status)
	}
	songs, err := s.svc.ListSongs(c.Request.Context(), status)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.logger.Debug("songs listed", slog.String("status", string(status)), slog.Int("count", len(songs)))
	c.JSON(http.StatusOK, songs)
}
