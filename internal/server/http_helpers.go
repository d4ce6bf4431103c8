package server

import (
	"log/slog"
	"net/http"

	"anisong-quiz/internal/quiz"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch quiz.Kind(err) {
	case quiz.ErrNotFound:
		return http.StatusNotFound
	case quiz.ErrConflict:
		return http.StatusConflict
	case quiz.ErrInvalidInput:
		return http.StatusBadRequest
	case quiz.ErrUnavailable:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError answers with the error's message for caller mistakes and a
// generic body for infrastructure failures, which are logged instead.
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("request_id", requestIDFrom(c)),
			slog.String("route", c.FullPath()),
			slog.Any("error", err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
