package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"anisong-quiz/internal/quiz"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	t.Cleanup(ts.Close)
	return ts
}

// newQuizServer serves a memory-backed service seeded with two approved
// songs and one pending song.
func newQuizServer(t *testing.T) (*httptest.Server, *quiz.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := quiz.NewService(quiz.NewMemoryStore(), logger, quiz.WithRand(quiz.NewLockedRand(3)))
	_, err := svc.ImportSongs(context.Background(), []quiz.Song{
		{Title: "Guren no Yumiya", AnimeTitle: "Attack on Titan", YouTubeVideoID: "8OkpRK2_gVs", Status: quiz.SongApproved},
		{Title: "Again", AnimeTitle: "Fullmetal Alchemist Brotherhood", YouTubeVideoID: "2uq34TeWEdQ", Status: quiz.SongApproved},
		{Title: "Unravel", AnimeTitle: "Tokyo Ghoul", YouTubeVideoID: "7aMOurgDB-o"},
	})
	require.NoError(t, err)
	srv := New(svc, logger, prometheus.NewRegistry())
	return newTestServer(t, srv.Handler()), svc
}
