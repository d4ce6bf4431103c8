package quiz

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

// tickClock advances one second per reading so join order is stable.
type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// scriptedRand replays values in order, then repeats the last one.
type scriptedRand struct {
	mu     sync.Mutex
	values []int
	next   int
}

func (r *scriptedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.values[len(r.values)-1]
	if r.next < len(r.values) {
		v = r.values[r.next]
		r.next++
	}
	return v % n
}

func codeDraws(codes ...int) []int {
	var draws []int
	for _, c := range codes {
		for i := 0; i < roomCodeLength; i++ {
			draws = append(draws, c)
		}
	}
	return draws
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, opts ...Option) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	clock := &tickClock{now: testEpoch}
	base := []Option{WithClock(clock.Now), WithRand(NewLockedRand(7))}
	return NewService(store, discardLogger(), append(base, opts...)...), store
}

func seedSongs(t *testing.T, svc *Service, songs ...Song) []Song {
	t.Helper()
	_, err := svc.ImportSongs(context.Background(), songs)
	require.NoError(t, err)
	list, err := svc.ListSongs(context.Background(), "")
	require.NoError(t, err)
	return list
}

func approvedSong(title, anime, videoID string) Song {
	return Song{Title: title, AnimeTitle: anime, YouTubeVideoID: videoID, Status: SongApproved}
}

func defaultCatalog() []Song {
	return []Song{
		approvedSong("Guren no Yumiya", "Attack on Titan", "8OkpRK2_gVs"),
		approvedSong("Again", "Fullmetal Alchemist Brotherhood", "2uq34TeWEdQ"),
		approvedSong("Unravel", "Tokyo Ghoul", "7aMOurgDB-o"),
	}
}

// startedRoom creates a room hosted by "Host", joins the extra players and
// starts a round on the first song of the catalog.
func startedRoom(t *testing.T, svc *Service, targetScore int, others ...string) (*JoinResult, []Player, *RoundState) {
	t.Helper()
	ctx := context.Background()
	songs := seedSongs(t, svc, defaultCatalog()...)

	created, err := svc.CreateRoom(ctx, CreateRoomParams{HostName: "Host", TargetScore: targetScore})
	require.NoError(t, err)
	players := []Player{created.Player}
	for _, name := range others {
		joined, err := svc.JoinRoom(ctx, created.Room.Code, name)
		require.NoError(t, err)
		players = append(players, joined.Player)
	}
	songID := songByAnime(t, songs, "Attack on Titan").ID
	round, err := svc.StartRound(ctx, created.Room.Code, StartRoundParams{SongID: &songID})
	require.NoError(t, err)
	return created, players, round
}

func songByAnime(t *testing.T, songs []Song, anime string) Song {
	t.Helper()
	for _, song := range songs {
		if song.AnimeTitle == anime {
			return song
		}
	}
	t.Fatalf("song %q not seeded", anime)
	return Song{}
}
