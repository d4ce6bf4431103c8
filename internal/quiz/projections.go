package quiz

import (
	"fmt"
	"time"
)

type RoomState struct {
	Room
	Players []Player `json:"players"`
}

type JoinResult struct {
	Room   RoomState `json:"room"`
	Player Player    `json:"player"`
}

type SongPlayback struct {
	ID               uint    `json:"id"`
	Title            string  `json:"title"`
	YouTubeURL       string  `json:"youtube_url"`
	YouTubeVideoID   string  `json:"youtube_video_id"`
	StartTimeSeconds int     `json:"start_time_seconds"`
	AnimeTitle       *string `json:"anime_title"`
}

type RoundState struct {
	ID              uint         `json:"id"`
	RoomCode        string       `json:"room_code"`
	Status          RoundStatus  `json:"status"`
	DurationSeconds int          `json:"duration_seconds"`
	StartedAt       time.Time    `json:"started_at"`
	EndsAt          time.Time    `json:"ends_at"`
	EndedAt         *time.Time   `json:"ended_at"`
	WinningPlayerID *uint        `json:"winning_player_id"`
	Song            SongPlayback `json:"song"`
	SkipVotes       int          `json:"skip_votes"`
	TotalPlayers    int          `json:"total_players"`
	// Guesses is the round's audit trail in submission order. It is only
	// filled in when the answer is shown.
	Guesses []Guess `json:"guesses,omitempty"`
}

type GuessResult struct {
	Guess           Guess       `json:"guess"`
	IsCorrect       bool        `json:"is_correct"`
	Similarity      float64     `json:"similarity"`
	RoundStatus     RoundStatus `json:"round_status"`
	PlayerScore     int         `json:"player_score"`
	RoomStatus      RoomStatus  `json:"room_status"`
	TargetScore     int         `json:"target_score"`
	WinningPlayerID *uint       `json:"winning_player_id"`
}

type SkipResult struct {
	SkipVotes    int         `json:"skip_votes"`
	TotalPlayers int         `json:"total_players"`
	RoundStatus  RoundStatus `json:"round_status"`
	// Skipped is set only on the vote that ended the round.
	Skipped bool `json:"-"`
}

type LeaderboardEntry struct {
	PlayerID uint   `json:"player_id"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	IsHost   bool   `json:"is_host"`
}

type Leaderboard struct {
	RoomCode string             `json:"room_code"`
	Players  []LeaderboardEntry `json:"players"`
}

func buildRoomState(tx Tx, room *Room) (*RoomState, error) {
	players, err := tx.Players(room.ID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return &RoomState{Room: *room, Players: players}, nil
}

// buildRoundState hides the answer while the round is playing unless reveal
// is set.
func buildRoundState(tx Tx, room *Room, round *Round, reveal bool) (*RoundState, error) {
	song, err := tx.SongByID(round.SongID)
	if err != nil {
		return nil, lookupErr(err, "song not found")
	}
	skipVotes, err := tx.CountSkipVotes(round.ID)
	if err != nil {
		return nil, fmt.Errorf("count skip votes: %w", err)
	}
	players, err := tx.CountPlayers(room.ID)
	if err != nil {
		return nil, fmt.Errorf("count players: %w", err)
	}

	playback := SongPlayback{
		ID:               song.ID,
		Title:            song.Title,
		YouTubeURL:       song.YouTubeURL,
		YouTubeVideoID:   song.YouTubeVideoID,
		StartTimeSeconds: song.StartTimeSeconds,
	}
	var guesses []Guess
	if reveal || round.Status != RoundPlaying {
		answer := song.AnimeTitle
		playback.AnimeTitle = &answer
		guesses, err = tx.Guesses(round.ID)
		if err != nil {
			return nil, fmt.Errorf("list guesses: %w", err)
		}
	}

	return &RoundState{
		ID:              round.ID,
		RoomCode:        room.Code,
		Status:          round.Status,
		DurationSeconds: round.DurationSeconds,
		StartedAt:       round.StartedAt,
		EndsAt:          round.EndsAt(),
		EndedAt:         round.EndedAt,
		WinningPlayerID: round.WinningPlayerID,
		Song:            playback,
		SkipVotes:       skipVotes,
		TotalPlayers:    players,
		Guesses:         guesses,
	}, nil
}
