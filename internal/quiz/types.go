package quiz

import "time"

type RoomStatus string

const (
	RoomWaiting    RoomStatus = "waiting"
	RoomInProgress RoomStatus = "in_progress"
	RoomFinished   RoomStatus = "finished"
)

type RoundStatus string

const (
	RoundPlaying   RoundStatus = "playing"
	RoundCompleted RoundStatus = "completed"
	RoundSkipped   RoundStatus = "skipped"
)

type SongStatus string

const (
	SongPending  SongStatus = "pending"
	SongApproved SongStatus = "approved"
	SongRejected SongStatus = "rejected"
)

const (
	eventRoomCreated    = "room_created"
	eventPlayerJoined   = "player_joined"
	eventRoundStarted   = "round_started"
	eventGuessSubmitted = "guess_submitted"
	eventRoundCompleted = "round_completed"
	eventRoundSkipped   = "round_skipped"
	eventRoomFinished   = "room_finished"
)

type Room struct {
	ID                   uint       `json:"id"`
	Code                 string     `json:"code"`
	HostName             string     `json:"host_name"`
	TargetScore          int        `json:"target_score"`
	MaxPlayers           int        `json:"max_players"`
	RoundDurationSeconds int        `json:"round_duration_seconds"`
	Status               RoomStatus `json:"status"`
	WinningPlayerID      *uint      `json:"winning_player_id"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type Player struct {
	ID       uint      `json:"id"`
	RoomID   uint      `json:"-"`
	Nickname string    `json:"nickname"`
	Score    int       `json:"score"`
	IsHost   bool      `json:"is_host"`
	JoinedAt time.Time `json:"joined_at"`
}

type Round struct {
	ID              uint        `json:"id"`
	RoomID          uint        `json:"-"`
	SongID          uint        `json:"song_id"`
	Status          RoundStatus `json:"status"`
	StartedAt       time.Time   `json:"started_at"`
	EndedAt         *time.Time  `json:"ended_at"`
	DurationSeconds int         `json:"duration_seconds"`
	WinningPlayerID *uint       `json:"winning_player_id"`
}

// EndsAt is informational; nothing ends a round when it passes.
func (r Round) EndsAt() time.Time {
	return r.StartedAt.Add(time.Duration(r.DurationSeconds) * time.Second)
}

func (r Round) Terminal() bool {
	return r.Status == RoundCompleted || r.Status == RoundSkipped
}

type Guess struct {
	ID          uint      `json:"id"`
	RoundID     uint      `json:"-"`
	PlayerID    uint      `json:"player_id"`
	Text        string    `json:"guess_text"`
	Similarity  float64   `json:"similarity"`
	IsCorrect   bool      `json:"is_correct"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type SkipVote struct {
	ID        uint
	RoundID   uint
	PlayerID  uint
	CreatedAt time.Time
}

type Song struct {
	ID               uint       `json:"id"`
	Title            string     `json:"title"`
	AnimeTitle       string     `json:"anime_title"`
	YouTubeURL       string     `json:"youtube_url"`
	YouTubeVideoID   string     `json:"youtube_video_id"`
	StartTimeSeconds int        `json:"start_time_seconds"`
	Status           SongStatus `json:"status"`
	Notes            string     `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Event struct {
	ID        uint         `json:"id"`
	RoomID    uint         `json:"-"`
	RoundID   *uint        `json:"round_id,omitempty"`
	PlayerID  *uint        `json:"player_id,omitempty"`
	Type      string       `json:"type"`
	Payload   EventPayload `json:"payload"`
	CreatedAt time.Time    `json:"created_at"`
}

type EventPayload struct {
	RoomCode    string  `json:"room_code,omitempty"`
	Nickname    string  `json:"nickname,omitempty"`
	SongID      uint    `json:"song_id,omitempty"`
	Guess       string  `json:"guess,omitempty"`
	Similarity  float64 `json:"similarity,omitempty"`
	Correct     bool    `json:"correct,omitempty"`
	Score       int     `json:"score,omitempty"`
	SkipVotes   int     `json:"skip_votes,omitempty"`
	Players     int     `json:"players,omitempty"`
	TargetScore int     `json:"target_score,omitempty"`
}
