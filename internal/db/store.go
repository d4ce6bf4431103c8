package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"anisong-quiz/internal/quiz"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the Postgres implementation of quiz.Store. Update runs in a
// read-committed transaction and relies on LockRoom plus conditional
// updates; View runs in a read-only repeatable-read snapshot.
type Store struct {
	db *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{db: conn}
}

func (s *Store) Update(ctx context.Context, fn func(tx quiz.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

func (s *Store) View(ctx context.Context, fn func(tx quiz.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

type gormTx struct {
	db *gorm.DB
}

// storeErr maps driver failures onto the quiz error kinds.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return quiz.ErrNotFound
	case isUniqueViolation(err):
		return quiz.ErrConflict
	case isForeignKeyViolation(err):
		return quiz.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func (t *gormTx) RoomByCode(code string) (*quiz.Room, error) {
	var record Room
	if err := t.db.Where("code = ?", code).First(&record).Error; err != nil {
		return nil, storeErr(err)
	}
	room := toRoom(record)
	return &room, nil
}

func (t *gormTx) LockRoom(id uint) (*quiz.Room, error) {
	var record Room
	if err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, id).Error; err != nil {
		return nil, storeErr(err)
	}
	room := toRoom(record)
	return &room, nil
}

func (t *gormTx) CreateRoom(room *quiz.Room) error {
	record := fromRoom(*room)
	if err := t.db.Create(&record).Error; err != nil {
		return storeErr(err)
	}
	room.ID = record.ID
	return nil
}

func (t *gormTx) SaveRoom(room *quiz.Room) error {
	result := t.db.Model(&Room{}).Where("id = ?", room.ID).Updates(map[string]any{
		"status":            string(room.Status),
		"winning_player_id": room.WinningPlayerID,
		"updated_at":        room.UpdatedAt,
	})
	if result.Error != nil {
		return storeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return quiz.ErrNotFound
	}
	return nil
}

func (t *gormTx) Players(roomID uint) ([]quiz.Player, error) {
	var records []Player
	if err := t.db.Where("room_id = ?", roomID).Order("joined_at, id").Find(&records).Error; err != nil {
		return nil, err
	}
	players := make([]quiz.Player, 0, len(records))
	for _, record := range records {
		players = append(players, toPlayer(record))
	}
	return players, nil
}

func (t *gormTx) CountPlayers(roomID uint) (int, error) {
	var count int64
	if err := t.db.Model(&Player{}).Where("room_id = ?", roomID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (t *gormTx) PlayerByID(id uint) (*quiz.Player, error) {
	var record Player
	if err := t.db.First(&record, id).Error; err != nil {
		return nil, storeErr(err)
	}
	player := toPlayer(record)
	return &player, nil
}

func (t *gormTx) CreatePlayer(player *quiz.Player) error {
	record := Player{
		RoomID:   player.RoomID,
		Nickname: player.Nickname,
		Score:    player.Score,
		IsHost:   player.IsHost,
		JoinedAt: player.JoinedAt,
	}
	if err := t.db.Create(&record).Error; err != nil {
		return storeErr(err)
	}
	player.ID = record.ID
	return nil
}

func (t *gormTx) IncrementScore(playerID uint) (int, error) {
	result := t.db.Model(&Player{}).Where("id = ?", playerID).Update("score", gorm.Expr("score + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, quiz.ErrNotFound
	}
	var record Player
	if err := t.db.Select("score").First(&record, playerID).Error; err != nil {
		return 0, storeErr(err)
	}
	return record.Score, nil
}

func (t *gormTx) ActiveRound(roomID uint) (*quiz.Round, error) {
	var record Round
	err := t.db.Where("room_id = ? AND status = ?", roomID, string(quiz.RoundPlaying)).
		Order("started_at DESC").
		First(&record).Error
	if err != nil {
		return nil, storeErr(err)
	}
	round := toRound(record)
	return &round, nil
}

func (t *gormTx) RoundByID(id uint) (*quiz.Round, error) {
	var record Round
	if err := t.db.First(&record, id).Error; err != nil {
		return nil, storeErr(err)
	}
	round := toRound(record)
	return &round, nil
}

func (t *gormTx) CreateRound(round *quiz.Round) error {
	record := Round{
		RoomID:          round.RoomID,
		SongID:          round.SongID,
		Status:          string(round.Status),
		StartedAt:       round.StartedAt,
		EndedAt:         round.EndedAt,
		DurationSeconds: round.DurationSeconds,
		WinningPlayerID: round.WinningPlayerID,
	}
	if err := t.db.Create(&record).Error; err != nil {
		return storeErr(err)
	}
	round.ID = record.ID
	return nil
}

func (t *gormTx) CompleteRound(roundID, playerID uint, at time.Time) (bool, error) {
	result := t.db.Model(&Round{}).
		Where("id = ? AND status = ? AND winning_player_id IS NULL", roundID, string(quiz.RoundPlaying)).
		Updates(map[string]any{
			"status":            string(quiz.RoundCompleted),
			"winning_player_id": playerID,
			"ended_at":          at,
		})
	return t.decided(result, roundID)
}

func (t *gormTx) SkipRound(roundID uint, at time.Time) (bool, error) {
	result := t.db.Model(&Round{}).
		Where("id = ? AND status = ?", roundID, string(quiz.RoundPlaying)).
		Updates(map[string]any{
			"status":   string(quiz.RoundSkipped),
			"ended_at": at,
		})
	return t.decided(result, roundID)
}

// decided reports whether a conditional round update took effect. A miss on
// a round that does not exist is ErrNotFound.
func (t *gormTx) decided(result *gorm.DB, roundID uint) (bool, error) {
	if result.Error != nil {
		return false, storeErr(result.Error)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}
	var count int64
	if err := t.db.Model(&Round{}).Where("id = ?", roundID).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, quiz.ErrNotFound
	}
	return false, nil
}

func (t *gormTx) UsedSongIDs(roomID uint) ([]uint, error) {
	var ids []uint
	if err := t.db.Model(&Round{}).Where("room_id = ?", roomID).Distinct().Pluck("song_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (t *gormTx) CreateGuess(guess *quiz.Guess) error {
	record := Guess{
		RoundID:     guess.RoundID,
		PlayerID:    guess.PlayerID,
		Text:        guess.Text,
		Similarity:  guess.Similarity,
		IsCorrect:   guess.IsCorrect,
		SubmittedAt: guess.SubmittedAt,
	}
	if err := t.db.Create(&record).Error; err != nil {
		return storeErr(err)
	}
	guess.ID = record.ID
	return nil
}

func (t *gormTx) Guesses(roundID uint) ([]quiz.Guess, error) {
	var records []Guess
	if err := t.db.Where("round_id = ?", roundID).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	guesses := make([]quiz.Guess, 0, len(records))
	for _, record := range records {
		guesses = append(guesses, quiz.Guess{
			ID:          record.ID,
			RoundID:     record.RoundID,
			PlayerID:    record.PlayerID,
			Text:        record.Text,
			Similarity:  record.Similarity,
			IsCorrect:   record.IsCorrect,
			SubmittedAt: record.SubmittedAt,
		})
	}
	return guesses, nil
}

func (t *gormTx) AddSkipVote(vote *quiz.SkipVote) (bool, error) {
	record := SkipVote{
		RoundID:   vote.RoundID,
		PlayerID:  vote.PlayerID,
		CreatedAt: vote.CreatedAt,
	}
	result := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "round_id"}, {Name: "player_id"}},
		DoNothing: true,
	}).Create(&record)
	if result.Error != nil {
		return false, storeErr(result.Error)
	}
	added := result.RowsAffected == 1
	if !added {
		if err := t.db.Where("round_id = ? AND player_id = ?", vote.RoundID, vote.PlayerID).First(&record).Error; err != nil {
			return false, storeErr(err)
		}
	}
	*vote = quiz.SkipVote{
		ID:        record.ID,
		RoundID:   record.RoundID,
		PlayerID:  record.PlayerID,
		CreatedAt: record.CreatedAt,
	}
	return added, nil
}

func (t *gormTx) CountSkipVotes(roundID uint) (int, error) {
	var count int64
	if err := t.db.Model(&SkipVote{}).Where("round_id = ?", roundID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (t *gormTx) SongByID(id uint) (*quiz.Song, error) {
	var record Song
	if err := t.db.First(&record, id).Error; err != nil {
		return nil, storeErr(err)
	}
	song := toSong(record)
	return &song, nil
}

func (t *gormTx) Songs(status quiz.SongStatus) ([]quiz.Song, error) {
	query := t.db.Order("title, id")
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var records []Song
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	songs := make([]quiz.Song, 0, len(records))
	for _, record := range records {
		songs = append(songs, toSong(record))
	}
	return songs, nil
}

// UpsertSong inserts the song or refreshes the row with the same video id.
// The original created_at survives an update.
func (t *gormTx) UpsertSong(song *quiz.Song) error {
	record := Song{
		Title:            song.Title,
		AnimeTitle:       song.AnimeTitle,
		YouTubeURL:       song.YouTubeURL,
		YouTubeVideoID:   song.YouTubeVideoID,
		StartTimeSeconds: song.StartTimeSeconds,
		Status:           string(song.Status),
		Notes:            song.Notes,
		CreatedAt:        song.CreatedAt,
		UpdatedAt:        song.UpdatedAt,
	}
	err := t.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "youtube_video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "anime_title", "youtube_url", "start_time_seconds", "status", "notes", "updated_at",
		}),
	}).Create(&record).Error
	if err != nil {
		return storeErr(err)
	}
	var stored Song
	if err := t.db.Where("youtube_video_id = ?", song.YouTubeVideoID).First(&stored).Error; err != nil {
		return storeErr(err)
	}
	*song = toSong(stored)
	return nil
}

func (t *gormTx) AppendEvent(event *quiz.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}
	record := Event{
		RoomID:    event.RoomID,
		RoundID:   event.RoundID,
		PlayerID:  event.PlayerID,
		Type:      event.Type,
		Payload:   datatypes.JSON(payload),
		CreatedAt: event.CreatedAt,
	}
	if err := t.db.Create(&record).Error; err != nil {
		return storeErr(err)
	}
	event.ID = record.ID
	return nil
}

func (t *gormTx) Events(roomID uint) ([]quiz.Event, error) {
	var records []Event
	if err := t.db.Where("room_id = ?", roomID).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	events := make([]quiz.Event, 0, len(records))
	for _, record := range records {
		event := quiz.Event{
			ID:        record.ID,
			RoomID:    record.RoomID,
			RoundID:   record.RoundID,
			PlayerID:  record.PlayerID,
			Type:      record.Type,
			CreatedAt: record.CreatedAt,
		}
		if err := json.Unmarshal(record.Payload, &event.Payload); err != nil {
			return nil, fmt.Errorf("decode event %d payload: %w", record.ID, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func toRoom(record Room) quiz.Room {
	return quiz.Room{
		ID:                   record.ID,
		Code:                 record.Code,
		HostName:             record.HostName,
		TargetScore:          record.TargetScore,
		MaxPlayers:           record.MaxPlayers,
		RoundDurationSeconds: record.RoundDurationSeconds,
		Status:               quiz.RoomStatus(record.Status),
		WinningPlayerID:      record.WinningPlayerID,
		CreatedAt:            record.CreatedAt,
		UpdatedAt:            record.UpdatedAt,
	}
}

func fromRoom(room quiz.Room) Room {
	return Room{
		ID:                   room.ID,
		Code:                 room.Code,
		HostName:             room.HostName,
		TargetScore:          room.TargetScore,
		MaxPlayers:           room.MaxPlayers,
		RoundDurationSeconds: room.RoundDurationSeconds,
		Status:               string(room.Status),
		WinningPlayerID:      room.WinningPlayerID,
		CreatedAt:            room.CreatedAt,
		UpdatedAt:            room.UpdatedAt,
	}
}

func toPlayer(record Player) quiz.Player {
	return quiz.Player{
		ID:       record.ID,
		RoomID:   record.RoomID,
		Nickname: record.Nickname,
		Score:    record.Score,
		IsHost:   record.IsHost,
		JoinedAt: record.JoinedAt,
	}
}

func toRound(record Round) quiz.Round {
	return quiz.Round{
		ID:              record.ID,
		RoomID:          record.RoomID,
		SongID:          record.SongID,
		Status:          quiz.RoundStatus(record.Status),
		StartedAt:       record.StartedAt,
		EndedAt:         record.EndedAt,
		DurationSeconds: record.DurationSeconds,
		WinningPlayerID: record.WinningPlayerID,
	}
}

func toSong(record Song) quiz.Song {
	return quiz.Song{
		ID:               record.ID,
		Title:            record.Title,
		AnimeTitle:       record.AnimeTitle,
		YouTubeURL:       record.YouTubeURL,
		YouTubeVideoID:   record.YouTubeVideoID,
		StartTimeSeconds: record.StartTimeSeconds,
		Status:           quiz.SongStatus(record.Status),
		Notes:            record.Notes,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}
