package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type StartRoundParams struct {
	// SongID picks a specific approved song; nil selects one automatically.
	SongID          *uint
	DurationSeconds int
	RevealAnswer    bool
}

func (s *Service) StartRound(ctx context.Context, code string, params StartRoundParams) (*RoundState, error) {
	if params.DurationSeconds != 0 && params.DurationSeconds < minRoundSeconds {
		return nil, invalid("duration_seconds must be at least %d", minRoundSeconds)
	}
	var state *RoundState
	err := s.store.Update(ctx, func(tx Tx) error {
		room, err := roomForUpdate(tx, code)
		if err != nil {
			return err
		}
		if room.Status == RoomFinished {
			return conflict("room has already finished")
		}
		if _, err := tx.ActiveRound(room.ID); err == nil {
			return conflict("a round is already in progress")
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("find active round: %w", err)
		}
		players, err := tx.CountPlayers(room.ID)
		if err != nil {
			return fmt.Errorf("count players: %w", err)
		}
		if players == 0 {
			return invalid("no players in room")
		}

		song, err := s.selectSong(tx, room, params.SongID)
		if err != nil {
			return err
		}

		duration := params.DurationSeconds
		if duration == 0 {
			duration = room.RoundDurationSeconds
		}
		now := s.now()
		round := Round{
			RoomID:          room.ID,
			SongID:          song.ID,
			Status:          RoundPlaying,
			StartedAt:       now,
			DurationSeconds: duration,
		}
		if err := tx.CreateRound(&round); err != nil {
			if errors.Is(err, ErrConflict) {
				return conflict("a round is already in progress")
			}
			return fmt.Errorf("create round: %w", err)
		}
		room.Status = RoomInProgress
		room.UpdatedAt = now
		if err := tx.SaveRoom(room); err != nil {
			return fmt.Errorf("save room: %w", err)
		}
		if err := s.appendEvent(tx, room, &round, nil, eventRoundStarted, EventPayload{
			SongID:  song.ID,
			Players: players,
		}); err != nil {
			return err
		}
		state, err = buildRoundState(tx, room, &round, params.RevealAnswer)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("round started",
		slog.String("room_code", state.RoomCode),
		slog.Uint64("round_id", uint64(state.ID)),
		slog.Uint64("song_id", uint64(state.Song.ID)),
		slog.Int("duration_seconds", state.DurationSeconds))
	return state, nil
}

func (s *Service) selectSong(tx Tx, room *Room, songID *uint) (*Song, error) {
	if songID != nil {
		song, err := tx.SongByID(*songID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("load song: %w", err)
		}
		if song == nil || song.Status != SongApproved {
			return nil, unavailable("song is not available")
		}
		return song, nil
	}
	approved, err := tx.Songs(SongApproved)
	if err != nil {
		return nil, fmt.Errorf("list approved songs: %w", err)
	}
	if len(approved) == 0 {
		return nil, unavailable("no approved songs available")
	}
	used, err := tx.UsedSongIDs(room.ID)
	if err != nil {
		return nil, fmt.Errorf("list used songs: %w", err)
	}
	song := pickSong(approved, used, s.rand)
	return &song, nil
}

// CurrentRound returns the room's playing round. The answer is only
// included when reveal is set.
func (s *Service) CurrentRound(ctx context.Context, code string, reveal bool) (*RoundState, error) {
	var state *RoundState
	err := s.store.View(ctx, func(tx Tx) error {
		room, err := roomForView(tx, code)
		if err != nil {
			return err
		}
		round, err := tx.ActiveRound(room.ID)
		if err != nil {
			return lookupErr(err, "no active round")
		}
		state, err = buildRoundState(tx, room, round, reveal)
		return err
	})
	return state, err
}

// RoundState projects any round of the room, playing or finished.
func (s *Service) RoundState(ctx context.Context, code string, roundID uint, reveal bool) (*RoundState, error) {
	var state *RoundState
	err := s.store.View(ctx, func(tx Tx) error {
		room, err := roomForView(tx, code)
		if err != nil {
			return err
		}
		round, err := roomRound(tx, room, roundID)
		if err != nil {
			return err
		}
		state, err = buildRoundState(tx, room, round, reveal)
		return err
	})
	return state, err
}
