package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"
)

type CreateRoomParams struct {
	HostName string
	// Code is optional; a random code is allocated when empty.
	Code                 string
	TargetScore          int
	MaxPlayers           int
	RoundDurationSeconds int
}

func (s *Service) CreateRoom(ctx context.Context, params CreateRoomParams) (*JoinResult, error) {
	hostName, err := validateName("host_name", params.HostName)
	if err != nil {
		return nil, err
	}
	room, err := s.roomFromParams(params)
	if err != nil {
		return nil, err
	}
	room.HostName = hostName

	requested := normalizeCode(params.Code)
	if requested != "" {
		if n := utf8.RuneCountInString(requested); n < minCodeLength || n > maxCodeLength {
			return nil, invalid("code must be between %d and %d characters", minCodeLength, maxCodeLength)
		}
		result, err := s.insertRoom(ctx, room, requested)
		if errors.Is(err, errCodeTaken) {
			return nil, conflict("room code already in use")
		}
		return result, err
	}

	for attempt := 0; attempt < s.settings.RoomCodeAttempts; attempt++ {
		result, err := s.insertRoom(ctx, room, newRoomCode(s.rand))
		if errors.Is(err, errCodeTaken) {
			continue
		}
		return result, err
	}
	return nil, conflict("could not allocate a free room code")
}

var errCodeTaken = errors.New("room code taken")

// insertRoom creates the room and its host in one transaction. The store's
// unique code constraint decides races between concurrent creations.
func (s *Service) insertRoom(ctx context.Context, template Room, code string) (*JoinResult, error) {
	var result *JoinResult
	err := s.store.Update(ctx, func(tx Tx) error {
		now := s.now()
		room := template
		room.Code = code
		room.Status = RoomWaiting
		room.CreatedAt = now
		room.UpdatedAt = now
		if err := tx.CreateRoom(&room); err != nil {
			if errors.Is(err, ErrConflict) {
				return errCodeTaken
			}
			return fmt.Errorf("create room: %w", err)
		}
		host := Player{
			RoomID:   room.ID,
			Nickname: room.HostName,
			IsHost:   true,
			JoinedAt: now,
		}
		if err := tx.CreatePlayer(&host); err != nil {
			return fmt.Errorf("create host player: %w", err)
		}
		if err := s.appendEvent(tx, &room, nil, uintPtr(host.ID), eventRoomCreated, EventPayload{
			RoomCode:    room.Code,
			Nickname:    host.Nickname,
			TargetScore: room.TargetScore,
		}); err != nil {
			return err
		}
		state, err := buildRoomState(tx, &room)
		if err != nil {
			return err
		}
		result = &JoinResult{Room: *state, Player: host}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("room created",
		slog.String("room_code", result.Room.Code),
		slog.Uint64("player_id", uint64(result.Player.ID)),
		slog.Int("target_score", result.Room.TargetScore),
		slog.Int("max_players", result.Room.MaxPlayers))
	return result, nil
}

func (s *Service) roomFromParams(params CreateRoomParams) (Room, error) {
	room := Room{
		TargetScore:          params.TargetScore,
		MaxPlayers:           params.MaxPlayers,
		RoundDurationSeconds: params.RoundDurationSeconds,
	}
	if room.TargetScore == 0 {
		room.TargetScore = s.settings.DefaultTargetScore
	}
	if room.TargetScore < 1 {
		return Room{}, invalid("target_score must be at least 1")
	}
	if room.MaxPlayers == 0 {
		room.MaxPlayers = s.settings.DefaultMaxPlayers
	}
	if room.MaxPlayers < 1 {
		return Room{}, invalid("max_players must be at least 1")
	}
	if room.MaxPlayers > maxPlayersCap {
		room.MaxPlayers = maxPlayersCap
	}
	if room.RoundDurationSeconds == 0 {
		room.RoundDurationSeconds = s.settings.DefaultRoundSeconds
	}
	if room.RoundDurationSeconds < minRoundSeconds {
		return Room{}, invalid("round_duration_seconds must be at least %d", minRoundSeconds)
	}
	return room, nil
}

func (s *Service) JoinRoom(ctx context.Context, code, nickname string) (*JoinResult, error) {
	name, err := validateName("nickname", nickname)
	if err != nil {
		return nil, err
	}
	var result *JoinResult
	err = s.store.Update(ctx, func(tx Tx) error {
		room, err := roomForUpdate(tx, code)
		if err != nil {
			return err
		}
		if room.Status == RoomFinished {
			return conflict("room has already finished")
		}
		players, err := tx.Players(room.ID)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		if len(players) >= room.MaxPlayers {
			return conflict("room is full")
		}
		for _, existing := range players {
			if strings.EqualFold(existing.Nickname, name) {
				return conflict("nickname already taken")
			}
		}

		now := s.now()
		player := Player{RoomID: room.ID, Nickname: name, JoinedAt: now}
		if err := tx.CreatePlayer(&player); err != nil {
			if errors.Is(err, ErrConflict) {
				return conflict("nickname already taken")
			}
			return fmt.Errorf("create player: %w", err)
		}
		room.UpdatedAt = now
		if err := tx.SaveRoom(room); err != nil {
			return fmt.Errorf("save room: %w", err)
		}
		if err := s.appendEvent(tx, room, nil, uintPtr(player.ID), eventPlayerJoined, EventPayload{
			Nickname: player.Nickname,
			Players:  len(players) + 1,
		}); err != nil {
			return err
		}
		state, err := buildRoomState(tx, room)
		if err != nil {
			return err
		}
		result = &JoinResult{Room: *state, Player: player}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("player joined",
		slog.String("room_code", result.Room.Code),
		slog.Uint64("player_id", uint64(result.Player.ID)),
		slog.Int("players", len(result.Room.Players)))
	return result, nil
}

// RoomState returns the room with its players in join order.
func (s *Service) RoomState(ctx context.Context, code string) (*RoomState, error) {
	var state *RoomState
	err := s.store.View(ctx, func(tx Tx) error {
		room, err := roomForView(tx, code)
		if err != nil {
			return err
		}
		state, err = buildRoomState(tx, room)
		return err
	})
	return state, err
}

// Events lists the room's audit trail, oldest first.
func (s *Service) Events(ctx context.Context, code string) ([]Event, error) {
	var events []Event
	err := s.store.View(ctx, func(tx Tx) error {
		room, err := roomForView(tx, code)
		if err != nil {
			return err
		}
		events, err = tx.Events(room.ID)
		return err
	})
	return events, err
}
