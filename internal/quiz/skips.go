package quiz

import (
	"context"
	"fmt"
	"log/slog"
)

// CastSkipVote records a player's vote to skip the round. Once every
// current player has voted the round is skipped and the room waits for the
// next round. Votes on a finished round and repeat votes are absorbed.
func (s *Service) CastSkipVote(ctx context.Context, code string, roundID, playerID uint) (*SkipResult, error) {
	var (
		result   *SkipResult
		skipped  bool
		roomCode string
	)
	err := s.store.Update(ctx, func(tx Tx) error {
		// The room lock also serializes joins, so the player count read
		// below is the count at decision time.
		room, err := roomForUpdate(tx, code)
		if err != nil {
			return err
		}
		round, err := roomRound(tx, room, roundID)
		if err != nil {
			return err
		}
		player, err := roomPlayer(tx, room, playerID)
		if err != nil {
			return err
		}
		roomCode = room.Code

		if round.Status == RoundPlaying {
			if _, err := tx.AddSkipVote(&SkipVote{
				RoundID:   round.ID,
				PlayerID:  player.ID,
				CreatedAt: s.now(),
			}); err != nil {
				return fmt.Errorf("add skip vote: %w", err)
			}
		}

		votes, err := tx.CountSkipVotes(round.ID)
		if err != nil {
			return fmt.Errorf("count skip votes: %w", err)
		}
		players, err := tx.CountPlayers(room.ID)
		if err != nil {
			return fmt.Errorf("count players: %w", err)
		}

		status := round.Status
		if status == RoundPlaying && votes >= players {
			now := s.now()
			skipped, err = tx.SkipRound(round.ID, now)
			if err != nil {
				return fmt.Errorf("skip round: %w", err)
			}
			if skipped {
				status = RoundSkipped
				room.Status = RoomWaiting
				room.UpdatedAt = now
				if err := tx.SaveRoom(room); err != nil {
					return fmt.Errorf("save room: %w", err)
				}
				if err := s.appendEvent(tx, room, round, uintPtr(player.ID), eventRoundSkipped, EventPayload{
					SkipVotes: votes,
					Players:   players,
				}); err != nil {
					return err
				}
			} else {
				decided, err := tx.RoundByID(round.ID)
				if err != nil {
					return fmt.Errorf("reload round: %w", err)
				}
				status = decided.Status
			}
		}

		result = &SkipResult{
			SkipVotes:    votes,
			TotalPlayers: players,
			RoundStatus:  status,
			Skipped:      skipped,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if skipped {
		s.logger.Info("round skipped",
			slog.String("room_code", roomCode),
			slog.Uint64("round_id", uint64(roundID)),
			slog.Int("skip_votes", result.SkipVotes),
			slog.Int("players", result.TotalPlayers))
	}
	return result, nil
}
