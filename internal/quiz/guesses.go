package quiz

import (
	"context"
	"fmt"
	"log/slog"
)

// SubmitGuess scores a guess against the round's answer and records it.
// A correct guess wins the round only if no other guess has won it yet;
// the store decides that with a conditional update so concurrent winners
// resolve to exactly one.
func (s *Service) SubmitGuess(ctx context.Context, code string, roundID, playerID uint, text string) (*GuessResult, error) {
	if err := validateGuess(text); err != nil {
		return nil, err
	}
	var (
		result   *GuessResult
		won      bool
		finished bool
		roomCode string
	)
	err := s.store.Update(ctx, func(tx Tx) error {
		room, err := roomForUpdate(tx, code)
		if err != nil {
			return err
		}
		round, err := roomRound(tx, room, roundID)
		if err != nil {
			return err
		}
		if round.Status != RoundPlaying {
			return conflict("round is not accepting guesses")
		}
		player, err := roomPlayer(tx, room, playerID)
		if err != nil {
			return err
		}
		song, err := tx.SongByID(round.SongID)
		if err != nil {
			return lookupErr(err, "song not found")
		}

		now := s.now()
		similarity := Similarity(song.AnimeTitle, text)
		guess := Guess{
			RoundID:     round.ID,
			PlayerID:    player.ID,
			Text:        text,
			Similarity:  similarity,
			IsCorrect:   IsCorrect(similarity),
			SubmittedAt: now,
		}
		if err := tx.CreateGuess(&guess); err != nil {
			return fmt.Errorf("create guess: %w", err)
		}
		if err := s.appendEvent(tx, room, round, uintPtr(player.ID), eventGuessSubmitted, EventPayload{
			Guess:      guess.Text,
			Similarity: guess.Similarity,
			Correct:    guess.IsCorrect,
		}); err != nil {
			return err
		}

		score := player.Score
		if guess.IsCorrect {
			won, err = tx.CompleteRound(round.ID, player.ID, now)
			if err != nil {
				return fmt.Errorf("complete round: %w", err)
			}
		}
		if won {
			score, err = tx.IncrementScore(player.ID)
			if err != nil {
				return fmt.Errorf("increment score: %w", err)
			}
			room.UpdatedAt = now
			if score >= room.TargetScore {
				room.Status = RoomFinished
				room.WinningPlayerID = uintPtr(player.ID)
				finished = true
			} else {
				room.Status = RoomWaiting
			}
			if err := tx.SaveRoom(room); err != nil {
				return fmt.Errorf("save room: %w", err)
			}
			if err := s.appendEvent(tx, room, round, uintPtr(player.ID), eventRoundCompleted, EventPayload{
				Score: score,
			}); err != nil {
				return err
			}
			if finished {
				if err := s.appendEvent(tx, room, round, uintPtr(player.ID), eventRoomFinished, EventPayload{
					Score:       score,
					TargetScore: room.TargetScore,
				}); err != nil {
					return err
				}
			}
		}

		// Re-read so the result reflects the committed decision.
		decided, err := tx.RoundByID(round.ID)
		if err != nil {
			return fmt.Errorf("reload round: %w", err)
		}
		result = &GuessResult{
			Guess:           guess,
			IsCorrect:       guess.IsCorrect,
			Similarity:      guess.Similarity,
			RoundStatus:     decided.Status,
			PlayerScore:     score,
			RoomStatus:      room.Status,
			TargetScore:     room.TargetScore,
			WinningPlayerID: decided.WinningPlayerID,
		}
		roomCode = room.Code
		return nil
	})
	if err != nil {
		return nil, err
	}
	if won {
		s.logger.Info("round completed",
			slog.String("room_code", roomCode),
			slog.Uint64("round_id", uint64(roundID)),
			slog.Uint64("player_id", uint64(playerID)),
			slog.Int("score", result.PlayerScore))
	}
	if finished {
		s.logger.Info("room finished",
			slog.String("room_code", roomCode),
			slog.Uint64("player_id", uint64(playerID)))
	}
	return result, nil
}
