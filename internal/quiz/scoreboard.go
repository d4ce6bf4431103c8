package quiz

import (
	"context"
	"sort"
)

// Leaderboard orders players by score, highest first; ties go to whoever
// joined earlier.
func (s *Service) Leaderboard(ctx context.Context, code string) (*Leaderboard, error) {
	var board *Leaderboard
	err := s.store.View(ctx, func(tx Tx) error {
		room, err := roomForView(tx, code)
		if err != nil {
			return err
		}
		players, err := tx.Players(room.ID)
		if err != nil {
			return err
		}
		board = &Leaderboard{RoomCode: room.Code, Players: rankPlayers(players)}
		return nil
	})
	return board, err
}

func rankPlayers(players []Player) []LeaderboardEntry {
	ranked := make([]Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].JoinedAt.Equal(ranked[j].JoinedAt) {
			return ranked[i].JoinedAt.Before(ranked[j].JoinedAt)
		}
		return ranked[i].ID < ranked[j].ID
	})
	entries := make([]LeaderboardEntry, 0, len(ranked))
	for _, player := range ranked {
		entries = append(entries, LeaderboardEntry{
			PlayerID: player.ID,
			Nickname: player.Nickname,
			Score:    player.Score,
			IsHost:   player.IsHost,
		})
	}
	return entries
}
