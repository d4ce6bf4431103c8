package db

import "time"

type SkipVote struct {
	ID        uint      `gorm:"primaryKey"`
	RoundID   uint      `gorm:"not null;uniqueIndex:idx_skip_votes_round_player"`
	PlayerID  uint      `gorm:"not null;uniqueIndex:idx_skip_votes_round_player"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
}
