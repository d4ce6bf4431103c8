package db

import "time"

// Player nicknames are unique per room ignoring case; the index on
// lower(nickname) lives in the SQL migrations.
type Player struct {
	ID       uint      `gorm:"primaryKey"`
	RoomID   uint      `gorm:"index;not null"`
	Nickname string    `gorm:"size:32;not null"`
	Score    int       `gorm:"not null;default:0"`
	IsHost   bool      `gorm:"not null;default:false"`
	JoinedAt time.Time `gorm:"not null"`
	Guesses  []Guess
}
