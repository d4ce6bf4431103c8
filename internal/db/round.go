package db

import "time"

type Round struct {
	ID              uint       `gorm:"primaryKey"`
	RoomID          uint       `gorm:"index;not null"`
	SongID          uint       `gorm:"index;not null"`
	Status          string     `gorm:"size:16;not null"`
	StartedAt       time.Time  `gorm:"not null"`
	EndedAt         *time.Time `gorm:"default:null"`
	DurationSeconds int        `gorm:"not null"`
	WinningPlayerID *uint      `gorm:"index"`
	Guesses         []Guess
	SkipVotes       []SkipVote
}
