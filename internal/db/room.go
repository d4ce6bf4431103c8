package db

import "time"

type Room struct {
	ID                   uint      `gorm:"primaryKey"`
	Code                 string    `gorm:"size:12;uniqueIndex;not null"`
	HostName             string    `gorm:"size:32;not null"`
	TargetScore          int       `gorm:"not null"`
	MaxPlayers           int       `gorm:"not null"`
	RoundDurationSeconds int       `gorm:"not null"`
	Status               string    `gorm:"size:16;not null"`
	WinningPlayerID      *uint     `gorm:"index"`
	CreatedAt            time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt            time.Time `gorm:"not null;autoUpdateTime:false"`
	Players              []Player
	Rounds               []Round
	Events               []Event
}
