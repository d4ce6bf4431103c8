package db

import "time"

type Guess struct {
	ID          uint      `gorm:"primaryKey"`
	RoundID     uint      `gorm:"index;not null"`
	PlayerID    uint      `gorm:"index;not null"`
	Text        string    `gorm:"column:guess_text;size:200;not null"`
	Similarity  float64   `gorm:"not null"`
	IsCorrect   bool      `gorm:"not null;default:false"`
	SubmittedAt time.Time `gorm:"not null"`
}
