package db

import "time"

type Song struct {
	ID               uint      `gorm:"primaryKey"`
	Title            string    `gorm:"size:200;not null"`
	AnimeTitle       string    `gorm:"size:200;not null"`
	YouTubeURL       string    `gorm:"column:youtube_url;not null"`
	YouTubeVideoID   string    `gorm:"column:youtube_video_id;size:32;uniqueIndex;not null"`
	StartTimeSeconds int       `gorm:"not null;default:0"`
	Status           string    `gorm:"size:16;not null;index"`
	Notes            string    `gorm:"not null;default:''"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime:false"`
}
