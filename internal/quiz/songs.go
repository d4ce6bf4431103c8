package quiz

import (
	"context"
	"fmt"
	"strings"
)

// ListSongs lists the catalog filtered by status, ordered by title. An
// empty status lists every song.
func (s *Service) ListSongs(ctx context.Context, status SongStatus) ([]Song, error) {
	if status != "" && !validSongStatus(status) {
		return nil, invalid("status must be one of approved, pending, rejected")
	}
	var songs []Song
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		songs, err = tx.Songs(status)
		return err
	})
	return songs, err
}

// ImportSongs upserts catalog entries keyed by video id in one transaction.
func (s *Service) ImportSongs(ctx context.Context, songs []Song) (int, error) {
	for i := range songs {
		song := &songs[i]
		song.Title = strings.TrimSpace(song.Title)
		song.AnimeTitle = strings.TrimSpace(song.AnimeTitle)
		song.YouTubeVideoID = strings.TrimSpace(song.YouTubeVideoID)
		if song.Title == "" || song.AnimeTitle == "" || song.YouTubeVideoID == "" {
			return 0, invalid("song %d: title, anime_title and youtube_video_id are required", i+1)
		}
		if song.StartTimeSeconds < 0 {
			return 0, invalid("song %d: start_time_seconds must not be negative", i+1)
		}
		if song.Status == "" {
			song.Status = SongPending
		}
		if !validSongStatus(song.Status) {
			return 0, invalid("song %d: unknown status %q", i+1, song.Status)
		}
		if song.YouTubeURL == "" {
			song.YouTubeURL = "https://www.youtube.com/watch?v=" + song.YouTubeVideoID
		}
	}
	err := s.store.Update(ctx, func(tx Tx) error {
		now := s.now()
		for i := range songs {
			songs[i].CreatedAt = now
			songs[i].UpdatedAt = now
			if err := tx.UpsertSong(&songs[i]); err != nil {
				return fmt.Errorf("upsert song %s: %w", songs[i].YouTubeVideoID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("songs imported", "count", len(songs))
	return len(songs), nil
}

func validSongStatus(status SongStatus) bool {
	switch status {
	case SongApproved, SongPending, SongRejected:
		return true
	}
	return false
}
