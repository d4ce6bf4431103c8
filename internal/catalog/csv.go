package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"anisong-quiz/internal/quiz"
)

var requiredColumns = []string{"title", "anime_title", "youtube_video_id"}

// ReadSongsFile reads a song catalog CSV from path.
func ReadSongsFile(path string) ([]quiz.Song, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadSongs(file)
}

// ReadSongs parses a catalog CSV. The header row names the columns; title,
// anime_title and youtube_video_id are required, start_time_seconds, status
// and notes are optional. Blank rows are skipped.
func ReadSongs(r io.Reader) ([]quiz.Song, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var songs []quiz.Song
	for n, row := range rows[1:] {
		line := n + 2
		if blank(row) {
			continue
		}
		song := quiz.Song{
			Title:          field(row, "title"),
			AnimeTitle:     field(row, "anime_title"),
			YouTubeVideoID: field(row, "youtube_video_id"),
			Status:         quiz.SongStatus(strings.ToLower(field(row, "status"))),
			Notes:          field(row, "notes"),
		}
		if raw := field(row, "start_time_seconds"); raw != "" {
			seconds, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: start_time_seconds %q is not a number", line, raw)
			}
			song.StartTimeSeconds = seconds
		}
		songs = append(songs, song)
	}
	return songs, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
