package quiz

import (
	"context"
	"time"
)

// Store runs units of work. Implementations must roll back every write made
// inside fn when fn returns an error.
//
// Lookups return ErrNotFound when the row is absent. Inserts that would break
// a uniqueness rule (room code, case-insensitive nickname per room, one
// playing round per room) return ErrConflict.
type Store interface {
	// Update runs fn in a read-write transaction.
	Update(ctx context.Context, fn func(tx Tx) error) error
	// View runs fn against a consistent, possibly stale, snapshot.
	View(ctx context.Context, fn func(tx Tx) error) error
}

type Tx interface {
	RoomByCode(code string) (*Room, error)
	// LockRoom returns the room and holds it exclusively until the
	// transaction ends. Every mutation of a room's players, rounds or votes
	// takes this lock first.
	LockRoom(id uint) (*Room, error)
	CreateRoom(room *Room) error
	SaveRoom(room *Room) error

	Players(roomID uint) ([]Player, error)
	CountPlayers(roomID uint) (int, error)
	PlayerByID(id uint) (*Player, error)
	CreatePlayer(player *Player) error
	IncrementScore(playerID uint) (int, error)

	ActiveRound(roomID uint) (*Round, error)
	RoundByID(id uint) (*Round, error)
	CreateRound(round *Round) error
	// CompleteRound marks the round completed with the given winner only if
	// it is still playing and has no winner. It reports whether it did.
	CompleteRound(roundID, playerID uint, at time.Time) (bool, error)
	// SkipRound marks the round skipped only if it is still playing.
	SkipRound(roundID uint, at time.Time) (bool, error)
	UsedSongIDs(roomID uint) ([]uint, error)

	CreateGuess(guess *Guess) error
	Guesses(roundID uint) ([]Guess, error)

	// AddSkipVote records the vote unless the player already voted in the
	// round. It reports whether a new vote was stored.
	AddSkipVote(vote *SkipVote) (bool, error)
	CountSkipVotes(roundID uint) (int, error)

	SongByID(id uint) (*Song, error)
	// Songs lists songs with the given status ordered by title; an empty
	// status lists every song.
	Songs(status SongStatus) ([]Song, error)
	UpsertSong(song *Song) error

	AppendEvent(event *Event) error
	Events(roomID uint) ([]Event, error)
}
