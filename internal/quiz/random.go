package quiz

import (
	"math/rand/v2"
	"sync"
)

const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 5
)

// Rand is the random source used for room codes and song selection.
// Implementations must be safe for concurrent use.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

// LockedRand is a seeded Rand that can be shared between goroutines.
type LockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewLockedRand(seed uint64) *LockedRand {
	return &LockedRand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *LockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.IntN(n)
}

func newRoomCode(r Rand) string {
	buf := make([]byte, roomCodeLength)
	for i := range buf {
		buf[i] = roomCodeAlphabet[r.IntN(len(roomCodeAlphabet))]
	}
	return string(buf)
}

// pickSong prefers approved songs this room has not played yet and falls
// back to the whole approved list once every song has been used.
func pickSong(approved []Song, usedIDs []uint, r Rand) Song {
	used := make(map[uint]struct{}, len(usedIDs))
	for _, id := range usedIDs {
		used[id] = struct{}{}
	}
	unused := make([]Song, 0, len(approved))
	for _, song := range approved {
		if _, ok := used[song.ID]; !ok {
			unused = append(unused, song)
		}
	}
	pool := unused
	if len(pool) == 0 {
		pool = approved
	}
	return pool[r.IntN(len(pool))]
}
