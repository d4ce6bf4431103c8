package quiz

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

var errReadOnly = errors.New("write in read-only transaction")

type skipKey struct {
	roundID  uint
	playerID uint
}

// MemoryStore keeps every table in process memory. Update transactions are
// serialized by a single lock and undone on error; View transactions share
// a read lock.
type MemoryStore struct {
	mu        sync.RWMutex
	nextID    map[string]uint
	rooms     map[uint]Room
	codes     map[string]uint
	players   map[uint]Player
	rounds    map[uint]Round
	guesses   map[uint]Guess
	skipVotes map[skipKey]SkipVote
	songs     map[uint]Song
	events    []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:    make(map[string]uint),
		rooms:     make(map[uint]Room),
		codes:     make(map[string]uint),
		players:   make(map[uint]Player),
		rounds:    make(map[uint]Round),
		guesses:   make(map[uint]Guess),
		skipVotes: make(map[skipKey]SkipVote),
		songs:     make(map[uint]Song),
	}
}

func (s *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{s: s, writable: true}
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (s *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTx{s: s})
}

func (s *MemoryStore) allocID(table string) uint {
	s.nextID[table]++
	return s.nextID[table]
}

type memTx struct {
	s        *MemoryStore
	writable bool
	undo     []func()
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) checkWritable() error {
	if !t.writable {
		return errReadOnly
	}
	return nil
}

func (t *memTx) RoomByCode(code string) (*Room, error) {
	id, ok := t.s.codes[code]
	if !ok {
		return nil, ErrNotFound
	}
	room := t.s.rooms[id]
	return &room, nil
}

func (t *memTx) LockRoom(id uint) (*Room, error) {
	if err := t.checkWritable(); err != nil {
		return nil, err
	}
	room, ok := t.s.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &room, nil
}

func (t *memTx) CreateRoom(room *Room) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if _, taken := t.s.codes[room.Code]; taken {
		return ErrConflict
	}
	room.ID = t.s.allocID("rooms")
	t.s.rooms[room.ID] = *room
	t.s.codes[room.Code] = room.ID
	id, code := room.ID, room.Code
	t.undo = append(t.undo, func() {
		delete(t.s.rooms, id)
		delete(t.s.codes, code)
	})
	return nil
}

func (t *memTx) SaveRoom(room *Room) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	prev, ok := t.s.rooms[room.ID]
	if !ok {
		return ErrNotFound
	}
	t.s.rooms[room.ID] = *room
	t.undo = append(t.undo, func() { t.s.rooms[prev.ID] = prev })
	return nil
}

func (t *memTx) Players(roomID uint) ([]Player, error) {
	players := make([]Player, 0)
	for _, player := range t.s.players {
		if player.RoomID == roomID {
			players = append(players, player)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		if !players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].JoinedAt.Before(players[j].JoinedAt)
		}
		return players[i].ID < players[j].ID
	})
	return players, nil
}

func (t *memTx) CountPlayers(roomID uint) (int, error) {
	count := 0
	for _, player := range t.s.players {
		if player.RoomID == roomID {
			count++
		}
	}
	return count, nil
}

func (t *memTx) PlayerByID(id uint) (*Player, error) {
	player, ok := t.s.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &player, nil
}

func (t *memTx) CreatePlayer(player *Player) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if _, ok := t.s.rooms[player.RoomID]; !ok {
		return ErrNotFound
	}
	for _, existing := range t.s.players {
		if existing.RoomID == player.RoomID && strings.EqualFold(existing.Nickname, player.Nickname) {
			return ErrConflict
		}
	}
	player.ID = t.s.allocID("players")
	t.s.players[player.ID] = *player
	id := player.ID
	t.undo = append(t.undo, func() { delete(t.s.players, id) })
	return nil
}

func (t *memTx) IncrementScore(playerID uint) (int, error) {
	if err := t.checkWritable(); err != nil {
		return 0, err
	}
	player, ok := t.s.players[playerID]
	if !ok {
		return 0, ErrNotFound
	}
	prev := player
	player.Score++
	t.s.players[playerID] = player
	t.undo = append(t.undo, func() { t.s.players[prev.ID] = prev })
	return player.Score, nil
}

func (t *memTx) ActiveRound(roomID uint) (*Round, error) {
	var active *Round
	for _, round := range t.s.rounds {
		if round.RoomID == roomID && round.Status == RoundPlaying {
			if active == nil || round.StartedAt.After(active.StartedAt) {
				found := round
				active = &found
			}
		}
	}
	if active == nil {
		return nil, ErrNotFound
	}
	return active, nil
}

func (t *memTx) RoundByID(id uint) (*Round, error) {
	round, ok := t.s.rounds[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &round, nil
}

func (t *memTx) CreateRound(round *Round) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if round.Status == RoundPlaying {
		if _, err := t.ActiveRound(round.RoomID); err == nil {
			return ErrConflict
		}
	}
	round.ID = t.s.allocID("rounds")
	t.s.rounds[round.ID] = *round
	id := round.ID
	t.undo = append(t.undo, func() { delete(t.s.rounds, id) })
	return nil
}

func (t *memTx) CompleteRound(roundID, playerID uint, at time.Time) (bool, error) {
	if err := t.checkWritable(); err != nil {
		return false, err
	}
	round, ok := t.s.rounds[roundID]
	if !ok {
		return false, ErrNotFound
	}
	if round.Status != RoundPlaying || round.WinningPlayerID != nil {
		return false, nil
	}
	prev := round
	winner := playerID
	ended := at
	round.Status = RoundCompleted
	round.WinningPlayerID = &winner
	round.EndedAt = &ended
	t.s.rounds[roundID] = round
	t.undo = append(t.undo, func() { t.s.rounds[prev.ID] = prev })
	return true, nil
}

func (t *memTx) SkipRound(roundID uint, at time.Time) (bool, error) {
	if err := t.checkWritable(); err != nil {
		return false, err
	}
	round, ok := t.s.rounds[roundID]
	if !ok {
		return false, ErrNotFound
	}
	if round.Status != RoundPlaying {
		return false, nil
	}
	prev := round
	ended := at
	round.Status = RoundSkipped
	round.EndedAt = &ended
	t.s.rounds[roundID] = round
	t.undo = append(t.undo, func() { t.s.rounds[prev.ID] = prev })
	return true, nil
}

func (t *memTx) UsedSongIDs(roomID uint) ([]uint, error) {
	ids := make([]uint, 0)
	for _, round := range t.s.rounds {
		if round.RoomID == roomID {
			ids = append(ids, round.SongID)
		}
	}
	return ids, nil
}

func (t *memTx) CreateGuess(guess *Guess) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	guess.ID = t.s.allocID("guesses")
	t.s.guesses[guess.ID] = *guess
	id := guess.ID
	t.undo = append(t.undo, func() { delete(t.s.guesses, id) })
	return nil
}

func (t *memTx) Guesses(roundID uint) ([]Guess, error) {
	guesses := make([]Guess, 0)
	for _, guess := range t.s.guesses {
		if guess.RoundID == roundID {
			guesses = append(guesses, guess)
		}
	}
	sort.Slice(guesses, func(i, j int) bool { return guesses[i].ID < guesses[j].ID })
	return guesses, nil
}

func (t *memTx) AddSkipVote(vote *SkipVote) (bool, error) {
	if err := t.checkWritable(); err != nil {
		return false, err
	}
	key := skipKey{roundID: vote.RoundID, playerID: vote.PlayerID}
	if existing, ok := t.s.skipVotes[key]; ok {
		*vote = existing
		return false, nil
	}
	vote.ID = t.s.allocID("skip_votes")
	t.s.skipVotes[key] = *vote
	t.undo = append(t.undo, func() { delete(t.s.skipVotes, key) })
	return true, nil
}

func (t *memTx) CountSkipVotes(roundID uint) (int, error) {
	count := 0
	for key := range t.s.skipVotes {
		if key.roundID == roundID {
			count++
		}
	}
	return count, nil
}

func (t *memTx) SongByID(id uint) (*Song, error) {
	song, ok := t.s.songs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &song, nil
}

func (t *memTx) Songs(status SongStatus) ([]Song, error) {
	songs := make([]Song, 0, len(t.s.songs))
	for _, song := range t.s.songs {
		if status == "" || song.Status == status {
			songs = append(songs, song)
		}
	}
	sort.Slice(songs, func(i, j int) bool {
		if songs[i].Title != songs[j].Title {
			return songs[i].Title < songs[j].Title
		}
		return songs[i].ID < songs[j].ID
	})
	return songs, nil
}

func (t *memTx) UpsertSong(song *Song) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	for id, existing := range t.s.songs {
		if existing.YouTubeVideoID == song.YouTubeVideoID {
			prev := existing
			song.ID = id
			song.CreatedAt = existing.CreatedAt
			t.s.songs[id] = *song
			t.undo = append(t.undo, func() { t.s.songs[prev.ID] = prev })
			return nil
		}
	}
	song.ID = t.s.allocID("songs")
	t.s.songs[song.ID] = *song
	id := song.ID
	t.undo = append(t.undo, func() { delete(t.s.songs, id) })
	return nil
}

func (t *memTx) AppendEvent(event *Event) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	event.ID = t.s.allocID("events")
	t.s.events = append(t.s.events, *event)
	n := len(t.s.events) - 1
	t.undo = append(t.undo, func() { t.s.events = t.s.events[:n] })
	return nil
}

func (t *memTx) Events(roomID uint) ([]Event, error) {
	events := make([]Event, 0)
	for _, event := range t.s.events {
		if event.RoomID == roomID {
			events = append(events, event)
		}
	}
	return events, nil
}
