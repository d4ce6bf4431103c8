package quiz

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxNicknameLength = 32
	maxGuessLength    = 200
	minCodeLength     = 3
	maxCodeLength     = 12
	maxPlayersCap     = 8
	minRoundSeconds   = 10
)

// Settings holds room defaults applied when a request leaves a field unset.
type Settings struct {
	DefaultTargetScore  int
	DefaultMaxPlayers   int
	DefaultRoundSeconds int
	RoomCodeAttempts    int
}

func DefaultSettings() Settings {
	return Settings{
		DefaultTargetScore:  5,
		DefaultMaxPlayers:   8,
		DefaultRoundSeconds: 120,
		RoomCodeAttempts:    10,
	}
}

// Service runs room, round, guess, skip-vote and leaderboard operations
// against a Store. Each operation is one Store transaction.
type Service struct {
	store    Store
	logger   *slog.Logger
	rand     Rand
	now      func() time.Time
	settings Settings
}

type Option func(*Service)

func WithRand(r Rand) Option {
	return func(s *Service) { s.rand = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithSettings(settings Settings) Option {
	return func(s *Service) { s.settings = settings }
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:    store,
		logger:   logger,
		rand:     globalRand{},
		now:      func() time.Time { return time.Now().UTC() },
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.settings.RoomCodeAttempts <= 0 {
		s.settings.RoomCodeAttempts = 1
	}
	return s
}

// roomForUpdate resolves a room code and takes the room lock.
func roomForUpdate(tx Tx, code string) (*Room, error) {
	room, err := tx.RoomByCode(normalizeCode(code))
	if err != nil {
		return nil, lookupErr(err, "room not found")
	}
	room, err = tx.LockRoom(room.ID)
	if err != nil {
		return nil, lookupErr(err, "room not found")
	}
	return room, nil
}

func roomForView(tx Tx, code string) (*Room, error) {
	room, err := tx.RoomByCode(normalizeCode(code))
	if err != nil {
		return nil, lookupErr(err, "room not found")
	}
	return room, nil
}

// roomRound returns the round only if it belongs to the room.
func roomRound(tx Tx, room *Room, roundID uint) (*Round, error) {
	round, err := tx.RoundByID(roundID)
	if err != nil {
		return nil, lookupErr(err, "round not found")
	}
	if round.RoomID != room.ID {
		return nil, notFound("round not found")
	}
	return round, nil
}

func roomPlayer(tx Tx, room *Room, playerID uint) (*Player, error) {
	player, err := tx.PlayerByID(playerID)
	if err != nil {
		return nil, lookupErr(err, "player not found in this room")
	}
	if player.RoomID != room.ID {
		return nil, notFound("player not found in this room")
	}
	return player, nil
}

// lookupErr turns a bare ErrNotFound from the store into a described one
// and passes other failures through.
func lookupErr(err error, msg string) error {
	if errors.Is(err, ErrNotFound) {
		return notFound("%s", msg)
	}
	return err
}

func (s *Service) appendEvent(tx Tx, room *Room, round *Round, playerID *uint, eventType string, payload EventPayload) error {
	event := Event{
		RoomID:    room.ID,
		PlayerID:  playerID,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: s.now(),
	}
	if round != nil {
		id := round.ID
		event.RoundID = &id
	}
	if err := tx.AppendEvent(&event); err != nil {
		return fmt.Errorf("append %s event: %w", eventType, err)
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validateName(label, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", invalid("%s is required", label)
	}
	if utf8.RuneCountInString(trimmed) > maxNicknameLength {
		return "", invalid("%s must be %d characters or fewer", label, maxNicknameLength)
	}
	return trimmed, nil
}

// validateGuess checks the raw text. A whitespace-only guess is accepted
// and simply scores 0.
func validateGuess(text string) error {
	if text == "" {
		return invalid("guess_text is required")
	}
	if utf8.RuneCountInString(text) > maxGuessLength {
		return invalid("guess_text must be %d characters or fewer", maxGuessLength)
	}
	return nil
}

func uintPtr(v uint) *uint {
	return &v
}
