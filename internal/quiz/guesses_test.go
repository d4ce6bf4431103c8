package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitWrongGuess(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	created, players, round := startedRoom(t, svc, 5, "Armin")

	result, err := svc.SubmitGuess(ctx, created.Room.Code, round.ID, players[1].ID, "  Naruto ")
	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.Less(t, result.Similarity, CorrectThreshold)
	assert.Equal(t, RoundPlaying, result.RoundStatus)
	assert.Equal(t, RoomInProgress, result.RoomStatus)
	assert.Equal(t, 0, result.PlayerScore)
	assert.Nil(t, result.WinningPlayerID)
	assert.Equal(t, "  Naruto ", result.Guess.Text)

	require.NoError(t, store.View(ctx, func(tx Tx) error {
		guesses, err := tx.Guesses(round.ID)
		require.NoError(t, err)
		require.Len(t, guesses, 1)
		assert.Equal(t, players[1].ID, guesses[0].PlayerID)
		assert.False(t, guesses[0].IsCorrect)
		return nil
	}))
}

func TestWhitespaceGuessIsRecordedWithZeroSimilarity(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	created, players, round := startedRoom(t, svc, 5)

	result, err := svc.SubmitGuess(ctx, created.Room.Code, round.ID, players[0].ID, "   ")
	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.Zero(t, result.Similarity)
	assert.Equal(t, RoundPlaying, result.RoundStatus)

	require.NoError(t, store.View(ctx, func(tx Tx) error {
		guesses, err := tx.Guesses(round.ID)
		require.NoError(t, err)
		require.Len(t, guesses, 1)
		assert.Equal(t, "   ", guesses[0].Text)
		return nil
	}))
}

func TestGuessLengthCountsRawText(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, players, round := startedRoom(t, svc, 5)

	padded := " " + strings.Repeat("a", maxGuessLength) + " "
	_, err := svc.SubmitGuess(ctx, created.Room.Code, round.ID, players[0].ID, padded)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SubmitGuess(ctx, created.Room.Code, round.ID, players[0].ID, strings.Repeat("a", maxGuessLength))
	assert.NoError(t, err)
}

func TestSubmitCorrectGuessFinishesRoom(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, players, round := startedRoom(t, svc, 1, "Armin")
	winner := players[1]

	result, err := svc.SubmitGuess(ctx, created.Room.Code, round.ID, winner.ID, "attack on titan")
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.InDelta(t, 1.0, result.Similarity, 1e-9)
	assert.Equal(t, RoundCompleted, result.RoundStatus)
	assert.Equal(t, RoomFinished, result.RoomStatus)
	assert.Equal(t, 1, result.PlayerScore)
	require.NotNil(t, result.WinningPlayerID)
	assert.Equal(t, winner.ID, *result.WinningPlayerID)

	state, err := svc.RoomState(ctx, created.Room.Code)
	require.NoError(t, err)
	assert.Equal(t, RoomFinished, state.Status)
	require.NotNil(t, state.WinningPlayerID)
	assert.Equal(t, winner.ID, *state.WinningPlayerID)
}

func TestSubmitCorrectGuessBelowTarget(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, players, round := startedRoom(t, svc, 2, "Armin")

	// One typo still clears the threshold.
	result, err := svc.SubmitGuess(ctx, created.Room.Code, round.ID, players[0].ID, "Atack on Titan")
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, RoundCompleted, result.RoundStatus)
	assert.Equal(t, RoomWaiting, result.RoomStatus)
	assert.Equal(t, 1, result.PlayerScore)

	state, err := svc.RoomState(ctx, created.Room.Code)
	require.NoError(t, err)
	assert.Equal(t, RoomWaiting, state.Status)
	assert.Nil(t, state.WinningPlayerID)

	next, err := svc.StartRound(ctx, created.Room.Code, StartRoundParams{})
	require.NoError(t, err)
	assert.NotEqual(t, round.ID, next.ID)
}

func TestSubmitGuessRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("round already completed", func(t *testing.T) {
		svc, _ := newTestService(t)
		created, players, round := startedRoom(t, svc, 5, "Armin")
		_, err := svc.SubmitGuess(ctx, created.Room.Code, round.ID, players[0].ID, "Attack on Titan")
		require.NoError(t, err)

		_, err = svc.SubmitGuess(ctx, created.Room.Code, round.ID, players[1].ID, "Attack on Titan")
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("player from another room", func(t *testing.T) {
		svc, _ := newTestService(t)
		created, _, round := startedRoom(t, svc, 5)
		other, err := svc.CreateRoom(ctx, CreateRoomParams{HostName: "Stranger"})
		require.NoError(t, err)

		_, err = svc.SubmitGuess(ctx, created.Room.Code, round.ID, other.Player.ID, "Attack on Titan")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("round from another room", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, _, round := startedRoom(t, svc, 5)
		other, err := svc.CreateRoom(ctx, CreateRoomParams{HostName: "Stranger"})
		require.NoError(t, err)

		_, err = svc.SubmitGuess(ctx, other.Room.Code, round.ID, other.Player.ID, "Attack on Titan")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown round", func(t *testing.T) {
		svc, _ := newTestService(t)
		created, players, _ := startedRoom(t, svc, 5)
		_, err := svc.SubmitGuess(ctx, created.Room.Code, 404, players[0].ID, "Attack on Titan")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty guess", func(t *testing.T) {
		svc, _ := newTestService(t)
		created, players, round := startedRoom(t, svc, 5)
		_, err := svc.SubmitGuess(ctx, created.Room.Code, round.ID, players[0].ID, "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("guess too long", func(t *testing.T) {
		svc, _ := newTestService(t)
		created, players, round := startedRoom(t, svc, 5)
		_, err := svc.SubmitGuess(ctx, created.Room.Code, round.ID, players[0].ID, strings.Repeat("a", maxGuessLength+1))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestConcurrentCorrectGuessesHaveOneWinner(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	names := make([]string, 0, 7)
	for i := 1; i <= 7; i++ {
		names = append(names, fmt.Sprintf("player-%d", i))
	}
	created, players, round := startedRoom(t, svc, 5, names...)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []uint
	)
	for _, player := range players {
		wg.Add(1)
		go func(player Player) {
			defer wg.Done()
			result, err := svc.SubmitGuess(ctx, created.Room.Code, round.ID, player.ID, "Attack on Titan")
			if err != nil {
				if !errors.Is(err, ErrConflict) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !assert.NotNil(t, result.WinningPlayerID) {
				return
			}
			if *result.WinningPlayerID == player.ID {
				mu.Lock()
				winners = append(winners, player.ID)
				mu.Unlock()
			} else {
				assert.Equal(t, 0, result.PlayerScore)
			}
		}(player)
	}
	wg.Wait()

	require.Len(t, winners, 1)

	board, err := svc.Leaderboard(ctx, created.Room.Code)
	require.NoError(t, err)
	total := 0
	for _, entry := range board.Players {
		total += entry.Score
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, winners[0], board.Players[0].PlayerID)

	require.NoError(t, store.View(ctx, func(tx Tx) error {
		decided, err := tx.RoundByID(round.ID)
		require.NoError(t, err)
		assert.Equal(t, RoundCompleted, decided.Status)
		require.NotNil(t, decided.WinningPlayerID)
		assert.Equal(t, winners[0], *decided.WinningPlayerID)
		return nil
	}))
}
