//go:build unit

package game_test

import (
	"testing"
	"time"

	"packtrack/internal/domain/game"
	"packtrack/internal/pkg/ptr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGame(t *testing.T) {
	now := time.Now()

	t.Run("valid game starts active", func(t *testing.T) {
		g, err := game.NewGame("5021", "Gold Rush", 500, nil, now)
		require.NoError(t, err)
		assert.Equal(t, "5021", g.Code())
		assert.True(t, g.IsActive())
		assert.Nil(t, g.PackSize())
	})

	t.Run("rejects non-numeric or wrong-length code", func(t *testing.T) {
		for _, code := range []string{"502", "50211", "50a1", ""} {
			_, err := game.NewGame(code, "Gold Rush", 500, nil, now)
			assert.ErrorIs(t, err, game.ErrInvalidGameCode, "code %q", code)
		}
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		_, err := game.NewGame("5021", "Gold Rush", 0, nil, now)
		assert.ErrorIs(t, err, game.ErrInvalidPrice)
	})

	t.Run("rejects out-of-range pack size", func(t *testing.T) {
		_, err := game.NewGame("5021", "Gold Rush", 500, ptr.To(0), now)
		assert.ErrorIs(t, err, game.ErrInvalidPackSize)

		_, err = game.NewGame("5021", "Gold Rush", 500, ptr.To(1001), now)
		assert.ErrorIs(t, err, game.ErrInvalidPackSize)
	})
}

func TestPackSizeOrDefault(t *testing.T) {
	now := time.Now()

	t.Run("falls back to the store standard", func(t *testing.T) {
		g, err := game.NewGame("5021", "Gold Rush", 500, nil, now)
		require.NoError(t, err)
		assert.Equal(t, 150, g.PackSizeOrDefault(150))
	})

	t.Run("override wins", func(t *testing.T) {
		g, err := game.NewGame("5030", "Lucky Sevens", 2000, ptr.To(50), now)
		require.NoError(t, err)
		assert.Equal(t, 50, g.PackSizeOrDefault(150))
	})
}

func TestNewStatus(t *testing.T) {
	t.Run("accepts known statuses", func(t *testing.T) {
		for _, value := range []string{"ACTIVE", "INACTIVE"} {
			s, err := game.NewStatus(value)
			require.NoError(t, err)
			assert.Equal(t, game.Status(value), s)
		}
	})

	t.Run("rejects unknown value", func(t *testing.T) {
		_, err := game.NewStatus("RETIRED")
		assert.ErrorIs(t, err, game.ErrInvalidStatus)
	})
}
