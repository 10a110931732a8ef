//go:build unit

package bin_test

import (
	"testing"

	"packtrack/internal/domain/bin"
	"packtrack/internal/pkg/ptr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBin(t *testing.T) {
	storeID := uuid.New()

	t.Run("trims the label", func(t *testing.T) {
		b, err := bin.NewBin(storeID, "  B1  ", 1, true)
		require.NoError(t, err)
		assert.Equal(t, "B1", b.Label())
	})

	t.Run("rejects blank label", func(t *testing.T) {
		_, err := bin.NewBin(storeID, "   ", 1, true)
		assert.ErrorIs(t, err, bin.ErrEmptyLabel)
	})

	t.Run("rejects negative display order", func(t *testing.T) {
		_, err := bin.NewBin(storeID, "B1", -1, true)
		assert.ErrorIs(t, err, bin.ErrNegativeOrder)
	})
}

func TestBuildFromTemplates(t *testing.T) {
	storeID := uuid.New()

	t.Run("materializes bins in template order", func(t *testing.T) {
		bins, err := bin.BuildFromTemplates(storeID, []bin.Template{
			{Label: "B1", DisplayOrder: 1},
			{Label: "B2", DisplayOrder: 2, IsActive: ptr.To(false)},
		})
		require.NoError(t, err)
		require.Len(t, bins, 2)

		assert.Equal(t, storeID, bins[0].StoreID())
		assert.True(t, bins[0].IsActive())
		assert.False(t, bins[1].IsActive())
	})

	t.Run("duplicate display order rejects the set", func(t *testing.T) {
		_, err := bin.BuildFromTemplates(storeID, []bin.Template{
			{Label: "B1", DisplayOrder: 1},
			{Label: "B2", DisplayOrder: 1},
		})
		assert.ErrorIs(t, err, bin.ErrDuplicateOrderInSet)
		assert.ErrorIs(t, err, bin.ErrInvalidTemplate)
	})

	t.Run("invalid member surfaces both markers", func(t *testing.T) {
		_, err := bin.BuildFromTemplates(storeID, []bin.Template{
			{Label: "", DisplayOrder: 1},
		})
		assert.ErrorIs(t, err, bin.ErrInvalidTemplate)
		assert.ErrorIs(t, err, bin.ErrEmptyLabel)
	})
}
