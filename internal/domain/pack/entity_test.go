//go:build unit

package pack_test

import (
	"testing"
	"time"

	"packtrack/internal/domain/pack"
	"packtrack/internal/domain/serial"
	"packtrack/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.PackBuilder)
	errIs  error
}

func TestNewPack(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewPackBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, pack.StatusReceived, actual.Status())
		assert.Equal(t, "1234567", actual.PackNumber())
		assert.Equal(t, "000", actual.SerialStart().String())
		assert.Equal(t, "149", actual.SerialEnd().String())
		assert.Nil(t, actual.CurrentBin())
		assert.False(t, actual.ReceivedAt().IsZero())
		assert.Nil(t, actual.ActivatedAt())
		assert.Nil(t, actual.DepletedAt())
		assert.Nil(t, actual.ReturnedAt())
	})

	t.Run("pack number validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "leading zeros preserved",
				mutate: func(b *builder.PackBuilder) { b.WithPackNumber("0000042") },
			},
			{
				name:   "too short",
				mutate: func(b *builder.PackBuilder) { b.WithPackNumber("123456") },
				errIs:  pack.ErrInvalidPackNumber,
			},
			{
				name:   "too long",
				mutate: func(b *builder.PackBuilder) { b.WithPackNumber("12345678") },
				errIs:  pack.ErrInvalidPackNumber,
			},
			{
				name:   "non-numeric",
				mutate: func(b *builder.PackBuilder) { b.WithPackNumber("12345a7") },
				errIs:  pack.ErrInvalidPackNumber,
			},
		})
	})

	t.Run("serial range validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "single ticket pack",
				mutate: func(b *builder.PackBuilder) { b.WithSerialRange("042", "042") },
			},
			{
				name:   "inverted range rejected",
				mutate: func(b *builder.PackBuilder) { b.WithSerialRange("050", "025") },
				errIs:  pack.ErrInvalidSerialRange,
			},
		})
	})
}

func TestPackLifecycle(t *testing.T) {
	binID := uuid.New()
	actor := uuid.New()
	shiftID := uuid.New()
	now := time.Now()

	t.Run("received to active sets activation fields once", func(t *testing.T) {
		p, err := builder.NewPackBuilder().BuildDomain()
		require.NoError(t, err)

		activatedAt := p.ReceivedAt().Add(time.Minute)
		require.NoError(t, p.Activate(binID, actor, shiftID, activatedAt))

		assert.Equal(t, pack.StatusActive, p.Status())
		require.NotNil(t, p.CurrentBin())
		assert.Equal(t, binID, *p.CurrentBin())
		require.NotNil(t, p.ActivatedAt())
		assert.Equal(t, actor, *p.ActivatedBy())
		assert.Equal(t, shiftID, *p.ActivatedShift())
		assert.Equal(t, activatedAt, *p.ActivatedAt())

		assert.ErrorIs(t, p.Activate(binID, actor, shiftID, activatedAt), pack.ErrInvalidTransition)
	})

	t.Run("lifecycle timestamps never run backwards", func(t *testing.T) {
		p, err := builder.NewPackBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, p.Activate(binID, actor, shiftID, p.ReceivedAt().Add(-time.Hour)))
		assert.Equal(t, p.ReceivedAt(), *p.ActivatedAt())

		require.NoError(t, p.Deplete(actor, shiftID, p.ActivatedAt().Add(-time.Minute)))
		assert.Equal(t, *p.ActivatedAt(), *p.DepletedAt())
	})

	t.Run("early return timestamp lifts to the activation time", func(t *testing.T) {
		p, err := builder.NewPackBuilder().BuildActive(binID, actor, shiftID)
		require.NoError(t, err)

		require.NoError(t, p.Return(p.ReceivedAt().Add(-time.Hour)))
		assert.Equal(t, *p.ActivatedAt(), *p.ReturnedAt())
	})

	t.Run("active to depleted", func(t *testing.T) {
		p, err := builder.NewPackBuilder().BuildActive(binID, actor, shiftID)
		require.NoError(t, err)

		depletedAt := now.Add(8 * time.Hour)
		require.NoError(t, p.Deplete(actor, shiftID, depletedAt))

		assert.Equal(t, pack.StatusDepleted, p.Status())
		require.NotNil(t, p.DepletedAt())
		assert.Equal(t, shiftID, *p.DepletedShift())
		assert.True(t, p.IsDepletedInShift(shiftID))
		assert.False(t, p.IsDepletedInShift(uuid.New()))

		assert.ErrorIs(t, p.Deplete(actor, shiftID, depletedAt), pack.ErrInvalidTransition)
		assert.ErrorIs(t, p.Return(depletedAt), pack.ErrInvalidTransition)
	})

	t.Run("deplete requires active", func(t *testing.T) {
		p, err := builder.NewPackBuilder().BuildDomain()
		require.NoError(t, err)

		assert.ErrorIs(t, p.Deplete(actor, shiftID, now), pack.ErrInvalidTransition)
	})

	t.Run("return from received clears bin", func(t *testing.T) {
		p, err := builder.NewPackBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, p.Return(now))
		assert.Equal(t, pack.StatusReturned, p.Status())
		assert.Nil(t, p.CurrentBin())
		require.NotNil(t, p.ReturnedAt())
	})

	t.Run("return from active", func(t *testing.T) {
		p, err := builder.NewPackBuilder().BuildActive(binID, actor, shiftID)
		require.NoError(t, err)

		require.NoError(t, p.Return(now.Add(time.Hour)))
		assert.Equal(t, pack.StatusReturned, p.Status())
		assert.Nil(t, p.CurrentBin())

		assert.ErrorIs(t, p.Activate(binID, actor, shiftID, now), pack.ErrInvalidTransition)
	})

	t.Run("move to bin", func(t *testing.T) {
		p, err := builder.NewPackBuilder().BuildActive(binID, actor, shiftID)
		require.NoError(t, err)

		target := uuid.New()
		p.MoveToBin(target)
		require.NotNil(t, p.CurrentBin())
		assert.Equal(t, target, *p.CurrentBin())
	})
}

func TestReconstructPack(t *testing.T) {
	id := uuid.New()
	storeID := uuid.New()
	gameID := uuid.New()
	binID := uuid.New()
	received := time.Now().Add(-48 * time.Hour)
	activated := received.Add(time.Hour)
	by := uuid.New()
	shiftID := uuid.New()

	p := pack.ReconstructPack(
		id, storeID, gameID,
		"0001122",
		serial.MustSerial("000"), serial.MustSerial("299"),
		pack.StatusActive,
		&binID,
		received,
		&activated, &by, &shiftID,
		nil, nil, nil,
		nil,
	)

	assert.Equal(t, id, p.ID())
	assert.Equal(t, pack.StatusActive, p.Status())
	assert.Equal(t, "0001122", p.PackNumber())
	assert.Equal(t, binID, *p.CurrentBin())
	assert.Equal(t, activated, *p.ActivatedAt())
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			b := builder.NewPackBuilder()
			tt.mutate(b)
			p, err := b.BuildDomain()
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, p)
		})
	}
}
