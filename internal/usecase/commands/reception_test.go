//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"packtrack/internal/domain/game"
	"packtrack/internal/pkg/clock"
	"packtrack/internal/pkg/config"
	"packtrack/internal/usecase/commands"
	"packtrack/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

const (
	testGameCode = "5021"
	fillerDigits = "0000000000"
)

type ReceptionCommandsTestSuite struct {
	suite.Suite
	store    *fake.Store
	clock    *clock.MockClock
	commands commands.ReceptionCommands
	storeID  uuid.UUID
	game     *game.Game
}

func (s *ReceptionCommandsTestSuite) SetupTest() {
	s.store = fake.NewStore()
	s.clock = clock.NewMockClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	s.storeID = uuid.New()

	g, err := game.NewGame(testGameCode, "Lucky 7s", 200, nil, s.clock.Now())
	s.Require().NoError(err)
	s.game = g
	s.store.AddGame(g)

	s.commands = commands.NewReceptionCommands(
		fake.NewUoW(s.store),
		s.clock,
		config.ReceptionConfig{DefaultPackSize: 150, MaxBatchSize: 500},
	)
}

func TestReceptionCommandsSuite(t *testing.T) {
	suite.Run(t, new(ReceptionCommandsTestSuite))
}

func code(gameCode, packNumber, start string) string {
	return gameCode + packNumber + start + fillerDigits
}

func (s *ReceptionCommandsTestSuite) TestReceiveBatch() {
	ctx := context.Background()
	receivedBy := uuid.New()

	s.Run("creates pack spanning the default size from the scanned serial", func() {
		result, err := s.commands.ReceiveBatch(ctx, s.storeID, []string{code(testGameCode, "1000001", "000")}, receivedBy)
		s.Require().NoError(err)

		s.Require().Len(result.Created, 1)
		s.Equal("1000001", result.Created[0].PackNumber)
		s.Equal("000", result.Created[0].SerialStart)
		s.Equal("149", result.Created[0].SerialEnd)
		s.Empty(result.Duplicates)
		s.Empty(result.Errors)
		s.Len(s.store.AuditTrail, 1)
	})

	s.Run("honors a game-level pack size override", func() {
		size := 50
		small, err := game.NewGame("7777", "Mini", 100, &size, s.clock.Now())
		s.Require().NoError(err)
		s.store.AddGame(small)

		result, err := s.commands.ReceiveBatch(ctx, s.storeID, []string{code("7777", "1000002", "000")}, receivedBy)
		s.Require().NoError(err)

		s.Require().Len(result.Created, 1)
		s.Equal("049", result.Created[0].SerialEnd)
	})

	s.Run("collects malformed codes without failing the batch", func() {
		result, err := s.commands.ReceiveBatch(ctx, s.storeID, []string{
			"12345",
			code(testGameCode, "1000003", "000"),
		}, receivedBy)
		s.Require().NoError(err)

		s.Len(result.Created, 1)
		s.Require().Len(result.Errors, 1)
		s.Equal("12345", result.Errors[0].Code)
		s.Equal("Invalid serial number format", result.Errors[0].Reason)
	})

	s.Run("collects unknown game codes", func() {
		result, err := s.commands.ReceiveBatch(ctx, s.storeID, []string{code("9999", "1000004", "000")}, receivedBy)
		s.Require().NoError(err)

		s.Empty(result.Created)
		s.Require().Len(result.Errors, 1)
		s.Contains(result.Errors[0].Reason, "9999")
	})

	s.Run("detects duplicates within the same batch", func() {
		result, err := s.commands.ReceiveBatch(ctx, s.storeID, []string{
			code(testGameCode, "1000005", "000"),
			code(testGameCode, "1000005", "000"),
		}, receivedBy)
		s.Require().NoError(err)

		s.Len(result.Created, 1)
		s.Len(result.Duplicates, 1)
	})

	s.Run("detects packs already persisted for the store", func() {
		first, err := s.commands.ReceiveBatch(ctx, s.storeID, []string{code(testGameCode, "1000006", "000")}, receivedBy)
		s.Require().NoError(err)
		s.Require().Len(first.Created, 1)

		second, err := s.commands.ReceiveBatch(ctx, s.storeID, []string{code(testGameCode, "1000006", "000")}, receivedBy)
		s.Require().NoError(err)

		s.Empty(second.Created)
		s.Len(second.Duplicates, 1)
	})

	s.Run("rejects serials whose range would overflow three digits", func() {
		result, err := s.commands.ReceiveBatch(ctx, s.storeID, []string{code(testGameCode, "1000007", "900")}, receivedBy)
		s.Require().NoError(err)

		s.Empty(result.Created)
		s.Require().Len(result.Errors, 1)
		s.Contains(result.Errors[0].Reason, "900")
	})

	s.Run("retries once when a concurrent batch wins the unique race", func() {
		s.store.FailPackCreateOnce = true

		result, err := s.commands.ReceiveBatch(ctx, s.storeID, []string{code(testGameCode, "1000008", "000")}, receivedBy)
		s.Require().NoError(err)

		s.Len(result.Created, 1)
	})
}

func (s *ReceptionCommandsTestSuite) TestReceiveBatchTooLarge() {
	small := commands.NewReceptionCommands(
		fake.NewUoW(s.store),
		s.clock,
		config.ReceptionConfig{DefaultPackSize: 150, MaxBatchSize: 2},
	)

	_, err := small.ReceiveBatch(context.Background(), s.storeID, []string{
		code(testGameCode, "1000011", "000"),
		code(testGameCode, "1000012", "000"),
		code(testGameCode, "1000013", "000"),
	}, uuid.New())

	s.Require().ErrorIs(err, commands.ErrBatchTooLarge)
}
