//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	dombin "packtrack/internal/domain/bin"
	"packtrack/internal/domain/game"
	"packtrack/internal/domain/pack"
	"packtrack/internal/pkg/clock"
	"packtrack/internal/pkg/ptr"
	"packtrack/internal/usecase/commands"
	"packtrack/internal/usecase/shared"
	"packtrack/tests/common/builder"
	"packtrack/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type PackCommandsTestSuite struct {
	suite.Suite
	store    *fake.Store
	clock    *clock.MockClock
	commands commands.PackCommands
	storeID  uuid.UUID
	shiftID  uuid.UUID
}

func (s *PackCommandsTestSuite) SetupTest() {
	s.store = fake.NewStore()
	s.clock = clock.NewMockClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	s.storeID = uuid.New()
	s.shiftID = uuid.New()

	s.store.AddShift(&shared.ShiftSnapshot{
		ID:       s.shiftID,
		StoreID:  s.storeID,
		OpenedAt: s.clock.Now(),
	})

	s.commands = commands.NewPackCommands(fake.NewUoW(s.store), s.clock)
}

func TestPackCommandsSuite(t *testing.T) {
	suite.Run(t, new(PackCommandsTestSuite))
}

func (s *PackCommandsTestSuite) newBin(label string, order int) *dombin.Bin {
	b, err := dombin.NewBin(s.storeID, label, order, true)
	s.Require().NoError(err)
	s.store.AddBin(b)
	return b
}

func (s *PackCommandsTestSuite) newReceivedPack(number string) *pack.Pack {
	p, err := builder.NewPackBuilder().WithStore(s.storeID).WithPackNumber(number).BuildDomain()
	s.Require().NoError(err)
	s.store.AddPack(p)
	return p
}

func (s *PackCommandsTestSuite) newActivePack(number string, binID uuid.UUID) *pack.Pack {
	p, err := builder.NewPackBuilder().WithStore(s.storeID).WithPackNumber(number).
		BuildActive(binID, uuid.New(), s.shiftID)
	s.Require().NoError(err)
	s.store.AddPack(p)
	return p
}

func (s *PackCommandsTestSuite) TestMovePack() {
	ctx := context.Background()

	s.Run("moves an active pack to a free bin and appends history", func() {
		origin := s.newBin("B1", 1)
		target := s.newBin("B2", 2)
		p := s.newActivePack("2000001", origin.ID())

		result, err := s.commands.MovePack(ctx, commands.MovePackParams{
			PackID:      p.ID(),
			TargetBinID: target.ID(),
			MovedBy:     uuid.New(),
			Reason:      ptr.To("restock"),
		})
		s.Require().NoError(err)

		s.Equal(target.ID(), result.BinID)
		s.Require().NotNil(p.CurrentBin())
		s.Equal(target.ID(), *p.CurrentBin())
		s.Require().Len(s.store.Movements, 1)
		s.Equal("restock", *s.store.Movements[0].Reason)
		s.Len(s.store.AuditTrail, 1)
	})

	s.Run("rejects a bin from another store", func() {
		foreign, err := dombin.NewBin(uuid.New(), "X1", 1, true)
		s.Require().NoError(err)
		s.store.AddBin(foreign)
		p := s.newReceivedPack("2000002")

		_, err = s.commands.MovePack(ctx, commands.MovePackParams{
			PackID:      p.ID(),
			TargetBinID: foreign.ID(),
			MovedBy:     uuid.New(),
		})
		s.Require().ErrorIs(err, commands.ErrStoreMismatch)
	})

	s.Run("rejects a bin already holding another active pack", func() {
		origin := s.newBin("B3", 3)
		occupied := s.newBin("B4", 4)
		s.newActivePack("2000003", occupied.ID())
		p := s.newActivePack("2000004", origin.ID())

		_, err := s.commands.MovePack(ctx, commands.MovePackParams{
			PackID:      p.ID(),
			TargetBinID: occupied.ID(),
			MovedBy:     uuid.New(),
		})
		s.Require().ErrorIs(err, commands.ErrBinOccupied)
	})

	s.Run("returns not found for an unknown pack", func() {
		target := s.newBin("B5", 5)

		_, err := s.commands.MovePack(ctx, commands.MovePackParams{
			PackID:      uuid.New(),
			TargetBinID: target.ID(),
			MovedBy:     uuid.New(),
		})
		s.Require().ErrorIs(err, commands.ErrPackNotFound)
	})
}

func (s *PackCommandsTestSuite) TestActivatePack() {
	ctx := context.Background()

	g, err := game.NewGame("5021", "Lucky 7s", 200, nil, s.clock.Now())
	s.Require().NoError(err)
	s.store.AddGame(g)

	s.Run("activates a received pack and materializes its ticket serials", func() {
		b := s.newBin("A1", 1)
		p, err := builder.NewPackBuilder().WithStore(s.storeID).WithPackNumber("3000001").
			WithSerialRange("000", "049").BuildDomain()
		s.Require().NoError(err)
		s.store.AddPack(p)
		s.store.Games[p.GameID()] = g

		err = s.commands.ActivatePack(ctx, commands.ActivatePackParams{
			PackID:      p.ID(),
			BinID:       b.ID(),
			ShiftID:     s.shiftID,
			ActivatedBy: uuid.New(),
		})
		s.Require().NoError(err)

		s.Equal(pack.StatusActive, p.Status())
		s.Require().Len(s.store.Serials[p.ID()], 50)
		s.Equal("5021"+"3000001"+"000", s.store.Serials[p.ID()][0].SerialNumber)
		s.Equal("5021"+"3000001"+"049", s.store.Serials[p.ID()][49].SerialNumber)
		s.Require().Len(s.store.Movements, 1)
		s.Equal("activation", *s.store.Movements[0].Reason)
	})

	s.Run("rejects activation into an occupied bin", func() {
		b := s.newBin("A2", 2)
		s.newActivePack("3000002", b.ID())
		p := s.newReceivedPack("3000003")
		s.store.Games[p.GameID()] = g

		err := s.commands.ActivatePack(ctx, commands.ActivatePackParams{
			PackID:      p.ID(),
			BinID:       b.ID(),
			ShiftID:     s.shiftID,
			ActivatedBy: uuid.New(),
		})
		s.Require().ErrorIs(err, commands.ErrBinOccupied)
	})

	s.Run("rejects activation of a non-received pack", func() {
		b := s.newBin("A3", 3)
		free := s.newBin("A4", 4)
		p := s.newActivePack("3000004", b.ID())
		s.store.Games[p.GameID()] = g

		err := s.commands.ActivatePack(ctx, commands.ActivatePackParams{
			PackID:      p.ID(),
			BinID:       free.ID(),
			ShiftID:     s.shiftID,
			ActivatedBy: uuid.New(),
		})
		s.Require().ErrorIs(err, commands.ErrInvalidTransition)
	})
}

func (s *PackCommandsTestSuite) TestReturnPack() {
	ctx := context.Background()

	s.Run("returns a received pack without recording a closing", func() {
		p := s.newReceivedPack("4000001")

		err := s.commands.ReturnPack(ctx, commands.ReturnPackParams{
			PackID:     p.ID(),
			ReturnedBy: uuid.New(),
		})
		s.Require().NoError(err)

		s.Equal(pack.StatusReturned, p.Status())
		s.Empty(s.store.Closings)
	})

	s.Run("records a partial-sale closing for an active pack", func() {
		b := s.newBin("R1", 1)
		p := s.newActivePack("4000002", b.ID())

		err := s.commands.ReturnPack(ctx, commands.ReturnPackParams{
			PackID:       p.ID(),
			ReturnedBy:   uuid.New(),
			ShiftID:      &s.shiftID,
			EndingSerial: ptr.To("029"),
		})
		s.Require().NoError(err)

		s.Equal(pack.StatusReturned, p.Status())
		s.Nil(p.CurrentBin())
		s.Require().Len(s.store.Closings, 1)
		s.Equal("029", s.store.Closings[0].ClosingSerial().String())
		s.Equal(30, s.store.Closings[0].TicketsSold())
	})

	s.Run("requires shift and ending serial for an active pack", func() {
		b := s.newBin("R2", 2)
		p := s.newActivePack("4000003", b.ID())

		err := s.commands.ReturnPack(ctx, commands.ReturnPackParams{
			PackID:     p.ID(),
			ReturnedBy: uuid.New(),
		})
		s.Require().ErrorIs(err, commands.ErrInvalidClosingSerial)
	})

	s.Run("rejects an ending serial beyond the pack range", func() {
		b := s.newBin("R3", 3)
		p := s.newActivePack("4000004", b.ID())

		err := s.commands.ReturnPack(ctx, commands.ReturnPackParams{
			PackID:       p.ID(),
			ReturnedBy:   uuid.New(),
			ShiftID:      &s.shiftID,
			EndingSerial: ptr.To("150"),
		})
		s.Require().ErrorIs(err, commands.ErrInvalidClosingSerial)
	})
}

func (s *PackCommandsTestSuite) TestDeletePack() {
	ctx := context.Background()

	b := s.newBin("D1", 1)
	p := s.newActivePack("5000001", b.ID())
	s.store.Serials[p.ID()] = []*fake.TicketSerial{
		{SerialNumber: "50215000001000"},
		{SerialNumber: "50215000001001"},
	}

	err := s.commands.DeletePack(ctx, p.ID(), uuid.New())
	s.Require().NoError(err)

	s.NotContains(s.store.Packs, p.ID())
	s.Empty(s.store.Serials[p.ID()])
	s.Require().Len(s.store.AuditTrail, 1)
	s.Equal(shared.AuditActionDelete, s.store.AuditTrail[0].Action)
}

func (s *PackCommandsTestSuite) TestSetupBins() {
	ctx := context.Background()

	s.Run("creates bins from a valid layout", func() {
		ids, err := s.commands.SetupBins(ctx, s.storeID, []dombin.Template{
			{Label: "1", DisplayOrder: 1},
			{Label: "2", DisplayOrder: 2, IsActive: ptr.To(false)},
		})
		s.Require().NoError(err)
		s.Len(ids, 2)
		s.Len(s.store.Bins, 2)
	})

	s.Run("rejects duplicate display orders", func() {
		_, err := s.commands.SetupBins(ctx, s.storeID, []dombin.Template{
			{Label: "1", DisplayOrder: 1},
			{Label: "2", DisplayOrder: 1},
		})
		s.Require().ErrorIs(err, commands.ErrInvalidBinLayout)
	})
}
