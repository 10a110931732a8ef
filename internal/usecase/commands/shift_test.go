//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"packtrack/internal/domain/pack"
	"packtrack/internal/domain/serial"
	"packtrack/internal/domain/shift"
	"packtrack/internal/pkg/clock"
	"packtrack/internal/usecase/commands"
	"packtrack/internal/usecase/shared"
	"packtrack/tests/common/builder"
	"packtrack/tests/common/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ShiftCommandsTestSuite struct {
	suite.Suite
	store    *fake.Store
	clock    *clock.MockClock
	commands commands.ShiftCommands
	storeID  uuid.UUID
	shiftID  uuid.UUID
}

func (s *ShiftCommandsTestSuite) SetupTest() {
	s.store = fake.NewStore()
	s.clock = clock.NewMockClock(time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC))
	s.storeID = uuid.New()
	s.shiftID = uuid.New()

	s.store.AddShift(&shared.ShiftSnapshot{
		ID:       s.shiftID,
		StoreID:  s.storeID,
		OpenedAt: s.clock.Now().Add(-8 * time.Hour),
	})

	s.commands = commands.NewShiftCommands(fake.NewUoW(s.store), s.clock)
}

func TestShiftCommandsSuite(t *testing.T) {
	suite.Run(t, new(ShiftCommandsTestSuite))
}

func (s *ShiftCommandsTestSuite) newActivePack(number string) *pack.Pack {
	p, err := builder.NewPackBuilder().WithStore(s.storeID).WithPackNumber(number).
		BuildActive(uuid.New(), uuid.New(), s.shiftID)
	s.Require().NoError(err)
	s.store.AddPack(p)
	return p
}

func (s *ShiftCommandsTestSuite) closedShift() uuid.UUID {
	id := uuid.New()
	closedAt := s.clock.Now()
	s.store.AddShift(&shared.ShiftSnapshot{
		ID:       id,
		StoreID:  s.storeID,
		OpenedAt: closedAt.Add(-8 * time.Hour),
		ClosedAt: &closedAt,
	})
	return id
}

func (s *ShiftCommandsTestSuite) trackSerials(p *pack.Pack) {
	rows := make([]*fake.TicketSerial, 0, p.SerialEnd().Int()-p.SerialStart().Int()+1)
	for i := p.SerialStart().Int(); i <= p.SerialEnd().Int(); i++ {
		rows = append(rows, &fake.TicketSerial{
			SerialNumber: fmt.Sprintf("5021%s%03d", p.PackNumber(), i),
		})
	}
	s.store.Serials[p.ID()] = rows
}

func (s *ShiftCommandsTestSuite) scanEntry(p *pack.Pack, ending string) commands.ClosingEntryParams {
	binID := uuid.New()
	if p.CurrentBin() != nil {
		binID = *p.CurrentBin()
	}
	return commands.ClosingEntryParams{
		BinID:        binID,
		PackID:       p.ID(),
		EndingSerial: ending,
		EntryMethod:  "SCAN",
	}
}

func (s *ShiftCommandsTestSuite) TestRecordOpening() {
	ctx := context.Background()

	s.Run("records the first opening for a shift and pack", func() {
		p := s.newActivePack("6000001")

		err := s.commands.RecordOpening(ctx, s.shiftID, p.ID(), "010")
		s.Require().NoError(err)

		s.Require().Len(s.store.Openings, 1)
		s.Equal("010", s.store.Openings[0].OpeningSerial().String())
	})

	s.Run("rejects a second opening for the same shift and pack", func() {
		p := s.newActivePack("6000002")

		s.Require().NoError(s.commands.RecordOpening(ctx, s.shiftID, p.ID(), "000"))
		err := s.commands.RecordOpening(ctx, s.shiftID, p.ID(), "005")
		s.Require().ErrorIs(err, commands.ErrDuplicateOpening)
	})

	s.Run("rejects an opening outside the pack range", func() {
		p := s.newActivePack("6000003")

		err := s.commands.RecordOpening(ctx, s.shiftID, p.ID(), "150")
		s.Require().ErrorIs(err, commands.ErrInvalidOpeningSerial)
	})

	s.Run("rejects openings on a closed shift", func() {
		p := s.newActivePack("6000004")

		err := s.commands.RecordOpening(ctx, s.closedShift(), p.ID(), "000")
		s.Require().ErrorIs(err, commands.ErrShiftAlreadyClosed)
	})
}

func (s *ShiftCommandsTestSuite) TestCloseShift() {
	ctx := context.Background()
	closedBy := uuid.New()

	s.Run("closes a pack, pins the opening and marks the shift closed", func() {
		s.SetupTest()
		p := s.newActivePack("7000001")

		result, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{s.scanEntry(p, "029")},
		})
		s.Require().NoError(err)

		s.Equal(1, result.Summary.PacksClosed)
		s.Equal(0, result.Summary.PacksDepleted)
		s.Require().Len(s.store.Closings, 1)
		s.Equal(30, s.store.Closings[0].TicketsSold())
		s.Require().Len(s.store.Openings, 1)
		s.Equal("000", s.store.Openings[0].OpeningSerial().String())
		s.True(s.store.Shifts[s.shiftID].IsClosed())
		s.Contains(s.store.LockedShifts, s.shiftID)
	})

	s.Run("depletes a pack closed at its final serial", func() {
		s.SetupTest()
		p := s.newActivePack("7000002")

		result, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{s.scanEntry(p, "149")},
		})
		s.Require().NoError(err)

		s.Equal(1, result.Summary.PacksDepleted)
		s.Equal(pack.StatusDepleted, p.Status())
		s.True(p.IsDepletedInShift(s.shiftID))
	})

	s.Run("resolves the opening from a recorded opening row", func() {
		s.SetupTest()
		p := s.newActivePack("7000003")
		s.Require().NoError(s.commands.RecordOpening(ctx, s.shiftID, p.ID(), "040"))

		_, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{s.scanEntry(p, "049")},
		})
		s.Require().NoError(err)

		s.Require().Len(s.store.Closings, 1)
		s.Equal(10, s.store.Closings[0].TicketsSold())
	})

	s.Run("carries the previous closing serial into the next shift", func() {
		s.SetupTest()
		p := s.newActivePack("7000004")
		prior := shift.NewSystemClosing(uuid.New(), p.ID(), serial.MustSerial("059"), 60, s.clock.Now().Add(-24*time.Hour))
		s.store.Closings = append(s.store.Closings, prior)

		_, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{s.scanEntry(p, "089")},
		})
		s.Require().NoError(err)

		s.Require().Len(s.store.Openings, 1)
		s.Equal("059", s.store.Openings[0].OpeningSerial().String())
	})

	s.Run("synthesizes a system closing for a pack depleted mid-shift", func() {
		s.SetupTest()
		p := s.newActivePack("7000005")
		s.Require().NoError(p.Deplete(closedBy, s.shiftID, s.clock.Now()))

		result, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  nil,
		})
		s.Require().NoError(err)

		s.Equal(1, result.Summary.PacksClosed)
		s.Require().Len(s.store.Closings, 1)
		s.True(s.store.Closings[0].IsSystem())
		s.Equal("149", s.store.Closings[0].ClosingSerial().String())
		s.Equal(150, s.store.Closings[0].TicketsSold())
	})

	s.Run("books a variance when the actual count disagrees", func() {
		s.SetupTest()
		p := s.newActivePack("7000006")
		actual := 25

		entry := s.scanEntry(p, "029")
		entry.ActualCount = &actual

		result, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{entry},
		})
		s.Require().NoError(err)

		s.Require().Len(result.VarianceIDs, 1)
		v := s.store.Variances[result.VarianceIDs[0]]
		s.Require().NotNil(v)
		s.Equal(30, v.Expected())
		s.Equal(25, v.Actual())
		s.Equal(-5, v.Difference())
		s.False(v.IsResolved())
	})

	s.Run("books no variance across two shifts with tracked serials", func() {
		s.SetupTest()
		p := s.newActivePack("7000012")
		s.trackSerials(p)

		_, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{s.scanEntry(p, "050")},
		})
		s.Require().NoError(err)
		s.Empty(s.store.Variances)

		nextShift := uuid.New()
		s.store.AddShift(&shared.ShiftSnapshot{
			ID:       nextShift,
			StoreID:  s.storeID,
			OpenedAt: s.clock.Now(),
		})

		result, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  nextShift,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{s.scanEntry(p, "080")},
		})
		s.Require().NoError(err)

		s.Empty(result.VarianceIDs)
		s.Empty(s.store.Variances)
		s.Require().Len(s.store.Closings, 2)
		s.Equal(31, s.store.Closings[1].TicketsSold())
	})

	s.Run("accepts a rescan of a pack that sold out mid-shift", func() {
		s.SetupTest()
		p := s.newActivePack("7000013")
		s.Require().NoError(p.Deplete(closedBy, s.shiftID, s.clock.Now()))

		result, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{s.scanEntry(p, "149")},
		})
		s.Require().NoError(err)

		s.Equal(1, result.Summary.PacksClosed)
		s.Equal(0, result.Summary.PacksDepleted)
		s.Require().Len(s.store.Closings, 1)
		s.False(s.store.Closings[0].IsSystem())
		s.Equal("149", s.store.Closings[0].ClosingSerial().String())
	})

	s.Run("rejects a sold-out rescan below the final serial", func() {
		s.SetupTest()
		p := s.newActivePack("7000014")
		s.Require().NoError(p.Deplete(closedBy, s.shiftID, s.clock.Now()))

		_, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{s.scanEntry(p, "100")},
		})
		s.Require().ErrorIs(err, commands.ErrInvalidClosingSerial)
	})

	s.Run("rejects a closing serial below the opening", func() {
		s.SetupTest()
		p := s.newActivePack("7000007")
		s.Require().NoError(s.commands.RecordOpening(ctx, s.shiftID, p.ID(), "050"))

		_, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{s.scanEntry(p, "049")},
		})
		s.Require().ErrorIs(err, commands.ErrInvalidClosingSerial)
	})

	s.Run("rejects a manual entry without authorization", func() {
		s.SetupTest()
		p := s.newActivePack("7000008")

		entry := s.scanEntry(p, "029")
		entry.EntryMethod = "MANUAL"

		_, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{entry},
		})
		s.Require().ErrorIs(err, commands.ErrManualEntryUnauthorized)
	})

	s.Run("accepts an authorized manual entry", func() {
		s.SetupTest()
		p := s.newActivePack("7000009")

		entry := s.scanEntry(p, "029")
		entry.EntryMethod = "MANUAL"
		authBy := uuid.New()
		authAt := s.clock.Now()
		entry.ManualAuthorizedBy = &authBy
		entry.ManualAuthorizedAt = &authAt

		_, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{entry},
		})
		s.Require().NoError(err)

		s.Require().Len(s.store.Closings, 1)
		s.Equal(shift.EntryManual, s.store.Closings[0].EntryMethod())
		s.Require().NotNil(s.store.Closings[0].ManualAuth())
		s.Equal(authBy, s.store.Closings[0].ManualAuth().AuthorizedBy)
	})

	s.Run("rejects closing an already closed shift", func() {
		s.SetupTest()
		_, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.closedShift(),
			ClosedBy: closedBy,
		})
		s.Require().ErrorIs(err, commands.ErrShiftAlreadyClosed)
	})

	s.Run("surfaces a repeat closing for the same pack as a duplicate", func() {
		s.SetupTest()
		p := s.newActivePack("7000010")
		existing := shift.NewSystemClosing(s.shiftID, p.ID(), serial.MustSerial("149"), 150, s.clock.Now())
		s.store.Closings = append(s.store.Closings, existing)
		s.Require().NoError(p.Deplete(closedBy, s.shiftID, s.clock.Now()))

		_, err := s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{s.scanEntry(p, "149")},
		})
		s.Require().ErrorIs(err, commands.ErrDuplicateClosing)
	})

	s.Run("rejects a pack from another store", func() {
		s.SetupTest()
		p, err := builder.NewPackBuilder().WithStore(uuid.New()).WithPackNumber("7000011").
			BuildActive(uuid.New(), uuid.New(), s.shiftID)
		s.Require().NoError(err)
		s.store.AddPack(p)

		_, err = s.commands.CloseShift(ctx, commands.CloseShiftParams{
			ShiftID:  s.shiftID,
			ClosedBy: closedBy,
			Entries:  []commands.ClosingEntryParams{s.scanEntry(p, "029")},
		})
		s.Require().ErrorIs(err, commands.ErrStoreMismatch)
	})
}

func (s *ShiftCommandsTestSuite) TestApproveVariance() {
	ctx := context.Background()

	s.Run("approves an open variance once", func() {
		v := shift.DetectVariance(s.shiftID, uuid.New(), 30, 25, nil, s.clock.Now())
		s.Require().NotNil(v)
		s.store.AddVariance(v)
		approver := uuid.New()

		s.Require().NoError(s.commands.ApproveVariance(ctx, v.ID(), approver))
		s.True(v.IsResolved())

		err := s.commands.ApproveVariance(ctx, v.ID(), approver)
		s.Require().ErrorIs(err, commands.ErrVarianceAlreadyApproved)
	})

	s.Run("returns not found for an unknown variance", func() {
		err := s.commands.ApproveVariance(ctx, uuid.New(), uuid.New())
		s.Require().ErrorIs(err, commands.ErrVarianceNotFound)
	})
}

func (s *ShiftCommandsTestSuite) TestDeleteShift() {
	ctx := context.Background()

	p := s.newActivePack("8000001")
	s.Require().NoError(s.commands.RecordOpening(ctx, s.shiftID, p.ID(), "000"))
	s.store.Serials[p.ID()] = []*fake.TicketSerial{
		{SerialNumber: "50218000001000", Sold: true, ShiftID: &s.shiftID},
	}
	v := shift.DetectVariance(s.shiftID, p.ID(), 30, 25, nil, s.clock.Now())
	s.store.AddVariance(v)

	err := s.commands.DeleteShift(ctx, s.shiftID, uuid.New())
	s.Require().NoError(err)

	s.NotContains(s.store.Shifts, s.shiftID)
	s.Empty(s.store.Openings)
	s.Empty(s.store.Variances)
	s.Nil(s.store.Serials[p.ID()][0].ShiftID)
	s.True(s.store.Serials[p.ID()][0].Sold)
}
