package shift

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrVarianceAlreadyApproved = errors.New("variance is already approved")

// Variance is a signed disagreement between the computed ticket count and an
// independently counted total: positive means overage, negative shortage.
// It stays unresolved until someone approves it.
type Variance struct {
	id         uuid.UUID
	shiftID    uuid.UUID
	packID     uuid.UUID
	expected   int
	actual     int
	difference int
	reason     *string
	approvedBy *uuid.UUID
	approvedAt *time.Time
	createdAt  time.Time
}

// DetectVariance returns nil when the counts agree. It never approves.
func DetectVariance(shiftID, packID uuid.UUID, expected, actual int, reason *string, at time.Time) *Variance {
	if expected == actual {
		return nil
	}
	return &Variance{
		id:         uuid.New(),
		shiftID:    shiftID,
		packID:     packID,
		expected:   expected,
		actual:     actual,
		difference: actual - expected,
		reason:     reason,
		createdAt:  at,
	}
}

func ReconstructVariance(
	id, shiftID, packID uuid.UUID,
	expected, actual, difference int,
	reason *string,
	approvedBy *uuid.UUID, approvedAt *time.Time,
	createdAt time.Time,
) *Variance {
	return &Variance{
		id:         id,
		shiftID:    shiftID,
		packID:     packID,
		expected:   expected,
		actual:     actual,
		difference: difference,
		reason:     reason,
		approvedBy: approvedBy,
		approvedAt: approvedAt,
		createdAt:  createdAt,
	}
}

func (v *Variance) Approve(by uuid.UUID, at time.Time) error {
	if v.approvedBy != nil {
		return ErrVarianceAlreadyApproved
	}
	v.approvedBy = &by
	v.approvedAt = &at
	return nil
}

func (v *Variance) IsResolved() bool {
	return v.approvedBy != nil
}

func (v *Variance) ID() uuid.UUID          { return v.id }
func (v *Variance) ShiftID() uuid.UUID     { return v.shiftID }
func (v *Variance) PackID() uuid.UUID      { return v.packID }
func (v *Variance) Expected() int          { return v.expected }
func (v *Variance) Actual() int            { return v.actual }
func (v *Variance) Difference() int        { return v.difference }
func (v *Variance) Reason() *string        { return v.reason }
func (v *Variance) ApprovedBy() *uuid.UUID { return v.approvedBy }
func (v *Variance) ApprovedAt() *time.Time { return v.approvedAt }
func (v *Variance) CreatedAt() time.Time   { return v.createdAt }
