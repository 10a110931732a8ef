package serial

// TicketCount returns the number of tickets sold between two observed
// serials, counting both endpoints: a pack opened at 000 and closed at 014
// has sold 15 tickets, not 14.
//
// An inverted range yields 0 rather than a negative count. Callers are
// expected to reject inverted input before any money math; the clamp is
// belt-and-suspenders, not validation.
func TicketCount(opening, closing Serial) int {
	count := closing.Int() - opening.Int() + 1
	if count < 0 {
		return 0
	}
	return count
}
