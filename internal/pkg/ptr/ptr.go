package ptr

// To returns a pointer to v. Handy for optional literal fields in tests and
// template records.
func To[T any](v T) *T {
	return &v
}
