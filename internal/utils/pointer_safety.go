package utils

// Value dereferences v, returning the zero value for a nil pointer. Useful
// for the optional dynamics fields on items.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
