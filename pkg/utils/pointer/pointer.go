// Package pointer helps with optional fields, which are pointers.
package pointer

// Ref returns a pointer to a copy of t.
func Ref[T any](t T) *T {
	return &t
}

// Or returns the value pointed by ptr, or fallback when ptr is nil.
func Or[T any](ptr *T, fallback T) T {
	if ptr == nil {
		return fallback
	}
	return *ptr
}
