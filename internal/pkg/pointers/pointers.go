package pointers

import "github.com/google/uuid"

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

func String(v string) *string { return &v }

// Deref returns *p, or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// UUIDString renders an optional id for activity values; nil stays nil.
func UUIDString(id *uuid.UUID) *string {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	s := id.String()
	return &s
}

// SameUUID compares optional ids, treating nil and uuid.Nil alike.
func SameUUID(a, b *uuid.UUID) bool {
	av, bv := Deref(a), Deref(b)
	return av == bv
}
