package pointers

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDHelpers(t *testing.T) {
	id := uuid.New()
	nilID := uuid.Nil

	if got := UUIDString(&id); got == nil || *got != id.String() {
		t.Fatalf("UUIDString: got=%v", got)
	}
	if UUIDString(nil) != nil || UUIDString(&nilID) != nil {
		t.Fatalf("UUIDString: nil ids should map to nil")
	}
	if !SameUUID(nil, &nilID) {
		t.Fatalf("SameUUID: nil and uuid.Nil should match")
	}
	if SameUUID(&id, nil) {
		t.Fatalf("SameUUID: set and unset should differ")
	}
	if Deref[int](nil) != 0 || Deref(Ptr(7)) != 7 {
		t.Fatalf("Deref: unexpected values")
	}
}
