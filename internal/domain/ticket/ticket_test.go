package ticket

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"OPEN":         StatusOpen,
		" in_progress": StatusInProgress,
		"resolved":     StatusResolved,
		"Closed":       StatusClosed,
	}
	for raw, want := range cases {
		got, ok := ParseStatus(raw)
		if !ok || got != want {
			t.Fatalf("ParseStatus(%q): got=%q ok=%v want=%q", raw, got, ok, want)
		}
	}
	if _, ok := ParseStatus("PENDING"); ok {
		t.Fatal("ParseStatus(PENDING): expected rejection")
	}
	if _, ok := ParseStatus(""); ok {
		t.Fatal("ParseStatus(empty): expected rejection")
	}
}

func TestParsePriority(t *testing.T) {
	if p, ok := ParsePriority("urgent"); !ok || p != PriorityUrgent {
		t.Fatalf("ParsePriority(urgent): got=%q ok=%v", p, ok)
	}
	if _, ok := ParsePriority("CRITICAL"); ok {
		t.Fatal("ParsePriority(CRITICAL): expected rejection")
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusOpen:       false,
		StatusInProgress: false,
		StatusResolved:   true,
		StatusClosed:     true,
	}
	for s, want := range terminal {
		if s.IsTerminal() != want {
			t.Fatalf("%s.IsTerminal(): want %v", s, want)
		}
	}
}

func TestInScope(t *testing.T) {
	creator := uuid.New()
	assignee := uuid.New()
	other := uuid.New()
	tk := &Ticket{CreatedByID: creator, AssignedToID: &assignee}

	if !tk.InScope(creator) || !tk.InScope(assignee) {
		t.Fatal("creator and assignee should be in scope")
	}
	if tk.InScope(other) {
		t.Fatal("unrelated user should not be in scope")
	}
	if tk.InScope(uuid.Nil) {
		t.Fatal("nil user should not be in scope")
	}
	unassigned := &Ticket{CreatedByID: creator}
	if unassigned.InScope(other) {
		t.Fatal("unassigned ticket should only be visible to its creator")
	}
}
