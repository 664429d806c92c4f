package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/tickethub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
	"github.com/yungbote/tickethub-backend/internal/pkg/pointers"
	"github.com/yungbote/tickethub-backend/internal/realtime"
)

func (f *fixture) userService(t *testing.T) UserService {
	avatars, err := NewAvatarService(testutil.Logger(t))
	if err != nil {
		t.Fatalf("NewAvatarService: %v", err)
	}
	return NewUserService(f.db, testutil.Logger(t), f.users, f.tickets, f.acts, avatars, NewTicketNotifier(f.emitter))
}

func TestUserServiceCreate(t *testing.T) {
	f := newFixture(t)
	svc := f.userService(t)
	admin := f.seedUser(t, "admin@example.com", types.RoleAdmin)
	staff := f.seedUser(t, "staff@example.com", types.RoleStaff)

	_, err := svc.Create(as(staff), CreateUserInput{Email: "x@example.com", Password: "pw"})
	wantStatus(t, err, http.StatusForbidden)
	_, err = svc.Create(as(admin), CreateUserInput{Email: "x@example.com"})
	wantStatus(t, err, http.StatusBadRequest)
	_, err = svc.Create(as(admin), CreateUserInput{Email: "x@example.com", Password: "pw", Role: "OWNER"})
	wantStatus(t, err, http.StatusBadRequest)

	u, err := svc.Create(as(admin), CreateUserInput{Email: "  New.Agent@Example.com ", Password: "s3cret", Name: "New Agent"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "new.agent@example.com" || u.Role != types.RoleStaff || !u.IsActive {
		t.Fatalf("Create: unexpected user %+v", u)
	}
	if cost, err := bcrypt.Cost([]byte(u.Password)); err != nil || cost != PasswordHashCost {
		t.Fatalf("password hash cost: got=%d err=%v", cost, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret")) != nil {
		t.Fatal("password hash does not match")
	}

	_, err = svc.Create(as(admin), CreateUserInput{Email: "NEW.AGENT@example.com", Password: "pw"})
	wantStatus(t, err, http.StatusConflict)
}

func TestUserServiceListCounts(t *testing.T) {
	f := newFixture(t)
	svc := f.userService(t)
	ctx := context.Background()
	admin := f.seedUser(t, "admin@example.com", types.RoleAdmin)
	alice := f.seedUser(t, "alice@example.com", types.RoleStaff)
	testutil.SeedTicket(t, ctx, f.db, admin.ID, testutil.TicketOpts{AssignedTo: &alice.ID})
	testutil.SeedTicket(t, ctx, f.db, admin.ID, testutil.TicketOpts{AssignedTo: &alice.ID})
	testutil.SeedTicket(t, ctx, f.db, admin.ID, testutil.TicketOpts{AssignedTo: &alice.ID, Status: types.TicketStatusClosed})
	testutil.SeedTicket(t, ctx, f.db, admin.ID, testutil.TicketOpts{})

	_, err := svc.List(as(alice))
	wantStatus(t, err, http.StatusForbidden)

	rows, err := svc.List(as(admin))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("List: got %d users", len(rows))
	}
	for _, r := range rows {
		switch r.ID {
		case alice.ID:
			want := TicketCounts{Total: 3, Open: 2, Closed: 1}
			if r.TicketCounts != want {
				t.Fatalf("alice counts: got=%+v want=%+v", r.TicketCounts, want)
			}
		case admin.ID:
			if r.TicketCounts != (TicketCounts{}) {
				t.Fatalf("admin counts: got=%+v", r.TicketCounts)
			}
		}
	}

	agents, err := svc.ListAgents(as(alice))
	if err != nil || len(agents) != 2 {
		t.Fatalf("ListAgents: got=%d err=%v", len(agents), err)
	}
}

func TestUserServiceUpdate(t *testing.T) {
	f := newFixture(t)
	svc := f.userService(t)
	ctx := context.Background()
	admin := f.seedUser(t, "admin@example.com", types.RoleAdmin)
	alice := f.seedUser(t, "alice@example.com", types.RoleStaff)
	open := testutil.SeedTicket(t, ctx, f.db, admin.ID, testutil.TicketOpts{AssignedTo: &alice.ID})
	done := testutil.SeedTicket(t, ctx, f.db, admin.ID, testutil.TicketOpts{AssignedTo: &alice.ID, Status: types.TicketStatusResolved})

	_, err := svc.Update(as(admin), admin.ID, UpdateUserInput{Role: pointers.String("STAFF")})
	wantStatus(t, err, http.StatusBadRequest)
	_, err = svc.Update(as(admin), admin.ID, UpdateUserInput{IsActive: pointers.Ptr(false)})
	wantStatus(t, err, http.StatusBadRequest)
	_, err = svc.Update(as(admin), uuid.New(), UpdateUserInput{Name: pointers.String("x")})
	wantStatus(t, err, http.StatusNotFound)
	_, err = svc.Update(as(alice), admin.ID, UpdateUserInput{Name: pointers.String("x")})
	wantStatus(t, err, http.StatusForbidden)

	u, err := svc.Update(as(admin), alice.ID, UpdateUserInput{Role: pointers.String("admin"), Name: pointers.String(" Alice A ")})
	if err != nil {
		t.Fatalf("Update role: %v", err)
	}
	if u.Role != types.RoleAdmin || u.Name != "Alice A" {
		t.Fatalf("Update role: got %+v", u)
	}

	u, err = svc.Update(as(admin), alice.ID, UpdateUserInput{IsActive: pointers.Ptr(false)})
	if err != nil {
		t.Fatalf("Update deactivate: %v", err)
	}
	if u.IsActive {
		t.Fatal("Update deactivate: user still active")
	}

	dbc := dbctx.Context{Ctx: ctx}
	got, _ := f.tickets.GetByID(dbc, open.ID)
	if got.AssignedToID != nil {
		t.Fatalf("open ticket should be unassigned, got %v", got.AssignedToID)
	}
	if len(got.Activities) != 1 || got.Activities[0].Action != types.ActionUnassigned {
		t.Fatalf("unassigned activity missing: %+v", got.Activities)
	}
	got, _ = f.tickets.GetByID(dbc, done.ID)
	if got.AssignedToID == nil || *got.AssignedToID != alice.ID {
		t.Fatal("resolved ticket should keep its assignee")
	}
	if n := len(f.emitter.events(realtime.SSEEventTicketUpdated)); n == 0 {
		t.Fatal("expected TicketUpdated events for released tickets")
	}
}

func TestUserServiceDelete(t *testing.T) {
	f := newFixture(t)
	svc := f.userService(t)
	ctx := context.Background()
	admin := f.seedUser(t, "admin@example.com", types.RoleAdmin)
	alice := f.seedUser(t, "alice@example.com", types.RoleStaff)
	tk := testutil.SeedTicket(t, ctx, f.db, admin.ID, testutil.TicketOpts{AssignedTo: &alice.ID, Status: types.TicketStatusInProgress})

	wantStatus(t, svc.Delete(as(admin), admin.ID), http.StatusBadRequest)
	wantStatus(t, svc.Delete(as(alice), admin.ID), http.StatusForbidden)
	wantStatus(t, svc.Delete(as(admin), uuid.New()), http.StatusNotFound)

	if err := svc.Delete(as(admin), alice.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	wantStatus(t, svc.Delete(as(admin), alice.ID), http.StatusNotFound)

	got, _ := f.tickets.GetByID(dbctx.Context{Ctx: ctx}, tk.ID)
	if got.AssignedToID != nil {
		t.Fatal("deleted user's ticket should be unassigned")
	}

	// the avatar still renders for historical references
	raw, err := svc.Avatar(as(admin), alice.ID)
	if err != nil || len(raw) == 0 {
		t.Fatalf("Avatar of deleted user: len=%d err=%v", len(raw), err)
	}
	_, err = svc.Avatar(as(admin), uuid.New())
	wantStatus(t, err, http.StatusNotFound)
}

func TestUserServiceGetMe(t *testing.T) {
	f := newFixture(t)
	svc := f.userService(t)
	alice := f.seedUser(t, "alice@example.com", types.RoleStaff)

	me, err := svc.GetMe(as(alice))
	if err != nil || me.ID != alice.ID {
		t.Fatalf("GetMe: got=%+v err=%v", me, err)
	}
	_, err = svc.GetMe(context.Background())
	wantStatus(t, err, http.StatusUnauthorized)
}
