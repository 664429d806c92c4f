package seed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/tickethub-backend/internal/data/repos"
	"github.com/yungbote/tickethub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
)

func TestApplyDefaultFixtureIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(db, log)
	ticketRepo := repos.NewTicketRepo(db, log)
	activityRepo := repos.NewActivityRepo(db, log)
	s := NewSeeder(db, log, userRepo, ticketRepo, activityRepo)
	s.hashCost = bcrypt.MinCost

	f, err := DefaultFixture()
	if err != nil {
		t.Fatalf("DefaultFixture: %v", err)
	}
	ctx := context.Background()

	res, err := s.Apply(ctx, f)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.UsersCreated != 3 || res.TicketsCreated != 3 {
		t.Fatalf("first apply: got=%+v", res)
	}

	res, err = s.Apply(ctx, f)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if res.UsersCreated != 0 || res.TicketsCreated != 0 {
		t.Fatalf("second apply: got=%+v", res)
	}

	dbc := dbctx.Context{Ctx: ctx}
	users, err := userRepo.GetByEmails(dbc, []string{"admin@example.com", "staff1@example.com"})
	if err != nil || len(users) != 2 {
		t.Fatalf("GetByEmails: got=%d err=%v", len(users), err)
	}
	byEmail := map[string]*types.User{}
	for _, u := range users {
		byEmail[u.Email] = u
	}
	if byEmail["admin@example.com"].Role != types.RoleAdmin {
		t.Fatalf("admin role: got=%s", byEmail["admin@example.com"].Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(byEmail["staff1@example.com"].Password), []byte("staff123")); err != nil {
		t.Fatalf("staff password: %v", err)
	}

	tickets, total, err := ticketRepo.List(dbc, repos.TicketListFilter{Limit: 10})
	if err != nil || total != 3 {
		t.Fatalf("List: total=%d err=%v", total, err)
	}
	var login *types.Ticket
	for _, tk := range tickets {
		if tk.Title == "Login button not working" {
			login = tk
		}
	}
	if login == nil || login.AssignedToID == nil || *login.AssignedToID != byEmail["staff1@example.com"].ID {
		t.Fatalf("login ticket assignment: got=%+v", login)
	}

	acts, err := activityRepo.ListByTicket(dbc, login.ID)
	if err != nil || len(acts) != 2 {
		t.Fatalf("ListByTicket: got=%d err=%v", len(acts), err)
	}
}

func TestApplyMatchesTitleAmongManySimilar(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	s := NewSeeder(db, log, repos.NewUserRepo(db, log), repos.NewTicketRepo(db, log), repos.NewActivityRepo(db, log))
	s.hashCost = bcrypt.MinCost
	ctx := context.Background()

	f, err := DefaultFixture()
	if err != nil {
		t.Fatalf("DefaultFixture: %v", err)
	}
	if _, err := s.Apply(ctx, f); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// newer tickets whose titles contain a fixture title
	admin := testutil.SeedUser(t, ctx, db, "someone@example.com", types.RoleAdmin)
	later := time.Now().Add(time.Hour)
	for i := 0; i < 120; i++ {
		testutil.SeedTicket(t, ctx, db, admin.ID, testutil.TicketOpts{
			Title:     fmt.Sprintf("Update documentation %d", i),
			CreatedAt: later.Add(time.Duration(i) * time.Minute),
		})
	}

	res, err := s.Apply(ctx, f)
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if res.TicketsCreated != 0 {
		t.Fatalf("second apply duplicated tickets: got=%+v", res)
	}
}

func TestApplyRollsBackOnUnknownUser(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	s := NewSeeder(db, log, repos.NewUserRepo(db, log), repos.NewTicketRepo(db, log), repos.NewActivityRepo(db, log))
	s.hashCost = bcrypt.MinCost

	f, err := ParseFixture([]byte(`
users:
  - email: a@example.com
    password: pw
    role: STAFF
tickets:
  - title: Orphan
    status: OPEN
    priority: LOW
    created_by: nobody@example.com
`))
	if err != nil {
		t.Fatalf("ParseFixture: %v", err)
	}
	if _, err := s.Apply(context.Background(), f); err == nil {
		t.Fatalf("expected error for unknown creator")
	}

	users, err := s.userRepo.List(dbctx.Context{Ctx: context.Background()})
	if err != nil || len(users) != 0 {
		t.Fatalf("rollback: got=%d users err=%v", len(users), err)
	}
}
