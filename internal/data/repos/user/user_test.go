package user

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/tickethub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	created, err := repo.Create(dbc, []*types.User{
		{
			Email:    "userrepo@example.com",
			Name:     "Repo User",
			Password: "pw",
			Role:     types.RoleStaff,
			IsActive: true,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result: %+v", created)
	}

	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Email != "userrepo@example.com" {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID (missing): got=%+v err=%v", missing, err)
	}

	gotByEmails, err := repo.GetByEmails(dbc, []string{created[0].Email})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(gotByEmails) != 1 || gotByEmails[0].ID != created[0].ID {
		t.Fatalf("GetByEmails: unexpected result: %+v", gotByEmails)
	}

	_, err = repo.Create(dbc, []*types.User{{Email: "userrepo@example.com", Password: "pw", Role: types.RoleStaff}})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("Create duplicate: expected ErrEmailTaken, got %v", err)
	}

	if err := repo.UpdateFields(dbc, created[0].ID, map[string]interface{}{"role": types.RoleAdmin, "is_active": false}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ = repo.GetByID(dbc, created[0].ID)
	if got.Role != types.RoleAdmin || got.IsActive {
		t.Fatalf("UpdateFields: unexpected result: %+v", got)
	}

	active, err := repo.ListActive(dbc)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("ListActive: expected no active users, got %d", len(active))
	}

	ok, err := repo.SoftDelete(dbc, created[0].ID)
	if err != nil || !ok {
		t.Fatalf("SoftDelete: ok=%v err=%v", ok, err)
	}
	ok, err = repo.SoftDelete(dbc, created[0].ID)
	if err != nil || ok {
		t.Fatalf("SoftDelete twice: ok=%v err=%v", ok, err)
	}

	summaries, err := repo.GetSummaries(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetSummaries: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Name != "Repo User" {
		t.Fatalf("GetSummaries: deleted user should still resolve, got %+v", summaries)
	}

	all, err := repo.List(dbc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("List: deleted users should be hidden, got %d", len(all))
	}

	exists, err := repo.EmailExists(dbc, created[0].Email)
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: soft-deleted email should still be taken")
	}

	exists, err = repo.EmailExists(dbc, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("EmailExists (missing): %v", err)
	}
	if exists {
		t.Fatalf("EmailExists (missing): expected false")
	}
}

func TestUserRepoUsesTx(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	tx := db.Begin()
	if _, err := repo.Create(dbctx.Context{Ctx: ctx, Tx: tx}, []*types.User{
		{Email: "rollback@example.com", Password: "pw", Role: types.RoleStaff, IsActive: true},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := tx.Rollback().Error; err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	exists, err := repo.EmailExists(dbctx.Context{Ctx: ctx}, "rollback@example.com")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if exists {
		t.Fatal("rolled back user should not exist")
	}
}
