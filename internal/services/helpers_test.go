package services

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/analytics"
	"github.com/yungbote/tickethub-backend/internal/data/repos"
	"github.com/yungbote/tickethub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/pkg/ctxutil"
	"github.com/yungbote/tickethub-backend/internal/platform/apierr"
	"github.com/yungbote/tickethub-backend/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) events(event realtime.SSEEvent) []realtime.SSEMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []realtime.SSEMessage
	for _, m := range e.msgs {
		if m.Event == event {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	db      *gorm.DB
	users   repos.UserRepo
	tickets repos.TicketRepo
	acts    repos.ActivityRepo
	emitter *recordingEmitter
	cal     analytics.Calendar
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &fixture{
		db:      db,
		users:   repos.NewUserRepo(db, log),
		tickets: repos.NewTicketRepo(db, log),
		acts:    repos.NewActivityRepo(db, log),
		emitter: &recordingEmitter{},
		cal:     analytics.NewCalendar(nil),
	}
}

func (f *fixture) ticketService(t *testing.T) TicketService {
	return NewTicketService(f.db, testutil.Logger(t), f.tickets, f.acts, f.users, NewTicketNotifier(f.emitter), f.cal, nil)
}

func (f *fixture) seedUser(t *testing.T, email string, role types.Role) *types.User {
	return testutil.SeedUser(t, context.Background(), f.db, email, role)
}

func as(u *types.User) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
	})
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected status %d, got nil error", status)
	}
	if got := apierr.StatusOf(err); got != status {
		t.Fatalf("status: got=%d want=%d (err=%v)", got, status, err)
	}
}
