// Package seed loads the demo fixture used for local development.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/data/repos"
	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
	"github.com/yungbote/tickethub-backend/internal/services"
)

//go:embed fixture.yaml
var defaultFixture []byte

type Fixture struct {
	Users   []FixtureUser   `yaml:"users"`
	Tickets []FixtureTicket `yaml:"tickets"`
}

type FixtureUser struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type FixtureTicket struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Status      string            `yaml:"status"`
	Priority    string            `yaml:"priority"`
	CreatedBy   string            `yaml:"created_by"`
	AssignedTo  string            `yaml:"assigned_to"`
	Activities  []FixtureActivity `yaml:"activities"`
}

// FixtureActivity sets NewValueUser to record a user's id as the new value.
type FixtureActivity struct {
	Action       string `yaml:"action"`
	By           string `yaml:"by"`
	NewValue     string `yaml:"new_value"`
	NewValueUser string `yaml:"new_value_user"`
}

type Result struct {
	UsersCreated   int
	TicketsCreated int
}

func DefaultFixture() (*Fixture, error) {
	return ParseFixture(defaultFixture)
}

func ParseFixture(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// Seeder applies a fixture. Users are matched by email and tickets by
// title, so running it twice changes nothing.
type Seeder struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	ticketRepo   repos.TicketRepo
	activityRepo repos.ActivityRepo
	hashCost     int
}

func NewSeeder(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, ticketRepo repos.TicketRepo, activityRepo repos.ActivityRepo) *Seeder {
	return &Seeder{
		db:           db,
		log:          log.With("service", "Seeder"),
		userRepo:     userRepo,
		ticketRepo:   ticketRepo,
		activityRepo: activityRepo,
		hashCost:     services.PasswordHashCost,
	}
}

func (s *Seeder) Apply(ctx context.Context, f *Fixture) (Result, error) {
	var res Result
	if f == nil {
		return res, fmt.Errorf("nil fixture")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		users, created, err := s.ensureUsers(dbc, f.Users)
		if err != nil {
			return err
		}
		res.UsersCreated = created

		for _, ft := range f.Tickets {
			ok, err := s.ensureTicket(dbc, users, ft)
			if err != nil {
				return fmt.Errorf("ticket %q: %w", ft.Title, err)
			}
			if ok {
				res.TicketsCreated++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.log.Info("Seed applied", "users_created", res.UsersCreated, "tickets_created", res.TicketsCreated)
	return res, nil
}

func (s *Seeder) ensureUsers(dbc dbctx.Context, fixtures []FixtureUser) (map[string]*types.User, int, error) {
	emails := make([]string, 0, len(fixtures))
	for _, fu := range fixtures {
		emails = append(emails, normalizeEmail(fu.Email))
	}
	existing, err := s.userRepo.GetByEmails(dbc, emails)
	if err != nil {
		return nil, 0, fmt.Errorf("load users: %w", err)
	}
	byEmail := make(map[string]*types.User, len(fixtures))
	for _, u := range existing {
		byEmail[u.Email] = u
	}

	var missing []*types.User
	for _, fu := range fixtures {
		email := normalizeEmail(fu.Email)
		if _, ok := byEmail[email]; ok {
			continue
		}
		role, ok := types.ParseRole(fu.Role)
		if !ok {
			return nil, 0, fmt.Errorf("user %s: unknown role %q", email, fu.Role)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(fu.Password), s.hashCost)
		if err != nil {
			return nil, 0, fmt.Errorf("hash password for %s: %w", email, err)
		}
		u := &types.User{
			ID:       uuid.New(),
			Email:    email,
			Name:     strings.TrimSpace(fu.Name),
			Password: string(hash),
			Role:     role,
			IsActive: true,
		}
		missing = append(missing, u)
		byEmail[email] = u
	}
	if len(missing) > 0 {
		if _, err := s.userRepo.Create(dbc, missing); err != nil {
			return nil, 0, fmt.Errorf("create users: %w", err)
		}
	}
	return byEmail, len(missing), nil
}

func (s *Seeder) ensureTicket(dbc dbctx.Context, users map[string]*types.User, ft FixtureTicket) (bool, error) {
	title := strings.TrimSpace(ft.Title)
	existing, err := s.ticketRepo.FindByTitle(dbc, title)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	lookup := func(email string) (*types.User, error) {
		u := users[normalizeEmail(email)]
		if u == nil {
			return nil, fmt.Errorf("unknown user %q", email)
		}
		return u, nil
	}
	creator, err := lookup(ft.CreatedBy)
	if err != nil {
		return false, err
	}
	status, ok := types.ParseTicketStatus(ft.Status)
	if !ok {
		return false, fmt.Errorf("unknown status %q", ft.Status)
	}
	priority, ok := types.ParseTicketPriority(ft.Priority)
	if !ok {
		return false, fmt.Errorf("unknown priority %q", ft.Priority)
	}
	t := &types.Ticket{
		ID:          uuid.New(),
		Title:       title,
		Description: strings.TrimSpace(ft.Description),
		Status:      status,
		Priority:    priority,
		CreatedByID: creator.ID,
	}
	if ft.AssignedTo != "" {
		assignee, err := lookup(ft.AssignedTo)
		if err != nil {
			return false, err
		}
		t.AssignedToID = &assignee.ID
	}
	if _, err := s.ticketRepo.Create(dbc, []*types.Ticket{t}); err != nil {
		return false, err
	}

	activities := make([]*types.Activity, 0, len(ft.Activities))
	for _, fa := range ft.Activities {
		actor, err := lookup(fa.By)
		if err != nil {
			return false, err
		}
		a := &types.Activity{
			ID:       uuid.New(),
			TicketID: t.ID,
			UserID:   actor.ID,
			Action:   fa.Action,
		}
		switch {
		case fa.NewValueUser != "":
			target, err := lookup(fa.NewValueUser)
			if err != nil {
				return false, err
			}
			v := target.ID.String()
			a.NewValue = &v
		case fa.NewValue != "":
			v := fa.NewValue
			a.NewValue = &v
		}
		activities = append(activities, a)
	}
	if len(activities) > 0 {
		if _, err := s.activityRepo.Create(dbc, activities); err != nil {
			return false, err
		}
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
