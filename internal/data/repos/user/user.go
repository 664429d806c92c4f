package user

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/tickethub-backend/internal/data/dberr"
	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

// ErrEmailTaken is returned by Create when the email is already registered,
// including by a soft-deleted user.
var ErrEmailTaken = errors.New("email already registered")

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error)
	GetSummaries(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserSummary, error)
	EmailExists(dbc dbctx.Context, userEmail string) (bool, error)
	List(dbc dbctx.Context) ([]*types.User, error)
	ListActive(dbc dbctx.Context) ([]*types.User, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	SoftDelete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}

	if len(users) == 0 {
		return []*types.User{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&users).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", ErrEmailTaken, err)
		}
		return nil, err
	}

	return users, nil
}

// GetByID returns nil, nil when the user does not exist.
func (ur *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := ur.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.User

	if len(userIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.User
	if len(userEmails) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("email IN ?", userEmails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetSummaries ignores soft deletion so historical assignees keep their names.
func (ur *userRepo) GetSummaries(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserSummary, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	results := []*types.UserSummary{}
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// EmailExists also sees soft-deleted users, since the unique index does.
func (ur *userRepo) EmailExists(dbc dbctx.Context, userEmail string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}

	var count int64

	if err := transaction.WithContext(dbc.Ctx).
		Unscoped().
		Model(&types.User{}).
		Where("email = ?", userEmail).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) List(dbc dbctx.Context) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	var results []*types.User
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) ListActive(dbc dbctx.Context) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	var results []*types.User
	if err := transaction.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Order("email ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SoftDelete reports false when no live user matched.
func (ur *userRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
