package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

// ParseRole accepts any casing; the empty string is not a role.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleStaff:
		return RoleStaff, true
	}
	return "", false
}

type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Name      string         `gorm:"column:name" json:"name"`
	Password  string         `gorm:"not null;column:password" json:"-"`
	Role      Role           `gorm:"not null;column:role;index" json:"role"`
	IsActive  bool           `gorm:"not null;column:is_active" json:"isActive"`
	CreatedAt time.Time      `gorm:"not null;column:created_at" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null;column:updated_at" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName is the name shown on charts and pickers.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	return u.Email
}

func (u *User) Summary() *Summary {
	if u == nil {
		return nil
	}
	return &Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Summary is the public slice of a user embedded in tickets and activities.
// It reads the user table directly, so soft-deleted users still resolve.
type Summary struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"column:name" json:"name"`
	Email string    `gorm:"column:email" json:"email"`
}

func (Summary) TableName() string { return "user" }

func (s *Summary) DisplayName() string {
	if s == nil {
		return ""
	}
	if n := strings.TrimSpace(s.Name); n != "" {
		return n
	}
	return s.Email
}
