package users

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	FirstName string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string    `gorm:"not null;column:last_name" json:"last_name"`
	// Title is the requester's job title, shown on referral detail pages.
	Title       string    `gorm:"column:title" json:"title"`
	UnitName    string    `gorm:"column:unit_name" json:"unit_name"`
	PhoneNumber string    `gorm:"column:phone_number" json:"phone_number"`
	IsStaff     bool      `gorm:"not null;default:false;column:is_staff" json:"is_staff"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
