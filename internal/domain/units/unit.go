package units

import (
	"time"

	"github.com/google/uuid"
)

// Membership roles inside a unit. Owners and admins receive unit-facing
// notifications; plain members only act on referrals assigned to them.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Unit struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Unit) TableName() string {
	return "unit"
}

type UnitMembership struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_membership_user_unit;column:user_id" json:"user_id"`
	UnitID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_membership_user_unit;index;column:unit_id" json:"unit_id"`
	Role      string    `gorm:"not null;column:role" json:"role"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UnitMembership) TableName() string {
	return "unit_membership"
}

// IsOwnerOrAdmin reports whether the membership grants unit management
// rights (notification targeting, validation granting).
func (m *UnitMembership) IsOwnerOrAdmin() bool {
	return m.Role == RoleOwner || m.Role == RoleAdmin
}

type Topic struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	UnitID    uuid.UUID `gorm:"type:uuid;not null;index;column:unit_id" json:"unit_id"`
	IsActive  bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`
	// Path orders topics in pick lists, mirroring the tree position.
	Path      string    `gorm:"column:path" json:"path"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Topic) TableName() string {
	return "topic"
}
