package reports

import (
	"time"

	"github.com/google/uuid"
)

// ReferralReport is the container for a unit's working answer. It is
// created when the referral is sent and accumulates versions until one
// of them is published.
type ReferralReport struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReferralID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:referral_id" json:"referral_id"`
	// FinalVersionID is set only at publish time.
	FinalVersionID *uuid.UUID `gorm:"type:uuid;column:final_version_id" json:"final_version_id,omitempty"`
	PublishedAt    *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	// Comment carries the note sent to requesters alongside the
	// published answer.
	Comment   string    `gorm:"type:text;column:comment" json:"comment,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ReferralReport) TableName() string {
	return "referral_report"
}

func (r *ReferralReport) IsPublished() bool {
	return r.PublishedAt != nil
}

// ReferralReportVersion is one draft iteration of the report document.
// Only the last version may be updated, and only by its author; only
// the last version may be published.
type ReferralReportVersion struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReportID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_version_report_number;index;column:report_id" json:"report_id"`
	VersionNumber int       `gorm:"not null;uniqueIndex:ux_version_report_number;column:version_number" json:"version_number"`
	DocumentName  string    `gorm:"not null;column:document_name" json:"document_name"`
	DocumentKey   string    `gorm:"not null;column:document_key" json:"document_key"`
	DocumentSize  int64     `gorm:"not null;default:0;column:document_size" json:"document_size"`
	CreatedByID   uuid.UUID `gorm:"type:uuid;not null;column:created_by_id" json:"created_by_id"`
	CreatedAt     time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ReferralReportVersion) TableName() string {
	return "referral_report_version"
}

// ReferralReportPublishment records the publish action itself: which
// version went out and who sent it.
type ReferralReportPublishment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReportID    uuid.UUID `gorm:"type:uuid;not null;index;column:report_id" json:"report_id"`
	VersionID   uuid.UUID `gorm:"type:uuid;not null;column:version_id" json:"version_id"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null;column:created_by_id" json:"created_by_id"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ReferralReportPublishment) TableName() string {
	return "referral_report_publishment"
}
