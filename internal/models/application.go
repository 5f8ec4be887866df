package models

import (
	"time"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// Active reports whether the application still lets the intern file reports.
func (s ApplicationStatus) Active() bool {
	return s == ApplicationPending || s == ApplicationAccepted
}

type Application struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	InternID     int64             `json:"intern_id" gorm:"not null;uniqueIndex:idx_application_intern_internship"`
	InternshipID uint              `json:"internship_id" gorm:"not null;uniqueIndex:idx_application_intern_internship;index"`
	Status       ApplicationStatus `json:"status" gorm:"not null;size:20;index"`

	// Timing
	SubmittedAt time.Time  `json:"submitted_at"`
	DecidedAt   *time.Time `json:"decided_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Intern     User       `json:"intern" gorm:"foreignKey:InternID;constraint:OnDelete:CASCADE"`
	Internship Internship `json:"internship" gorm:"foreignKey:InternshipID;constraint:OnDelete:CASCADE"`
}

func (Application) TableName() string {
	return "applications"
}
