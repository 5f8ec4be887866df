package models

import (
	"time"
)

type ReportStatus string

const (
	ReportSubmitted ReportStatus = "submitted"
	ReportReviewed  ReportStatus = "reviewed"
)

// Report is an intern's periodic progress report with its uploaded PDF.
type Report struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	InternshipID uint   `json:"internship_id" gorm:"not null;index"`
	InternID     int64  `json:"intern_id" gorm:"not null;index"`
	PeriodLabel  string `json:"period_label" gorm:"not null;size:100"`
	Notes        string `json:"notes" gorm:"type:text"`

	// Stored file
	FilePath     string `json:"-" gorm:"not null;size:500"`
	OriginalName string `json:"original_name" gorm:"size:255"`
	FileSize     int64  `json:"file_size"`
	PageCount    int    `json:"page_count"`

	// Review
	Status      ReportStatus `json:"status" gorm:"not null;size:20;index"`
	SubmittedAt time.Time    `json:"submitted_at" gorm:"index"`
	ReviewedAt  *time.Time   `json:"reviewed_at"`
	ReviewedBy  *int64       `json:"reviewed_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Intern     User       `json:"intern" gorm:"foreignKey:InternID;constraint:OnDelete:CASCADE"`
	Internship Internship `json:"internship" gorm:"foreignKey:InternshipID;constraint:OnDelete:CASCADE"`
}

func (Report) TableName() string {
	return "reports"
}

// AllModels returns every table managed by migrations, parents first.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Internship{},
		&InternshipAssignment{},
		&Application{},
		&Report{},
	}
}
