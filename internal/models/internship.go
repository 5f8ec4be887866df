package models

import (
	"time"

	"gorm.io/datatypes"
)

type Internship struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"not null;size:200;index"`
	Description string          `json:"description" gorm:"type:text"`
	StartDate   *datatypes.Date `json:"start_date"`
	EndDate     *datatypes.Date `json:"end_date"`

	// Metadata
	CreatedByAdminID int64     `json:"created_by_admin_id" gorm:"not null;index"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relations
	Assignments []InternshipAssignment `json:"assignments" gorm:"foreignKey:InternshipID;constraint:OnDelete:CASCADE"`
}

func (Internship) TableName() string {
	return "internships"
}

// SupervisorIDs returns the ids of every supervisor assigned to the internship.
func (i *Internship) SupervisorIDs() []int64 {
	ids := make([]int64, 0, len(i.Assignments))
	for _, a := range i.Assignments {
		ids = append(ids, a.SupervisorID)
	}
	return ids
}

// InternshipAssignment links a supervisor to an internship they oversee.
type InternshipAssignment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	InternshipID uint      `json:"internship_id" gorm:"not null;uniqueIndex:idx_assignment_internship_supervisor"`
	SupervisorID int64     `json:"supervisor_id" gorm:"not null;uniqueIndex:idx_assignment_internship_supervisor;index"`
	CreatedAt    time.Time `json:"created_at"`

	Supervisor User `json:"supervisor" gorm:"foreignKey:SupervisorID;constraint:OnDelete:CASCADE"`
}

func (InternshipAssignment) TableName() string {
	return "internship_assignments"
}
