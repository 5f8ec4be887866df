package services

import (
	"errors"
	"fmt"
)

// ===== DOMAIN ERRORS =====

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailInUse         = errors.New("Email already in use")
	ErrCannotDeleteSelf   = errors.New("You cannot delete your own account")
	ErrCannotDeleteAdmin  = errors.New("Admin accounts cannot be deleted")
	ErrCannotDemoteAdmin  = errors.New("The role of an admin account cannot be changed")
	ErrAdminExists        = errors.New("an admin account already exists")
	ErrNotAnIntern        = errors.New("only intern accounts need approval")
	ErrNotASupervisor     = errors.New("Selected user is not a supervisor")
	ErrInternshipNotFound = errors.New("internship not found")

	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidDecision     = errors.New("Invalid decision")

	ErrReportNotFound  = errors.New("report not found")
	ErrNotApplied      = errors.New("You have not applied to this internship")
	ErrReportFieldsReq = errors.New("All fields are required")
	ErrOnlyPDF         = errors.New("Only PDF allowed")
	ErrFileTooLarge    = errors.New("File is too large")
	ErrUploadFailed    = errors.New("Upload failed")
)

// PermissionError reports an action the actor may not perform on a resource.
type PermissionError struct {
	UserID       int64
	ResourceID   uint
	ResourceType string
	Action       string
	Reason       string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d may not %s %s %d: %s", e.UserID, e.Action, e.ResourceType, e.ResourceID, e.Reason)
}

func NewPermissionError(userID int64, resourceID uint, resourceType, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:       userID,
		ResourceID:   resourceID,
		ResourceType: resourceType,
		Action:       action,
		Reason:       reason,
	}
}

func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// UserMessage returns text that is safe to show on a page for known domain
// errors, and false for anything else.
func UserMessage(err error) (string, bool) {
	known := []error{
		ErrUserNotFound, ErrEmailInUse, ErrCannotDeleteSelf, ErrCannotDeleteAdmin, ErrCannotDemoteAdmin,
		ErrAdminExists, ErrNotAnIntern, ErrNotASupervisor, ErrInternshipNotFound,
		ErrApplicationNotFound, ErrInvalidDecision, ErrReportNotFound, ErrNotApplied,
		ErrReportFieldsReq, ErrOnlyPDF, ErrFileTooLarge, ErrUploadFailed,
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return k.Error(), true
		}
	}
	return "", false
}
