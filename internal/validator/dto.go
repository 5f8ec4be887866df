package validator

// Field names double as the user-facing label in messages, so "Name",
// "Email", "Password" and "Role" must keep these exact spellings.

// RegisterRequest carries self-service and administrative registration input.
// Fields are validated in declaration order.
type RegisterRequest struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"email"`
	Password string `form:"password" validate:"min=6,bcrypt_len"`
	Role     string `form:"role" validate:"user_role"`
}

// UserCreateRequest is the admin "create" action on the users page
type UserCreateRequest struct {
	Name       string `form:"name" validate:"required,max=100"`
	Email      string `form:"email" validate:"email,max=255"`
	Password   string `form:"password" validate:"min=6,bcrypt_len"`
	Role       string `form:"role" validate:"user_role"`
	IsApproved bool   `form:"is_approved"`
}

// UserUpdateRequest is the admin "update" action on the users page
type UserUpdateRequest struct {
	Name       string `form:"name" validate:"required,max=100"`
	Email      string `form:"email" validate:"email,max=255"`
	Role       string `form:"role" validate:"user_role"`
	IsApproved bool   `form:"is_approved"`
}

// PasswordResetRequest is the operator password reset
type PasswordResetRequest struct {
	Email    string `validate:"email"`
	Password string `validate:"min=6,bcrypt_len"`
}

// InternshipCreateRequest is the admin internship form; dates are optional.
type InternshipCreateRequest struct {
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description" validate:"max=5000"`
	StartDate   string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// ReportSubmitRequest holds the non-file fields of a report upload
type ReportSubmitRequest struct {
	InternshipID uint   `form:"internship_id" validate:"required"`
	PeriodLabel  string `form:"period_label" validate:"required,max=100"`
	Notes        string `form:"notes" validate:"max=5000"`
}

// ApplicationDecisionRequest is the admin accept/reject form
type ApplicationDecisionRequest struct {
	ApplicationID uint   `form:"application_id" validate:"required"`
	Decision      string `form:"decision" validate:"application_decision"`
}
