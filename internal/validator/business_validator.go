package validator

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shaderl/internship-service/internal/models"
)

const DateLayout = "2006-01-02"

// MaxPasswordBytes is bcrypt's input limit. It counts bytes, not runes.
const MaxPasswordBytes = 72

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	bv := &BusinessValidator{validate: validator.New()}
	bv.registerBusinessRules()
	return bv
}

// Validate validates struct tags for any request
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateRegistration trims the free-text fields in place and returns every
// structural error at once, in the order name, email, password, role.
func (bv *BusinessValidator) ValidateRegistration(req *RegisterRequest) ValidationErrors {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateUserCreate(req *UserCreateRequest) ValidationErrors {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateUserUpdate(req *UserUpdateRequest) ValidationErrors {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidatePasswordReset(req *PasswordResetRequest) ValidationErrors {
	req.Email = strings.TrimSpace(req.Email)
	return bv.Validate(req)
}

// ValidateInternshipCreate adds the end-not-before-start rule on top of tags.
func (bv *BusinessValidator) ValidateInternshipCreate(req *InternshipCreateRequest) ValidationErrors {
	req.Title = strings.TrimSpace(req.Title)
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.EndDate = strings.TrimSpace(req.EndDate)

	errs := bv.Validate(req)
	if errs.HasErrors() || req.StartDate == "" || req.EndDate == "" {
		return errs
	}

	start, _ := time.Parse(DateLayout, req.StartDate)
	end, _ := time.Parse(DateLayout, req.EndDate)
	if end.Before(start) {
		errs = append(errs, ValidationError{
			Field:   "EndDate",
			Message: "End date must not be before start date",
			Value:   req.EndDate,
			Rule:    "business_logic",
		})
	}
	return errs
}

func (bv *BusinessValidator) ValidateReportSubmit(req *ReportSubmitRequest) ValidationErrors {
	req.PeriodLabel = strings.TrimSpace(req.PeriodLabel)
	req.Notes = strings.TrimSpace(req.Notes)
	return bv.Validate(req)
}

func (bv *BusinessValidator) registerBusinessRules() {
	_ = bv.validate.RegisterValidation("bcrypt_len", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})

	_ = bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseRole(fl.Field().String())
		return ok
	})

	_ = bv.validate.RegisterValidation("application_decision", func(fl validator.FieldLevel) bool {
		switch models.ApplicationStatus(fl.Field().String()) {
		case models.ApplicationAccepted, models.ApplicationRejected:
			return true
		}
		return false
	})
}
