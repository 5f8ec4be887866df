package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/services"
	"github.com/shaderl/internship-service/internal/utils"
	"github.com/shaderl/internship-service/internal/validator"
)

const adminInternshipsPath = "/admin/internships"

// InternshipHandler serves the admin internship and application pages
type InternshipHandler struct {
	BaseHandler
	internships  services.InternshipService
	applications services.ApplicationService
	users        services.UserService
}

func NewInternshipHandler(
	internships services.InternshipService,
	applications services.ApplicationService,
	users services.UserService,
	logger utils.Logger,
) *InternshipHandler {
	return &InternshipHandler{
		BaseHandler:  NewBaseHandler(logger),
		internships:  internships,
		applications: applications,
		users:        users,
	}
}

// ListInternships shows postings, their supervisors and every application
func (h *InternshipHandler) ListInternships(c *gin.Context) {
	ctx := c.Request.Context()

	internships, err := h.internships.List(ctx)
	if err != nil {
		h.renderError(c, err)
		return
	}
	supervisors, err := h.users.Supervisors(ctx)
	if err != nil {
		h.renderError(c, err)
		return
	}
	applications, err := h.applications.List(ctx, nil)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.render(c, http.StatusOK, "internships.html", gin.H{
		"Title":        "Internships",
		"Subtitle":     "Create positions and assign supervisors",
		"Internships":  internships,
		"Supervisors":  supervisors,
		"Applications": applications,
	})
}

// InternshipAction handles the create and assign forms
func (h *InternshipHandler) InternshipAction(c *gin.Context) {
	ctx := c.Request.Context()

	switch c.PostForm("action") {
	case "create":
		var req services.CreateInternshipRequest
		if err := c.ShouldBind(&req); err != nil {
			h.redirectWithFlash(c, adminInternshipsPath, flashError, "Invalid form submission")
			return
		}
		internship, err := h.internships.Create(ctx, currentUser(c).ID, &req)
		if err != nil {
			h.handleServiceError(c, adminInternshipsPath, err)
			return
		}
		h.redirectWithFlash(c, adminInternshipsPath, flashSuccess, fmt.Sprintf("Internship %q created", internship.Title))

	case "assign":
		internshipID, ok := parseUintForm(c, "internship_id")
		supervisorID, ok2 := parseInt64Form(c, "supervisor_id")
		if !ok || !ok2 {
			h.redirectWithFlash(c, adminInternshipsPath, flashError, "Select an internship and a supervisor")
			return
		}
		added, err := h.internships.AssignSupervisor(ctx, internshipID, supervisorID)
		if err != nil {
			h.handleServiceError(c, adminInternshipsPath, err)
			return
		}
		msg := "Supervisor assigned"
		if !added {
			msg = "Supervisor was already assigned"
		}
		h.redirectWithFlash(c, adminInternshipsPath, flashSuccess, msg)

	default:
		h.redirectWithFlash(c, adminInternshipsPath, flashError, "Unknown action")
	}
}

// DecideApplication accepts or rejects a pending application
func (h *InternshipHandler) DecideApplication(c *gin.Context) {
	var req validator.ApplicationDecisionRequest
	if err := c.ShouldBind(&req); err != nil {
		h.redirectWithFlash(c, adminInternshipsPath, flashError, "Invalid form submission")
		return
	}

	if err := h.applications.Decide(c.Request.Context(), req.ApplicationID, models.ApplicationStatus(req.Decision)); err != nil {
		h.handleServiceError(c, adminInternshipsPath, err)
		return
	}
	h.log(c).Info("Application decided", "application_id", req.ApplicationID, "decision", req.Decision)
	h.redirectWithFlash(c, adminInternshipsPath, flashSuccess, "Application "+req.Decision)
}
