package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/services"
	"github.com/shaderl/internship-service/internal/utils"
)

const (
	internInternshipsPath = "/intern/internships"
	internReportsPath     = "/intern/reports"

	reportFileField = "report_file"
)

// InternHandler serves the intern's browse, apply and report pages
type InternHandler struct {
	BaseHandler
	internships  services.InternshipService
	applications services.ApplicationService
	reports      services.ReportService
}

func NewInternHandler(
	internships services.InternshipService,
	applications services.ApplicationService,
	reports services.ReportService,
	logger utils.Logger,
) *InternHandler {
	return &InternHandler{
		BaseHandler:  NewBaseHandler(logger),
		internships:  internships,
		applications: applications,
		reports:      reports,
	}
}

// ListInternships shows every posting with the intern's application status
func (h *InternHandler) ListInternships(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)

	internships, err := h.internships.List(ctx)
	if err != nil {
		h.renderError(c, err)
		return
	}
	mine, err := h.applications.ListForIntern(ctx, user.ID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	applied := make(map[uint]models.ApplicationStatus, len(mine))
	for _, a := range mine {
		applied[a.InternshipID] = a.Status
	}

	h.render(c, http.StatusOK, "intern_internships.html", gin.H{
		"Title":       "Opportunities",
		"Subtitle":    "Browse internships and apply",
		"Internships": internships,
		"Applied":     applied,
	})
}

// Apply is idempotent: applying twice keeps the first application.
func (h *InternHandler) Apply(c *gin.Context) {
	internshipID, ok := parseUintForm(c, "internship_id")
	if !ok {
		h.redirectWithFlash(c, internInternshipsPath, flashError, "Select an internship")
		return
	}

	created, err := h.applications.Apply(c.Request.Context(), currentUser(c).ID, internshipID)
	if err != nil {
		h.handleServiceError(c, internInternshipsPath, err)
		return
	}

	msg := "Application submitted"
	if !created {
		msg = "You have already applied to this internship"
	}
	h.redirectWithFlash(c, internInternshipsPath, flashSuccess, msg)
}

// ListReports shows the upload form and the intern's own reports
func (h *InternHandler) ListReports(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)

	internships, err := h.reports.ReportableInternships(ctx, user.ID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	reports, err := h.reports.ListForIntern(ctx, user.ID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.render(c, http.StatusOK, "intern_reports.html", gin.H{
		"Title":       "Reports",
		"Subtitle":    "Submit weekly progress as PDF",
		"Internships": internships,
		"Reports":     reports,
	})
}

// SubmitReport stores an uploaded PDF report
func (h *InternHandler) SubmitReport(c *gin.Context) {
	user := currentUser(c)

	var req services.SubmitReportRequest
	if err := c.ShouldBind(&req); err != nil {
		h.redirectWithFlash(c, internReportsPath, flashError, services.ErrReportFieldsReq.Error())
		return
	}

	var upload *services.ReportUpload
	header, err := c.FormFile(reportFileField)
	switch {
	case err == nil:
		file, err := header.Open()
		if err != nil {
			h.LogError(c, err, "Failed to open uploaded file")
			h.redirectWithFlash(c, internReportsPath, flashError, services.ErrUploadFailed.Error())
			return
		}
		defer file.Close()
		upload = &services.ReportUpload{Name: header.Filename, Size: header.Size, Body: file}
	case errors.Is(err, http.ErrMissingFile):
		// Submit reports the missing file with the other required fields.
	default:
		h.LogError(c, err, "Failed to read upload")
		h.redirectWithFlash(c, internReportsPath, flashError, services.ErrUploadFailed.Error())
		return
	}

	report, err := h.reports.Submit(c.Request.Context(), user.ID, &req, upload)
	if err != nil {
		h.handleServiceError(c, internReportsPath, err)
		return
	}

	h.log(c).Info("Report uploaded", "report_id", report.ID, "intern_id", user.ID)
	h.redirectWithFlash(c, internReportsPath, flashSuccess, "Report submitted")
}
