package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shaderl/internship-service/internal/services"
	"github.com/shaderl/internship-service/internal/storage"
	"github.com/shaderl/internship-service/internal/utils"
)

const supervisorReportsPath = "/sup/reports"

type ReportHandler struct {
	BaseHandler
	service services.ReportService
}

func NewReportHandler(service services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListForSupervisor shows reports on internships assigned to the supervisor
func (h *ReportHandler) ListForSupervisor(c *gin.Context) {
	reports, err := h.service.ListForSupervisor(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.render(c, http.StatusOK, "sup_reports.html", gin.H{
		"Title":    "Reports to Review",
		"Subtitle": fmt.Sprintf("%d reports", len(reports)),
		"Reports":  reports,
	})
}

func (h *ReportHandler) SupervisorAction(c *gin.Context) {
	if c.PostForm("action") != "review" {
		h.redirectWithFlash(c, supervisorReportsPath, flashError, "Unknown action")
		return
	}
	reportID, ok := parseUintForm(c, "report_id")
	if !ok {
		h.redirectWithFlash(c, supervisorReportsPath, flashError, "Invalid report")
		return
	}

	if err := h.service.MarkReviewed(c.Request.Context(), currentUser(c).ID, reportID); err != nil {
		h.handleServiceError(c, supervisorReportsPath, err)
		return
	}
	h.redirectWithFlash(c, supervisorReportsPath, flashSuccess, "Report marked as reviewed")
}

// Download sends the stored PDF to its owner, an assigned supervisor or an admin
func (h *ReportHandler) Download(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		h.renderError(c, services.ErrReportNotFound)
		return
	}

	report, file, err := h.service.Open(c.Request.Context(), currentUser(c), uint(id))
	if err != nil {
		h.renderError(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.renderError(c, err)
		return
	}

	name := report.OriginalName
	if name == "" {
		name = fmt.Sprintf("report-%d.pdf", report.ID)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, name))
	c.Header("Content-Type", storage.PDFMimeType)
	http.ServeContent(c.Writer, c.Request, name, info.ModTime(), file)
}
