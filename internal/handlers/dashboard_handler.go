package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/services"
	"github.com/shaderl/internship-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

type dashboardCard struct {
	Title string
	Value int64
	Link  string
	Hint  string
}

type quickAction struct {
	Label string
	Href  string
}

// ===== DASHBOARD ENDPOINTS =====

// Show renders the counters and shortcuts for the current user's role
func (h *DashboardHandler) Show(c *gin.Context) {
	user := currentUser(c)
	h.LogRequest(c, "Getting dashboard stats", "role", user.Role)

	stats, err := h.service.Stats(c.Request.Context(), user)
	if err != nil {
		h.renderError(c, err)
		return
	}

	data := gin.H{}
	switch user.Role {
	case models.RoleAdmin:
		data["Title"] = "Admin Dashboard"
		data["Subtitle"] = "Overview & quick actions"
		data["Cards"] = []dashboardCard{
			{"Pending Interns", stats.PendingInterns, "/admin/approvals", "Approve new interns"},
			{"Internships", stats.Internships, "/admin/internships", "Create & assign supervisors"},
			{"Pending Applications", stats.PendingApplications, "/admin/internships", "Accept or reject"},
			{"Reports", stats.SubmittedReports, "/admin/internships", "Awaiting review"},
		}
		data["Quick"] = []quickAction{
			{"Manage Users", "/admin/users"},
			{"Manage Internships", "/admin/internships"},
			{"Export Users", "/admin/users/export"},
		}
	case models.RoleSupervisor:
		data["Title"] = "Supervisor Dashboard"
		data["Subtitle"] = "Your assigned internships & actions"
		data["Cards"] = []dashboardCard{
			{"Reports to Review", stats.ReportsToReview, "/sup/reports", "New submissions"},
			{"Assigned Internships", stats.AssignedInternships, "/sup/reports", "Your cohort"},
		}
		data["Quick"] = []quickAction{{"Review Reports", "/sup/reports"}}
	default:
		data["Title"] = "Intern Dashboard"
		data["Subtitle"] = "Track your applications and reports"
		data["Cards"] = []dashboardCard{
			{"My Applications", stats.Applications, "/intern/internships", "Browse & apply"},
			{"My Reports", stats.Reports, "/intern/reports", "Submit progress"},
		}
		data["Quick"] = []quickAction{
			{"Browse Internships", "/intern/internships"},
			{"Submit Report", "/intern/reports"},
		}
	}

	h.render(c, http.StatusOK, "dashboard.html", data)
}
