package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/services"
	"github.com/shaderl/internship-service/internal/utils"
)

const (
	usersPath     = "/admin/users"
	approvalsPath = "/admin/approvals"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type UserHandler struct {
	BaseHandler
	service services.UserService
}

func NewUserHandler(service services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListUsers lists users filtered by role, approval status and a search term
func (h *UserHandler) ListUsers(c *gin.Context) {
	filters := h.parseUserFilters(c)
	h.LogRequest(c, "Listing users", "role", filters.Role, "status", filters.Status)

	users, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.render(c, http.StatusOK, "users.html", gin.H{
		"Title":    "Manage Users",
		"Subtitle": fmt.Sprintf("%d users", len(users)),
		"Users":    users,
		"Filters":  filters,
		"Roles":    models.AllRoles,
		"Statuses": []services.UserStatus{services.UserStatusAll, services.UserStatusPending, services.UserStatusApproved},
	})
}

// UserAction dispatches the users page forms on their action field
func (h *UserHandler) UserAction(c *gin.Context) {
	ctx := c.Request.Context()
	actor := currentUser(c)

	switch action := c.PostForm("action"); action {
	case "create":
		var req services.CreateUserRequest
		if err := c.ShouldBind(&req); err != nil {
			h.redirectWithFlash(c, usersPath, flashError, "Invalid form submission")
			return
		}
		user, err := h.service.Create(ctx, &req)
		if err != nil {
			h.handleServiceError(c, usersPath, err)
			return
		}
		h.log(c).Info("User created", "user_id", user.ID, "role", user.Role, "by", actor.ID)
		h.redirectWithFlash(c, usersPath, flashSuccess, "User created")

	case "update":
		id, ok := parseInt64Form(c, "id")
		if !ok {
			h.redirectWithFlash(c, usersPath, flashError, "Invalid user")
			return
		}
		var req services.UpdateUserRequest
		if err := c.ShouldBind(&req); err != nil {
			h.redirectWithFlash(c, usersPath, flashError, "Invalid form submission")
			return
		}
		if _, err := h.service.Update(ctx, id, &req); err != nil {
			h.handleServiceError(c, usersPath, err)
			return
		}
		h.redirectWithFlash(c, usersPath, flashSuccess, "User updated")

	case "approve":
		id, ok := parseInt64Form(c, "id")
		if !ok {
			h.redirectWithFlash(c, usersPath, flashError, "Invalid user")
			return
		}
		if err := h.service.Approve(ctx, id); err != nil {
			h.handleServiceError(c, usersPath, err)
			return
		}
		h.redirectWithFlash(c, usersPath, flashSuccess, "User approved")

	case "delete":
		id, ok := parseInt64Form(c, "id")
		if !ok {
			h.redirectWithFlash(c, usersPath, flashError, "Invalid user")
			return
		}
		if err := h.service.Delete(ctx, actor.ID, id); err != nil {
			h.handleServiceError(c, usersPath, err)
			return
		}
		h.log(c).Info("User deleted", "user_id", id, "by", actor.ID)
		h.redirectWithFlash(c, usersPath, flashSuccess, "User deleted")

	default:
		h.redirectWithFlash(c, usersPath, flashError, "Unknown action")
	}
}

// ListPending shows interns awaiting approval
func (h *UserHandler) ListPending(c *gin.Context) {
	pending, err := h.service.Pending(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.render(c, http.StatusOK, "approvals.html", gin.H{
		"Title":    "Pending Intern Approvals",
		"Subtitle": fmt.Sprintf("%d awaiting review", len(pending)),
		"Pending":  pending,
	})
}

func (h *UserHandler) ApproveIntern(c *gin.Context) {
	id, ok := parseInt64Form(c, "approve_id")
	if !ok {
		h.redirectWithFlash(c, approvalsPath, flashError, "Invalid user")
		return
	}
	if err := h.service.Approve(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, approvalsPath, err)
		return
	}
	h.log(c).Info("Intern approved", "user_id", id, "by", currentUser(c).ID)
	h.redirectWithFlash(c, approvalsPath, flashSuccess, "Intern approved")
}

// ExportUsers sends the filtered user list as an XLSX workbook
func (h *UserHandler) ExportUsers(c *gin.Context) {
	filters := h.parseUserFilters(c)
	h.LogRequest(c, "Exporting users")

	var buf bytes.Buffer
	if err := h.service.ExportXLSX(c.Request.Context(), filters, &buf); err != nil {
		h.renderError(c, err)
		return
	}

	filename := fmt.Sprintf("users-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *UserHandler) parseUserFilters(c *gin.Context) services.UserListFilters {
	var filters services.UserListFilters
	_ = c.ShouldBindQuery(&filters)
	if filters.Status == "" {
		filters.Status = services.UserStatusAll
	}
	return filters
}
