package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/services"
	"github.com/shaderl/internship-service/internal/utils"
	"github.com/shaderl/internship-service/internal/validator"
)

const (
	flashSuccess = "success"
	flashError   = "danger"

	msgSomethingWentWrong = "Something went wrong, please try again"
)

// ErrorResponse is the JSON error body for non-page endpoints
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Kind    string
	Message string
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.GetLogger(c, h.logger)
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	h.log(c).Debug(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	h.log(c).Error(msg, append([]any{"error", err}, args...)...)
}

// render fills the values every page needs and writes the named template.
func (h *BaseHandler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	sess := sessions.Default(c)

	token, err := auth.IssueCSRFToken(sess)
	if err != nil {
		h.LogError(c, err, "Failed to issue CSRF token")
		c.String(http.StatusInternalServerError, msgSomethingWentWrong)
		return
	}

	var flashes []Flash
	for _, kind := range []string{flashSuccess, flashError} {
		for _, msg := range sess.Flashes(kind) {
			if s, ok := msg.(string); ok {
				flashes = append(flashes, Flash{Kind: kind, Message: s})
			}
		}
	}
	if len(flashes) > 0 {
		if err := sess.Save(); err != nil {
			h.LogError(c, err, "Failed to save session")
		}
	}

	data["CSRFToken"] = token
	data["Flashes"] = flashes
	data["User"] = currentUser(c)
	if _, ok := data["Title"]; !ok {
		data["Title"] = ""
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = []string(nil)
	}

	c.HTML(status, name, data)
}

// redirectWithFlash stores msg for the next page and answers with a 303 so
// the browser follows up with a GET.
func (h *BaseHandler) redirectWithFlash(c *gin.Context, location, kind, msg string) {
	sess := sessions.Default(c)
	sess.AddFlash(msg, kind)
	if err := sess.Save(); err != nil {
		h.LogError(c, err, "Failed to save session")
	}
	c.Redirect(http.StatusSeeOther, location)
}

// handleServiceError flashes a user-safe message for err on location.
// Unknown errors are logged and replaced by a generic message.
func (h *BaseHandler) handleServiceError(c *gin.Context, location string, err error) {
	h.redirectWithFlash(c, location, flashError, h.errorMessage(c, err))
}

func (h *BaseHandler) errorMessage(c *gin.Context, err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs.Messages()[0]
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.log(c).Info("Permission denied",
			"user_id", permissionError.UserID,
			"resource", permissionError.ResourceType,
			"action", permissionError.Action,
			"reason", permissionError.Reason)
		return http.StatusText(http.StatusForbidden)
	}

	if msg, ok := services.UserMessage(err); ok {
		return msg
	}

	h.LogError(c, err, "Unexpected service error")
	return msgSomethingWentWrong
}

// renderError writes a bare error page for failures outside any form flow.
func (h *BaseHandler) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var permissionError *services.PermissionError
	switch {
	case errors.As(err, &permissionError):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrReportNotFound),
		errors.Is(err, services.ErrInternshipNotFound),
		errors.Is(err, services.ErrUserNotFound):
		status = http.StatusNotFound
	}

	msg := h.errorMessage(c, err)
	h.render(c, status, "error.html", gin.H{
		"Title":   http.StatusText(status),
		"Message": msg,
	})
}

func parseUintForm(c *gin.Context, key string) (uint, bool) {
	v, err := strconv.ParseUint(c.PostForm(key), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func parseInt64Form(c *gin.Context, key string) (int64, bool) {
	v, err := strconv.ParseInt(c.PostForm(key), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
