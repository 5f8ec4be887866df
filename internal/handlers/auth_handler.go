package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/services"
	"github.com/shaderl/internship-service/internal/utils"
	"github.com/shaderl/internship-service/internal/validator"
)

type AuthHandler struct {
	BaseHandler
	auth  *auth.Authenticator
	users services.UserService
}

func NewAuthHandler(authenticator *auth.Authenticator, users services.UserService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		auth:        authenticator,
		users:       users,
	}
}

type accountForm struct {
	Name  string
	Email string
}

// Landing is the public start page
func (h *AuthHandler) Landing(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "index.html", gin.H{"Title": "Welcome"})
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Login", "Email": ""})
}

// Login checks credentials and stores the user snapshot in the session
func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	h.LogRequest(c, "Login attempt")

	result, err := h.auth.Login(c.Request.Context(), sessions.Default(c), email, c.PostForm("password"))
	if err != nil {
		h.LogError(c, err, "Login failed")
		h.render(c, http.StatusInternalServerError, "login.html", gin.H{
			"Title":  "Login",
			"Email":  email,
			"Errors": []string{msgSomethingWentWrong},
		})
		return
	}
	if !result.OK {
		h.render(c, http.StatusOK, "login.html", gin.H{
			"Title":  "Login",
			"Email":  email,
			"Errors": []string{result.Error()},
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": accountForm{}})
}

// Register is intern self-registration. The role is not taken from the form.
func (h *AuthHandler) Register(c *gin.Context) {
	form := accountForm{Name: c.PostForm("name"), Email: c.PostForm("email")}

	result, err := h.auth.Register(c.Request.Context(), auth.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: c.PostForm("password"),
		Role:     models.RoleIntern,
	})
	if err != nil {
		h.LogError(c, err, "Registration failed")
		h.render(c, http.StatusInternalServerError, "register.html", gin.H{
			"Title":  "Register",
			"Form":   form,
			"Errors": []string{msgSomethingWentWrong},
		})
		return
	}
	if !result.OK {
		h.render(c, http.StatusOK, "register.html", gin.H{
			"Title":  "Register",
			"Form":   form,
			"Errors": result.Errors,
		})
		return
	}

	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title":      "Register",
		"Form":       accountForm{},
		"Registered": true,
	})
}

// Logout destroys the session and expires its cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(sessions.Default(c)); err != nil {
		h.LogError(c, err, "Logout failed")
	}
	c.Redirect(http.StatusSeeOther, loginPath)
}

// ShowInstall offers the first-admin form while no admin exists
func (h *AuthHandler) ShowInstall(c *gin.Context) {
	hasAdmin, err := h.users.HasAdmin(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	h.renderInstall(c, hasAdmin, accountForm{}, nil)
}

func (h *AuthHandler) Install(c *gin.Context) {
	form := accountForm{Name: c.PostForm("name"), Email: c.PostForm("email")}

	_, err := h.users.CreateFirstAdmin(c.Request.Context(), form.Name, form.Email, c.PostForm("password"))
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		h.log(c).Info("First admin created", "email", form.Email)
		h.redirectWithFlash(c, loginPath, flashSuccess, "Admin created. You can now login.")
	case errors.Is(err, services.ErrAdminExists):
		h.renderInstall(c, true, form, nil)
	case errors.As(err, &verrs):
		h.renderInstall(c, false, form, verrs.Messages())
	default:
		h.renderError(c, err)
	}
}

func (h *AuthHandler) renderInstall(c *gin.Context, installed bool, form accountForm, errs []string) {
	status := http.StatusOK
	if installed {
		status = http.StatusNotFound
	}
	h.render(c, status, "install.html", gin.H{
		"Title":     "Install",
		"Installed": installed,
		"Form":      form,
		"Errors":    errs,
	})
}
