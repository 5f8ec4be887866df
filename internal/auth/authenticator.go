package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-contrib/sessions"

	"github.com/shaderl/internship-service/internal/metrics"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories"
	"github.com/shaderl/internship-service/internal/validator"
)

// User-facing messages
const (
	MsgEmailInUse         = "Email already in use"
	MsgInvalidCredentials = "Invalid credentials"
	MsgAwaitingApproval   = "Your account is awaiting admin approval"
)

// Result carries user-facing failure messages. Infrastructure failures are
// returned as errors alongside a zero Result instead.
type Result struct {
	OK     bool
	Errors []string
	UserID int64
}

// Error returns the first message, which for login is the only one.
func (r Result) Error() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

func failed(messages ...string) Result {
	return Result{Errors: messages}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

type Authenticator struct {
	users     repositories.UserRepository
	passwords PasswordVerifier
	validator *validator.BusinessValidator
	cookie    sessions.Options
	logger    *slog.Logger
	metrics   *metrics.Metrics

	// dummyHash keeps unknown-email logins roughly as slow as wrong passwords.
	dummyHash string
}

type AuthenticatorConfig struct {
	Users     repositories.UserRepository
	Passwords PasswordVerifier
	Validator *validator.BusinessValidator
	// Cookie must match the options the session middleware was built with;
	// Logout reuses them to expire the cookie.
	Cookie  sessions.Options
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func NewAuthenticator(cfg AuthenticatorConfig) (*Authenticator, error) {
	if cfg.Passwords == nil {
		cfg.Passwords = NewBcryptVerifier()
	}
	if cfg.Validator == nil {
		cfg.Validator = validator.NewBusinessValidator()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	dummy, err := cfg.Passwords.Hash("timing-equaliser")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password verifier: %w", err)
	}

	return &Authenticator{
		users:     cfg.Users,
		passwords: cfg.Passwords,
		validator: cfg.Validator,
		cookie:    cfg.Cookie,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		dummyHash: dummy,
	}, nil
}

// Register creates an account. Structural errors are all reported together;
// the duplicate email check only runs once they are clear and is reported on
// its own. No session is created.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (Result, error) {
	req := validator.RegisterRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     string(in.Role),
	}
	if errs := a.validator.ValidateRegistration(&req); errs.HasErrors() {
		a.logger.DebugContext(ctx, "Registration rejected", "errors", errs.Messages())
		a.metrics.Registration(metrics.OutcomeInvalid)
		return failed(errs.Messages()...), nil
	}
	role, _ := models.ParseRole(req.Role)

	exists, err := a.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		a.metrics.Registration(metrics.OutcomeError)
		return Result{}, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		a.metrics.Registration(metrics.OutcomeDuplicate)
		return failed(MsgEmailInUse), nil
	}

	hash, err := a.passwords.Hash(req.Password)
	if err != nil {
		a.metrics.Registration(metrics.OutcomeError)
		return Result{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		IsApproved:   !role.RequiresApproval(),
	}
	id, err := a.users.Insert(ctx, user)
	if err != nil {
		// A concurrent registration can win between the check and the insert.
		if repositories.IsDuplicateError(err) {
			a.metrics.Registration(metrics.OutcomeDuplicate)
			return failed(MsgEmailInUse), nil
		}
		a.metrics.Registration(metrics.OutcomeError)
		return Result{}, fmt.Errorf("failed to store user: %w", err)
	}

	a.logger.InfoContext(ctx, "User registered", "user_id", id, "role", role)
	a.metrics.Registration(metrics.OutcomeSuccess)
	return Result{OK: true, UserID: id}, nil
}

// Login looks the email up exactly as typed and checks credentials before
// approval, so a wrong password for an unapproved intern still reads as
// invalid credentials. On success the user
// snapshot is written to sess and saved.
func (a *Authenticator) Login(ctx context.Context, sess Session, email, password string) (Result, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil && !repositories.IsNotFoundError(err) {
		a.metrics.Login(metrics.OutcomeError)
		return Result{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		a.passwords.Verify(a.dummyHash, password)
		return a.rejectLogin(ctx, metrics.OutcomeInvalid, MsgInvalidCredentials), nil
	}
	if !a.passwords.Verify(user.PasswordHash, password) {
		return a.rejectLogin(ctx, metrics.OutcomeInvalid, MsgInvalidCredentials), nil
	}
	if !user.ApprovedForLogin() {
		return a.rejectLogin(ctx, metrics.OutcomeUnapproved, MsgAwaitingApproval), nil
	}

	sess.Set(SessionKeyUser, SnapshotOf(user))
	if err := sess.Save(); err != nil {
		a.metrics.Login(metrics.OutcomeError)
		return Result{}, fmt.Errorf("failed to save session: %w", err)
	}

	a.logger.InfoContext(ctx, "User logged in", "user_id", user.ID, "role", user.Role)
	a.metrics.Login(metrics.OutcomeSuccess)
	return Result{OK: true, UserID: user.ID}, nil
}

func (a *Authenticator) rejectLogin(ctx context.Context, outcome, message string) Result {
	a.logger.InfoContext(ctx, "Login rejected", "outcome", outcome)
	a.metrics.Login(outcome)
	return failed(message)
}

// Logout destroys the whole session: the server-side record is deleted and
// the client receives an already-expired cookie with the original attributes.
// The CSRF token goes with it.
func (a *Authenticator) Logout(sess Session) error {
	sess.Clear()

	expired := a.cookie
	expired.MaxAge = -1
	sess.Options(expired)

	if err := sess.Save(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// HashPassword exposes the verifier for administrative account paths.
func (a *Authenticator) HashPassword(password string) (string, error) {
	return a.passwords.Hash(password)
}
