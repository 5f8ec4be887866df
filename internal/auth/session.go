package auth

import (
	"encoding/gob"

	"github.com/gin-contrib/sessions"

	"github.com/shaderl/internship-service/internal/models"
)

// Session keys
const (
	SessionKeyUser = "user"
	SessionKeyCSRF = "csrf_token"
)

// Session is the slice of a request-bound server-side session the access
// layer needs. sessions.Session from gin-contrib satisfies it.
type Session interface {
	Get(key interface{}) interface{}
	Set(key interface{}, val interface{})
	Clear()
	Options(sessions.Options)
	Save() error
}

// UserSnapshot is the public part of a user copied into the session at login.
// It is not refreshed if the record changes later.
type UserSnapshot struct {
	ID    int64
	Name  string
	Email string
	Role  models.UserRole
}

func init() {
	gob.Register(UserSnapshot{})
}

func SnapshotOf(u *models.User) UserSnapshot {
	return UserSnapshot{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// CurrentUser reads the snapshot without touching the session.
func CurrentUser(sess Session) (*UserSnapshot, bool) {
	if sess == nil {
		return nil, false
	}
	snapshot, ok := sess.Get(SessionKeyUser).(UserSnapshot)
	if !ok || snapshot.ID == 0 {
		return nil, false
	}
	return &snapshot, true
}

// HasRole reports an exact role match.
func (u *UserSnapshot) HasRole(role models.UserRole) bool {
	return u != nil && u.Role == role
}

// HasAnyRole reports whether the role is one of roles.
func (u *UserSnapshot) HasAnyRole(roles ...models.UserRole) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}
