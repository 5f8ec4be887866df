package pkg

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-contrib/sessions/memstore"
	"gorm.io/gorm"

	"github.com/shaderl/internship-service/internal/config"
)

// SessionOptions are the cookie attributes shared by the session middleware
// and logout, which must expire the cookie with the same attributes.
func SessionOptions(cfg *config.Config) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.MaxAge.Seconds()),
		Secure:   cfg.Session.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// NewSessionStore returns the server-side session store selected by
// SESSION_STORE. The gorm store keeps sessions in the application database
// and needs db; the memory store is process-local.
func NewSessionStore(cfg *config.Config, db *gorm.DB) sessions.Store {
	secret := []byte(cfg.Session.Secret)

	var store sessions.Store
	switch cfg.Session.Store {
	case config.SessionStoreGorm:
		store = gormsessions.NewStore(db, true, secret)
	default:
		store = memstore.NewStore(secret)
	}
	store.Options(SessionOptions(cfg))
	return store
}
