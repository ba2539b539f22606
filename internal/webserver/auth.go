package webserver

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/britishfeed/feedstore/config"
	"github.com/britishfeed/feedstore/internal/app"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SessionName is the admin session cookie.
const SessionName = "bf_admin"

const sessionAuthKey = "authenticated"

// CheckPassword compares password with the configured admin credential.
// With neither a hash nor a password configured every login is refused.
func CheckPassword(cfg config.AdminConfig, password string) bool {
	if password == "" {
		return false
	}
	if cfg.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash), []byte(password)) == nil
	}
	if cfg.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cfg.Password), []byte(password)) == 1
}

// HashPassword returns a bcrypt hash suitable for admin.password_hash.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func sessionOptions(maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Login marks the session as authenticated for admin.session_hours.
func Login(c echo.Context) error {
	cfg := c.Get(AppContextKey).(app.AppContext).Config().Admin
	// an undecodable cookie still yields a fresh session
	sess, err := session.Get(SessionName, c)
	if sess == nil {
		return err
	}
	hours := cfg.SessionHours
	if hours <= 0 {
		hours = 8
	}
	sess.Options = sessionOptions(int((time.Duration(hours) * time.Hour).Seconds()))
	sess.Values[sessionAuthKey] = true
	sess.Values["login_at"] = time.Now().Unix()
	return sess.Save(c.Request(), c.Response())
}

// Logout expires the admin session.
func Logout(c echo.Context) error {
	sess, _ := session.Get(SessionName, c)
	if sess == nil {
		return nil
	}
	sess.Options = sessionOptions(-1)
	delete(sess.Values, sessionAuthKey)
	return sess.Save(c.Request(), c.Response())
}

// IsAdmin reports whether the request carries an authenticated admin session.
func IsAdmin(c echo.Context) bool {
	sess, err := session.Get(SessionName, c)
	if err != nil || sess == nil {
		return false
	}
	v, ok := sess.Values[sessionAuthKey].(bool)
	return ok && v
}

// RequireAdmin rejects requests without an admin session. Stored images stay
// public so storefront pages can load them.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if IsAdmin(c) {
			return next(c)
		}
		zap.L().Debug("admin session required",
			zap.String("namespace", "webserver"),
			zap.String("path", c.Path()))
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error":   "UNAUTHORIZED",
			"message": "Admin login required",
		})
	}
}
