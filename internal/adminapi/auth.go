package adminapi

import (
	"net/http"
	"strings"

	"github.com/britishfeed/feedstore/internal/webserver"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type loginPayload struct {
	Password string `json:"password" form:"password"`
}

func registerAuthRoutes() {
	webserver.RootPOST("/admin/login", postLogin)
	webserver.RootPOST("/admin/logout", postLogout)
	webserver.RootGET("/admin/logout", postLogout)
	webserver.RootGET("/admin/session", getSession)
}

func postLogin(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", err.Error())
	}
	cfg := GetAppContext(c).Config().Admin
	if !webserver.CheckPassword(cfg, strings.TrimSpace(payload.Password)) {
		zap.L().Warn("admin login rejected",
			zap.String("namespace", "adminapi"),
			zap.String("ip", c.RealIP()))
		return fail(c, http.StatusUnauthorized, "INVALID_PASSWORD", "Incorrect password. Please try again.", nil)
	}
	if err := webserver.Login(c); err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Unable to start session", err.Error())
	}
	zap.L().Info("admin logged in", zap.String("namespace", "adminapi"), zap.String("ip", c.RealIP()))
	return ok(c, map[string]interface{}{"ok": true})
}

func postLogout(c echo.Context) error {
	if err := webserver.Logout(c); err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Unable to end session", err.Error())
	}
	return ok(c, map[string]interface{}{"ok": true})
}

func getSession(c echo.Context) error {
	return ok(c, map[string]interface{}{"authenticated": webserver.IsAdmin(c)})
}
