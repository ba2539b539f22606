// Package webserver hosts the admin console API and the public storefront API.
package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/britishfeed/feedstore/internal/app"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// AppContextKey is the echo context key holding app.AppContext.
const AppContextKey = "appCtx"

const (
	AdminPrefix  = "/admin/api"
	PublicPrefix = "/api"
)

type AdminServer struct {
	root   *echo.Echo
	admin  *echo.Group
	public *echo.Group
	appCtx app.AppContext
}

var server *AdminServer

// Init builds the global server for appCtx. Routes are registered afterwards
// through the Api* and Public* helpers.
func Init(appCtx app.AppContext) *AdminServer {
	server = NewAdminServer(appCtx)
	return server
}

// Server returns the server built by Init.
func Server() *AdminServer {
	return server
}

func NewAdminServer(appCtx app.AppContext) *AdminServer {
	cfg := appCtx.Config()
	s := &AdminServer{appCtx: appCtx}
	s.root = echo.New()
	s.root.HideBanner = true
	s.root.HidePort = true
	s.root.Debug = cfg.System.Debug

	s.root.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.root.Use(middleware.Recover())
	s.root.Use(requestLogger())
	s.root.Use(middleware.BodyLimit("4M"))
	s.root.Use(session.Middleware(sessions.NewCookieStore(sessionKey(cfg.Web.Secret))))
	s.root.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	})

	s.public = s.root.Group(PublicPrefix, middleware.CORS())
	s.admin = s.root.Group(AdminPrefix, RequireAdmin)
	return s
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("namespace", "webserver"),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				zap.L().Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			// image fetches are frequent and cached, keep them out of info logs
			if strings.HasPrefix(v.URI, AdminPrefix+"/catalog/image/") {
				zap.L().Debug("request", fields...)
				return nil
			}
			zap.L().Info("request", fields...)
			return nil
		},
	})
}

// sessionKey never signs cookies with an empty key; without a configured
// secret the key is random and sessions last until restart.
func sessionKey(secret string) []byte {
	if strings.TrimSpace(secret) != "" {
		return []byte(secret)
	}
	zap.L().Warn("web.secret is empty, admin sessions will not survive a restart",
		zap.String("namespace", "webserver"))
	return securecookie.GenerateRandomKey(32)
}

// Echo exposes the underlying router, mostly for tests.
func (s *AdminServer) Echo() *echo.Echo {
	return s.root
}

func (s *AdminServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.root.ServeHTTP(w, r)
}

// Start listens on web.host:web.port until ctx is canceled.
func (s *AdminServer) Start(ctx context.Context) error {
	cfg := s.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("web server listening", zap.String("namespace", "webserver"), zap.String("addr", addr))
		errCh <- s.root.Start(addr)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.root.Shutdown(shutdownCtx)
	}
}

// ApiGET registers an authenticated admin route under /admin/api.
func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.admin.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.admin.POST(path, h, m...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.admin.PUT(path, h, m...)
}

func ApiPATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.admin.PATCH(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.admin.DELETE(path, h, m...)
}

// PublicGET registers an unauthenticated route under /api.
func PublicGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.public.GET(path, h, m...)
}

func PublicPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.public.POST(path, h, m...)
}

// RootGET registers an unauthenticated route at an absolute path.
func RootGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.GET(path, h, m...)
}

func RootPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.POST(path, h, m...)
}
