// Package adminapi registers the admin console and storefront HTTP handlers.
package adminapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/britishfeed/feedstore/internal/app"
	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/britishfeed/feedstore/internal/webserver"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Init registers every route on the server built by webserver.Init.
func Init() {
	registerAuthRoutes()
	registerCatalogRoutes()
	registerImageRoutes()
	registerChatbotRoutes()
	registerInquiryRoutes()
	registerDataRoutes()
	registerPublicRoutes()
	registerSystemRoutes()
}

// GetAppContext returns the application bound to the request.
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

type errorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, errorResponse{Error: code, Message: message, Details: details})
}

type pagedResponse struct {
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

func paged(c echo.Context, data interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pagedResponse{Data: data, Total: total, Page: page, PageSize: pageSize})
}

// parsePagination reads page and perPage (or the older pageSize).
func parsePagination(c echo.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := 20
	raw := c.QueryParam("perPage")
	if raw == "" {
		raw = c.QueryParam("pageSize")
	}
	if ps, err := strconv.Atoi(raw); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

// bindBody decodes only the request body. Path parameters such as :index never
// leak into loosely typed documents.
func bindBody(c echo.Context, v interface{}) error {
	return (&echo.DefaultBinder{}).BindBody(c, v)
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// failErr maps a domain error kind onto the response status.
func failErr(c echo.Context, err error, message string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", message, err.Error())
	case errors.Is(err, domain.ErrTooLarge):
		return fail(c, http.StatusRequestEntityTooLarge, "TOO_LARGE", message, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", message, err.Error())
	case errors.Is(err, domain.ErrBackingStoreUnavailable):
		zap.L().Error(message, zap.String("namespace", "adminapi"), zap.Error(err))
		return fail(c, http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", message, nil)
	default:
		zap.L().Error(message, zap.String("namespace", "adminapi"), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
	}
}
