package adminapi

import (
	"net/http"

	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/britishfeed/feedstore/internal/webserver"
	"github.com/britishfeed/feedstore/pkg/metrics"
	"github.com/labstack/echo/v4"
)

type contactPayload struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	Interest string `json:"interest" form:"interest"`
	Message  string `json:"message" form:"message"`
}

func registerInquiryRoutes() {
	webserver.ApiGET("/inquiries", listInquiries)
	webserver.PublicPOST("/contact", postContact)
}

func listInquiries(c echo.Context) error {
	items, err := GetAppContext(c).Inquiries().List(c.Request().Context(), c.QueryParam("since"))
	if err != nil {
		return failErr(c, err, "Failed to load inquiries")
	}
	page, pageSize := parsePagination(c)
	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return paged(c, items[start:end], int64(len(items)), page, pageSize)
}

func postContact(c echo.Context) error {
	var payload contactPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse contact form", err.Error())
	}
	_, err := GetAppContext(c).Inquiries().Submit(c.Request().Context(), domain.Inquiry{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Interest: payload.Interest,
		Message:  payload.Message,
	})
	if err != nil {
		return failErr(c, err, "Unable to send your message")
	}
	metrics.Incr(metrics.InquiriesTotal, 1)
	return ok(c, map[string]interface{}{
		"ok":      true,
		"message": "Thank you! We will contact you shortly.",
	})
}
