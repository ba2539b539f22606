package adminapi

import (
	"net/http"
	"strconv"

	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/britishfeed/feedstore/internal/recommend"
	"github.com/britishfeed/feedstore/internal/webserver"
	"github.com/britishfeed/feedstore/pkg/metrics"
	"github.com/labstack/echo/v4"
)

type recommendPayload struct {
	AnimalType     string   `json:"animalType"`
	ActivityLevel  string   `json:"activityLevel"`
	HealthConcerns []string `json:"healthConcerns"`
}

type chatPayload struct {
	Messages []domain.ChatTurn `json:"messages"`
}

func registerPublicRoutes() {
	webserver.PublicGET("/public/catalog", publicCatalog)
	webserver.PublicGET("/public/catalog/search", publicCatalogSearch)
	webserver.PublicGET("/public/:key", getPublicKey)
	webserver.PublicPOST("/recommend", postRecommend)
	webserver.PublicPOST("/chat", postChat)
}

func publicCatalog(c echo.Context) error {
	products, err := GetAppContext(c).PublicCatalog().Products(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to load catalog")
	}
	return ok(c, map[string]interface{}{"products": products})
}

func publicCatalogSearch(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > 50 {
		limit = 10
	}
	products, err := GetAppContext(c).PublicCatalog().Search(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return failErr(c, err, "Failed to search catalog")
	}
	return ok(c, map[string]interface{}{"products": products})
}

// postRecommend never fails on unknown profile values; they are dropped.
func postRecommend(c echo.Context) error {
	var payload recommendPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse profile", err.Error())
	}
	profile := recommend.ParseProfile(payload.AnimalType, payload.ActivityLevel, payload.HealthConcerns)
	metrics.Incr(metrics.RecommendQueries, 1)
	return ok(c, map[string]interface{}{
		"profile":         profile,
		"recommendations": recommend.Recommend(profile),
		"matched":         recommend.MatchedRules(profile),
	})
}

// postChat always answers; a failed completion yields the fallback reply.
func postChat(c echo.Context) error {
	var payload chatPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse chat", err.Error())
	}
	reply := GetAppContext(c).Advisor().Chat(c.Request().Context(), payload.Messages)
	metrics.Incr(metrics.ChatRequests, 1)
	if reply.Degraded {
		metrics.Incr(metrics.ChatDegraded, 1)
	}
	return ok(c, reply)
}
