package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/britishfeed/feedstore/internal/webserver"
	"github.com/britishfeed/feedstore/pkg/metrics"
	"github.com/labstack/echo/v4"
)

var knownMetrics = map[string]bool{
	metrics.CatalogWrites:    true,
	metrics.ImageUploads:     true,
	metrics.ChatRequests:     true,
	metrics.ChatDegraded:     true,
	metrics.InquiriesTotal:   true,
	metrics.OrphanImages:     true,
	metrics.StoredImages:     true,
	metrics.CatalogProducts:  true,
	metrics.RecommendQueries: true,
	metrics.SystemCPU:        true,
	metrics.SystemMem:        true,
	metrics.ProcessCPU:       true,
	metrics.ProcessMem:       true,
}

func registerSystemRoutes() {
	webserver.RootGET("/healthz", getHealth)
	webserver.ApiGET("/metrics/:name", getMetricSeries)
}

func getHealth(c echo.Context) error {
	return ok(c, map[string]interface{}{"status": "ok"})
}

// getMetricSeries returns the samples of one series over the last ?hours= (default 24).
func getMetricSeries(c echo.Context) error {
	name := c.Param("name")
	if !knownMetrics[name] {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Unknown metric", name)
	}
	hours, err := strconv.Atoi(c.QueryParam("hours"))
	if err != nil || hours <= 0 || hours > 24*30 {
		hours = 24
	}
	now := time.Now()
	points, err := metrics.Query(name, now.Add(-time.Duration(hours)*time.Hour).Unix(), now.Unix()+1)
	if err != nil {
		return failErr(c, err, "Failed to query metric")
	}
	return ok(c, map[string]interface{}{
		"name":   name,
		"total":  metrics.Counter(name),
		"points": points,
	})
}
