package adminapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/britishfeed/feedstore/internal/csvcodec"
	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/britishfeed/feedstore/internal/webserver"
	"github.com/britishfeed/feedstore/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// maxImportSize bounds an uploaded CSV file.
const maxImportSize = 4 << 20

type catalogPayload struct {
	Products []domain.Product `json:"products"`
}

type importPayload struct {
	CSV string `json:"csv"`
}

// registerCatalogRoutes registers the catalog manager endpoints
func registerCatalogRoutes() {
	webserver.ApiGET("/catalog", listCatalog)
	webserver.ApiPUT("/catalog", replaceCatalog)
	webserver.ApiPOST("/catalog", createCatalogProduct)
	webserver.ApiGET("/catalog/summary", catalogSummary)
	webserver.ApiGET("/catalog/search", searchCatalog)
	webserver.ApiGET("/catalog/export.csv", exportCatalogCSV)
	webserver.ApiGET("/catalog/export.xlsx", exportCatalogXLSX)
	webserver.ApiPOST("/catalog/import", importCatalog)
	webserver.ApiGET("/catalog/:id", getCatalogProduct)
	webserver.ApiPATCH("/catalog/:id", patchCatalogProduct)
	webserver.ApiDELETE("/catalog/:id", deleteCatalogProduct)
}

func listCatalog(c echo.Context) error {
	products, err := GetAppContext(c).Catalog().GetAll(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to load catalog")
	}
	source := "kv"
	if len(products) == 0 {
		source = "none"
	}
	return ok(c, map[string]interface{}{"products": products, "source": source})
}

func replaceCatalog(c echo.Context) error {
	var payload catalogPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
	}
	if payload.Products == nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "products must be an array", nil)
	}
	saved, err := GetAppContext(c).Catalog().ReplaceAll(c.Request().Context(), payload.Products)
	if err != nil {
		return failErr(c, err, "Failed to save catalog")
	}
	metrics.Incr(metrics.CatalogWrites, 1)
	return ok(c, map[string]interface{}{"ok": true, "count": len(saved), "products": saved})
}

func createCatalogProduct(c echo.Context) error {
	var p domain.Product
	if err := c.Bind(&p); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	// new products always receive a fresh id
	p.ID = 0
	saved, err := GetAppContext(c).Catalog().Upsert(c.Request().Context(), p)
	if err != nil {
		return failErr(c, err, "Failed to create product")
	}
	metrics.Incr(metrics.CatalogWrites, 1)
	return c.JSON(http.StatusCreated, map[string]interface{}{"ok": true, "product": saved})
}

func getCatalogProduct(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	products, err := GetAppContext(c).Catalog().GetAll(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to load catalog")
	}
	for _, p := range products {
		if p.ID == id {
			return ok(c, p)
		}
	}
	return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
}

func patchCatalogProduct(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var patch domain.ProductPatch
	if err := c.Bind(&patch); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse update", err.Error())
	}
	p, err := GetAppContext(c).Catalog().Patch(c.Request().Context(), id, patch)
	if err != nil {
		return failErr(c, err, "Failed to update product")
	}
	if !patch.IsEmpty() {
		metrics.Incr(metrics.CatalogWrites, 1)
	}
	return ok(c, map[string]interface{}{"ok": true, "product": p})
}

func deleteCatalogProduct(c echo.Context) error {
	id, valid := parseIDParam(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := GetAppContext(c).Catalog().Delete(c.Request().Context(), id); err != nil {
		return failErr(c, err, "Failed to delete product")
	}
	metrics.Incr(metrics.CatalogWrites, 1)
	return ok(c, map[string]interface{}{"ok": true, "deleted": id})
}

func catalogSummary(c echo.Context) error {
	summary, err := GetAppContext(c).Catalog().Summary(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to summarise catalog")
	}
	return ok(c, summary)
}

// searchCatalog finds one product by exact name (?name=) or lists a name prefix (?q=).
func searchCatalog(c echo.Context) error {
	ctx := c.Request().Context()
	store := GetAppContext(c).Catalog()
	if name := strings.TrimSpace(c.QueryParam("name")); name != "" {
		p, err := store.Find(ctx, name)
		if err != nil {
			return failErr(c, err, "Product not found")
		}
		return ok(c, p)
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	products, err := store.SearchPrefix(ctx, c.QueryParam("q"), limit)
	if err != nil {
		return failErr(c, err, "Failed to search catalog")
	}
	return ok(c, map[string]interface{}{"products": products})
}

func exportFilename(ext string) string {
	return fmt.Sprintf("catalog-%s.%s", time.Now().Format("2006-01-02"), ext)
}

func exportCatalogCSV(c echo.Context) error {
	products, err := GetAppContext(c).Catalog().GetAll(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to load catalog")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, exportFilename("csv")))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(csvcodec.Export(products)))
}

func exportCatalogXLSX(c echo.Context) error {
	products, err := GetAppContext(c).Catalog().GetAll(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to load catalog")
	}
	var buf bytes.Buffer
	if err := csvcodec.ExportXLSX(products, &buf); err != nil {
		return failErr(c, err, "Failed to build spreadsheet")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, exportFilename("xlsx")))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// readImportText accepts a multipart "file", a JSON {"csv": ...} body or raw CSV text.
func readImportText(c echo.Context) (string, error) {
	req := c.Request()
	ctype := req.Header.Get(echo.HeaderContentType)
	switch {
	case strings.HasPrefix(ctype, echo.MIMEMultipartForm):
		fh, err := c.FormFile("file")
		if err != nil {
			return "", err
		}
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxImportSize))
		return string(data), err
	case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
		var payload importPayload
		if err := c.Bind(&payload); err != nil {
			return "", err
		}
		return payload.CSV, nil
	default:
		data, err := io.ReadAll(io.LimitReader(req.Body, maxImportSize))
		return string(data), err
	}
}

func importCatalog(c echo.Context) error {
	text, err := readImportText(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read CSV", err.Error())
	}
	ctx := c.Request().Context()
	store := GetAppContext(c).Catalog()
	existing, err := store.GetAll(ctx)
	if err != nil {
		return failErr(c, err, "Failed to load catalog")
	}
	floor, err := store.HighWaterMark(ctx)
	if err != nil {
		return failErr(c, err, "Failed to load catalog")
	}
	result, err := csvcodec.Import(text, existing, csvcodec.WithIDFloor(floor))
	if err != nil {
		return failErr(c, err, "CSV import failed")
	}
	if c.QueryParam("dryRun") == "true" {
		return ok(c, result)
	}
	saved, err := store.ReplaceAll(ctx, result.Products)
	if err != nil {
		return failErr(c, err, "Failed to save imported catalog")
	}
	metrics.Incr(metrics.CatalogWrites, 1)
	zap.L().Info("catalog imported",
		zap.String("namespace", "adminapi"),
		zap.Int("added", result.Added),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))
	return ok(c, map[string]interface{}{
		"ok":      true,
		"added":   result.Added,
		"updated": result.Updated,
		"skipped": result.Skipped,
		"count":   len(saved),
	})
}
