package adminapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/britishfeed/feedstore/internal/blob"
	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/britishfeed/feedstore/internal/webserver"
	"github.com/britishfeed/feedstore/pkg/metrics"
	"github.com/labstack/echo/v4"
)

func registerImageRoutes() {
	webserver.ApiPOST("/catalog/upload-image", uploadImage)
	webserver.ApiGET("/catalog/orphans", listOrphanImages)
	// storefront pages embed these URLs, so serving stays public
	webserver.RootGET(domain.ImageServePath+":key", serveImage)
}

func uploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return fail(c, http.StatusBadRequest, "NO_FILE", "No file provided", nil)
	}
	if fh.Size > blob.MaxSize {
		return fail(c, http.StatusRequestEntityTooLarge, "TOO_LARGE", "Image must be under 800KB. Use a URL for larger images.", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read file", err.Error())
	}
	defer f.Close()
	// one byte over the ceiling is enough for the store to reject it
	data, err := io.ReadAll(io.LimitReader(f, blob.MaxSize+1))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read file", err.Error())
	}

	mime := fh.Header.Get(echo.HeaderContentType)
	if mime == "" || mime == echo.MIMEOctetStream {
		mime = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}

	ctx := c.Request().Context()
	appCtx := GetAppContext(c)
	productID := c.FormValue("productId")
	key := blob.KeyFor(productID, time.Now())
	if err := appCtx.Blobs().Put(ctx, key, data, mime); err != nil {
		if errors.Is(err, domain.ErrTooLarge) {
			return fail(c, http.StatusRequestEntityTooLarge, "TOO_LARGE", "Image must be under 800KB. Use a URL for larger images.", err.Error())
		}
		return failErr(c, err, "Failed to store image")
	}
	metrics.Incr(metrics.ImageUploads, 1)

	resp := map[string]interface{}{
		"ok":  true,
		"url": domain.BlobImage(key).Href(),
		"key": key,
	}
	if c.FormValue("attach") == "true" {
		id, err := strconv.ParseInt(productID, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "attach needs a numeric productId", nil)
		}
		p, err := appCtx.Catalog().Patch(ctx, id, domain.ProductPatch{ImageKey: &key})
		if err != nil {
			return failErr(c, err, "Image stored but not attached")
		}
		resp["product"] = p
	}
	return ok(c, resp)
}

func serveImage(c echo.Context) error {
	b, err := GetAppContext(c).Blobs().Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return failErr(c, err, "Image not found")
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, b.Mime, b.Data)
}

func listOrphanImages(c echo.Context) error {
	report, err := GetAppContext(c).OrphanImages(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to build orphan report")
	}
	return ok(c, report)
}
