package adminapi

import (
	"net/http"
	"strings"

	"github.com/britishfeed/feedstore/internal/advisor"
	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/britishfeed/feedstore/internal/webserver"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// editableKeys are the free-form site documents the console edits as raw JSON.
// Catalog, images and chatbot settings have typed endpoints instead.
var editableKeys = map[string]bool{
	"site_content": true,
	"reviews":      true,
}

func registerDataRoutes() {
	webserver.ApiGET("/data/:key", getDataKey)
	webserver.ApiPUT("/data/:key", putDataKey)
}

func loadDocument(c echo.Context, key string) (interface{}, error) {
	raw, found, err := GetAppContext(c).KV().Get(c.Request().Context(), key)
	if err != nil || !found || strings.TrimSpace(raw) == "" {
		return nil, err
	}
	var data interface{}
	if err := json.UnmarshalFromString(raw, &data); err != nil {
		return nil, errors.Wrapf(domain.ErrCorrupt, "%s: %v", key, err)
	}
	return data, nil
}

func getDataKey(c echo.Context) error {
	key := c.Param("key")
	if !editableKeys[key] {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Unknown data key", key)
	}
	data, err := loadDocument(c, key)
	if err != nil {
		return failErr(c, err, "Failed to load data")
	}
	return ok(c, map[string]interface{}{"data": data})
}

func putDataKey(c echo.Context) error {
	key := c.Param("key")
	if !editableKeys[key] {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Unknown data key", key)
	}
	var body interface{}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Body must be JSON", err.Error())
	}
	raw, err := json.MarshalToString(body)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Body must be JSON", err.Error())
	}
	if err := GetAppContext(c).KV().Put(c.Request().Context(), key, raw); err != nil {
		return failErr(c, err, "Failed to save data")
	}
	return ok(c, map[string]interface{}{"ok": true})
}

// getPublicKey exposes the documents the storefront renders. The chatbot
// persona is reduced to what the chat widget shows.
func getPublicKey(c echo.Context) error {
	key := c.Param("key")
	ctx := c.Request().Context()
	appCtx := GetAppContext(c)
	switch key {
	case "site_content", "reviews":
		data, err := loadDocument(c, key)
		if err != nil {
			return failErr(c, err, "Failed to load data")
		}
		return ok(c, map[string]interface{}{"data": data})
	case "products":
		products, err := appCtx.PublicCatalog().Products(ctx)
		if err != nil {
			return failErr(c, err, "Failed to load catalog")
		}
		return ok(c, map[string]interface{}{"data": products})
	case advisor.PersonaKey:
		p, err := appCtx.ChatSettings().Persona(ctx)
		if err != nil {
			return failErr(c, err, "Failed to load chatbot")
		}
		return ok(c, map[string]interface{}{"data": map[string]string{
			"name":    p.Name,
			"welcome": p.Welcome,
		}})
	}
	return fail(c, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}
