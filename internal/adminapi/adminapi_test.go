package adminapi

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/britishfeed/feedstore/config"
	"github.com/britishfeed/feedstore/internal/app"
	"github.com/britishfeed/feedstore/internal/kv"
	"github.com/britishfeed/feedstore/internal/webserver"
	"github.com/britishfeed/feedstore/pkg/metrics"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "hay-is-for-horses"

type testEnv struct {
	t      *testing.T
	server *webserver.AdminServer
	mem    *kv.MemoryStore
	cookie *http.Cookie
}

func newEnv(t *testing.T, tweak ...func(*config.AppConfig)) *testEnv {
	t.Helper()
	cfg := config.DefaultAppConfig()
	cfg.Storage.Type = "memory"
	cfg.Admin.Password = testPassword
	cfg.Advisor.Provider = "none"
	for _, f := range tweak {
		f(cfg)
	}
	require.NoError(t, metrics.InitMetrics(""))
	mem := kv.NewMemoryStore()
	a := app.NewApplication(cfg)
	a.Bootstrap(mem)
	t.Cleanup(a.Release)

	env := &testEnv{t: t, server: webserver.Init(a), mem: mem}
	Init()
	return env
}

func (e *testEnv) do(method, path string, body interface{}, contentType string) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
		if contentType == "" {
			contentType = echo.MIMEApplicationJSON
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login() {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/admin/login", map[string]string{"password": testPassword}, "")
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == webserver.SessionName {
			e.cookie = c
		}
	}
	require.NotNil(e.t, e.cookie)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestLogin(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodGet, "/admin/api/catalog", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/admin/login", map[string]string{"password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_PASSWORD", decode(t, rec)["error"])

	rec = env.do(http.MethodPost, "/admin/login", "password="+testPassword, echo.MIMEApplicationForm)
	assert.Equal(t, http.StatusOK, rec.Code)

	env.login()
	rec = env.do(http.MethodGet, "/admin/session", nil, "")
	assert.Equal(t, true, decode(t, rec)["authenticated"])
	rec = env.do(http.MethodGet, "/admin/api/catalog", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "none", decode(t, rec)["source"])
}

func TestCatalogCRUD(t *testing.T) {
	env := newEnv(t)
	env.login()

	rec := env.do(http.MethodPost, "/admin/api/catalog", map[string]interface{}{
		"id": 99, "name": "SafeChoice Senior", "category": "Grain & Feed", "vendor": "Nutrena", "price": 27.99,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decode(t, rec)["product"].(map[string]interface{})
	assert.Equal(t, 1.0, product["id"])
	assert.Equal(t, true, product["inStock"])
	assert.NotEmpty(t, product["availabilityNote"])

	rec = env.do(http.MethodPatch, "/admin/api/catalog/1", map[string]interface{}{"price": 25.5, "featured": true}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	product = decode(t, rec)["product"].(map[string]interface{})
	assert.Equal(t, 25.5, product["price"])
	assert.Equal(t, "SafeChoice Senior", product["name"])

	rec = env.do(http.MethodGet, "/admin/api/catalog/1", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPatch, "/admin/api/catalog/42", map[string]interface{}{"price": 1}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec)["error"])

	rec = env.do(http.MethodPatch, "/admin/api/catalog/abc", map[string]interface{}{"price": 1}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/admin/api/catalog", map[string]interface{}{"name": "Bad", "price": -1}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/admin/api/catalog/search?name=safechoice+senior", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decode(t, rec)["id"])

	rec = env.do(http.MethodGet, "/admin/api/catalog/summary", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, "/admin/api/catalog/1", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodDelete, "/admin/api/catalog/1", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// deleted ids are never reused
	rec = env.do(http.MethodPost, "/admin/api/catalog", map[string]interface{}{"name": "Timothy Hay", "price": 24}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2.0, decode(t, rec)["product"].(map[string]interface{})["id"])
}

func TestCatalogReplaceAndPublic(t *testing.T) {
	env := newEnv(t)
	env.login()

	rec := env.do(http.MethodPut, "/admin/api/catalog", map[string]interface{}{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPut, "/admin/api/catalog", map[string]interface{}{
		"products": []map[string]interface{}{
			{"id": 5, "name": "Pine Shavings", "price": 8.5},
			{"id": 6, "name": "Pine Pellets", "price": 7},
		},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2.0, decode(t, rec)["count"])

	env.cookie = nil
	rec = env.do(http.MethodGet, "/api/public/catalog", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["products"], 2)

	rec = env.do(http.MethodGet, "/api/public/catalog/search?q=pine+p", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode(t, rec)["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Pine Pellets", products[0].(map[string]interface{})["name"])

	rec = env.do(http.MethodGet, "/api/public/products", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 2)
}

func TestCSVExportImport(t *testing.T) {
	env := newEnv(t)
	env.login()

	csvText := "Name,Price,InStock,Features\nAlfalfa Bale,32,Yes,High protein; 3-string\nBermuda Bale,18,No,\n"
	rec := env.do(http.MethodPost, "/admin/api/catalog/import?dryRun=true", csvText, "text/csv")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2.0, decode(t, rec)["added"])

	rec = env.do(http.MethodGet, "/admin/api/catalog", nil, "")
	assert.Equal(t, "none", decode(t, rec)["source"])

	rec = env.do(http.MethodPost, "/admin/api/catalog/import", map[string]string{"csv": csvText}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, 2.0, out["added"])
	assert.Equal(t, 2.0, out["count"])

	// same names update in place
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "catalog.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("name,price\nalfalfa bale,35\n"))
	require.NoError(t, w.Close())
	rec = env.do(http.MethodPost, "/admin/api/catalog/import", body.Bytes(), w.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out = decode(t, rec)
	assert.Equal(t, 1.0, out["updated"])
	assert.Equal(t, 2.0, out["count"])

	rec = env.do(http.MethodPost, "/admin/api/catalog/import", "Price\n3\n", "text/csv")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/admin/api/catalog/export.csv", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")
	assert.Contains(t, rec.Body.String(), `"alfalfa bale","Grain & Feed","","35"`)
	assert.Contains(t, rec.Body.String(), `"Bermuda Bale"`)

	rec = env.do(http.MethodGet, "/admin/api/catalog/export.xlsx", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func imageUpload(t *testing.T, fields map[string]string, data []byte, mime string) ([]byte, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
	h.Set("Content-Type", mime)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write(data)
	require.NoError(t, w.Close())
	return body.Bytes(), w.FormDataContentType()
}

func TestImageUploadAndServe(t *testing.T) {
	env := newEnv(t)
	env.login()

	rec := env.do(http.MethodPost, "/admin/api/catalog", map[string]interface{}{"name": "Fly Spray", "price": 12}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	png := []byte("\x89PNG\r\n\x1a\n0000")
	body, ctype := imageUpload(t, map[string]string{"productId": "1", "attach": "true"}, png, "application/octet-stream")
	rec = env.do(http.MethodPost, "/admin/api/catalog/upload-image", body, ctype)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "img_1", out["key"])
	assert.Equal(t, "/admin/api/catalog/image/img_1", out["url"])
	assert.Equal(t, "img_1", out["product"].(map[string]interface{})["imageKey"])

	env.cookie = nil
	rec = env.do(http.MethodGet, "/admin/api/catalog/image/img_1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
	assert.Equal(t, png, rec.Body.Bytes())

	rec = env.do(http.MethodGet, "/admin/api/catalog/image/img_missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(http.MethodGet, "/admin/api/catalog/image/catalog_products", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImageUploadLimits(t *testing.T) {
	env := newEnv(t)
	env.login()

	body, ctype := imageUpload(t, nil, bytes.Repeat([]byte{0xff}, 801*1024), "image/jpeg")
	rec := env.do(http.MethodPost, "/admin/api/catalog/upload-image", body, ctype)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	body, ctype = imageUpload(t, nil, bytes.Repeat([]byte{0xff}, 800*1024), "image/jpeg")
	rec = env.do(http.MethodPost, "/admin/api/catalog/upload-image", body, ctype)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(decode(t, rec)["key"].(string), "img_"))

	rec = env.do(http.MethodPost, "/admin/api/catalog/upload-image", "", echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/admin/api/catalog/orphans", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["orphans"], 1)
}

func TestChatbotSettings(t *testing.T) {
	env := newEnv(t)
	env.login()

	rec := env.do(http.MethodGet, "/admin/api/chatbot/rules", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bri", decode(t, rec)["name"])

	rec = env.do(http.MethodPut, "/admin/api/chatbot/rules", map[string]interface{}{
		"name": "Maisie", "tone": "Casual", "length": "short", "avoid": "competitor prices", "welcome": "Hi there!",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/admin/api/chatbot/kb", map[string]interface{}{
		"category": "policy", "question": "Do you deliver?", "answer": "Free over $150.", "priority": "true",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = env.do(http.MethodPost, "/admin/api/chatbot/kb", map[string]interface{}{"question": "No answer"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPut, "/admin/api/chatbot/kb/0", map[string]interface{}{
		"question": "Do you deliver to Wellington?", "answer": "Yes, free over $150.",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(http.MethodPut, "/admin/api/chatbot/kb/9", map[string]interface{}{"question": "q", "answer": "a"}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/admin/api/chatbot/prompt", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	prompt := decode(t, rec)["prompt"].(string)
	assert.Contains(t, prompt, "You are Maisie")
	assert.Contains(t, prompt, "NEVER discuss: competitor prices")
	assert.Contains(t, prompt, "Q: Do you deliver to Wellington?\nA: Yes, free over $150.")

	env.cookie = nil
	rec = env.do(http.MethodGet, "/api/public/chatbot_rules", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "Maisie", data["name"])
	assert.Equal(t, "Hi there!", data["welcome"])
	assert.NotContains(t, data, "avoid")

	env.login()
	rec = env.do(http.MethodDelete, "/admin/api/chatbot/kb/0", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["entries"])
}

func TestUpdateKnowledgeEntryByIndex(t *testing.T) {
	env := newEnv(t)
	env.login()

	for _, q := range []string{"Hours?", "Parking?"} {
		rec := env.do(http.MethodPost, "/admin/api/chatbot/kb", map[string]interface{}{"question": q, "answer": "Ask us."}, "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := env.do(http.MethodPut, "/admin/api/chatbot/kb/1", map[string]interface{}{
		"index": 0, "question": "Is there parking?", "answer": "Yes, out front.",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entries := decode(t, rec)["entries"].([]interface{})
	require.Len(t, entries, 2)
	assert.Equal(t, "Hours?", entries[0].(map[string]interface{})["question"], "index comes from the path only")
	assert.Equal(t, "Is there parking?", entries[1].(map[string]interface{})["question"])

	rec = env.do(http.MethodPut, "/admin/api/chatbot/kb/-1", map[string]interface{}{"question": "q", "answer": "a"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatFallsBackWithoutCompleter(t *testing.T) {
	env := newEnv(t)
	before := metrics.Counter(metrics.ChatDegraded)

	rec := env.do(http.MethodPost, "/api/chat", map[string]interface{}{
		"messages": []map[string]string{{"role": "user", "content": "What should I feed a senior horse?"}},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, true, out["degraded"])
	assert.Contains(t, out["reply"], "(561) 633-6003")
	assert.Equal(t, before+1, metrics.Counter(metrics.ChatDegraded))
}

func TestTestChatUsesUnsavedSettings(t *testing.T) {
	var got struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"We open at 8."}}]}`))
	}))
	defer llm.Close()

	env := newEnv(t, func(cfg *config.AppConfig) {
		cfg.Advisor.Provider = "openai"
		cfg.Advisor.BaseURL = llm.URL
		cfg.Advisor.APIKey = "sk-test"
	})
	env.login()

	rec := env.do(http.MethodPost, "/admin/api/test-chat", map[string]interface{}{
		"message":   "When do you open?",
		"botRules":  map[string]interface{}{"name": "Pip", "tone": "professional"},
		"kbEntries": []map[string]interface{}{{"question": "Hours?", "answer": "8am-6pm", "addedAt": "March 1, 2025"}},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, "We open at 8.", out["reply"])
	assert.Nil(t, out["degraded"])

	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, "You are Pip")
	assert.Contains(t, got.Messages[0].Content, "Q: Hours?\nA: 8am-6pm")
	assert.Equal(t, "When do you open?", got.Messages[1].Content)

	rec = env.do(http.MethodPost, "/admin/api/test-chat", map[string]interface{}{"message": " "}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommend(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodPost, "/api/recommend", map[string]interface{}{
		"animalType": "senior", "activityLevel": "light", "healthConcerns": []string{"digestive", "bogus"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	recs := out["recommendations"].([]interface{})
	assert.NotEmpty(t, recs)
	assert.LessOrEqual(t, len(recs), 3)
	profile := out["profile"].(map[string]interface{})
	assert.Equal(t, []interface{}{"digestive"}, profile["healthConcerns"])

	rec = env.do(http.MethodPost, "/api/recommend", map[string]interface{}{}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["recommendations"], 3)
}

func TestContactAndInquiries(t *testing.T) {
	env := newEnv(t)

	rec := env.do(http.MethodPost, "/api/contact", map[string]string{
		"name": "Ann", "email": "ann@example.com", "message": "Do you carry Cavalor?",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Thank you! We will contact you shortly.", decode(t, rec)["message"])

	rec = env.do(http.MethodPost, "/api/contact", map[string]string{"name": "NoContact", "message": "hi"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/admin/api/inquiries", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env.login()
	rec = env.do(http.MethodGet, "/admin/api/inquiries?perPage=10", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, 1.0, out["total"])
	item := out["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Ann", item["name"])

	rec = env.do(http.MethodGet, "/admin/api/inquiries?since=garbage-date", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDataKeys(t *testing.T) {
	env := newEnv(t)
	env.login()

	rec := env.do(http.MethodPut, "/admin/api/data/site_content", map[string]interface{}{"hero": "Quality feed since 1998"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodGet, "/admin/api/data/site_content", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Quality feed since 1998", decode(t, rec)["data"].(map[string]interface{})["hero"])

	rec = env.do(http.MethodGet, "/admin/api/data/reviews", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["data"])

	rec = env.do(http.MethodPut, "/admin/api/data/catalog_products", []interface{}{}, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(http.MethodPut, "/admin/api/data/site_content", "{not json", echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.cookie = nil
	rec = env.do(http.MethodGet, "/api/public/site_content", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodGet, "/api/public/contacts", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStorageOutageMapsTo503(t *testing.T) {
	env := newEnv(t)
	env.login()
	env.mem.FailWith = assert.AnError
	defer func() { env.mem.FailWith = nil }()

	rec := env.do(http.MethodGet, "/admin/api/catalog", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "STORAGE_UNAVAILABLE", decode(t, rec)["error"])

	// the conversational surface still answers
	rec = env.do(http.MethodPost, "/api/chat", map[string]interface{}{
		"messages": []map[string]string{{"role": "user", "content": "hello"}},
	}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsAndHealth(t *testing.T) {
	env := newEnv(t)
	rec := env.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	env.login()
	rec = env.do(http.MethodPost, "/admin/api/catalog", map[string]interface{}{"name": "Beet Pulp", "price": 19}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodGet, "/admin/api/metrics/"+metrics.CatalogWrites, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.GreaterOrEqual(t, out["total"].(float64), 1.0)
	assert.NotEmpty(t, out["points"])

	rec = env.do(http.MethodGet, "/admin/api/metrics/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
