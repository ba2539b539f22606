package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/britishfeed/feedstore/internal/advisor"
	"github.com/britishfeed/feedstore/internal/webserver"
	"github.com/britishfeed/feedstore/pkg/metrics"
	"github.com/labstack/echo/v4"
)

type testChatPayload struct {
	Message   string                 `json:"message"`
	KBEntries []interface{}          `json:"kbEntries"`
	BotRules  map[string]interface{} `json:"botRules"`
}

func registerChatbotRoutes() {
	webserver.ApiGET("/chatbot/rules", getChatbotRules)
	webserver.ApiPUT("/chatbot/rules", putChatbotRules)
	webserver.ApiGET("/chatbot/kb", listKnowledge)
	webserver.ApiPOST("/chatbot/kb", addKnowledge)
	webserver.ApiPUT("/chatbot/kb", replaceKnowledge)
	webserver.ApiPUT("/chatbot/kb/:index", updateKnowledge)
	webserver.ApiDELETE("/chatbot/kb/:index", deleteKnowledge)
	webserver.ApiGET("/chatbot/prompt", getSystemPrompt)
	webserver.ApiPOST("/test-chat", postTestChat)
}

func getChatbotRules(c echo.Context) error {
	p, err := GetAppContext(c).ChatSettings().Persona(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to load chatbot rules")
	}
	return ok(c, p)
}

func putChatbotRules(c echo.Context) error {
	doc := map[string]interface{}{}
	if err := bindBody(c, &doc); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse chatbot rules", err.Error())
	}
	p, err := advisor.DecodePersona(doc)
	if err != nil {
		return failErr(c, err, "Invalid chatbot rules")
	}
	saved, err := GetAppContext(c).ChatSettings().SavePersona(c.Request().Context(), p)
	if err != nil {
		return failErr(c, err, "Failed to save chatbot rules")
	}
	return ok(c, map[string]interface{}{"ok": true, "rules": saved})
}

func listKnowledge(c echo.Context) error {
	entries, err := GetAppContext(c).ChatSettings().Knowledge(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Failed to load knowledge base")
	}
	return ok(c, map[string]interface{}{"entries": entries})
}

func addKnowledge(c echo.Context) error {
	doc := map[string]interface{}{}
	if err := bindBody(c, &doc); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse entry", err.Error())
	}
	decoded, err := advisor.DecodeKnowledge([]interface{}{doc})
	if err != nil {
		return failErr(c, err, "Invalid knowledge entry")
	}
	entries, err := GetAppContext(c).ChatSettings().AddKnowledge(c.Request().Context(), decoded[0])
	if err != nil {
		return failErr(c, err, "Failed to add knowledge entry")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"ok": true, "entries": entries})
}

func replaceKnowledge(c echo.Context) error {
	var doc []interface{}
	if err := bindBody(c, &doc); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Knowledge base must be an array", err.Error())
	}
	decoded, err := advisor.DecodeKnowledge(doc)
	if err != nil {
		return failErr(c, err, "Invalid knowledge base")
	}
	entries, err := GetAppContext(c).ChatSettings().ReplaceKnowledge(c.Request().Context(), decoded)
	if err != nil {
		return failErr(c, err, "Failed to save knowledge base")
	}
	return ok(c, map[string]interface{}{"ok": true, "entries": entries})
}

func parseIndexParam(c echo.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	return i, err == nil && i >= 0
}

func updateKnowledge(c echo.Context) error {
	index, valid := parseIndexParam(c)
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_INDEX", "Invalid entry index", nil)
	}
	doc := map[string]interface{}{}
	if err := bindBody(c, &doc); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse entry", err.Error())
	}
	decoded, err := advisor.DecodeKnowledge([]interface{}{doc})
	if err != nil {
		return failErr(c, err, "Invalid knowledge entry")
	}
	entries, err := GetAppContext(c).ChatSettings().UpdateKnowledge(c.Request().Context(), index, decoded[0])
	if err != nil {
		return failErr(c, err, "Failed to update knowledge entry")
	}
	return ok(c, map[string]interface{}{"ok": true, "entries": entries})
}

func deleteKnowledge(c echo.Context) error {
	index, valid := parseIndexParam(c)
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_INDEX", "Invalid entry index", nil)
	}
	entries, err := GetAppContext(c).ChatSettings().DeleteKnowledge(c.Request().Context(), index)
	if err != nil {
		return failErr(c, err, "Failed to delete knowledge entry")
	}
	return ok(c, map[string]interface{}{"ok": true, "entries": entries})
}

func getSystemPrompt(c echo.Context) error {
	prompt := GetAppContext(c).Advisor().SystemPrompt(c.Request().Context())
	return ok(c, map[string]interface{}{"prompt": prompt})
}

// postTestChat answers one message with the rules and entries being edited, unsaved.
func postTestChat(c echo.Context) error {
	var payload testChatPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse test chat", err.Error())
	}
	if strings.TrimSpace(payload.Message) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "message is required", nil)
	}
	persona, err := advisor.DecodePersona(payload.BotRules)
	if err != nil {
		return failErr(c, err, "Invalid chatbot rules")
	}
	entries, err := advisor.DecodeKnowledge(payload.KBEntries)
	if err != nil {
		return failErr(c, err, "Invalid knowledge base")
	}
	reply := GetAppContext(c).Advisor().Preview(c.Request().Context(), persona, entries, payload.Message)
	metrics.Incr(metrics.ChatRequests, 1)
	if reply.Degraded {
		metrics.Incr(metrics.ChatDegraded, 1)
	}
	return ok(c, reply)
}
