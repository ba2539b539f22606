package app

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/britishfeed/feedstore/internal/advisor"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// SessionSecretKey holds the generated cookie signing key when web.secret is not configured.
const SessionSecretKey = "web_session_secret"

// checkSessionSecret fills an empty web.secret from storage, generating and
// saving a random key on first start. When storage is down the key only lives
// for this process and admin sessions end with it.
func (a *Application) checkSessionSecret() {
	cfg := a.appConfig
	if strings.TrimSpace(cfg.Web.Secret) != "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stored, found, err := a.store.Get(ctx, SessionSecretKey)
	if err == nil && found && strings.TrimSpace(stored) != "" {
		cfg.Web.Secret = stored
		return
	}
	cfg.Web.Secret = hex.EncodeToString(securecookie.GenerateRandomKey(32))
	if err != nil {
		zap.L().Error("failed to query session secret, using a temporary one",
			zap.String("namespace", "webserver"), zap.Error(err))
		return
	}
	if err := a.store.Put(ctx, SessionSecretKey, cfg.Web.Secret); err != nil {
		zap.L().Error("failed to save session secret, using a temporary one",
			zap.String("namespace", "webserver"), zap.Error(err))
		return
	}
	zap.L().Info("initialized session secret", zap.String("namespace", "webserver"))
}

// checkPersona seeds the default assistant persona when none is stored.
// A stored but unreadable persona is reported and left alone.
func (a *Application) checkPersona() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, found, err := a.store.Get(ctx, advisor.PersonaKey)
	if err != nil {
		zap.L().Error("failed to query chatbot persona", zap.String("namespace", "advisor"), zap.Error(err))
		return
	}
	if found {
		if _, err := a.chatSettings.Persona(ctx); err != nil {
			zap.L().Warn("stored chatbot persona is unreadable, defaults apply until it is saved again",
				zap.String("namespace", "advisor"),
				zap.Error(err))
		}
		return
	}
	persona, err := a.chatSettings.SavePersona(ctx, advisor.DefaultPersona())
	if err != nil {
		zap.L().Error("failed to create default chatbot persona", zap.String("namespace", "advisor"), zap.Error(err))
		return
	}
	zap.L().Info("initialized default chatbot persona",
		zap.String("namespace", "advisor"),
		zap.String("name", persona.Name))
}

// checkKnowledge makes sure the knowledge base key holds a list.
func (a *Application) checkKnowledge() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, found, err := a.store.Get(ctx, advisor.KnowledgeKey)
	if err != nil {
		zap.L().Error("failed to query knowledge base", zap.String("namespace", "advisor"), zap.Error(err))
		return
	}
	if found {
		return
	}
	if _, err := a.chatSettings.ReplaceKnowledge(ctx, nil); err != nil {
		zap.L().Error("failed to create empty knowledge base", zap.String("namespace", "advisor"), zap.Error(err))
		return
	}
	zap.L().Info("initialized empty knowledge base", zap.String("namespace", "advisor"))
}
