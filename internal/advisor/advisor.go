package advisor

import (
	"context"
	"strings"

	"github.com/britishfeed/feedstore/internal/domain"
	"go.uber.org/zap"
)

// FallbackReply is returned whenever the completion service cannot answer.
const FallbackReply = "I apologize, I could not generate a response. Please call us at (561) 633-6003 for assistance."

// MaxTurns bounds how much conversation history is forwarded.
const MaxTurns = 20

// Reply is the outcome of a chat exchange. Degraded marks the fallback reply.
type Reply struct {
	Reply    string `json:"reply"`
	Degraded bool   `json:"degraded,omitempty"`
}

// Advisor answers chat turns using the stored persona and knowledge.
type Advisor struct {
	settings  *Settings
	facts     StoreFacts
	completer Completer
}

func New(settings *Settings, facts StoreFacts, completer Completer) *Advisor {
	return &Advisor{settings: settings, facts: facts, completer: completer}
}

// SystemPrompt renders the prompt from the stored settings. Unreadable
// settings fall back to the defaults.
func (a *Advisor) SystemPrompt(ctx context.Context) string {
	persona, err := a.settings.Persona(ctx)
	if err != nil {
		zap.L().Warn("persona unavailable, using default", zap.String("namespace", "advisor"), zap.Error(err))
		persona = DefaultPersona()
	}
	entries, err := a.settings.Knowledge(ctx)
	if err != nil {
		zap.L().Warn("knowledge base unavailable", zap.String("namespace", "advisor"), zap.Error(err))
		entries = nil
	}
	return a.facts.BuildSystemPrompt(persona, entries)
}

// Chat answers the conversation with the stored settings. It never fails.
func (a *Advisor) Chat(ctx context.Context, turns []domain.ChatTurn) Reply {
	return a.complete(ctx, a.SystemPrompt(ctx), turns)
}

// Preview answers a single message with unsaved settings, for the admin test console.
func (a *Advisor) Preview(ctx context.Context, persona domain.PersonaConfig, entries []domain.KnowledgeEntry, message string) Reply {
	turns := []domain.ChatTurn{{Role: "user", Content: message}}
	return a.complete(ctx, a.facts.BuildSystemPrompt(persona, entries), turns)
}

func (a *Advisor) complete(ctx context.Context, system string, turns []domain.ChatTurn) Reply {
	turns = sanitizeTurns(turns)
	if len(turns) == 0 || a.completer == nil {
		return Reply{Reply: FallbackReply, Degraded: true}
	}
	text, err := a.completer.Complete(ctx, system, turns)
	if err != nil {
		zap.L().Error("completion failed",
			zap.String("namespace", "advisor"),
			zap.Int("turns", len(turns)),
			zap.Error(err))
		return Reply{Reply: FallbackReply, Degraded: true}
	}
	return Reply{Reply: strings.TrimSpace(text)}
}

// sanitizeTurns drops empty and system turns and keeps the most recent MaxTurns.
func sanitizeTurns(turns []domain.ChatTurn) []domain.ChatTurn {
	out := make([]domain.ChatTurn, 0, len(turns))
	for _, t := range turns {
		role := strings.ToLower(strings.TrimSpace(t.Role))
		if role != "user" && role != "assistant" {
			continue
		}
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		out = append(out, domain.ChatTurn{Role: role, Content: t.Content})
	}
	if len(out) > MaxTurns {
		out = out[len(out)-MaxTurns:]
	}
	return out
}
