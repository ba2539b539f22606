package advisor

import (
	"fmt"
	"strings"

	"github.com/britishfeed/feedstore/config"
	"github.com/britishfeed/feedstore/internal/domain"
)

const (
	DefaultAssistantName  = "Bri"
	DefaultCallToAction   = "Visit us or call (561) 633-6003!"
	knowledgeBaseHeading  = "KNOWLEDGE BASE:"
	knowledgeEntryDivider = "\n\n"
)

var tonePhrases = map[string]string{
	domain.ToneFriendly:     "friendly, warm, and helpful",
	domain.ToneProfessional: "professional, knowledgeable, and expert",
	domain.ToneCasual:       "casual, approachable, and conversational",
	domain.ToneDetailed:     "detailed, technical, and thorough",
}

var lengthInstructions = map[string]string{
	domain.LengthShort:  "very short, 1-2 sentences",
	domain.LengthMedium: "concise, 3-5 sentences",
	domain.LengthLong:   "detailed and complete",
}

// TonePhrase resolves a tone; unknown values fall back to friendly.
func TonePhrase(tone string) string {
	if p, ok := tonePhrases[strings.ToLower(strings.TrimSpace(tone))]; ok {
		return p
	}
	return tonePhrases[domain.ToneFriendly]
}

// LengthInstruction resolves a response length; unknown values fall back to medium.
func LengthInstruction(length string) string {
	if l, ok := lengthInstructions[strings.ToLower(strings.TrimSpace(length))]; ok {
		return l
	}
	return lengthInstructions[domain.LengthMedium]
}

// StoreFacts identity block rendered at the top of every prompt.
type StoreFacts struct {
	Name          string
	Address       string
	Area          string
	Phone         string
	DeliveryAreas []string
	DeliveryMin   int
}

func DefaultStoreFacts() StoreFacts {
	return StoreFactsFromConfig(config.DefaultAppConfig().Store)
}

func StoreFactsFromConfig(c config.StoreConfig) StoreFacts {
	return StoreFacts{
		Name:          c.Name,
		Address:       c.Address,
		Area:          c.Area,
		Phone:         c.Phone,
		DeliveryAreas: append([]string(nil), c.DeliveryAreas...),
		DeliveryMin:   c.DeliveryMin,
	}
}

func (f StoreFacts) lines() []string {
	var out []string
	if f.Address != "" || f.Phone != "" {
		parts := []string{}
		if f.Address != "" {
			parts = append(parts, "Store address: "+f.Address+".")
		}
		if f.Phone != "" {
			parts = append(parts, "Phone: "+f.Phone+".")
		}
		out = append(out, strings.Join(parts, " "))
	}
	if len(f.DeliveryAreas) > 0 {
		delivery := "Free delivery"
		if f.DeliveryMin > 0 {
			delivery += fmt.Sprintf(" ($%d minimum order)", f.DeliveryMin)
		}
		out = append(out, delivery+" to "+strings.Join(f.DeliveryAreas, ", ")+".")
	}
	return out
}

// BuildSystemPrompt assembles the system instruction with the default store facts.
func BuildSystemPrompt(persona domain.PersonaConfig, entries []domain.KnowledgeEntry) string {
	return DefaultStoreFacts().BuildSystemPrompt(persona, entries)
}

// BuildSystemPrompt renders persona and knowledge into a single instruction.
// Entries keep their stored order; priority does not move them. The call to
// action is always the final line.
func (f StoreFacts) BuildSystemPrompt(persona domain.PersonaConfig, entries []domain.KnowledgeEntry) string {
	name := strings.TrimSpace(persona.Name)
	if name == "" {
		name = DefaultAssistantName
	}
	cta := strings.TrimSpace(persona.ClosingCallToAction)
	if cta == "" {
		cta = DefaultCallToAction
	}

	intro := "You are " + name + ", the AI assistant for " + f.Name
	if f.Area != "" {
		intro += " in " + f.Area
	}
	lines := []string{intro + "."}
	lines = append(lines, f.lines()...)
	lines = append(lines,
		"You are "+TonePhrase(persona.Tone)+".",
		"Keep responses "+LengthInstruction(persona.ResponseLength)+".",
	)
	if avoid := strings.TrimSpace(persona.MustAvoidTopics); avoid != "" {
		lines = append(lines, "NEVER discuss: "+avoid)
	}
	// custom instructions go in as written, whitespace included
	if persona.CustomInstructions != "" {
		lines = append(lines, persona.CustomInstructions)
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(lines, "\n"))
	if kb := knowledgeSection(entries); kb != "" {
		sb.WriteString("\n\n")
		sb.WriteString(kb)
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("\n")
	}
	sb.WriteString("Always end with: " + cta)
	return sb.String()
}

func knowledgeSection(entries []domain.KnowledgeEntry) string {
	pairs := make([]string, 0, len(entries))
	for _, e := range entries {
		q, a := strings.TrimSpace(e.Question), strings.TrimSpace(e.Answer)
		if q == "" && a == "" {
			continue
		}
		pairs = append(pairs, "Q: "+q+"\nA: "+a)
	}
	if len(pairs) == 0 {
		return ""
	}
	return knowledgeBaseHeading + "\n" + strings.Join(pairs, knowledgeEntryDivider)
}
