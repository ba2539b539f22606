package domain

import "time"

// Tone values known to the prompt assembler.
const (
	ToneFriendly     = "friendly"
	ToneProfessional = "professional"
	ToneCasual       = "casual"
	ToneDetailed     = "detailed"
)

// Response length values known to the prompt assembler.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// PersonaConfig is the configurable voice of the chat assistant.
// JSON keys match the documents the admin console has always stored.
type PersonaConfig struct {
	Name                string `json:"name"`
	Tone                string `json:"tone"`
	ResponseLength      string `json:"length"`
	MustAvoidTopics     string `json:"avoid"`
	CustomInstructions  string `json:"customPrompt"`
	ClosingCallToAction string `json:"cta"`
	Welcome             string `json:"welcome,omitempty"`
}

// Knowledge entry categories.
const (
	KnowledgeProduct        = "product"
	KnowledgePolicy         = "policy"
	KnowledgeRecommendation = "recommendation"
	KnowledgeCustom         = "custom"
)

// KnowledgeEntry one operator-authored Q/A fact. Priority is an emphasis hint only.
type KnowledgeEntry struct {
	Category string    `json:"category"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Priority bool      `json:"priority"`
	AddedAt  time.Time `json:"addedAt,omitempty"`
}

// ChatTurn one message of a conversation handed to the completion collaborator.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
