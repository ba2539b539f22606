// Package advisor assembles the chat assistant's system prompt and talks to the
// external completion service.
package advisor

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/britishfeed/feedstore/internal/kv"
	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const (
	PersonaKey   = "chatbot_rules"
	KnowledgeKey = "chatbot_kb"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultPersona is used until an operator saves one.
func DefaultPersona() domain.PersonaConfig {
	return domain.PersonaConfig{
		Name:                DefaultAssistantName,
		Tone:                domain.ToneFriendly,
		ResponseLength:      domain.LengthMedium,
		ClosingCallToAction: DefaultCallToAction,
		Welcome:             "Hi! I'm Bri. Ask me anything about feed, hay or supplements for your horse.",
	}
}

// Settings persists the persona and the knowledge list in the key-value primitive.
type Settings struct {
	kv  kv.Store
	now func() time.Time
}

func NewSettings(store kv.Store) *Settings {
	return &Settings{kv: store, now: time.Now}
}

var timeType = reflect.TypeOf(time.Time{})

// lenientTimeHook parses any common date layout; unparsable dates decode as zero.
func lenientTimeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return time.Time{}, nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, nil
	}
	return t, nil
}

func decodeLenient(input interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
		DecodeHook:       lenientTimeHook,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// DecodePersona decodes a loosely typed persona document such as the admin
// console posts. Missing fields stay empty and fall back at prompt time.
func DecodePersona(doc map[string]interface{}) (domain.PersonaConfig, error) {
	var p domain.PersonaConfig
	if err := decodeLenient(doc, &p); err != nil {
		return domain.PersonaConfig{}, errors.Wrapf(domain.ErrInvalidInput, "persona: %v", err)
	}
	return p, nil
}

// DecodeKnowledge decodes a loosely typed list of knowledge entries.
func DecodeKnowledge(doc []interface{}) ([]domain.KnowledgeEntry, error) {
	entries := []domain.KnowledgeEntry{}
	if err := decodeLenient(doc, &entries); err != nil {
		return nil, errors.Wrapf(domain.ErrInvalidInput, "knowledge: %v", err)
	}
	return entries, nil
}

func (s *Settings) loadRaw(ctx context.Context, key string, into interface{}) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" || raw == "null" {
		return false, nil
	}
	if err := json.UnmarshalFromString(raw, into); err != nil {
		return false, errors.Wrapf(domain.ErrCorrupt, "%s: %v", key, err)
	}
	return true, nil
}

func (s *Settings) store(ctx context.Context, key string, v interface{}) error {
	raw, err := json.MarshalToString(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return s.kv.Put(ctx, key, raw)
}

// Persona returns the stored persona, or DefaultPersona when none was saved.
// Stored documents are decoded leniently ("priority": "true", numbers as strings).
func (s *Settings) Persona(ctx context.Context) (domain.PersonaConfig, error) {
	var doc map[string]interface{}
	found, err := s.loadRaw(ctx, PersonaKey, &doc)
	if err != nil {
		return domain.PersonaConfig{}, err
	}
	if !found {
		return DefaultPersona(), nil
	}
	var p domain.PersonaConfig
	if err := decodeLenient(doc, &p); err != nil {
		return domain.PersonaConfig{}, errors.Wrapf(domain.ErrCorrupt, "%s: %v", PersonaKey, err)
	}
	return p, nil
}

func (s *Settings) SavePersona(ctx context.Context, p domain.PersonaConfig) (domain.PersonaConfig, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Tone = strings.ToLower(strings.TrimSpace(p.Tone))
	p.ResponseLength = strings.ToLower(strings.TrimSpace(p.ResponseLength))
	if err := s.store(ctx, PersonaKey, p); err != nil {
		return domain.PersonaConfig{}, err
	}
	return p, nil
}

// Knowledge returns the entries in stored order.
func (s *Settings) Knowledge(ctx context.Context) ([]domain.KnowledgeEntry, error) {
	var doc []interface{}
	found, err := s.loadRaw(ctx, KnowledgeKey, &doc)
	if err != nil {
		return nil, err
	}
	entries := []domain.KnowledgeEntry{}
	if !found {
		return entries, nil
	}
	if err := decodeLenient(doc, &entries); err != nil {
		return nil, errors.Wrapf(domain.ErrCorrupt, "%s: %v", KnowledgeKey, err)
	}
	return entries, nil
}

// ReplaceKnowledge overwrites the whole list after validating every entry.
func (s *Settings) ReplaceKnowledge(ctx context.Context, entries []domain.KnowledgeEntry) ([]domain.KnowledgeEntry, error) {
	out := make([]domain.KnowledgeEntry, 0, len(entries))
	for i, e := range entries {
		if err := s.normalizeEntry(&e); err != nil {
			return nil, errors.WithMessagef(err, "entry #%d", i+1)
		}
		out = append(out, e)
	}
	if err := s.store(ctx, KnowledgeKey, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Settings) AddKnowledge(ctx context.Context, e domain.KnowledgeEntry) ([]domain.KnowledgeEntry, error) {
	if err := s.normalizeEntry(&e); err != nil {
		return nil, err
	}
	entries, err := s.Knowledge(ctx)
	if err != nil {
		return nil, err
	}
	entries = append(entries, e)
	if err := s.store(ctx, KnowledgeKey, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateKnowledge replaces the entry at index, keeping its original AddedAt.
func (s *Settings) UpdateKnowledge(ctx context.Context, index int, e domain.KnowledgeEntry) ([]domain.KnowledgeEntry, error) {
	entries, err := s.Knowledge(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(entries) {
		return nil, errors.Wrapf(domain.ErrNotFound, "knowledge entry %d", index)
	}
	e.AddedAt = entries[index].AddedAt
	if err := s.normalizeEntry(&e); err != nil {
		return nil, err
	}
	entries[index] = e
	if err := s.store(ctx, KnowledgeKey, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Settings) DeleteKnowledge(ctx context.Context, index int) ([]domain.KnowledgeEntry, error) {
	entries, err := s.Knowledge(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(entries) {
		return nil, errors.Wrapf(domain.ErrNotFound, "knowledge entry %d", index)
	}
	entries = append(entries[:index], entries[index+1:]...)
	if err := s.store(ctx, KnowledgeKey, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Settings) normalizeEntry(e *domain.KnowledgeEntry) error {
	e.Question = strings.TrimSpace(e.Question)
	e.Answer = strings.TrimSpace(e.Answer)
	e.Category = strings.ToLower(strings.TrimSpace(e.Category))
	if e.Question == "" {
		return errors.Wrap(domain.ErrInvalidInput, "question is required")
	}
	if e.Answer == "" {
		return errors.Wrap(domain.ErrInvalidInput, "answer is required")
	}
	switch e.Category {
	case domain.KnowledgeProduct, domain.KnowledgePolicy, domain.KnowledgeRecommendation, domain.KnowledgeCustom:
	default:
		e.Category = domain.KnowledgeCustom
	}
	if e.AddedAt.IsZero() {
		e.AddedAt = s.now().UTC()
	}
	return nil
}
