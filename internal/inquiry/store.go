// Package inquiry keeps contact-form submissions and notifies the shop by mail.
package inquiry

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/britishfeed/feedstore/internal/kv"
	"github.com/britishfeed/feedstore/pkg/common"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Key holds the submissions as one JSON array, newest last.
const Key = "contacts"

// MaxMessageLen bounds the free-text message.
const MaxMessageLen = 4000

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Notifier is told about every accepted inquiry.
type Notifier interface {
	Notify(inq domain.Inquiry)
}

type Store struct {
	kv       kv.Store
	notifier Notifier
	now      func() time.Time
	mu       sync.Mutex
}

func NewStore(store kv.Store, notifier Notifier) *Store {
	return &Store{kv: store, notifier: notifier, now: time.Now}
}

func (s *Store) load(ctx context.Context) ([]domain.Inquiry, error) {
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" || raw == "null" {
		return []domain.Inquiry{}, nil
	}
	var items []domain.Inquiry
	if err := json.UnmarshalFromString(raw, &items); err != nil {
		return nil, errors.Wrapf(domain.ErrCorrupt, "%s: %v", Key, err)
	}
	return items, nil
}

func validate(inq *domain.Inquiry) error {
	inq.Name = strings.TrimSpace(inq.Name)
	inq.Email = strings.TrimSpace(inq.Email)
	inq.Phone = strings.TrimSpace(inq.Phone)
	inq.Interest = strings.TrimSpace(inq.Interest)
	inq.Message = strings.TrimSpace(inq.Message)
	if inq.Name == "" {
		return errors.Wrap(domain.ErrInvalidInput, "name is required")
	}
	if inq.Email == "" && inq.Phone == "" {
		return errors.Wrap(domain.ErrInvalidInput, "email or phone is required")
	}
	if inq.Email != "" {
		if _, err := mail.ParseAddress(inq.Email); err != nil {
			return errors.Wrapf(domain.ErrInvalidInput, "email %q is not valid", inq.Email)
		}
	}
	if inq.Message == "" {
		return errors.Wrap(domain.ErrInvalidInput, "message is required")
	}
	if len(inq.Message) > MaxMessageLen {
		return errors.Wrapf(domain.ErrInvalidInput, "message longer than %d characters", MaxMessageLen)
	}
	return nil
}

// Submit validates and appends inq, assigning its id and timestamp.
func (s *Store) Submit(ctx context.Context, inq domain.Inquiry) (domain.Inquiry, error) {
	if err := validate(&inq); err != nil {
		return domain.Inquiry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx)
	if err != nil {
		return domain.Inquiry{}, err
	}
	inq.ID = common.UUIDint64()
	inq.CreatedAt = s.now().UTC()
	items = append(items, inq)

	raw, err := json.MarshalToString(items)
	if err != nil {
		return domain.Inquiry{}, errors.Wrap(err, "encode inquiries")
	}
	if err := s.kv.Put(ctx, Key, raw); err != nil {
		return domain.Inquiry{}, err
	}
	zap.L().Info("inquiry received",
		zap.String("namespace", "inquiry"),
		zap.Int64("id", inq.ID),
		zap.String("interest", inq.Interest))
	if s.notifier != nil {
		s.notifier.Notify(inq)
	}
	return inq, nil
}

// List returns inquiries newest first. since, when set, is any date layout
// dateparse understands and drops older entries.
func (s *Store) List(ctx context.Context, since string) ([]domain.Inquiry, error) {
	var cutoff time.Time
	if since = strings.TrimSpace(since); since != "" {
		t, err := dateparse.ParseAny(since)
		if err != nil {
			return nil, errors.Wrapf(domain.ErrInvalidInput, "since %q: %v", since, err)
		}
		cutoff = t
	}
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Inquiry, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		if !cutoff.IsZero() && items[i].CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, items[i])
	}
	return out, nil
}
