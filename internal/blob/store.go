// Package blob stores uploaded product images in the key-value primitive as data URLs.
package blob

import (
	"context"
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/britishfeed/feedstore/internal/kv"
	"github.com/labstack/gommon/bytes"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MaxSize is the largest payload accepted by Put, in bytes.
const MaxSize = 800 * 1024

const DefaultMime = "image/jpeg"

var (
	mimeRe  = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9.+-]*/[a-zA-Z0-9][a-zA-Z0-9.+-]*$`)
	tokenRe = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// Blob is a decoded image payload.
type Blob struct {
	Mime string
	Data []byte
}

// Store persists bounded binary objects under img_ keys.
type Store struct {
	kv kv.Store
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// KeyFor builds a blob key from a caller token, usually the product id.
// An empty token, or one with nothing usable left after sanitising, falls back to the upload time.
func KeyFor(token string, now time.Time) string {
	token = tokenRe.ReplaceAllString(strings.TrimSpace(token), "")
	if token == "" {
		token = strconv.FormatInt(now.UnixMilli(), 10)
	}
	return domain.BlobKeyPrefix + token
}

// Put stores data under key. The size ceiling is checked before any storage I/O.
func (s *Store) Put(ctx context.Context, key string, data []byte, mime string) error {
	if len(data) > MaxSize {
		return errors.Wrapf(domain.ErrTooLarge, "image is %s, limit is %s",
			bytes.Format(int64(len(data))), bytes.Format(MaxSize))
	}
	if !strings.HasPrefix(key, domain.BlobKeyPrefix) || len(key) == len(domain.BlobKeyPrefix) {
		return errors.Wrapf(domain.ErrInvalidInput, "blob key %q must start with %s", key, domain.BlobKeyPrefix)
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mime == "" {
		mime = DefaultMime
	}
	if !mimeRe.MatchString(mime) {
		return errors.Wrapf(domain.ErrInvalidInput, "mime %q is not type/subtype", mime)
	}

	value := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	if err := s.kv.Put(ctx, key, value); err != nil {
		return err
	}
	zap.L().Info("image stored",
		zap.String("namespace", "blob"),
		zap.String("key", key),
		zap.String("mime", mime),
		zap.String("size", bytes.Format(int64(len(data)))))
	return nil
}

// Get returns the payload under key. Keys outside the img_ namespace are never served.
func (s *Store) Get(ctx context.Context, key string) (*Blob, error) {
	if !strings.HasPrefix(key, domain.BlobKeyPrefix) {
		return nil, errors.Wrapf(domain.ErrNotFound, "image %q", key)
	}
	value, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "image %q", key)
	}
	b, err := decodeDataURL(value)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrCorrupt, "image %q: %v", key, err)
	}
	return b, nil
}

// Keys lists stored image keys. Backends without key enumeration return nil.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	lister, ok := s.kv.(kv.Lister)
	if !ok {
		return nil, nil
	}
	return lister.Keys(ctx, domain.BlobKeyPrefix)
}

func decodeDataURL(value string) (*Blob, error) {
	rest, ok := strings.CutPrefix(value, "data:")
	if !ok {
		return nil, errors.New("missing data: scheme")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("missing payload separator")
	}
	mime, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return nil, errors.New("payload is not base64")
	}
	if mime == "" {
		mime = DefaultMime
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	return &Blob{Mime: mime, Data: data}, nil
}
