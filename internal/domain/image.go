package domain

import "strings"

// BlobKeyPrefix every image blob key starts with it.
const BlobKeyPrefix = "img_"

// ImageServePath is where stored image blobs are served from.
const ImageServePath = "/admin/api/catalog/image/"

type ImageKind int

const (
	ImageNone ImageKind = iota
	ImageURL
	ImageBlob
)

// Image is either an externally hosted URL, a key into the blob store, or nothing.
type Image struct {
	kind ImageKind
	ref  string
}

func NoImage() Image { return Image{} }

// URLImage builds an external image reference. URLs that point at the store's own
// image endpoint are turned into blob references.
func URLImage(u string) Image {
	u = strings.TrimSpace(u)
	if u == "" {
		return Image{}
	}
	if key, ok := blobKeyFromURL(u); ok {
		return Image{kind: ImageBlob, ref: key}
	}
	return Image{kind: ImageURL, ref: u}
}

func BlobImage(key string) Image {
	key = strings.TrimSpace(key)
	if key == "" {
		return Image{}
	}
	return Image{kind: ImageBlob, ref: key}
}

func (i Image) Kind() ImageKind { return i.kind }

func (i Image) IsZero() bool { return i.kind == ImageNone }

// URL returns the external URL, empty unless Kind is ImageURL.
func (i Image) URL() string {
	if i.kind == ImageURL {
		return i.ref
	}
	return ""
}

// BlobKey returns the blob key, empty unless Kind is ImageBlob.
func (i Image) BlobKey() string {
	if i.kind == ImageBlob {
		return i.ref
	}
	return ""
}

// Href is the address a browser loads the image from.
func (i Image) Href() string {
	switch i.kind {
	case ImageURL:
		return i.ref
	case ImageBlob:
		return ImageServePath + i.ref
	}
	return ""
}

func blobKeyFromURL(u string) (string, bool) {
	idx := strings.Index(u, ImageServePath)
	if idx < 0 {
		return "", false
	}
	key := u[idx+len(ImageServePath):]
	if q := strings.IndexAny(key, "?#"); q >= 0 {
		key = key[:q]
	}
	if !strings.HasPrefix(key, BlobKeyPrefix) || strings.Contains(key, "/") {
		return "", false
	}
	return key, true
}
