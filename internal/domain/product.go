package domain

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// AvailabilityNote is stamped on every newly created product.
const AvailabilityNote = "Call (561) 633-6003 to confirm current availability and pricing"

// DefaultCategory applies to imported rows without a category.
const DefaultCategory = "Grain & Feed"

// Product represents one sellable catalog item
type Product struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Vendor           string   `json:"vendor,omitempty"`
	Price            float64  `json:"price"`
	InStock          bool     `json:"inStock"`
	Description      string   `json:"description"`
	Image            Image    `json:"-"`
	VideoURL         string   `json:"videoUrl,omitempty"`
	Protein          string   `json:"protein,omitempty"`
	Fat              string   `json:"fat,omitempty"`
	Fiber            string   `json:"fiber,omitempty"`
	BestFor          string   `json:"bestFor,omitempty"`
	Features         []string `json:"features"`
	Featured         bool     `json:"featured,omitempty"`
	AvailabilityNote string   `json:"availabilityNote,omitempty"`
}

type productAlias Product

type productJSON struct {
	productAlias
	ImageURL string `json:"imageUrl,omitempty"`
	ImageKey string `json:"imageKey,omitempty"`
	InStock  *bool  `json:"inStock"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	in := p.InStock
	out := productJSON{
		productAlias: productAlias(p),
		ImageURL:     p.Image.URL(),
		ImageKey:     p.Image.BlobKey(),
		InStock:      &in,
	}
	if out.Features == nil {
		out.Features = []string{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes both image fields; imageKey wins when a document carries both.
// A missing inStock defaults to true.
func (p *Product) UnmarshalJSON(data []byte) error {
	var in productJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Product(in.productAlias)
	p.InStock = in.InStock == nil || *in.InStock
	switch {
	case strings.TrimSpace(in.ImageKey) != "":
		p.Image = BlobImage(in.ImageKey)
	default:
		p.Image = URLImage(in.ImageURL)
	}
	return nil
}

// Normalize trims text fields and drops empty features.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Vendor = strings.TrimSpace(p.Vendor)
	p.VideoURL = strings.TrimSpace(p.VideoURL)
	features := make([]string, 0, len(p.Features))
	for _, f := range p.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	p.Features = features
}

// Validate checks the invariants every persisted product satisfies.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.Wrap(ErrInvalidInput, "name is required")
	}
	if p.Price < 0 {
		return errors.Wrapf(ErrInvalidInput, "price must be >= 0 (product %q)", p.Name)
	}
	for _, f := range p.Features {
		if strings.Contains(f, ";") {
			return errors.Wrapf(ErrInvalidInput, "feature %q must not contain ';'", f)
		}
	}
	return nil
}

// ProductPatch holds the fields a partial update supplies. Nil means untouched.
// ImageKey wins over ImageURL when both are set; an empty ImageURL clears the image.
type ProductPatch struct {
	Name        *string   `json:"name"`
	Category    *string   `json:"category"`
	Vendor      *string   `json:"vendor"`
	Price       *float64  `json:"price"`
	InStock     *bool     `json:"inStock"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"imageUrl"`
	ImageKey    *string   `json:"imageKey"`
	VideoURL    *string   `json:"videoUrl"`
	Protein     *string   `json:"protein"`
	Fat         *string   `json:"fat"`
	Fiber       *string   `json:"fiber"`
	BestFor     *string   `json:"bestFor"`
	Features    *[]string `json:"features"`
	Featured    *bool     `json:"featured"`
}

// IsEmpty reports whether the patch supplies no field at all.
func (pp ProductPatch) IsEmpty() bool {
	return pp == ProductPatch{}
}

// Apply merges the supplied fields into p. Id and availability note are never touched.
func (pp ProductPatch) Apply(p *Product) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&p.Name, pp.Name)
	setString(&p.Category, pp.Category)
	setString(&p.Vendor, pp.Vendor)
	setString(&p.Description, pp.Description)
	setString(&p.VideoURL, pp.VideoURL)
	setString(&p.Protein, pp.Protein)
	setString(&p.Fat, pp.Fat)
	setString(&p.Fiber, pp.Fiber)
	setString(&p.BestFor, pp.BestFor)
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.InStock != nil {
		p.InStock = *pp.InStock
	}
	if pp.Featured != nil {
		p.Featured = *pp.Featured
	}
	if pp.Features != nil {
		p.Features = append([]string(nil), (*pp.Features)...)
	}
	switch {
	case pp.ImageKey != nil && strings.TrimSpace(*pp.ImageKey) != "":
		p.Image = BlobImage(*pp.ImageKey)
	case pp.ImageURL != nil:
		p.Image = URLImage(*pp.ImageURL)
	case pp.ImageKey != nil:
		p.Image = NoImage()
	}
}
