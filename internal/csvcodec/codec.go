// Package csvcodec converts the catalog to and from the spreadsheet-friendly CSV
// format the admin console imports and exports.
package csvcodec

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// Header is the fixed export column order. Import matches columns by name.
var Header = []string{
	"ID", "Name", "Category", "Vendor", "Price", "InStock", "Description",
	"ImageURL", "VideoURL", "Protein", "Fat", "Fiber", "BestFor", "Features", "Featured",
}

// FeatureSeparator joins the features list into one cell.
const FeatureSeparator = "; "

const bom = "\ufeff"

// Export renders products as CSV text with every field quoted.
func Export(products []domain.Product) string {
	var sb strings.Builder
	writeRow(&sb, Header)
	for _, p := range products {
		writeRow(&sb, Row(p))
	}
	return sb.String()
}

// Row renders one product in Header order.
func Row(p domain.Product) []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		p.Name,
		p.Category,
		p.Vendor,
		strconv.FormatFloat(p.Price, 'f', -1, 64),
		yesNo(p.InStock, "No"),
		p.Description,
		p.Image.Href(),
		p.VideoURL,
		p.Protein,
		p.Fat,
		p.Fiber,
		p.BestFor,
		strings.Join(p.Features, FeatureSeparator),
		yesNo(p.Featured, ""),
	}
}

func yesNo(v bool, no string) string {
	if v {
		return "Yes"
	}
	return no
}

func writeRow(sb *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(f, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
}

// ImportResult is the merged collection plus row counters.
type ImportResult struct {
	Products []domain.Product `json:"products"`
	Added    int              `json:"added"`
	Updated  int              `json:"updated"`
	Skipped  int              `json:"skipped"`
}

type importOptions struct {
	idFloor int64
}

type Option func(*importOptions)

// WithIDFloor makes new ids start above n, the catalog's high-water mark.
func WithIDFloor(n int64) Option {
	return func(o *importOptions) { o.idFloor = n }
}

type column int

const (
	colName column = iota
	colCategory
	colVendor
	colPrice
	colInStock
	colDescription
	colImage
	colVideo
	colProtein
	colFat
	colFiber
	colBestFor
	colFeatures
	colFeatured
)

var headerAliases = map[string]column{
	"name":        colName,
	"productname": colName,
	"category":    colCategory,
	"vendor":      colVendor,
	"brand":       colVendor,
	"price":       colPrice,
	"instock":     colInStock,
	"stock":       colInStock,
	"description": colDescription,
	"imageurl":    colImage,
	"image":       colImage,
	"videourl":    colVideo,
	"video":       colVideo,
	"protein":     colProtein,
	"fat":         colFat,
	"fiber":       colFiber,
	"fibre":       colFiber,
	"bestfor":     colBestFor,
	"features":    colFeatures,
	"featured":    colFeatured,
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, bom)))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// mapHeader resolves column positions; the first column claiming a field wins.
func mapHeader(header []string) map[column]int {
	cols := make(map[column]int)
	for i, h := range header {
		c, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, taken := cols[c]; !taken {
			cols[c] = i
		}
	}
	return cols
}

type row struct {
	values []string
	cols   map[column]int
}

// get returns the cell exactly as read; ok is false for a missing or empty cell.
func (r row) get(c column) (string, bool) {
	i, ok := r.cols[c]
	if !ok || i >= len(r.values) {
		return "", false
	}
	v := r.values[i]
	return v, v != ""
}

// keepQuotedCRLF doubles the CR of every CRLF inside a quoted field. The csv
// reader folds a line-ending CRLF to LF, so the doubled CR survives as the
// original CRLF while record terminators are left alone.
func keepQuotedCRLF(text string) string {
	if !strings.Contains(text, "\r\n") {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text) + 16)
	const (
		fieldStart = iota
		unquoted
		quoted
		afterQuote
	)
	state := fieldStart
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch state {
		case fieldStart, unquoted:
			switch {
			case ch == '"' && state == fieldStart:
				state = quoted
			case ch == ',' || ch == '\n':
				state = fieldStart
			default:
				if ch != '\r' {
					state = unquoted
				}
			}
		case quoted:
			switch {
			case ch == '"':
				state = afterQuote
			case ch == '\r' && i+1 < len(text) && text[i+1] == '\n':
				sb.WriteByte('\r')
			}
		case afterQuote:
			switch ch {
			case '"':
				state = quoted
			case ',', '\n':
				state = fieldStart
			default:
				if ch != '\r' {
					state = unquoted
				}
			}
		}
		sb.WriteByte(ch)
	}
	return sb.String()
}

// Import parses text and merges its rows into a copy of existing. A row whose
// name matches a product case-insensitively updates it in place; any other
// named row is appended with a freshly allocated id.
func Import(text string, existing []domain.Product, opts ...Option) (ImportResult, error) {
	o := importOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	// gocsv's tolerant reader accepts bare quotes in hand-edited sheets
	reader := gocsv.LazyCSVReader(strings.NewReader(keepQuotedCRLF(strings.TrimPrefix(text, bom))))
	var cr *csv.Reader
	if r, ok := reader.(*csv.Reader); ok {
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = false
		cr = r
	}

	header, err := reader.Read()
	if err == io.EOF {
		return ImportResult{}, errors.Wrap(domain.ErrInvalidInput, "csv is empty")
	}
	if err != nil {
		return ImportResult{}, errors.Wrapf(domain.ErrInvalidInput, "csv header: %v", err)
	}
	cols := mapHeader(header)
	if _, ok := cols[colName]; !ok {
		return ImportResult{}, errors.Wrap(domain.ErrInvalidInput, `csv must have a "Name" column`)
	}

	res := ImportResult{Products: make([]domain.Product, len(existing), len(existing)+16)}
	copy(res.Products, existing)
	byName := make(map[string]int, len(existing))
	nextID := o.idFloor
	for i, p := range res.Products {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if _, dup := byName[key]; !dup {
			byName[key] = i
		}
		if p.ID > nextID {
			nextID = p.ID
		}
	}

	for recordNo := 2; ; recordNo++ {
		values, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ImportResult{}, errors.Wrapf(domain.ErrInvalidInput, "csv record %d: %v", recordNo, err)
		}
		line := recordNo
		if cr != nil && len(values) > 0 {
			line, _ = cr.FieldPos(0)
		}
		r := row{values: values, cols: cols}
		name, _ := r.get(colName)
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			res.Skipped++
			continue
		}

		if idx, found := byName[key]; found {
			p := res.Products[idx]
			if err := merge(&p, r, line); err != nil {
				return ImportResult{}, err
			}
			res.Products[idx] = p
			res.Updated++
			continue
		}

		p := domain.Product{
			Name:             name,
			InStock:          true,
			Features:         []string{},
			AvailabilityNote: domain.AvailabilityNote,
		}
		if err := merge(&p, r, line); err != nil {
			return ImportResult{}, err
		}
		if _, hasCategory := cols[colCategory]; !hasCategory {
			p.Category = domain.DefaultCategory
		}
		nextID++
		p.ID = nextID
		byName[key] = len(res.Products)
		res.Products = append(res.Products, p)
		res.Added++
	}
	return res, nil
}

// merge overwrites p with every non-empty column of r. Text cells are kept
// byte for byte.
func merge(p *domain.Product, r row, line int) error {
	if v, ok := r.get(colName); ok {
		p.Name = v
	}
	if v, ok := r.get(colCategory); ok {
		p.Category = v
	}
	if v, ok := r.get(colVendor); ok {
		p.Vendor = v
	}
	if v, ok := r.get(colPrice); ok {
		price, err := parsePrice(v)
		if err != nil {
			return errors.Wrapf(domain.ErrInvalidInput, "csv line %d: price %q: %v", line, v, err)
		}
		p.Price = price
	}
	if v, ok := r.get(colInStock); ok {
		p.InStock = !isNo(strings.TrimSpace(v))
	}
	if v, ok := r.get(colDescription); ok {
		p.Description = v
	}
	if v, ok := r.get(colImage); ok {
		p.Image = domain.URLImage(v)
	}
	if v, ok := r.get(colVideo); ok {
		p.VideoURL = v
	}
	if v, ok := r.get(colProtein); ok {
		p.Protein = v
	}
	if v, ok := r.get(colFat); ok {
		p.Fat = v
	}
	if v, ok := r.get(colFiber); ok {
		p.Fiber = v
	}
	if v, ok := r.get(colBestFor); ok {
		p.BestFor = v
	}
	if v, ok := r.get(colFeatures); ok {
		p.Features = splitFeatures(v)
	}
	if v, ok := r.get(colFeatured); ok {
		p.Featured = isYes(strings.TrimSpace(v))
	}
	return nil
}

func parsePrice(v string) (float64, error) {
	v = strings.NewReplacer("$", "", ",", "").Replace(v)
	price, err := cast.ToFloat64E(strings.TrimSpace(v))
	if err != nil {
		return 0, errors.New("not a number")
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, errors.New("not a number")
	}
	if price < 0 {
		return 0, errors.New("must be >= 0")
	}
	return price, nil
}

func splitFeatures(v string) []string {
	out := []string{}
	for _, f := range strings.Split(v, ";") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func isNo(v string) bool {
	switch strings.ToLower(v) {
	case "no", "n", "false", "0", "out", "out of stock":
		return true
	}
	return false
}

func isYes(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "y", "true", "1", "x":
		return true
	}
	return false
}
