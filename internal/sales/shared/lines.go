package shared

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/pages"
	"github.com/medistock/medistock/internal/platform/validation"
)

// LinesKey holds errors about the line list as a whole.
const LinesKey = "items"

// MsgNoLines is reported when a document has no line.
const MsgNoLines = "Add at least one item"

// Line is one submitted line item. Purchase lines also carry the batch
// they receive; sale lines may name the batch they draw from.
type Line struct {
	ProductID         string
	BatchID           string
	BatchNumber       string
	ManufacturingDate string
	ExpiryDate        string
	Quantity          decimal.Decimal
	UnitPrice         decimal.Decimal
}

// Total is the line amount.
func (l Line) Total() decimal.Decimal { return LineTotal(l.Quantity, l.UnitPrice) }

func (l Line) blank() bool {
	return l.ProductID == "" && l.Quantity.IsZero() && l.UnitPrice.IsZero() && l.BatchNumber == "" && l.ExpiryDate == ""
}

var lineKey = regexp.MustCompile(`^items\[(\d+)\]\.`)

// Key returns the form name of a line field: "items[2].quantity".
func Key(index int, field string) string {
	return fmt.Sprintf("items[%d].%s", index, field)
}

// ParseLines reads items[N].field inputs in index order. Blank rows are
// dropped and the rest renumbered, so error keys match the re-rendered form.
func ParseLines(f *pages.Form) []Line {
	seen := map[int]bool{}
	for _, key := range f.Keys() {
		if m := lineKey.FindStringSubmatch(key); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				seen[n] = true
			}
		}
	}
	indexes := make([]int, 0, len(seen))
	for n := range seen {
		indexes = append(indexes, n)
	}
	sort.Ints(indexes)

	lines := make([]Line, 0, len(indexes))
	for _, n := range indexes {
		l := Line{
			ProductID:         f.String(Key(n, "productId")),
			BatchID:           f.String(Key(n, "batchId")),
			BatchNumber:       f.String(Key(n, "batchNumber")),
			ManufacturingDate: f.String(Key(n, "manufacturingDate")),
			ExpiryDate:        f.String(Key(n, "expiryDate")),
			Quantity:          f.Decimal(Key(n, "quantity")),
			UnitPrice:         f.Decimal(Key(n, "unitPrice")),
		}
		if !l.blank() {
			lines = append(lines, l)
		}
	}
	return lines
}

// ValidateLines checks that there is at least one line and that every line
// names a product with a positive quantity and a non-negative price.
func ValidateLines(errs validation.Errors, lines []Line) {
	if len(lines) == 0 {
		errs.Add(LinesKey, MsgNoLines)
		return
	}
	for i, l := range lines {
		if l.ProductID == "" {
			errs.Add(Key(i, "productId"), "Product is required")
		}
		if !l.Quantity.IsPositive() {
			errs.Add(Key(i, "quantity"), "Quantity must be greater than 0")
		}
		if l.UnitPrice.IsNegative() {
			errs.Add(Key(i, "unitPrice"), "Unit price must be 0 or more")
		}
	}
}

// Padded returns lines followed by blank rows, at least min rows in total.
func Padded(lines []Line, extra, min int) []Line {
	out := append([]Line(nil), lines...)
	for i := 0; i < extra || len(out) < min; i++ {
		out = append(out, Line{})
	}
	return out
}
