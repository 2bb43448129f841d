package shared

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/masterdata/products"
	"github.com/medistock/medistock/internal/view"
)

// Catalog lists the products line items can reference.
type Catalog interface {
	Active(ctx context.Context) ([]products.Product, error)
}

// PriceSide selects which product price prefills a line.
type PriceSide int

const (
	// SellingPrice prefills sale and quotation lines.
	SellingPrice PriceSide = iota
	// PurchasePrice prefills purchase lines.
	PurchasePrice
)

// BatchGroup is the batches of one product, rendered as an optgroup.
type BatchGroup struct {
	Label   string
	Options []view.Option
}

// ProductOptions maps products to line selects.
func ProductOptions(items []products.Product) []view.Option {
	out := make([]view.Option, 0, len(items))
	for _, p := range items {
		label := p.Name
		if p.GenericName != "" {
			label += " (" + p.GenericName + ")"
		}
		out = append(out, view.Option{Value: p.ID.String(), Label: label})
	}
	return out
}

// BatchGroups lists the in-stock batches of each product that has any.
func BatchGroups(items []products.Product) []BatchGroup {
	var groups []BatchGroup
	for _, p := range items {
		var opts []view.Option
		for _, b := range p.Batches {
			if !b.Quantity.IsPositive() {
				continue
			}
			label := b.BatchNumber
			if !b.ExpiryDate.IsZero() {
				label += " · exp " + b.ExpiryDate.String()
			}
			opts = append(opts, view.Option{Value: b.ID.String(), Label: label})
		}
		if len(opts) > 0 {
			groups = append(groups, BatchGroup{Label: p.Name, Options: opts})
		}
	}
	return groups
}

// FillPrices sets the unit price of lines that have a product but no price.
func FillPrices(lines []Line, items []products.Product, side PriceSide) {
	prices := make(map[string]decimal.Decimal, len(items))
	for _, p := range items {
		price := p.SellingPrice
		if side == PurchasePrice {
			price = p.PurchasePrice
		}
		prices[p.ID.String()] = price
	}
	for i := range lines {
		if lines[i].ProductID == "" || !lines[i].UnitPrice.IsZero() {
			continue
		}
		if price, ok := prices[lines[i].ProductID]; ok {
			lines[i].UnitPrice = price
		}
	}
}
