// Package dashboard renders the landing page: headline counters, recent
// sales, low-stock products and batches close to expiry.
package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/medistock/medistock/internal/apiclient"
)

// Summary holds the headline counters from /dashboard/summary.
type Summary struct {
	TotalProducts   int             `json:"totalProducts"`
	TotalCustomers  int             `json:"totalCustomers"`
	TotalSuppliers  int             `json:"totalSuppliers"`
	TodaySales      decimal.Decimal `json:"todaySales"`
	MonthSales      decimal.Decimal `json:"monthSales"`
	LowStockCount   int             `json:"lowStockCount"`
	ExpiringCount   int             `json:"expiringCount"`
	TotalReceivable decimal.Decimal `json:"totalReceivable"`
	TotalPayable    decimal.Decimal `json:"totalPayable"`
}

// RecentSale is one row of /dashboard/recent-sales.
type RecentSale struct {
	ID            apiclient.ID    `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	SaleDate      apiclient.Date  `json:"saleDate"`
	Customer      *apiclient.Ref  `json:"customer"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        string          `json:"status"`
}

// CustomerName labels walk-in sales.
func (s RecentSale) CustomerName() string {
	if name := s.Customer.Label(); name != "" {
		return name
	}
	return "Walk-in customer"
}

// LowStockItem is one row of /dashboard/low-stock.
type LowStockItem struct {
	ID           apiclient.ID    `json:"id"`
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	ReorderLevel decimal.Decimal `json:"reorderLevel"`
}

// OutOfStock reports an empty shelf.
func (l LowStockItem) OutOfStock() bool { return !l.Quantity.IsPositive() }

// ExpiringBatch is one row of /dashboard/expiring.
type ExpiringBatch struct {
	ID          apiclient.ID    `json:"id"`
	BatchNumber string          `json:"batchNumber"`
	ExpiryDate  apiclient.Date  `json:"expiryDate"`
	Quantity    decimal.Decimal `json:"quantity"`
	Product     *apiclient.Ref  `json:"product"`
}

// DaysLeft counts whole days from today until expiry; negative once expired.
func (b ExpiringBatch) DaysLeft(today time.Time) int {
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ey, em, ed := b.ExpiryDate.Date()
	end := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// Overview is everything the landing page shows. It is cached as JSON.
type Overview struct {
	Summary     Summary         `json:"summary"`
	RecentSales []RecentSale    `json:"recentSales"`
	LowStock    []LowStockItem  `json:"lowStock"`
	Expiring    []ExpiringBatch `json:"expiring"`
	LoadedAt    time.Time       `json:"loadedAt"`
}
