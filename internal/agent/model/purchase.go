package model

import errx "github.com/Chative-core-poc-v1/bookstore/internal/core/error"

// LineItem is one requested (title, quantity) pair inside an order.
type LineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// PurchaseLine reports what happened to one line of a successful order.
type PurchaseLine struct {
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	Cost           int    `json:"cost"`
	RemainingStock int    `json:"remaining_stock"`
	Restocked      bool   `json:"restocked"`
}

// PurchaseResult is the outcome of a (possibly multi-item) order.
// Exactly one of Lines or Err is meaningful, selected by Success.
type PurchaseResult struct {
	Success          bool           `json:"success"`
	Lines            []PurchaseLine `json:"lines,omitempty"`
	TotalQuantity    int            `json:"total_quantity"`
	TotalCost        int            `json:"total_cost"`
	RemainingBalance int            `json:"remaining_balance"`
	Err              *errx.AppError `json:"-"`
	// Unreconciled lists records a failed rollback could not restore.
	Unreconciled []string `json:"unreconciled,omitempty"`
}

// CreditResult is the outcome of a credit top-up.
type CreditResult struct {
	Success    bool           `json:"success"`
	Added      int            `json:"added"`
	NewBalance int            `json:"new_balance"`
	Err        *errx.AppError `json:"-"`
}

// SearchResult is a page of catalog hits plus the total match count.
type SearchResult struct {
	Query string `json:"query"`
	Books []Book `json:"books"`
	Total int    `json:"total"`
}

// Truncated reports how many matches were left out of Books.
func (r SearchResult) Truncated() int {
	return r.Total - len(r.Books)
}
