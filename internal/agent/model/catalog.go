package model

import "context"

// Book is a catalog record. Title is the canonical key as stored.
type Book struct {
	Title    string `json:"title" yaml:"title"`
	Author   string `json:"author" yaml:"author"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}

// Account holds the spendable credit of a registered user.
type Account struct {
	UserID  int64 `json:"user_id" yaml:"user_id"`
	Balance int   `json:"balance" yaml:"balance"`
}

// RecordStore is the point read/write surface the commerce engine runs on.
// Each write is atomic for its record only; there is no multi-record transaction.
type RecordStore interface {
	// GetBook returns the first book whose title contains titleQuery,
	// case-insensitively, in the backend's natural order.
	GetBook(ctx context.Context, titleQuery string) (Book, bool, error)

	// ListBooks returns books whose title or author contains query, ordered by title.
	ListBooks(ctx context.Context, query string) ([]Book, error)

	// SetBookQuantity overwrites the stock of the book with the exact canonical title.
	SetBookQuantity(ctx context.Context, title string, qty int) error

	GetAccount(ctx context.Context, userID int64) (Account, bool, error)
	SetAccountBalance(ctx context.Context, userID int64, balance int) error
}

// Seeder creates records. Registration and bulk loading live outside the
// dialogue core, so only the seed command and tests use it.
type Seeder interface {
	SaveBook(ctx context.Context, b Book) error
	SaveAccount(ctx context.Context, a Account) error
}
