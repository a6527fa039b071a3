package commerce

import (
	"context"
	"strings"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/bookstore/internal/core/error"
)

// Catalog answers read-only search queries.
type Catalog struct {
	store model.RecordStore
	limit int
}

func NewCatalog(store model.RecordStore, limit int) *Catalog {
	if limit <= 0 {
		limit = 10
	}
	return &Catalog{store: store, limit: limit}
}

// Search matches query against titles and authors. Books holds at most the
// configured limit; Total counts every match.
func (c *Catalog) Search(ctx context.Context, query string) (model.SearchResult, *errx.AppError) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.SearchResult{}, errx.Newf(errx.CodeParseFailure, "Please enter a title or author to search for.")
	}
	books, err := c.store.ListBooks(ctx, query)
	if err != nil {
		return model.SearchResult{}, errx.WrapStore(err)
	}
	res := model.SearchResult{Query: query, Total: len(books), Books: books}
	if len(books) > c.limit {
		res.Books = books[:c.limit]
	}
	return res, nil
}
