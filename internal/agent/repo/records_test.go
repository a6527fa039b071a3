package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordBackend interface {
	model.RecordStore
	model.Seeder
}

func backends(t *testing.T) map[string]func(t *testing.T) recordBackend {
	return map[string]func(t *testing.T) recordBackend{
		"memory": func(t *testing.T) recordBackend {
			return NewMemoryRecordStore()
		},
		"sqlite": func(t *testing.T) recordBackend {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "records.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"redis": func(t *testing.T) recordBackend {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })
			return NewRedisRecordStore(rdb, "test")
		},
	}
}

func seeded(t *testing.T, s recordBackend) {
	t.Helper()
	ctx := context.Background()
	for _, b := range []model.Book{
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", Quantity: 4},
		{Title: "Dune", Author: "Frank Herbert", Quantity: 5},
		{Title: "Dune Messiah", Author: "Frank Herbert", Quantity: 1},
		{Title: "100% Pure", Author: "Anon", Quantity: 2},
	} {
		require.NoError(t, s.SaveBook(ctx, b))
	}
	require.NoError(t, s.SaveAccount(ctx, model.Account{UserID: 7, Balance: 60}))
}

func TestRecordStores(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			seeded(t, s)

			t.Run("get book is case insensitive substring", func(t *testing.T) {
				b, ok, err := s.GetBook(ctx, "hOBBIT")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, "The Hobbit", b.Title)
				assert.Equal(t, 4, b.Quantity)
			})

			t.Run("get book first match is stable", func(t *testing.T) {
				first, ok, err := s.GetBook(ctx, "dune")
				require.NoError(t, err)
				require.True(t, ok)
				again, _, err := s.GetBook(ctx, "DUNE")
				require.NoError(t, err)
				assert.Equal(t, first.Title, again.Title)
				assert.Equal(t, "Dune", first.Title)
			})

			t.Run("get book misses", func(t *testing.T) {
				_, ok, err := s.GetBook(ctx, "Nonexistent")
				require.NoError(t, err)
				assert.False(t, ok)

				_, ok, err = s.GetBook(ctx, "  ")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("like wildcards are literal", func(t *testing.T) {
				b, ok, err := s.GetBook(ctx, "100%")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, "100% Pure", b.Title)

				_, ok, err = s.GetBook(ctx, "D_ne")
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("list matches title or author sorted by title", func(t *testing.T) {
				books, err := s.ListBooks(ctx, "herbert")
				require.NoError(t, err)
				require.Len(t, books, 2)
				assert.Equal(t, "Dune", books[0].Title)
				assert.Equal(t, "Dune Messiah", books[1].Title)

				all, err := s.ListBooks(ctx, "")
				require.NoError(t, err)
				assert.Len(t, all, 4)

				none, err := s.ListBooks(ctx, "zzz")
				require.NoError(t, err)
				assert.NotNil(t, none)
				assert.Empty(t, none)
			})

			t.Run("set quantity", func(t *testing.T) {
				require.NoError(t, s.SetBookQuantity(ctx, "Dune Messiah", 9))
				b, ok, err := s.GetBook(ctx, "messiah")
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, 9, b.Quantity)

				assert.ErrorIs(t, s.SetBookQuantity(ctx, "Missing", 1), ErrBookNotFound)
				assert.ErrorIs(t, s.SetBookQuantity(ctx, "Dune", -1), ErrNegativeValue)
			})

			t.Run("accounts", func(t *testing.T) {
				a, ok, err := s.GetAccount(ctx, 7)
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, model.Account{UserID: 7, Balance: 60}, a)

				_, ok, err = s.GetAccount(ctx, 8)
				require.NoError(t, err)
				assert.False(t, ok)

				require.NoError(t, s.SetAccountBalance(ctx, 7, 0))
				a, _, err = s.GetAccount(ctx, 7)
				require.NoError(t, err)
				assert.Equal(t, 0, a.Balance)

				assert.ErrorIs(t, s.SetAccountBalance(ctx, 8, 10), ErrAccountNotFound)
				assert.ErrorIs(t, s.SetAccountBalance(ctx, 7, -5), ErrNegativeValue)
			})
		})
	}
}

func TestMemoryRecordStoreNaturalOrderIsInsertion(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRecordStore()
	require.NoError(t, s.SaveBook(ctx, model.Book{Title: "Zen and Dune", Quantity: 1}))
	require.NoError(t, s.SaveBook(ctx, model.Book{Title: "Dune", Quantity: 1}))

	b, ok, err := s.GetBook(ctx, "dune")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Zen and Dune", b.Title)
}

func TestMemoryRecordStoreFaultInjection(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRecordStore()
	require.NoError(t, s.SaveBook(ctx, model.Book{Title: "Dune", Quantity: 3}))

	boom := errors.New("boom")
	s.InjectFault(func(op Op, key string) error {
		if op == OpSetBookQuantity && key == "Dune" {
			return boom
		}
		return nil
	})

	err := s.SetBookQuantity(ctx, "Dune", 1)
	assert.ErrorIs(t, err, boom)

	b, _, err := s.GetBook(ctx, "Dune")
	require.NoError(t, err)
	assert.Equal(t, 3, b.Quantity)

	s.InjectFault(nil)
	require.NoError(t, s.SetBookQuantity(ctx, "Dune", 1))
}

func TestRedisRecordStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewRedisRecordStore(rdb, "test")
	mr.Close()

	_, _, err := s.GetBook(context.Background(), "Dune")
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	raw := []byte(`
books:
  - title: Dune
    author: Frank Herbert
    quantity: 5
accounts:
  - user_id: 42
    balance: 80
`)
	seed, err := ParseSeed(raw)
	require.NoError(t, err)
	require.Len(t, seed.Books, 1)
	assert.Equal(t, model.Book{Title: "Dune", Author: "Frank Herbert", Quantity: 5}, seed.Books[0])

	s := NewMemoryRecordStore()
	require.NoError(t, seed.Apply(context.Background(), s))
	a, ok, err := s.GetAccount(context.Background(), 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 80, a.Balance)

	_, err = ParseSeed([]byte("books:\n  - title: X\n    quantity: -1\n"))
	assert.Error(t, err)
}
