package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/bookstore/internal/core/error"
	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisRecordStore keeps each book in a hash keyed by its folded title and
// an index sorted set (all scores zero, so members sort lexically). Natural
// lookup order is therefore folded-title order.
type RedisRecordStore struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisRecordStore(rdb redis.Cmdable, prefix string) *RedisRecordStore {
	return &RedisRecordStore{rdb: rdb, prefix: prefix}
}

func (r *RedisRecordStore) bookKey(folded string) string {
	return r.prefix + ":book:" + folded
}

func (r *RedisRecordStore) indexKey() string {
	return r.prefix + ":books"
}

func (r *RedisRecordStore) accountKey(userID int64) string {
	return fmt.Sprintf("%s:account:%d", r.prefix, userID)
}

// scan loads every book whose folded title or author passes match, in index order.
func (r *RedisRecordStore) scan(ctx context.Context, match func(title, author string) bool, limit int) ([]model.Book, error) {
	members, err := r.rdb.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", r.indexKey()).Msg("failed to read book index")
		return nil, errx.WrapRedis(err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(members))
	_, err = r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, m := range members {
			cmds[i] = p.HGetAll(ctx, r.bookKey(m))
		}
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Int("count", len(members)).Msg("failed to load books")
		return nil, errx.WrapRedis(err)
	}

	var out []model.Book
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			logx.Warn().Str("member", members[i]).Msg("book index entry without record")
			continue
		}
		b, err := bookFromHash(fields)
		if err != nil {
			return nil, err
		}
		if match(normalize(b.Title), normalize(b.Author)) {
			out = append(out, b)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func bookFromHash(f map[string]string) (model.Book, error) {
	qty, err := strconv.Atoi(f["quantity"])
	if err != nil {
		return model.Book{}, fmt.Errorf("book %q: bad quantity %q: %w", f["title"], f["quantity"], err)
	}
	return model.Book{Title: f["title"], Author: f["author"], Quantity: qty}, nil
}

func (r *RedisRecordStore) GetBook(ctx context.Context, titleQuery string) (model.Book, bool, error) {
	q := normalize(titleQuery)
	if q == "" {
		return model.Book{}, false, nil
	}
	books, err := r.scan(ctx, func(title, _ string) bool { return strings.Contains(title, q) }, 1)
	if err != nil || len(books) == 0 {
		return model.Book{}, false, err
	}
	return books[0], true, nil
}

func (r *RedisRecordStore) ListBooks(ctx context.Context, query string) ([]model.Book, error) {
	q := normalize(query)
	books, err := r.scan(ctx, func(title, author string) bool {
		return strings.Contains(title, q) || strings.Contains(author, q)
	}, 0)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = make([]model.Book, 0)
	}
	return books, nil
}

func (r *RedisRecordStore) SetBookQuantity(ctx context.Context, title string, qty int) error {
	if qty < 0 {
		return ErrNegativeValue
	}
	key := r.bookKey(normalize(title))
	if err := r.requireExists(ctx, key, fmt.Errorf("%w: %q", ErrBookNotFound, title)); err != nil {
		return err
	}
	if err := r.rdb.HSet(ctx, key, "quantity", qty).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write quantity")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisRecordStore) GetAccount(ctx context.Context, userID int64) (model.Account, bool, error) {
	key := r.accountKey(userID)
	bal, err := r.rdb.HGet(ctx, key, "balance").Int()
	if errors.Is(err, redis.Nil) {
		return model.Account{}, false, nil
	}
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to read account")
		return model.Account{}, false, errx.WrapRedis(err)
	}
	return model.Account{UserID: userID, Balance: bal}, true, nil
}

func (r *RedisRecordStore) SetAccountBalance(ctx context.Context, userID int64, balance int) error {
	if balance < 0 {
		return ErrNegativeValue
	}
	key := r.accountKey(userID)
	if err := r.requireExists(ctx, key, fmt.Errorf("%w: %d", ErrAccountNotFound, userID)); err != nil {
		return err
	}
	if err := r.rdb.HSet(ctx, key, "balance", balance).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write balance")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisRecordStore) requireExists(ctx context.Context, key string, notFound error) error {
	n, err := r.rdb.Exists(ctx, key).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to check key")
		return errx.WrapRedis(err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func (r *RedisRecordStore) SaveBook(ctx context.Context, b model.Book) error {
	if b.Quantity < 0 {
		return ErrNegativeValue
	}
	folded := normalize(b.Title)
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, r.bookKey(folded), "title", b.Title, "author", b.Author, "quantity", b.Quantity)
		p.ZAdd(ctx, r.indexKey(), redis.Z{Score: 0, Member: folded})
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Str("title", b.Title).Msg("failed to save book")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisRecordStore) SaveAccount(ctx context.Context, a model.Account) error {
	if a.Balance < 0 {
		return ErrNegativeValue
	}
	if err := r.rdb.HSet(ctx, r.accountKey(a.UserID), "balance", a.Balance).Err(); err != nil {
		logx.Error().Err(err).Int64("userID", a.UserID).Msg("failed to save account")
		return errx.WrapRedis(err)
	}
	return nil
}

var (
	_ model.RecordStore = (*RedisRecordStore)(nil)
	_ model.Seeder      = (*RedisRecordStore)(nil)
)
