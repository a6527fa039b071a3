package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Chative-core-poc-v1/bookstore/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/bookstore/internal/core/error"
	logx "github.com/Chative-core-poc-v1/bookstore/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisSessionStore keeps one JSON document per user plus an activity index
// (sorted set scored by last activity) used for idle eviction.
type RedisSessionStore struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisSessionStore builds the store. ttl is refreshed on every save so
// abandoned sessions also age out server side; zero disables it.
func NewRedisSessionStore(rdb redis.Cmdable, prefix string, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisSessionStore) sessionKey(userID int64) string {
	return fmt.Sprintf("%s:session:%d", r.prefix, userID)
}

func (r *RedisSessionStore) activityKey() string {
	return r.prefix + ":sessions:activity"
}

func (r *RedisSessionStore) Load(ctx context.Context, userID int64) (*model.Session, bool, error) {
	key := r.sessionKey(userID)
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session from redis")
		return nil, false, errx.WrapRedis(err)
	}
	var s model.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		logx.Error().Err(err).Int64("userID", userID).Msg("failed to unmarshal session")
		return nil, false, fmt.Errorf("unmarshal session %d: %w", userID, err)
	}
	return &s, true, nil
}

func (r *RedisSessionStore) Save(ctx context.Context, s *model.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		logx.Error().Err(err).Int64("userID", s.UserID).Msg("failed to marshal session")
		return fmt.Errorf("marshal session: %w", err)
	}
	key := r.sessionKey(s.UserID)

	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, key, b, r.ttl)
		p.ZAdd(ctx, r.activityKey(), redis.Z{
			Score:  float64(s.LastActivity.UnixMilli()),
			Member: strconv.FormatInt(s.UserID, 10),
		})
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save session to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, userID int64) error {
	key := r.sessionKey(userID)
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.ZRem(ctx, r.activityKey(), strconv.FormatInt(userID, 10))
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisSessionStore) EvictIdle(ctx context.Context, cutoff time.Time) (int, error) {
	// strictly older than cutoff
	max := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)
	ids, err := r.rdb.ZRangeByScore(ctx, r.activityKey(), &redis.ZRangeBy{Min: "-inf", Max: max}).Result()
	if err != nil {
		logx.Error().Err(err).Msg("failed to scan session activity index")
		return 0, errx.WrapRedis(err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids))
	members := make([]any, 0, len(ids))
	for _, id := range ids {
		uid, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			logx.Warn().Str("member", id).Msg("dropping malformed session index entry")
		} else {
			keys = append(keys, r.sessionKey(uid))
		}
		members = append(members, id)
	}

	var deleted *redis.IntCmd
	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if len(keys) > 0 {
			deleted = p.Del(ctx, keys...)
		}
		p.ZRem(ctx, r.activityKey(), members...)
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Int("count", len(ids)).Msg("failed to evict idle sessions")
		return 0, errx.WrapRedis(err)
	}
	if deleted == nil {
		return 0, nil
	}
	return int(deleted.Val()), nil
}

var _ model.SessionStore = (*RedisSessionStore)(nil)
