package errx

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors onto the unified error type.
// A missing key is not a store outage, so redis.Nil keeps its own message.
func WrapRedis(err error) *AppError {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return New(CodeStoreUnavailable, err, RedisNotFoundMessage)
	}

	return New(CodeStoreUnavailable, err, RedisErrorMessage)
}
