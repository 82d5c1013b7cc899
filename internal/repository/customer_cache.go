package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"order-service/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const customerKeyPrefix = "customer:"

// cachedCustomerRepository serves customer lookups from Redis and falls back to the wrapped
// repository on a miss. Cache failures degrade to the wrapped repository, never to an error.
type cachedCustomerRepository struct {
	next   CustomerRepository
	client redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedCustomerRepository wraps next with a Redis read-through cache.
func NewCachedCustomerRepository(next CustomerRepository, client redis.Cmdable, ttl time.Duration, logger zerolog.Logger) CustomerRepository {
	return &cachedCustomerRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("repository", "customer-cache").Logger(),
	}
}

func customerKey(id uuid.UUID) string {
	return customerKeyPrefix + id.String()
}

// GetByID returns the cached customer or loads and caches it.
func (r *cachedCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	raw, err := r.client.Get(ctx, customerKey(id)).Bytes()
	switch {
	case err == nil:
		var c model.Customer
		if jsonErr := json.Unmarshal(raw, &c); jsonErr == nil {
			return &c, nil
		}
		r.logger.Warn().Str("customer_id", id.String()).Msg("discarding undecodable cache entry")
	case errors.Is(err, redis.Nil):
	default:
		r.logger.Warn().Err(err).Str("customer_id", id.String()).Msg("customer cache read failed")
	}

	customer, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(ctx, []model.Customer{*customer})

	return customer, nil
}

// GetByIDs serves what it can from Redis and loads the rest from the wrapped repository.
func (r *cachedCustomerRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Customer, error) {
	if len(ids) == 0 {
		return []model.Customer{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = customerKey(id)
	}

	customers := make([]model.Customer, 0, len(ids))
	missing := ids

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		r.logger.Warn().Err(err).Int("count", len(ids)).Msg("customer cache multi-read failed")
	} else {
		missing = make([]uuid.UUID, 0, len(ids))
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var c model.Customer
			if err := json.Unmarshal([]byte(s), &c); err != nil {
				missing = append(missing, ids[i])
				continue
			}
			customers = append(customers, c)
		}
	}

	if len(missing) == 0 {
		return customers, nil
	}

	loaded, err := r.next.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	r.store(ctx, loaded)

	return append(customers, loaded...), nil
}

// Upsert writes through to the wrapped repository and evicts the affected entries.
func (r *cachedCustomerRepository) Upsert(ctx context.Context, customers []model.Customer) error {
	if err := r.next.Upsert(ctx, customers); err != nil {
		return err
	}

	if len(customers) == 0 {
		return nil
	}

	keys := make([]string, len(customers))
	for i, c := range customers {
		keys[i] = customerKey(c.ID)
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn().Err(err).Int("count", len(keys)).Msg("customer cache eviction failed")
	}

	return nil
}

func (r *cachedCustomerRepository) store(ctx context.Context, customers []model.Customer) {
	if len(customers) == 0 {
		return
	}

	pipe := r.client.Pipeline()
	for _, c := range customers {
		raw, err := json.Marshal(c)
		if err != nil {
			continue
		}
		pipe.Set(ctx, customerKey(c.ID), raw, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn().Err(err).Int("count", len(customers)).Msg("customer cache write failed")
	}
}
