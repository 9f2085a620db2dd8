package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neeharika666/myntra-hackerramp/models"

	"github.com/redis/go-redis/v9"
)

// CartRepository stores one cart document per user in Redis. Carts are
// created lazily and cleared by writing back an empty item list, never
// deleted.
type CartRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Clear(ctx context.Context, userID string) (*models.Cart, error)

	// ClaimIdempotency atomically claims a checkout key. claimed reports
	// whether this caller now owns the key; otherwise orderID holds the
	// completed order for replay, or is empty while another checkout with
	// the same key is still in flight.
	ClaimIdempotency(ctx context.Context, key string) (orderID string, claimed bool, err error)
	CompleteIdempotency(ctx context.Context, key, orderID string) error
	ReleaseIdempotency(ctx context.Context, key string) error
}

type RedisCartRepository struct {
	client  *redis.Client
	ttl     time.Duration
	idemTTL time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl, idemTTL time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl, idemTTL: idemTTL}
}

func (r *RedisCartRepository) getKey(userID string) string {
	return fmt.Sprintf("cart:user:%s", userID)
}

func (r *RedisCartRepository) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, r.getKey(userID)).Result()
	if err == redis.Nil {
		return &models.Cart{UserID: userID, Items: []models.CartLine{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &cart, nil
}

func (r *RedisCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.client.Set(ctx, r.getKey(cart.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *RedisCartRepository) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID, Items: []models.CartLine{}}
	cart.Recalculate()
	if err := r.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Idempotency helpers for checkout replay protection. The key is claimed
// with SET NX before the checkout runs, so two concurrent requests with
// the same key cannot both execute.

// idemInFlight marks a claimed key whose checkout has not completed yet.
const idemInFlight = "__in_flight__"

func (r *RedisCartRepository) getIdemKey(key string) string {
	return "idem:checkout:" + key
}

func (r *RedisCartRepository) ClaimIdempotency(ctx context.Context, key string) (string, bool, error) {
	claimed, err := r.client.SetNX(ctx, r.getIdemKey(key), idemInFlight, r.idemTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if claimed {
		return "", true, nil
	}

	val, err := r.client.Get(ctx, r.getIdemKey(key)).Result()
	if err == redis.Nil {
		// Released between the SetNX and the Get; treat as in flight and
		// let the caller retry.
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get idempotency key: %w", err)
	}
	if val == idemInFlight {
		return "", false, nil
	}
	return val, false, nil
}

func (r *RedisCartRepository) CompleteIdempotency(ctx context.Context, key, orderID string) error {
	return r.client.Set(ctx, r.getIdemKey(key), orderID, r.idemTTL).Err()
}

func (r *RedisCartRepository) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.getIdemKey(key)).Err()
}
