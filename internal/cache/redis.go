package cache

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/pcforge/storefront-client/pkg/utils"
)

// RedisStore persists the local mirror in Redis. When a cipher is configured
// every value is sealed with AES-GCM before it is written; a value that fails
// to decrypt is treated as a miss.
type RedisStore struct {
	client *redis.Client
	cipher *utils.Cipher
}

// NewRedisStore wraps an already connected client. cipher may be nil to store
// values in the clear.
func NewRedisStore(client *redis.Client, cipher *utils.Cipher) *RedisStore {
	return &RedisStore{client: client, cipher: cipher}
}

func (s *RedisStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok, err := s.getRaw(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// Corrupted cache entries count as misses.
		log.Printf("cache: discarding malformed value at %s: %v", key, err)
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) GetString(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := s.getRaw(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	return string(raw), true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.setRaw(ctx, key, data)
}

func (s *RedisStore) SetString(ctx context.Context, key, value string) error {
	return s.setRaw(ctx, key, []byte(value))
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) getRaw(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if s.cipher != nil {
		plain, err := s.cipher.Decrypt(val)
		if err != nil {
			log.Printf("cache: discarding undecryptable value at %s: %v", key, err)
			return nil, false, nil
		}
		val = plain
	}
	return val, true, nil
}

func (s *RedisStore) setRaw(ctx context.Context, key string, data []byte) error {
	if s.cipher != nil {
		sealed, err := s.cipher.Encrypt(data)
		if err != nil {
			return err
		}
		data = sealed
	}
	// No TTL: the mirror stays until the owning store rewrites or clears it.
	return s.client.Set(ctx, key, data, 0).Err()
}
