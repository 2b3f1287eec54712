package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyMatches(tournamentID string) string { return "bracket:matches:" + tournamentID }
func keyQuotes(tournamentID string) string  { return "bracket:quotes:" + tournamentID }

func (c *Cache) GetMatches(ctx context.Context, tournamentID string, dst any) (bool, error) {
	return c.get(ctx, keyMatches(tournamentID), dst)
}

func (c *Cache) SetMatches(ctx context.Context, tournamentID string, v any, ttl time.Duration) error {
	return c.set(ctx, keyMatches(tournamentID), v, ttl)
}

func (c *Cache) GetQuotes(ctx context.Context, tournamentID string, dst any) (bool, error) {
	return c.get(ctx, keyQuotes(tournamentID), dst)
}

func (c *Cache) SetQuotes(ctx context.Context, tournamentID string, v any, ttl time.Duration) error {
	return c.set(ctx, keyQuotes(tournamentID), v, ttl)
}

// InvalidateMatches derruba o cache após uma atualização de chave, para que
// a próxima leitura reflita o novo estado antes do TTL expirar.
func (c *Cache) InvalidateMatches(ctx context.Context, tournamentID string) error {
	return c.R.Del(ctx, keyMatches(tournamentID)).Err()
}

func (c *Cache) get(ctx context.Context, key string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, key, b, ttl).Err()
}
