package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/floracart/storefront/internal/redisx"
)

// Intent is the pending-charge record kept between initiate and confirm.
type Intent struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	AmountCents int    `json:"amount_cents"`
}

// Intents stores pending charge intents in Redis with a TTL; an intent
// the payer abandons simply expires.
type Intents struct{ Redis *redis.Client }

func (s *Intents) key(id string) string { return fmt.Sprintf(redisx.KeyChargeIntent, id) }

func (s *Intents) Put(ctx context.Context, in Intent) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, s.key(in.ID), b, redisx.TTLChargeIntent).Err()
}

// Get returns the intent, or ok=false when it expired or never existed.
func (s *Intents) Get(ctx context.Context, id string) (Intent, bool, error) {
	raw, err := s.Redis.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return Intent{}, false, nil
	}
	if err != nil {
		return Intent{}, false, err
	}
	var in Intent
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return Intent{}, false, err
	}
	return in, true, nil
}

func (s *Intents) Delete(ctx context.Context, id string) error {
	return s.Redis.Del(ctx, s.key(id)).Err()
}
