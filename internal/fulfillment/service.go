// Package fulfillment consumes the order event stream. It keeps the
// Redis order-status cache warm so reads can skip Postgres, and is the
// hook point for downstream notification fan-out.
package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/floracart/storefront/internal/kafka"
	"github.com/floracart/storefront/internal/orders"
	"github.com/floracart/storefront/internal/redisx"
)

type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleEvent is installed as the consumer handler for every order
// topic. Events are deduplicated by event id before any effect.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		return err
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	seen, err := redisx.Exists(ctx, s.Redis, dkey)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		if err := s.cacheStatus(ctx, p.OrderID, p.UserID, p.Status); err != nil {
			return err
		}
		log.Printf("order %s created (%s), total=%d", p.Number, p.Status, p.TotalCents)

	case orders.EventOrderCancelled:
		p, err := kafkax.UnwrapPayload[orders.OrderCancelledPayload](env.Payload)
		if err != nil {
			return err
		}
		if err := s.cacheStatus(ctx, p.OrderID, p.UserID, orders.StatusCancelled); err != nil {
			return err
		}
		log.Printf("order %s cancelled by %s: %s", p.Number, p.By, p.Reason)

	case orders.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		if err := s.cacheStatus(ctx, p.OrderID, p.UserID, p.To); err != nil {
			return err
		}
		log.Printf("order %s: %s -> %s", p.Number, p.From, p.To)

	default:
		// unknown event version/type, skip
		return nil
	}

	return s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
}

// cacheStatus records the status together with the order's owner so the
// read side can serve the cache without leaking across users.
func (s *Service) cacheStatus(ctx context.Context, orderID, userID string, status orders.Status) error {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, err := json.Marshal(redisx.OrderStatusEntry{Status: string(status), UserID: userID})
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}
