package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/redis"
)

// Envelope is what travels over the Redis notification channels.
type Envelope struct {
	Origin  string          `json:"origin"`
	UserID  uuid.UUID       `json:"userId"`
	Payload json.RawMessage `json:"payload"`
}

type subscriber interface {
	PSubscribe(ctx context.Context, pattern string) (*goredis.PubSub, error)
}

// Relay forwards notifications published by other instances to sessions on
// this one.
type Relay struct {
	sub      subscriber
	registry *Registry
	origin   string
	logg     *logger.Logger
}

func NewRelay(sub subscriber, registry *Registry, origin string, logg *logger.Logger) (*Relay, error) {
	if sub == nil {
		return nil, fmt.Errorf("redis subscriber required")
	}
	if registry == nil {
		return nil, fmt.Errorf("session registry required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Relay{sub: sub, registry: registry, origin: origin, logg: logg}, nil
}

// Run blocks until ctx is done or the subscription closes.
func (r *Relay) Run(ctx context.Context) error {
	ps, err := r.sub.PSubscribe(ctx, redis.NotificationPattern())
	if err != nil {
		return err
	}
	defer ps.Close()

	r.logg.Info(ctx, "realtime relay subscribed")
	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(ctx, msg)
		}
	}
}

func (r *Relay) deliver(ctx context.Context, msg *goredis.Message) int {
	rawID, ok := redis.UserIDFromChannel(msg.Channel)
	if !ok {
		return 0
	}
	var env Envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		r.logg.Error(ctx, "decode realtime envelope", err)
		return 0
	}
	if env.Origin == r.origin {
		return 0
	}
	userID, err := uuid.Parse(rawID)
	if err != nil || userID != env.UserID {
		r.logg.Warn(r.logg.WithField(ctx, "channel", msg.Channel), "realtime envelope user does not match channel")
		return 0
	}
	return r.registry.Send(ctx, userID, env.Payload)
}
