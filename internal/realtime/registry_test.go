package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/redis"
)

type fakeSession struct {
	id   string
	fail bool

	mu       sync.Mutex
	received [][]byte
}

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) Send(_ context.Context, payload []byte) error {
	if f.fail {
		return errors.New("closed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, payload)
	return nil
}

func (f *fakeSession) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

func TestRegistryRegisterSendUnregister(t *testing.T) {
	reg := NewRegistry(nil)
	user := uuid.New()
	a := &fakeSession{id: "a"}
	b := &fakeSession{id: "b"}
	reg.Register(user, a)
	reg.Register(user, b)
	reg.Register(uuid.New(), &fakeSession{id: "c"})

	if got := reg.Count(); got != 3 {
		t.Fatalf("expected 3 sessions, got %d", got)
	}
	if n := reg.Send(context.Background(), user, []byte("hi")); n != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}

	reg.Unregister(user, "a")
	reg.Unregister(user, "missing")
	if got := len(reg.Sessions(user)); got != 1 {
		t.Fatalf("expected 1 session left, got %d", got)
	}
	if n := reg.Send(context.Background(), uuid.New(), []byte("nobody")); n != 0 {
		t.Fatalf("expected no deliveries for unknown user, got %d", n)
	}
}

func TestRegistryDropsFailingSessions(t *testing.T) {
	reg := NewRegistry(logger.Nop())
	user := uuid.New()
	reg.Register(user, &fakeSession{id: "dead", fail: true})
	reg.Register(user, &fakeSession{id: "live"})

	if n := reg.Send(context.Background(), user, []byte("x")); n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if got := reg.Count(); got != 1 {
		t.Fatalf("expected failing session removed, %d remain", got)
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry(nil)
	users := make([]uuid.UUID, 16)
	for i := range users {
		users[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := users[i%len(users)]
			id := fmt.Sprintf("s-%d", i)
			reg.Register(user, &fakeSession{id: id})
			reg.Send(context.Background(), user, []byte("ping"))
			_ = reg.Count()
			reg.Unregister(user, id)
		}(i)
	}
	wg.Wait()

	if got := reg.Count(); got != 0 {
		t.Fatalf("expected empty registry, got %d", got)
	}
}

func TestRelayDeliverSkipsOwnOrigin(t *testing.T) {
	reg := NewRegistry(nil)
	user := uuid.New()
	sess := &fakeSession{id: "s"}
	reg.Register(user, sess)

	relay := &Relay{registry: reg, origin: "api-1", logg: logger.Nop()}
	client := &redis.Client{}
	channel := client.NotificationChannel(user.String())

	encode := func(origin string, target uuid.UUID) string {
		raw, _ := json.Marshal(Envelope{Origin: origin, UserID: target, Payload: json.RawMessage(`{"title":"hi"}`)})
		return string(raw)
	}

	if n := relay.deliver(context.Background(), &goredis.Message{Channel: channel, Payload: encode("api-1", user)}); n != 0 {
		t.Fatalf("own messages must be skipped, delivered %d", n)
	}
	if n := relay.deliver(context.Background(), &goredis.Message{Channel: channel, Payload: encode("api-2", user)}); n != 1 {
		t.Fatalf("expected delivery from other instance, got %d", n)
	}
	if n := relay.deliver(context.Background(), &goredis.Message{Channel: channel, Payload: encode("api-2", uuid.New())}); n != 0 {
		t.Fatalf("mismatched user must be ignored, delivered %d", n)
	}
	if n := relay.deliver(context.Background(), &goredis.Message{Channel: channel, Payload: "{broken"}); n != 0 {
		t.Fatalf("broken payload must be ignored, delivered %d", n)
	}
	if got := sess.count(); got != 1 {
		t.Fatalf("expected exactly one payload, got %d", got)
	}
	if string(sess.received[0]) != `{"title":"hi"}` {
		t.Fatalf("unexpected payload %s", sess.received[0])
	}
}
