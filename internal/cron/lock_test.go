package cron

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/instance"
)

type memoryStore struct {
	values map[string]string
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryStore) DelIfEquals(_ context.Context, key, value string) (bool, error) {
	if m.values[key] != value {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func TestRedisLockExclusiveAndOwned(t *testing.T) {
	store := &memoryStore{values: map[string]string{}}
	first, err := NewRedisLock(store, "ms:lock:cron", 0)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(store, "ms:lock:cron", time.Minute)
	ctx := context.Background()

	ok, err := first.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if !strings.HasPrefix(store.values["ms:lock:cron"], instance.GetID()+":") {
		t.Fatalf("lock value should name the instance, got %q", store.values["ms:lock:cron"])
	}
	ok, err = second.Acquire(ctx)
	if err != nil || ok {
		t.Fatalf("second acquire must fail while held: ok=%v err=%v", ok, err)
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if _, held := store.values["ms:lock:cron"]; !held {
		t.Fatal("non-owner release must not free the lock")
	}

	store.values["ms:lock:cron"] = "someone-else"
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release after takeover: %v", err)
	}
	if store.values["ms:lock:cron"] != "someone-else" {
		t.Fatal("release must not delete a lock taken over by another owner")
	}

	delete(store.values, "ms:lock:cron")
	ok, _ = second.Acquire(ctx)
	if !ok {
		t.Fatal("expected acquire after expiry")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("owner release: %v", err)
	}
	if _, held := store.values["ms:lock:cron"]; held {
		t.Fatal("owner release must delete the key")
	}
}

func TestNewRedisLockValidates(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", 0); err == nil {
		t.Fatal("expected client error")
	}
	if _, err := NewRedisLock(&memoryStore{values: map[string]string{}}, "", 0); err == nil {
		t.Fatal("expected key error")
	}
}
