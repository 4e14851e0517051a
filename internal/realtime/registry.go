// Package realtime tracks live client sessions per user and delivers
// notification payloads to them. Transport framing is owned by the caller;
// a Session is anything that can accept bytes.
package realtime

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"

	"github.com/KhoaWorkHub/EXE201-MosiacStore-Backend-sub000/pkg/logger"
)

const shardCount = 32

// Session is one live connection belonging to a user.
type Session interface {
	ID() string
	Send(ctx context.Context, payload []byte) error
}

type shard struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[string]Session
}

// Registry is a sharded user id to sessions map safe for concurrent use.
type Registry struct {
	shards [shardCount]*shard
	logg   *logger.Logger
}

// NewRegistry builds an empty registry. A nil logger discards output.
func NewRegistry(logg *logger.Logger) *Registry {
	if logg == nil {
		logg = logger.Nop()
	}
	r := &Registry{logg: logg}
	for i := range r.shards {
		r.shards[i] = &shard{sessions: make(map[uuid.UUID]map[string]Session)}
	}
	return r
}

func (r *Registry) shardFor(userID uuid.UUID) *shard {
	h := fnv.New32a()
	_, _ = h.Write(userID[:])
	return r.shards[h.Sum32()%shardCount]
}

// Register adds the session, replacing any session with the same id.
func (r *Registry) Register(userID uuid.UUID, s Session) {
	sh := r.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	byID, ok := sh.sessions[userID]
	if !ok {
		byID = make(map[string]Session)
		sh.sessions[userID] = byID
	}
	byID[s.ID()] = s
}

// Unregister removes the session. Unknown ids are ignored.
func (r *Registry) Unregister(userID uuid.UUID, sessionID string) {
	sh := r.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	byID, ok := sh.sessions[userID]
	if !ok {
		return
	}
	delete(byID, sessionID)
	if len(byID) == 0 {
		delete(sh.sessions, userID)
	}
}

// Sessions returns a snapshot of the user's sessions.
func (r *Registry) Sessions(userID uuid.UUID) []Session {
	sh := r.shardFor(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	byID := sh.sessions[userID]
	out := make([]Session, 0, len(byID))
	for _, s := range byID {
		out = append(out, s)
	}
	return out
}

// Send writes payload to every session of the user and returns how many
// accepted it. Sessions that fail are dropped.
func (r *Registry) Send(ctx context.Context, userID uuid.UUID, payload []byte) int {
	delivered := 0
	for _, s := range r.Sessions(userID) {
		if err := s.Send(ctx, payload); err != nil {
			r.logg.Warn(r.logg.WithFields(ctx, map[string]any{
				"user_id":    userID.String(),
				"session_id": s.ID(),
				"error":      err.Error(),
			}), "dropping realtime session after failed send")
			r.Unregister(userID, s.ID())
			continue
		}
		delivered++
	}
	return delivered
}

// Count is the number of live sessions across all users.
func (r *Registry) Count() int {
	total := 0
	for _, sh := range r.shards {
		sh.mu.RLock()
		for _, byID := range sh.sessions {
			total += len(byID)
		}
		sh.mu.RUnlock()
	}
	return total
}
