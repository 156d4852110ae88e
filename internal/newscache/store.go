package newscache

import (
	"context"
	"encoding/json"
	"time"
)

// MemoryStore keeps the slot in process memory. It is not safe for
// concurrent use on its own; Cache serializes access.
type MemoryStore struct {
	entry Entry
	set   bool
}

func (m *MemoryStore) Load(ctx context.Context) (Entry, bool, error) {
	return m.entry, m.set, nil
}

func (m *MemoryStore) Save(ctx context.Context, entry Entry, ttl time.Duration) error {
	m.entry = entry
	m.set = true
	return nil
}

// KV is the byte store behind ValkeyStore; *clients.ValkeyClient satisfies it.
type KV interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const ValkeyKey = "postsmith:news_cache"

// ValkeyStore keeps the slot in Valkey so it survives restarts.
type ValkeyStore struct {
	kv  KV
	key string
}

func NewValkeyStore(kv KV) *ValkeyStore {
	return &ValkeyStore{kv: kv, key: ValkeyKey}
}

func (v *ValkeyStore) Load(ctx context.Context) (Entry, bool, error) {
	b, ok, err := v.kv.GetBytes(ctx, v.key)
	if err != nil || !ok {
		return Entry{}, false, err
	}
	var entry Entry
	if err := json.Unmarshal(b, &entry); err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}

func (v *ValkeyStore) Save(ctx context.Context, entry Entry, ttl time.Duration) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return v.kv.SetBytes(ctx, v.key, b, ttl)
}
