package activity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memKey struct {
	subject string
	actor   string
	typ     Type
}

// memoryStore keeps the log in mutex-guarded maps. Used by tests and by
// offline mode; the uniqueness invariant holds because the tuple is the map
// key, so a re-record can only overwrite.
type memoryStore struct {
	mu      sync.RWMutex
	records map[memKey]Record
	order   []memKey
}

func NewInMemoryStore() Store {
	return &memoryStore{records: map[memKey]Record{}}
}

func (m *memoryStore) Record(_ context.Context, subject, actor string, typ Type, value string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{subject, actor, typ}
	if r, ok := m.records[k]; ok {
		r.Value = value
		r.CreatedAt = time.Now().Unix()
		m.records[k] = r
		return r.ID, nil
	}
	r := Record{
		ID:        uuid.NewString(),
		SubjectID: subject,
		ActorID:   actor,
		Type:      typ,
		Value:     value,
		CreatedAt: time.Now().Unix(),
	}
	m.records[k] = r
	m.order = append(m.order, k)
	return r.ID, nil
}

func (m *memoryStore) GetValue(_ context.Context, subject, actor string, typ Type) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[memKey{subject, actor, typ}]
	if !ok {
		return "", false, nil
	}
	return r.Value, true, nil
}

func (m *memoryStore) Exists(ctx context.Context, subject, actor string, typ Type) (bool, error) {
	_, ok, err := m.GetValue(ctx, subject, actor, typ)
	return ok, err
}

func (m *memoryStore) Query(_ context.Context, f Filter) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, k := range m.order {
		r, ok := m.records[k]
		if !ok {
			continue
		}
		if f.SubjectID != "" && r.SubjectID != f.SubjectID {
			continue
		}
		if f.ActorID != "" && r.ActorID != f.ActorID {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryStore) Remove(_ context.Context, subject, actor string, typ Type) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{subject, actor, typ}
	if _, ok := m.records[k]; !ok {
		return nil
	}
	delete(m.records, k)
	for i, o := range m.order {
		if o == k {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
