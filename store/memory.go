package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemoryStore はメモリ上のStore実装です。テストで使用します。
// トランザクションは全体を1つのミューテックスで直列化します。
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]json.RawMessage
}

// NewMemoryStore は空のMemoryStoreを返します。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]json.RawMessage)}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(collection, id, out)
}

func (s *MemoryStore) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(collection, opts)
}

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.flush()
}

func (s *MemoryStore) get(collection, id string, out interface{}) error {
	col, ok := s.collections[collection]
	if !ok {
		return ErrNotFound
	}
	data, ok := col[id]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, out)
}

func (s *MemoryStore) list(collection string, opts ListOptions) ([]Document, error) {
	col := s.collections[collection]
	docs := make([]Document, 0, len(col))
	for id, data := range col {
		docs = append(docs, Document{ID: id, Data: data})
	}
	sort.Slice(docs, func(i, j int) bool {
		if opts.OrderBy != "" {
			vi := fieldValue(docs[i].Data, opts.OrderBy)
			vj := fieldValue(docs[j].Data, opts.OrderBy)
			if vi != vj {
				if opts.Descending {
					return less(vj, vi)
				}
				return less(vi, vj)
			}
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

func fieldValue(data json.RawMessage, field string) interface{} {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc[field]
}

func less(a, b interface{}) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av < bv
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	}
	return false
}

type memOp struct {
	kind       int
	collection string
	id         string
	value      interface{}
	fields     map[string]interface{}
}

type memTx struct {
	store *MemoryStore
	ops   []memOp
}

func (t *memTx) Get(ctx context.Context, collection, id string, out interface{}) error {
	return t.store.get(collection, id, out)
}

func (t *memTx) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	return t.store.list(collection, opts)
}

func (t *memTx) Set(collection, id string, value interface{}) error {
	t.ops = append(t.ops, memOp{kind: opSet, collection: collection, id: id, value: value})
	return nil
}

func (t *memTx) Update(collection, id string, fields map[string]interface{}) error {
	t.ops = append(t.ops, memOp{kind: opUpdate, collection: collection, id: id, fields: fields})
	return nil
}

func (t *memTx) Delete(collection, id string) {
	t.ops = append(t.ops, memOp{kind: opDelete, collection: collection, id: id})
}

// flush はバッファした書き込みを適用します。変更はいったん
// コレクションのコピーに適用し、全操作が成功した場合のみ反映します。
func (t *memTx) flush() error {
	staged := make(map[string]map[string]json.RawMessage)
	colFor := func(name string) map[string]json.RawMessage {
		if col, ok := staged[name]; ok {
			return col
		}
		col := make(map[string]json.RawMessage)
		for id, data := range t.store.collections[name] {
			col[id] = data
		}
		staged[name] = col
		return col
	}

	for _, op := range t.ops {
		col := colFor(op.collection)
		switch op.kind {
		case opSet:
			data, err := json.Marshal(op.value)
			if err != nil {
				return err
			}
			col[op.id] = data
		case opUpdate:
			existing, ok := col[op.id]
			if !ok {
				return ErrNotFound
			}
			var doc map[string]interface{}
			if err := json.Unmarshal(existing, &doc); err != nil {
				return err
			}
			for k, v := range op.fields {
				doc[k] = v
			}
			data, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			col[op.id] = data
		case opDelete:
			delete(col, op.id)
		}
	}

	for name, col := range staged {
		t.store.collections[name] = col
	}
	return nil
}
