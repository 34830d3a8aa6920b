package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Get when no document exists at the key.
var ErrNotFound = errors.New("document not found")

// Store is the document storage contract the rest of the application is
// written against: whole JSON documents addressed by key, plus a prefix
// scan for history/reporting. There are no partial writes and no
// multi-key transactions; per-key read-after-write consistency is
// assumed from the backing implementation.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Put(ctx context.Context, key string, doc json.RawMessage) error
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// GetJSON loads the document at key and unmarshals it into v.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// PutJSON marshals v and stores it at key.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(ctx, key, data)
}
