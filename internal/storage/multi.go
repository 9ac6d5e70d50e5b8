package storage

import (
	"context"

	"cnpj-contatos/pkg/contact"
)

// MultiStore fans every save out to several stores, e.g. database plus
// JSON export. All stores are attempted even when one fails; the first
// error is returned.
type MultiStore struct {
	stores []contact.Store
}

func NewMultiStore(stores ...contact.Store) *MultiStore {
	return &MultiStore{stores: stores}
}

func (s *MultiStore) Name() string { return "multi" }

func (s *MultiStore) Save(ctx context.Context, rec *contact.Record) error {
	var firstErr error
	for _, store := range s.stores {
		if err := store.Save(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *MultiStore) Close() error {
	var firstErr error
	for _, store := range s.stores {
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
