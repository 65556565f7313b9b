package service

import (
	"context"
	"sync"

	"github.com/hatchling-app/profile-api/internal/store"
)

// mockProfileStore implements store.ProfileStore with overridable behavior
// per test. Unset functions fall back to an empty, error-free store.
type mockProfileStore struct {
	mu  sync.Mutex
	row *store.ProfileRow

	getFn         func(ctx context.Context) (*store.ProfileRow, error)
	upsertFn      func(ctx context.Context, row store.ProfileRow) error
	updateFieldFn func(ctx context.Context, field store.ProfileField, value *string) (int64, error)
	existsFn      func(ctx context.Context) (bool, error)
	deleteFn      func(ctx context.Context) (int64, error)
	watchFn       func(ctx context.Context) <-chan store.ChangeEvent

	upserts      []store.ProfileRow
	fieldUpdates []fieldUpdate
}

type fieldUpdate struct {
	field store.ProfileField
	value *string
}

// Verify mockProfileStore satisfies the interface it mocks.
var _ store.ProfileStore = (*mockProfileStore)(nil)

func (m *mockProfileStore) Get(ctx context.Context) (*store.ProfileRow, error) {
	if m.getFn != nil {
		return m.getFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.row == nil {
		return nil, nil
	}
	copied := *m.row
	return &copied, nil
}

func (m *mockProfileStore) Upsert(ctx context.Context, row store.ProfileRow) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, row)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, row)
	m.row = &row
	return nil
}

func (m *mockProfileStore) UpdateField(ctx context.Context, field store.ProfileField, value *string) (int64, error) {
	if m.updateFieldFn != nil {
		return m.updateFieldFn(ctx, field, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.row == nil {
		return 0, nil
	}
	m.fieldUpdates = append(m.fieldUpdates, fieldUpdate{field: field, value: value})
	switch field {
	case store.FieldName:
		m.row.Name = value
	case store.FieldBirthday:
		m.row.Birthday = value
	case store.FieldPicture:
		m.row.PictureURI = value
	}
	return 1, nil
}

func (m *mockProfileStore) Exists(ctx context.Context) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.row != nil, nil
}

func (m *mockProfileStore) Delete(ctx context.Context) (int64, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.row == nil {
		return 0, nil
	}
	m.row = nil
	return 1, nil
}

func (m *mockProfileStore) Watch(ctx context.Context) <-chan store.ChangeEvent {
	if m.watchFn != nil {
		return m.watchFn(ctx)
	}
	out := make(chan store.ChangeEvent)
	close(out)
	return out
}

// staticWatch returns a Watch implementation that delivers the given
// events and then closes the stream.
func staticWatch(events ...store.ChangeEvent) func(ctx context.Context) <-chan store.ChangeEvent {
	return func(ctx context.Context) <-chan store.ChangeEvent {
		out := make(chan store.ChangeEvent, len(events))
		for _, e := range events {
			out <- e
		}
		close(out)
		return out
	}
}

func strPtr(s string) *string { return &s }
