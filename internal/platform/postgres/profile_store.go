// Package postgres implements the store interfaces using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hatchling-app/profile-api/internal/domain"
	"github.com/hatchling-app/profile-api/internal/store"
)

// ProfileStore implements the store.ProfileStore interface using a
// PostgreSQL database as the storage backend.
type ProfileStore struct {
	db       store.DBTX
	listener *ChangeListener
	logger   *slog.Logger
}

// NewProfileStore creates a PostgreSQL implementation of the ProfileStore
// interface. The database handle is initialized and owned by the caller.
// The listener may be nil when Watch is not used (unit tests).
// If logger is nil, a default logger will be used.
func NewProfileStore(db store.DBTX, listener *ChangeListener, logger *slog.Logger) *ProfileStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ProfileStore{
		db:       db,
		listener: listener,
		logger:   logger.With(slog.String("component", "profile_store")),
	}
}

// Ensure ProfileStore implements store.ProfileStore interface
var _ store.ProfileStore = (*ProfileStore)(nil)

// Get implements store.ProfileStore.Get.
func (s *ProfileStore) Get(ctx context.Context) (*store.ProfileRow, error) {
	query := `
		SELECT id, name, birthday, picture_uri
		FROM profile
		WHERE id = $1
	`

	var (
		row        store.ProfileRow
		name       sql.NullString
		birthday   sql.NullString
		pictureURI sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, domain.ProfileID).
		Scan(&row.ID, &name, &birthday, &pictureURI)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.NewStoreError("profile", "get", "failed to query profile row", err)
	}

	if name.Valid {
		row.Name = &name.String
	}
	if birthday.Valid {
		row.Birthday = &birthday.String
	}
	if pictureURI.Valid {
		row.PictureURI = &pictureURI.String
	}
	return &row, nil
}

// Upsert implements store.ProfileStore.Upsert. It replaces the entire
// singleton row, creating it when absent.
func (s *ProfileStore) Upsert(ctx context.Context, row store.ProfileRow) error {
	query := `
		INSERT INTO profile (id, name, birthday, picture_uri)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    birthday = EXCLUDED.birthday,
		    picture_uri = EXCLUDED.picture_uri
	`

	_, err := s.db.ExecContext(ctx, query, domain.ProfileID, row.Name, row.Birthday, row.PictureURI)
	if err != nil {
		return store.NewStoreError("profile", "upsert", "failed to upsert profile row", err)
	}

	s.logger.Debug("profile row upserted")
	return nil
}

// UpdateField implements store.ProfileStore.UpdateField. The field name is
// resolved against a fixed set of columns; it is never interpolated from
// caller input.
func (s *ProfileStore) UpdateField(ctx context.Context, field store.ProfileField, value *string) (int64, error) {
	var query string
	switch field {
	case store.FieldName:
		query = `UPDATE profile SET name = $1 WHERE id = $2`
	case store.FieldBirthday:
		query = `UPDATE profile SET birthday = $1 WHERE id = $2`
	case store.FieldPicture:
		query = `UPDATE profile SET picture_uri = $1 WHERE id = $2`
	default:
		return 0, store.NewStoreError("profile", "update",
			fmt.Sprintf("unknown profile field %q", field), nil)
	}

	result, err := s.db.ExecContext(ctx, query, value, domain.ProfileID)
	if err != nil {
		return 0, store.NewStoreError("profile", "update",
			fmt.Sprintf("failed to update field %s", field), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("profile", "update", "failed to get rows affected", err)
	}

	s.logger.Debug("profile field updated",
		slog.String("field", string(field)),
		slog.Int64("rows_affected", affected))
	return affected, nil
}

// Exists implements store.ProfileStore.Exists.
func (s *ProfileStore) Exists(ctx context.Context) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM profile WHERE id = $1)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, domain.ProfileID).Scan(&exists); err != nil {
		return false, store.NewStoreError("profile", "exists", "failed to check profile existence", err)
	}
	return exists, nil
}

// Delete implements store.ProfileStore.Delete.
func (s *ProfileStore) Delete(ctx context.Context) (int64, error) {
	query := `DELETE FROM profile WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, domain.ProfileID)
	if err != nil {
		return 0, store.NewStoreError("profile", "delete", "failed to delete profile row", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("profile", "delete", "failed to get rows affected", err)
	}

	s.logger.Debug("profile row deleted", slog.Int64("rows_affected", affected))
	return affected, nil
}

// Watch implements store.ProfileStore.Watch. The current row state is
// emitted immediately, then the row is re-read and emitted after every
// change notification. Listener faults are forwarded as events carrying an
// error; the stream only ends when ctx is cancelled.
func (s *ProfileStore) Watch(ctx context.Context) <-chan store.ChangeEvent {
	out := make(chan store.ChangeEvent, 1)

	go func() {
		defer close(out)

		emitSnapshot := func() bool {
			row, err := s.Get(ctx)
			return s.send(ctx, out, store.ChangeEvent{Row: row, Err: err})
		}

		if !emitSnapshot() {
			return
		}

		if s.listener == nil {
			s.logger.Warn("no change listener configured, watch delivers the initial snapshot only")
			<-ctx.Done()
			return
		}

		for event := range s.listener.Listen(ctx) {
			if event.Err != nil {
				if !s.send(ctx, out, store.ChangeEvent{Err: event.Err}) {
					return
				}
				continue
			}
			if !emitSnapshot() {
				return
			}
		}
	}()

	return out
}

func (s *ProfileStore) send(ctx context.Context, out chan<- store.ChangeEvent, event store.ChangeEvent) bool {
	select {
	case out <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
