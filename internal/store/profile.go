package store

import "context"

// ProfileRow is the storage representation of the singleton profile row.
// The birthday is carried as its raw ISO-8601 text (YYYY-MM-DD): parsing
// happens at the repository boundary so a corrupt stored value can be
// reported before it is coerced to an absent field.
type ProfileRow struct {
	ID         int64
	Name       *string
	Birthday   *string
	PictureURI *string
}

// ProfileField names a single updatable column of the profile row.
type ProfileField string

// Updatable profile fields.
const (
	FieldName     ProfileField = "name"
	FieldBirthday ProfileField = "birthday"
	FieldPicture  ProfileField = "picture_uri"
)

// ChangeEvent is one emission of the profile change stream.
// Err is set when the underlying stream faulted; the stream itself stays
// alive. Otherwise Row carries the row state after a committed write, with
// nil meaning the row is absent.
type ChangeEvent struct {
	Row *ProfileRow
	Err error
}

// ProfileStore defines the interface for singleton profile persistence.
type ProfileStore interface {
	// Get retrieves the profile row, or (nil, nil) when no row exists.
	Get(ctx context.Context) (*ProfileRow, error)

	// Upsert replaces the entire profile row, creating it if absent.
	Upsert(ctx context.Context, row ProfileRow) error

	// UpdateField updates exactly one field of the existing row and
	// returns the number of rows affected (0 when no row exists).
	// A nil value stores NULL.
	UpdateField(ctx context.Context, field ProfileField, value *string) (int64, error)

	// Exists reports whether the profile row exists.
	Exists(ctx context.Context) (bool, error)

	// Delete removes the profile row and returns the number of rows
	// affected (0 when no row existed).
	Delete(ctx context.Context) (int64, error)

	// Watch returns a stream of change events for the profile row. The
	// current row state is delivered immediately, then one event per
	// committed write. The stream is closed when ctx is cancelled and is
	// never closed on storage faults.
	Watch(ctx context.Context) <-chan ChangeEvent
}
